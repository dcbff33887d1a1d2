package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmshq/vms-backend/api/controllers"
	"github.com/vmshq/vms-backend/api/middleware"
	internalauth "github.com/vmshq/vms-backend/internal/auth"
	"github.com/vmshq/vms-backend/internal/orders"
	"github.com/vmshq/vms-backend/internal/products"
	"github.com/vmshq/vms-backend/internal/users"
	"github.com/vmshq/vms-backend/internal/vendors"
	"github.com/vmshq/vms-backend/pkg/config"
	"github.com/vmshq/vms-backend/pkg/enums"
	"github.com/vmshq/vms-backend/pkg/logger"
	pkgredis "github.com/vmshq/vms-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Optional fields (redis,
// metrics registry) may be nil in tests.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           Pinger
	Redis        *pkgredis.Client
	Registry     *prometheus.Registry
	AuthService  internalauth.Service
	UsersRepo    users.Repository
	OrdersSvc    orders.Service
	ProductsSvc  products.Service
	ProductsRepo products.Repository
	VendorsRepo  vendors.Repository
}

// Pinger is satisfied by the DB and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var cache Pinger
	if d.Redis != nil {
		cache = d.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, cache, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(d.AuthService, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.CurrentUser(d.UsersRepo, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/register", controllers.Register(d.AuthService, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		var idemStore pkgredis.IdempotencyStore
		if d.Redis != nil {
			idemStore = d.Redis
		}
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/vms/orders", func(r chi.Router) {
			r.Post("/", controllers.ReceiveOrder(d.OrdersSvc, d.ProductsRepo, logg))
			r.Get("/", controllers.ListOrders(d.OrdersSvc, logg))
			r.Put("/{orderID}/confirm", controllers.ConfirmOrder(d.OrdersSvc, logg))
			r.Put("/{orderID}/toship", controllers.MarkOrderToShip(d.OrdersSvc, logg))
			r.Put("/{orderID}/delivered", controllers.MarkOrderDelivered(d.OrdersSvc, logg))
			r.Put("/{orderID}/received", controllers.MarkOrderReceived(d.OrdersSvc, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/update-status", controllers.UpdateOrderStatus(d.OrdersSvc, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(d.ProductsSvc, logg))
			r.Post("/quantity", controllers.AddProductQuantity(d.ProductsSvc, logg))
			r.Get("/", controllers.ListProducts(d.ProductsSvc, logg))
			r.Get("/{productID}", controllers.GetProduct(d.ProductsSvc, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(d.ProductsSvc, logg))
			r.Delete("/{productID}", controllers.DeactivateProduct(d.ProductsSvc, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.ListVendors(d.VendorsRepo, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/", controllers.CreateVendor(d.VendorsRepo, logg))
		})
	})

	return r
}
