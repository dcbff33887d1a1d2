package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vmshq/vms-backend/api/routes"
	"github.com/vmshq/vms-backend/internal/auth"
	"github.com/vmshq/vms-backend/internal/customers"
	"github.com/vmshq/vms-backend/internal/inventory"
	"github.com/vmshq/vms-backend/internal/orders"
	"github.com/vmshq/vms-backend/internal/products"
	"github.com/vmshq/vms-backend/internal/users"
	"github.com/vmshq/vms-backend/internal/vendors"
	"github.com/vmshq/vms-backend/pkg/config"
	"github.com/vmshq/vms-backend/pkg/db"
	"github.com/vmshq/vms-backend/pkg/ims"
	"github.com/vmshq/vms-backend/pkg/logger"
	"github.com/vmshq/vms-backend/pkg/metrics"
	"github.com/vmshq/vms-backend/pkg/migrate"
	"github.com/vmshq/vms-backend/pkg/redis"
	"github.com/vmshq/vms-backend/pkg/storage/images"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	imsClient, err := ims.NewClient(context.Background(), cfg.IMS, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ims client", err)
		os.Exit(1)
	}

	imageStore, err := images.NewStore(cfg.Images.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to create image store", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	vendorsRepo := vendors.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	allocator, err := inventory.NewAllocator(inventoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create allocator", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        usersRepo,
		JWTConfig:       cfg.JWT,
		PasswordConfig:  cfg.Password,
		BootstrapConfig: cfg.Bootstrap,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	if err := authService.EnsureDefaultAdmin(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed default admin", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(productsRepo, inventoryRepo, dbClient, imageStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient, allocator, imsClient, customersRepo, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Registry:     registry,
			AuthService:  authService,
			UsersRepo:    usersRepo,
			OrdersSvc:    ordersService,
			ProductsSvc:  productsService,
			ProductsRepo: productsRepo,
			VendorsRepo:  vendorsRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
