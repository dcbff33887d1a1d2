package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/vmshq/vms-backend/pkg/auth"
	"github.com/vmshq/vms-backend/pkg/config"
	"github.com/vmshq/vms-backend/pkg/db"
	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
	pkgerrors "github.com/vmshq/vms-backend/pkg/errors"
	"github.com/vmshq/vms-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*UserSummary, error)
	EnsureDefaultAdmin(ctx context.Context) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	users        userRepository
	jwtCfg       config.JWTConfig
	passwordCfg  config.PasswordConfig
	bootstrapCfg config.BootstrapConfig
	now          func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo        userRepository
	JWTConfig       config.JWTConfig
	PasswordConfig  config.PasswordConfig
	BootstrapConfig config.BootstrapConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &service{
		users:        params.UserRepo,
		jwtCfg:       params.JWTConfig,
		passwordCfg:  params.PasswordConfig,
		bootstrapCfg: params.BootstrapConfig,
		now:          time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	payload := pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		JTI:      uuid.NewString(),
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        summaryFromModel(user),
	}, nil
}

// Register creates an operator account. Role defaults to staff when omitted.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*UserSummary, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	role := enums.UserRoleStaff
	if req.Role != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	hashed, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hashed,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Role:           role,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "username") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	summary := summaryFromModel(user)
	return &summary, nil
}

// EnsureDefaultAdmin seeds the first admin account when the users table is
// empty, so a fresh deployment has a credential to log in with. Installations
// with existing users are left untouched.
func (s *service) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if count > 0 {
		return nil
	}

	username := strings.ToLower(strings.TrimSpace(s.bootstrapCfg.AdminUsername))
	if username == "" || s.bootstrapCfg.AdminPassword == "" {
		return pkgerrors.New(pkgerrors.CodeInternal, "bootstrap admin credentials not configured")
	}

	hashed, err := security.HashPassword(s.bootstrapCfg.AdminPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: hashed,
		FirstName:      "Default",
		LastName:       "Admin",
		Role:           enums.UserRoleAdmin,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		// another instance won the boot race
		if db.IsUniqueViolation(err, "username") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default admin")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByUsername(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.HashedPassword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || user.Disabled {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
