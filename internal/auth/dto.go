package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/vmshq/vms-backend/pkg/db/models"
	"github.com/vmshq/vms-backend/pkg/enums"
)

// LoginRequest carries dashboard credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
}

// RegisterRequest carries the payload for creating an operator account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role"`
}

// UserSummary is the account shape exposed to clients.
type UserSummary struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

func summaryFromModel(user *models.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
