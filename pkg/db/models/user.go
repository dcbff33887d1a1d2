package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vmshq/vms-backend/pkg/enums"
)

// User is a dashboard operator account.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username       string         `gorm:"column:username;not null;uniqueIndex"`
	HashedPassword string         `gorm:"column:hashed_password;not null"`
	FirstName      string         `gorm:"column:first_name;not null;default:''"`
	LastName       string         `gorm:"column:last_name;not null;default:''"`
	Email          string         `gorm:"column:email;not null;default:''"`
	Role           enums.UserRole `gorm:"column:role;not null;default:'staff'"`
	Disabled       bool           `gorm:"column:disabled;not null;default:false"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
