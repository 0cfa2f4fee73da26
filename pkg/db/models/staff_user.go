package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// StaffUser is an operator account (owner, manager, or cashier).
type StaffUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex:idx_staff_users_email"`
	Name         string          `gorm:"column:name;not null"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.StaffRole `gorm:"column:role;type:staff_role;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
