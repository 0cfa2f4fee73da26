package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// RolePermission is one cell of the role/capability policy matrix.
type RolePermission struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Role       enums.StaffRole  `gorm:"column:role;type:staff_role;not null;uniqueIndex:idx_role_permissions_role_capability,priority:1"`
	Capability enums.Capability `gorm:"column:capability;not null;uniqueIndex:idx_role_permissions_role_capability,priority:2"`
	Allowed    bool             `gorm:"column:allowed;not null;default:false"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
