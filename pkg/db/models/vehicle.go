package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle belongs to a member. The count per member is bounded by the
// package tier quota, enforced in the vehicles service.
type Vehicle struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;index:idx_vehicles_member"`
	Plate     string    `gorm:"column:plate;not null"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
