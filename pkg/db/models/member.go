package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// Member is a car-wash club member. Phone and CardUID are stored in their
// normalized forms; both carry unique indexes so concurrent writers cannot
// slip past the service-level pre-checks.
type Member struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string             `gorm:"column:code;not null;uniqueIndex:idx_members_code"`
	Name        string             `gorm:"column:name;not null"`
	Phone       string             `gorm:"column:phone;not null;uniqueIndex:idx_members_phone"`
	CardUID     string             `gorm:"column:card_uid;not null;uniqueIndex:idx_members_card_uid"`
	PackageTier enums.PackageTier  `gorm:"column:package_tier;type:package_tier;not null"`
	Status      enums.MemberStatus `gorm:"column:status;type:member_status;not null;default:active"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
