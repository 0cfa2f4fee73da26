package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// MembershipPeriod is one paid validity interval. Periods are append-only:
// renewals add rows, nothing mutates or deletes prior history.
type MembershipPeriod struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID          `gorm:"column:member_id;type:uuid;not null;index:idx_membership_periods_member"`
	StartDate time.Time          `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time          `gorm:"column:end_date;type:date;not null"`
	Status    enums.PeriodStatus `gorm:"column:status;type:period_status;not null;default:active"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
