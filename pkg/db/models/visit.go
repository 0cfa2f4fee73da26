package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// Visit is an append-only log row written once per scan of a known member's
// card. Unknown cards never produce a row.
type Visit struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  uuid.UUID              `gorm:"column:member_id;type:uuid;not null;index:idx_visits_member"`
	VehicleID *uuid.UUID             `gorm:"column:vehicle_id;type:uuid"`
	VisitDate time.Time              `gorm:"column:visit_date;type:date;not null;index:idx_visits_date"`
	VisitTime string                 `gorm:"column:visit_time;not null"`
	Outcome   enums.AdmissionOutcome `gorm:"column:outcome;type:admission_outcome;not null"`
	Reason    *string                `gorm:"column:reason"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
