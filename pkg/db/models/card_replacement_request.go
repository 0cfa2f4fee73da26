package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// CardReplacementRequest tracks a pending change of a member's card UID.
// NewUID carries a unique index independent of request status, so a second
// submission of the same UID fails at insert even when the first request was
// already decided.
type CardReplacementRequest struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID    uuid.UUID               `gorm:"column:member_id;type:uuid;not null;index:idx_card_replacement_requests_member"`
	OldUID      string                  `gorm:"column:old_uid;not null"`
	NewUID      string                  `gorm:"column:new_uid;not null;uniqueIndex:idx_card_replacement_requests_new_uid"`
	Reason      enums.ReplacementReason `gorm:"column:reason;type:replacement_reason;not null"`
	Note        *string                 `gorm:"column:note"`
	ProofRef    *string                 `gorm:"column:proof_ref"`
	Status      enums.ReplacementStatus `gorm:"column:status;type:replacement_status;not null;default:pending"`
	RequestedAt time.Time               `gorm:"column:requested_at;not null"`
	DecidedAt   *time.Time              `gorm:"column:decided_at"`
	DecidedBy   *uuid.UUID              `gorm:"column:decided_by;type:uuid"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
