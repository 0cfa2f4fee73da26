package admission

import (
	"context"
	"errors"
	"time"

	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/internal/visits"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/metrics"
	"github.com/clubwash/clubwash-backend/pkg/normalize"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blocked reasons returned to the gate. ReasonMemberNotFound never produces
// a visit row; ReasonMembershipInactive always does.
const (
	ReasonMemberNotFound     = "Member not found"
	ReasonMembershipInactive = "Membership inactive"
)

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MemberSnapshot is the display subset of a member returned with a decision.
type MemberSnapshot struct {
	ID            uuid.UUID          `json:"id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	PackageTier   enums.PackageTier  `json:"package_tier"`
	Status        enums.MemberStatus `json:"status"`
	DaysRemaining int                `json:"days_remaining"`
}

// Result is the outcome of one card scan.
type Result struct {
	Outcome enums.AdmissionOutcome `json:"outcome"`
	Reason  string                 `json:"reason,omitempty"`
	Member  *MemberSnapshot        `json:"member,omitempty"`
	Visit   *models.Visit          `json:"visit,omitempty"`
}

// Service decides gate admission for scanned cards.
type Service interface {
	Scan(ctx context.Context, cardUID string) (*Result, error)
}

// ServiceParams groups dependencies for the admission service.
type ServiceParams struct {
	Tx      TxRunner
	Members members.Repository
	Visits  visits.Repository
	Metrics *metrics.ScanMetrics
	Now     func() time.Time
}

type service struct {
	tx      TxRunner
	members members.Repository
	visits  visits.Repository
	metrics *metrics.ScanMetrics
	now     func() time.Time
}

// NewService builds an admission service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "members repository required")
	}
	if params.Visits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visits repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:      params.Tx,
		members: params.Members,
		visits:  params.Visits,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Scan resolves the card to a member and decides admission. An unknown card
// blocks without a visit row. A known member always gets exactly one visit
// row, allowed or blocked. The visit's vehicle is the member's first vehicle
// regardless of which car actually arrived.
func (s *service) Scan(ctx context.Context, cardUID string) (*Result, error) {
	started := s.now()

	uid := normalize.CardUID(cardUID)
	if uid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card uid is required")
	}

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := s.members.WithTx(tx)
		visitRepo := s.visits.WithTx(tx)

		member, err := memberRepo.FindByCardUID(ctx, uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = &Result{
					Outcome: enums.AdmissionOutcomeBlocked,
					Reason:  ReasonMemberNotFound,
				}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member by card uid")
		}

		periods, err := memberRepo.ListPeriodsByMember(ctx, member.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list membership periods")
		}
		vehicles, err := memberRepo.ListVehiclesByMember(ctx, member.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vehicles")
		}

		now := s.now()
		valid := membership.IsCurrentlyValid(periods, now)

		outcome := enums.AdmissionOutcomeAllowed
		reason := ""
		if !valid {
			outcome = enums.AdmissionOutcomeBlocked
			reason = ReasonMembershipInactive
		}

		visit := &models.Visit{
			ID:        uuid.New(),
			MemberID:  member.ID,
			VisitDate: membership.DateOnly(now),
			VisitTime: now.Format("15:04:05"),
			Outcome:   outcome,
		}
		if len(vehicles) > 0 {
			visit.VehicleID = &vehicles[0].ID
		}
		if reason != "" {
			visit.Reason = &reason
		}
		if err := visitRepo.Create(ctx, visit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create visit")
		}

		result = &Result{
			Outcome: outcome,
			Reason:  reason,
			Member: &MemberSnapshot{
				ID:            member.ID,
				Code:          member.Code,
				Name:          member.Name,
				PackageTier:   member.PackageTier,
				Status:        member.Status,
				DaysRemaining: membership.DaysRemaining(periods, now),
			},
			Visit: visit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDecision(result.Outcome.String(), result.Reason)
	if result.Visit != nil {
		s.metrics.IncVisit(result.Outcome.String())
	}
	s.metrics.ObserveDuration(result.Outcome.String(), s.now().Sub(started))

	return result, nil
}
