package membership

import (
	"context"
	"errors"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ExtendParams carries the inputs of a membership extension.
type ExtendParams struct {
	MemberID uuid.UUID
	EndDate  time.Time
	Now      time.Time
}

// ExtendResult reports the appended period and the member after the extension.
type ExtendResult struct {
	Period *models.MembershipPeriod
	Member *models.Member
}

// Service appends membership periods and evaluates validity windows.
type Service interface {
	Extend(ctx context.Context, params ExtendParams) (*ExtendResult, error)
	PeriodsFor(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error)
}

// ServiceParams groups dependencies for the membership service.
type ServiceParams struct {
	Tx   TxRunner
	Repo Repository
}

type service struct {
	tx   TxRunner
	repo Repository
}

// NewService builds a membership service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	return &service{tx: params.Tx, repo: params.Repo}, nil
}

// Extend appends a new active period for the member. When the member is still
// inside a period the new one starts the day after the latest end date, so
// renewals chain back-to-back. A lapsed member restarts today. The member's
// status flips to active on success.
func (s *service) Extend(ctx context.Context, params ExtendParams) (*ExtendResult, error) {
	if params.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	if params.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date is required")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := DateOnly(now)
	requestedEnd := DateOnly(params.EndDate)

	var result ExtendResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.FindMemberByID(ctx, params.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}

		periods, err := repo.ListPeriodsByMember(ctx, member.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list membership periods")
		}

		start := today
		if latest, ok := LatestEnd(periods); ok && !latest.Before(today) {
			start = latest.AddDate(0, 0, 1)
		}

		if !requestedEnd.After(start) {
			return pkgerrors.New(pkgerrors.CodeValidation, "end date must be after the new period's start date").
				WithDetails(map[string]any{
					"start_date": start.Format(time.DateOnly),
					"end_date":   requestedEnd.Format(time.DateOnly),
				})
		}

		period := &models.MembershipPeriod{
			ID:        uuid.New(),
			MemberID:  member.ID,
			StartDate: start,
			EndDate:   requestedEnd,
			Status:    enums.PeriodStatusActive,
		}
		if err := repo.CreatePeriod(ctx, period); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership period")
		}

		if member.Status != enums.MemberStatusActive {
			if err := repo.UpdateMemberStatus(ctx, member.ID, enums.MemberStatusActive); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate member")
			}
			member.Status = enums.MemberStatusActive
		}

		result.Period = period
		result.Member = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PeriodsFor returns the member's full period history, newest end first.
func (s *service) PeriodsFor(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	return s.repo.ListPeriodsByMember(ctx, memberID)
}
