package dashboard

import (
	"context"
	"time"

	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/internal/replacements"
	"github.com/clubwash/clubwash-backend/internal/visits"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const expiringWindowDays = 7

// Snapshot is one dashboard read: member totals, today's gate activity,
// renewals due soon, pending card requests, and recurring revenue.
type Snapshot struct {
	MembersByStatus     map[enums.MemberStatus]int64     `json:"members_by_status"`
	ActiveByTier        map[enums.PackageTier]int64      `json:"active_by_tier"`
	VisitsToday         map[enums.AdmissionOutcome]int64 `json:"visits_today"`
	ExpiringSoon        int64                            `json:"expiring_soon"`
	PendingReplacements int64                            `json:"pending_replacements"`
	MonthlyRevenue      decimal.Decimal                  `json:"monthly_revenue"`
	GeneratedAt         time.Time                        `json:"generated_at"`
}

// Service assembles the reporting dashboard.
type Service interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	Repo         Repository
	Visits       visits.Repository
	Replacements replacements.Repository
	Packages     config.PackagesConfig
	Now          func() time.Time
}

type service struct {
	repo         Repository
	visits       visits.Repository
	replacements replacements.Repository
	packages     config.PackagesConfig
	now          func() time.Time
}

// NewService builds a dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	if params.Visits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "visits repository required")
	}
	if params.Replacements == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "replacements repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:         params.Repo,
		visits:       params.Visits,
		replacements: params.Replacements,
		packages:     params.Packages,
		now:          now,
	}, nil
}

// Snapshot gathers every dashboard aggregate for "now".
func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := s.now()
	today := membership.DateOnly(now)

	byStatus, err := s.repo.CountMembersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count members by status")
	}
	byTier, err := s.repo.CountActiveMembersByTier(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active members by tier")
	}
	expiring, err := s.repo.CountExpiringBetween(ctx, today, today.AddDate(0, 0, expiringWindowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count expiring members")
	}
	visitsToday, err := s.visits.CountByOutcomeOn(ctx, today)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count today's visits")
	}
	pending, err := s.replacements.CountByStatus(ctx, enums.ReplacementStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending replacements")
	}

	revenue := decimal.Zero
	for tier, count := range byTier {
		revenue = revenue.Add(s.packages.MonthlyPrice(tier).Mul(decimal.NewFromInt(count)))
	}

	if visitsToday == nil {
		visitsToday = map[enums.AdmissionOutcome]int64{}
	}

	return &Snapshot{
		MembersByStatus:     byStatus,
		ActiveByTier:        byTier,
		VisitsToday:         visitsToday,
		ExpiringSoon:        expiring,
		PendingReplacements: pending,
		MonthlyRevenue:      revenue,
		GeneratedAt:         now,
	}, nil
}
