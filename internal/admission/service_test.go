package admission

import (
	"context"
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/internal/visits"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubMemberRepo struct {
	member   *models.Member
	periods  []models.MembershipPeriod
	vehicles []models.Vehicle
}

func (s *stubMemberRepo) WithTx(tx *gorm.DB) members.Repository { return s }

func (s *stubMemberRepo) CreateMember(ctx context.Context, member *models.Member) error { return nil }
func (s *stubMemberRepo) MaxCodeNumber(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberRepo) FindByCardUID(ctx context.Context, cardUID string) (*models.Member, error) {
	if s.member != nil && s.member.CardUID == cardUID {
		copied := *s.member
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberRepo) FindByPhoneVariants(ctx context.Context, variants []string) (*models.Member, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberRepo) UpdateMember(ctx context.Context, member *models.Member) error { return nil }
func (s *stubMemberRepo) DeleteMember(ctx context.Context, id uuid.UUID) error          { return nil }

func (s *stubMemberRepo) Search(ctx context.Context, params members.SearchQuery) ([]models.Member, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubMemberRepo) CreatePeriod(ctx context.Context, period *models.MembershipPeriod) error {
	return nil
}

func (s *stubMemberRepo) ListPeriodsByMember(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error) {
	return s.periods, nil
}

func (s *stubMemberRepo) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return nil
}

func (s *stubMemberRepo) ListVehiclesByMember(ctx context.Context, memberID uuid.UUID) ([]models.Vehicle, error) {
	return s.vehicles, nil
}

func (s *stubMemberRepo) CountVehiclesByMember(ctx context.Context, memberID uuid.UUID) (int64, error) {
	return int64(len(s.vehicles)), nil
}

func (s *stubMemberRepo) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberRepo) DeleteVehicle(ctx context.Context, id uuid.UUID) error          { return nil }
func (s *stubMemberRepo) DeleteVehiclesByMember(ctx context.Context, id uuid.UUID) error { return nil }

type stubVisitRepo struct {
	created []*models.Visit
}

func (s *stubVisitRepo) WithTx(tx *gorm.DB) visits.Repository { return s }

func (s *stubVisitRepo) Create(ctx context.Context, visit *models.Visit) error {
	s.created = append(s.created, visit)
	return nil
}

func (s *stubVisitRepo) List(ctx context.Context, params visits.ListQuery) ([]models.Visit, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubVisitRepo) CountByOutcomeOn(ctx context.Context, date time.Time) (map[enums.AdmissionOutcome]int64, error) {
	return nil, nil
}

func newTestService(t *testing.T, memberRepo *stubMemberRepo, visitRepo *stubVisitRepo, now time.Time) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Tx:      stubTxRunner{},
		Members: memberRepo,
		Visits:  visitRepo,
		Now:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestScanUnknownCardWritesNoVisit(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)
	visitRepo := &stubVisitRepo{}
	svc := newTestService(t, &stubMemberRepo{}, visitRepo, now)

	result, err := svc.Scan(context.Background(), "99-88-77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != enums.AdmissionOutcomeBlocked {
		t.Fatalf("expected blocked, got %s", result.Outcome)
	}
	if result.Reason != ReasonMemberNotFound {
		t.Fatalf("expected %q, got %q", ReasonMemberNotFound, result.Reason)
	}
	if result.Member != nil {
		t.Fatal("unknown card must not expose a member snapshot")
	}
	if len(visitRepo.created) != 0 {
		t.Fatalf("unknown card must not write a visit, wrote %d", len(visitRepo.created))
	}
}

func TestScanValidMemberPeriodEndingToday(t *testing.T) {
	now := time.Date(2026, 5, 20, 18, 45, 0, 0, time.UTC)
	memberID := uuid.New()
	vehicleID := uuid.New()
	memberRepo := &stubMemberRepo{
		member: &models.Member{
			ID:          memberID,
			Code:        "CW-00003",
			Name:        "Budi",
			CardUID:     "123456",
			PackageTier: enums.PackageTier499K,
			Status:      enums.MemberStatusActive,
		},
		periods: []models.MembershipPeriod{
			{MemberID: memberID, Status: enums.PeriodStatusActive, EndDate: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)},
		},
		vehicles: []models.Vehicle{
			{ID: vehicleID, MemberID: memberID, Plate: "B 1 A"},
			{ID: uuid.New(), MemberID: memberID, Plate: "B 2 B"},
		},
	}
	visitRepo := &stubVisitRepo{}
	svc := newTestService(t, memberRepo, visitRepo, now)

	result, err := svc.Scan(context.Background(), "12-34-56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != enums.AdmissionOutcomeAllowed {
		t.Fatalf("period ending today should admit, got %s (%s)", result.Outcome, result.Reason)
	}
	if len(visitRepo.created) != 1 {
		t.Fatalf("expected exactly one visit, got %d", len(visitRepo.created))
	}
	visit := visitRepo.created[0]
	if visit.Outcome != enums.AdmissionOutcomeAllowed {
		t.Fatalf("visit outcome mismatch: %s", visit.Outcome)
	}
	if visit.VehicleID == nil || *visit.VehicleID != vehicleID {
		t.Fatal("visit should reference the member's first vehicle")
	}
	if result.Member == nil || result.Member.Code != "CW-00003" {
		t.Fatal("expected member snapshot in result")
	}
	if result.Member.DaysRemaining != 0 {
		t.Fatalf("period ending today should report 0 days remaining, got %d", result.Member.DaysRemaining)
	}
}

func TestScanExpiredMemberStillLogsVisit(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)
	memberID := uuid.New()
	memberRepo := &stubMemberRepo{
		member: &models.Member{
			ID:      memberID,
			CardUID: "123456",
			Status:  enums.MemberStatusExpired,
		},
		periods: []models.MembershipPeriod{
			{MemberID: memberID, Status: enums.PeriodStatusActive, EndDate: now.AddDate(0, 0, -3)},
		},
	}
	visitRepo := &stubVisitRepo{}
	svc := newTestService(t, memberRepo, visitRepo, now)

	result, err := svc.Scan(context.Background(), "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != enums.AdmissionOutcomeBlocked {
		t.Fatalf("expected blocked, got %s", result.Outcome)
	}
	if result.Reason != ReasonMembershipInactive {
		t.Fatalf("expected %q, got %q", ReasonMembershipInactive, result.Reason)
	}
	if len(visitRepo.created) != 1 {
		t.Fatalf("known member must log exactly one visit, got %d", len(visitRepo.created))
	}
	visit := visitRepo.created[0]
	if visit.Outcome != enums.AdmissionOutcomeBlocked {
		t.Fatalf("visit outcome mismatch: %s", visit.Outcome)
	}
	if visit.Reason == nil || *visit.Reason != ReasonMembershipInactive {
		t.Fatal("blocked visit should carry the reason snapshot")
	}
	if visit.VehicleID != nil {
		t.Fatal("member without vehicles should log a vehicle-less visit")
	}
}

func TestScanRejectsEmptyUID(t *testing.T) {
	svc := newTestService(t, &stubMemberRepo{}, &stubVisitRepo{}, time.Now())

	_, err := svc.Scan(context.Background(), "--")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
