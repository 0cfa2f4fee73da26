package visits

import (
	"context"
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRepo struct {
	lastQuery ListQuery
	visits    []models.Visit
	next      *pagination.Cursor
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, visit *models.Visit) error { return nil }

func (s *stubRepo) List(ctx context.Context, params ListQuery) ([]models.Visit, *pagination.Cursor, error) {
	s.lastQuery = params
	return s.visits, s.next, nil
}

func (s *stubRepo) CountByOutcomeOn(ctx context.Context, date time.Time) (map[enums.AdmissionOutcome]int64, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestListForwardsFilters(t *testing.T) {
	memberID := uuid.New()
	outcome := enums.AdmissionOutcomeBlocked
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	repo := &stubRepo{
		visits: []models.Visit{{ID: uuid.New(), MemberID: memberID, Outcome: outcome}},
	}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{
		MemberID: &memberID,
		From:     &from,
		To:       &to,
		Outcome:  &outcome,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(result.Visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(result.Visits))
	}
	if result.NextCursor != "" {
		t.Fatalf("expected empty next cursor, got %q", result.NextCursor)
	}
	if repo.lastQuery.MemberID == nil || *repo.lastQuery.MemberID != memberID {
		t.Fatal("member filter not forwarded")
	}
	if repo.lastQuery.Outcome == nil || *repo.lastQuery.Outcome != outcome {
		t.Fatal("outcome filter not forwarded")
	}
	if repo.lastQuery.From == nil || !repo.lastQuery.From.Equal(from) {
		t.Fatal("from filter not forwarded")
	}
	if repo.lastQuery.To == nil || !repo.lastQuery.To.Equal(to) {
		t.Fatal("to filter not forwarded")
	}
	if repo.lastQuery.Limit != 10 {
		t.Fatalf("limit not forwarded: %d", repo.lastQuery.Limit)
	}
}

func TestListEncodesNextCursor(t *testing.T) {
	next := pagination.Cursor{
		CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		ID:        uuid.New(),
	}
	repo := &stubRepo{next: &next}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.NextCursor == "" {
		t.Fatal("expected encoded next cursor")
	}

	decoded, err := pagination.ParseCursor(result.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if decoded.ID != next.ID || !decoded.CreatedAt.Equal(next.CreatedAt) {
		t.Fatal("cursor round trip mismatch")
	}
}

func TestListRoundTripsCursorFromParams(t *testing.T) {
	cursor := pagination.Cursor{
		CreatedAt: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	if _, err := svc.List(context.Background(), ListParams{Cursor: pagination.EncodeCursor(cursor)}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastQuery.Cursor == nil {
		t.Fatal("cursor not forwarded")
	}
	if repo.lastQuery.Cursor.ID != cursor.ID {
		t.Fatal("cursor id mismatch")
	}
}

func TestListRejectsBadInput(t *testing.T) {
	from := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	badOutcome := enums.AdmissionOutcome("loitering")

	cases := []struct {
		name   string
		params ListParams
	}{
		{name: "garbage cursor", params: ListParams{Cursor: "not-a-cursor"}},
		{name: "unknown outcome", params: ListParams{Outcome: &badOutcome}},
		{name: "inverted range", params: ListParams{From: &from, To: &to}},
	}

	svc := newTestService(t, &stubRepo{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.List(context.Background(), tc.params)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
