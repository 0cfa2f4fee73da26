package visits

import (
	"context"
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupVisitsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	visits := `
CREATE TABLE IF NOT EXISTS visits (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  vehicle_id TEXT,
  visit_date DATETIME NOT NULL,
  visit_time TEXT NOT NULL,
  outcome TEXT NOT NULL,
  reason TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(visits).Error)
	return db
}

func seedVisit(t *testing.T, db *gorm.DB, memberID uuid.UUID, date, created time.Time, outcome enums.AdmissionOutcome) *models.Visit {
	t.Helper()

	visit := &models.Visit{
		ID:        uuid.New(),
		MemberID:  memberID,
		VisitDate: date,
		VisitTime: created.Format("15:04:05"),
		Outcome:   outcome,
		CreatedAt: created,
	}
	require.NoError(t, db.Create(visit).Error)
	return visit
}

func TestRepositoryListPaginatesNewestFirst(t *testing.T) {
	db := setupVisitsTestDB(t)
	repo := NewRepository(db)

	memberID := uuid.New()
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	oldest := seedVisit(t, db, memberID, day, base, enums.AdmissionOutcomeAllowed)
	middle := seedVisit(t, db, memberID, day, base.Add(time.Hour), enums.AdmissionOutcomeAllowed)
	newest := seedVisit(t, db, memberID, day, base.Add(2*time.Hour), enums.AdmissionOutcomeBlocked)

	page, next, err := repo.List(context.Background(), ListQuery{MemberID: &memberID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)

	rest, last, err := repo.List(context.Background(), ListQuery{MemberID: &memberID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, last)
	assert.Equal(t, oldest.ID, rest[0].ID)
}

func TestRepositoryListFiltersByOutcomeAndRange(t *testing.T) {
	db := setupVisitsTestDB(t)
	repo := NewRepository(db)

	memberID := uuid.New()
	early := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	seedVisit(t, db, memberID, early, early.Add(8*time.Hour), enums.AdmissionOutcomeAllowed)
	blocked := seedVisit(t, db, memberID, late, late.Add(8*time.Hour), enums.AdmissionOutcomeBlocked)

	outcome := enums.AdmissionOutcomeBlocked
	page, _, err := repo.List(context.Background(), ListQuery{MemberID: &memberID, Outcome: &outcome})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, blocked.ID, page[0].ID)

	from := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	page, _, err = repo.List(context.Background(), ListQuery{MemberID: &memberID, From: &from})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, blocked.ID, page[0].ID)
}

func TestRepositoryCountByOutcomeOn(t *testing.T) {
	db := setupVisitsTestDB(t)
	repo := NewRepository(db)

	memberID := uuid.New()
	day := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	otherDay := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	seedVisit(t, db, memberID, day, day.Add(9*time.Hour), enums.AdmissionOutcomeAllowed)
	seedVisit(t, db, memberID, day, day.Add(10*time.Hour), enums.AdmissionOutcomeAllowed)
	seedVisit(t, db, memberID, day, day.Add(11*time.Hour), enums.AdmissionOutcomeBlocked)
	seedVisit(t, db, memberID, otherDay, otherDay.Add(9*time.Hour), enums.AdmissionOutcomeAllowed)

	counts, err := repo.CountByOutcomeOn(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.AdmissionOutcomeAllowed])
	assert.Equal(t, int64(1), counts[enums.AdmissionOutcomeBlocked])
}
