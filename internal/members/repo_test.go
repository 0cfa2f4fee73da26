package members

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMembersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:memberstest?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	members := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  card_uid TEXT NOT NULL,
  package_tier TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	periods := `
CREATE TABLE IF NOT EXISTS membership_periods (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  plate TEXT NOT NULL,
  color TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(members).Error)
	require.NoError(t, conn.Exec(periods).Error)
	require.NoError(t, conn.Exec(vehicles).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_code ON members (code)`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_phone ON members (phone)`).Error)
	require.NoError(t, conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_card_uid ON members (card_uid)`).Error)
	return conn
}

func TestCreateSurvivesDeletionGap(t *testing.T) {
	conn := setupMembersTestDB(t)
	client := db.FromGorm(conn)

	svc, err := NewService(ServiceParams{
		Tx:       client,
		Repo:     NewRepository(conn),
		Packages: testPackagesConfig(),
	})
	require.NoError(t, err)

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	create := func(i int) *MemberDetail {
		detail, err := svc.Create(context.Background(), CreateMemberParams{
			Name:        fmt.Sprintf("Member %d", i),
			Phone:       fmt.Sprintf("08120000%04d", i),
			CardUID:     fmt.Sprintf("90%04d", i),
			PackageTier: enums.PackageTier299K,
			EndDate:     now.AddDate(0, 1, 0),
			Now:         now,
		})
		require.NoError(t, err)
		return detail
	}

	first := create(1)
	create(2)
	create(3)
	assert.Equal(t, "CW-00001", first.Member.Code)

	require.NoError(t, svc.Delete(context.Background(), first.Member.ID))

	fourth := create(4)
	assert.Equal(t, "CW-00004", fourth.Member.Code)
}
