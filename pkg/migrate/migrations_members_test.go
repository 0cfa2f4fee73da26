package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clubwash/clubwash-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestMembersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_members.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS members",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_members_code ON members (code)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_members_phone ON members (phone)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_members_card_uid ON members (card_uid)",
		"DROP TABLE IF EXISTS members",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReplacementMigrationEnforcesUniqueNewUID(t *testing.T) {
	content := readMigration(t, "*_create_card_replacement_requests.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS card_replacement_requests",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_card_replacement_requests_new_uid ON card_replacement_requests (new_uid)",
		"FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRolePermissionsMigrationSeedsEveryRole(t *testing.T) {
	content := readMigration(t, "*_create_role_permissions.sql")

	for _, role := range []string{"'owner'", "'manager'", "'cashier'"} {
		if !strings.Contains(content, role) {
			t.Errorf("missing seed rows for role %s", role)
		}
	}
	if !strings.Contains(content, "'owner', 'roles.manage', TRUE") {
		t.Error("owner must be seeded with roles.manage")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
