package auth

import (
	"context"
	"testing"
	"time"

	pkgauth "github.com/clubwash/clubwash-backend/pkg/auth"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/clubwash/clubwash-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     8,
	ArgonKeyLen:      16,
}

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "clubwash",
	ExpirationMinutes: 60,
}

type stubTxRunner struct{}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	staff   []*models.StaffUser
	updated []*models.StaffUser
	created []*models.StaffUser
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, staff *models.StaffUser) error {
	s.staff = append(s.staff, staff)
	s.created = append(s.created, staff)
	return nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	for _, st := range s.staff {
		if st.Email == email {
			copied := *st
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	for _, st := range s.staff {
		if st.ID == id {
			copied := *st
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Update(ctx context.Context, staff *models.StaffUser) error {
	for i, st := range s.staff {
		if st.ID == staff.ID {
			s.staff[i] = staff
			s.updated = append(s.updated, staff)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.StaffUser, *pagination.Cursor, error) {
	out := make([]models.StaffUser, 0, len(s.staff))
	for _, st := range s.staff {
		out = append(out, *st)
	}
	return out, nil, nil
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Tx:       stubTxRunner{},
		Repo:     repo,
		JWT:      testJWTConfig,
		Password: testPasswordConfig,
		Now:      func() time.Time { return time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seededStaff(t *testing.T, password string) *models.StaffUser {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.StaffUser{
		ID:           uuid.New(),
		Email:        "owner@clubwash.id",
		Name:         "Owner",
		PasswordHash: hash,
		Role:         enums.StaffRoleOwner,
		IsActive:     true,
	}
}

func TestLoginMintsTokenAndRecordsLogin(t *testing.T) {
	staff := seededStaff(t, "s3cret-pass")
	repo := &stubRepo{staff: []*models.StaffUser{staff}}
	svc := newTestService(t, repo)

	result, err := svc.Login(context.Background(), LoginParams{
		Email:    "  Owner@ClubWash.id ",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, result.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.StaffID != staff.ID {
		t.Fatal("token subject mismatch")
	}
	if claims.Role != enums.StaffRoleOwner {
		t.Fatalf("token role mismatch: %s", claims.Role)
	}
	if len(repo.updated) != 1 || repo.updated[0].LastLoginAt == nil {
		t.Fatal("last_login_at not recorded")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	staff := seededStaff(t, "s3cret-pass")
	repo := &stubRepo{staff: []*models.StaffUser{staff}}
	svc := newTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginParams{
		Email:    "owner@clubwash.id",
		Password: "wrong",
	})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("failed login must not record last_login_at")
	}
}

func TestLoginDeactivatedAccountLooksLikeBadCredentials(t *testing.T) {
	staff := seededStaff(t, "s3cret-pass")
	staff.IsActive = false
	svc := newTestService(t, &stubRepo{staff: []*models.StaffUser{staff}})

	_, err := svc.Login(context.Background(), LoginParams{
		Email:    "owner@clubwash.id",
		Password: "s3cret-pass",
	})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.Login(context.Background(), LoginParams{
		Email:    "ghost@clubwash.id",
		Password: "whatever",
	})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateStaffGeneratesTempPassword(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	result, err := svc.CreateStaff(context.Background(), CreateStaffParams{
		Email: "Cashier@ClubWash.id",
		Name:  "Siti",
		Role:  enums.StaffRoleCashier,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TempPassword == "" {
		t.Fatal("expected generated temp password")
	}
	if result.Staff.Email != "cashier@clubwash.id" {
		t.Fatalf("email not lowercased: %s", result.Staff.Email)
	}
	if !result.Staff.IsActive {
		t.Fatal("new staff should start active")
	}

	ok, err := security.VerifyPassword(result.TempPassword, result.Staff.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temp password does not verify against stored hash: %v", err)
	}
}

func TestCreateStaffRejectsDuplicateEmail(t *testing.T) {
	staff := seededStaff(t, "s3cret-pass")
	repo := &stubRepo{staff: []*models.StaffUser{staff}}
	svc := newTestService(t, repo)

	_, err := svc.CreateStaff(context.Background(), CreateStaffParams{
		Email:    "owner@clubwash.id",
		Name:     "Second Owner",
		Password: "another-pass",
		Role:     enums.StaffRoleOwner,
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("duplicate email must not create a row")
	}
}

func TestCreateStaffValidatesInput(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	cases := []CreateStaffParams{
		{Name: "No Email", Role: enums.StaffRoleCashier},
		{Email: "not-an-email", Name: "Bad Email", Role: enums.StaffRoleCashier},
		{Email: "ok@clubwash.id", Role: enums.StaffRoleCashier},
		{Email: "ok@clubwash.id", Name: "Bad Role", Role: "janitor"},
	}
	for i, params := range cases {
		if _, err := svc.CreateStaff(context.Background(), params); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSetStaffActiveTogglesAccount(t *testing.T) {
	staff := seededStaff(t, "s3cret-pass")
	repo := &stubRepo{staff: []*models.StaffUser{staff}}
	svc := newTestService(t, repo)

	updated, err := svc.SetStaffActive(context.Background(), staff.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Fatal("account should be deactivated")
	}

	// Toggling to the current value is a no-op.
	repo.updated = nil
	if _, err := svc.SetStaffActive(context.Background(), staff.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("no-op toggle must not write")
	}
}
