package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/internal/admission"
	authsvc "github.com/clubwash/clubwash-backend/internal/auth"
	"github.com/clubwash/clubwash-backend/internal/dashboard"
	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/internal/rbac"
	"github.com/clubwash/clubwash-backend/internal/replacements"
	"github.com/clubwash/clubwash-backend/internal/visits"
	pkgauth "github.com/clubwash/clubwash-backend/pkg/auth"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, params authsvc.LoginParams) (*authsvc.LoginResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) CreateStaff(ctx context.Context, params authsvc.CreateStaffParams) (*authsvc.CreateStaffResult, error) {
	return &authsvc.CreateStaffResult{Staff: &models.StaffUser{ID: uuid.New()}}, nil
}

func (stubAuthService) ListStaff(ctx context.Context, params authsvc.ListStaffParams) (*authsvc.ListStaffResult, error) {
	return &authsvc.ListStaffResult{}, nil
}

func (stubAuthService) SetStaffActive(ctx context.Context, id uuid.UUID, active bool) (*models.StaffUser, error) {
	return &models.StaffUser{ID: id, IsActive: active}, nil
}

type stubRBACService struct {
	sets map[enums.StaffRole]rbac.CapabilitySet
}

func (s stubRBACService) Resolve(ctx context.Context, role enums.StaffRole) (rbac.CapabilitySet, error) {
	return s.sets[role], nil
}

func (s stubRBACService) Matrix(ctx context.Context) (rbac.RoleMatrix, error) {
	return rbac.RoleMatrix(s.sets), nil
}

func (s stubRBACService) UpdateRole(ctx context.Context, params rbac.UpdateRoleParams) (rbac.CapabilitySet, error) {
	return s.sets[params.Role], nil
}

type stubMemberService struct{}

func (stubMemberService) Create(ctx context.Context, params members.CreateMemberParams) (*members.MemberDetail, error) {
	return &members.MemberDetail{}, nil
}

func (stubMemberService) Get(ctx context.Context, id uuid.UUID) (*members.MemberDetail, error) {
	return &members.MemberDetail{}, nil
}

func (stubMemberService) Update(ctx context.Context, id uuid.UUID, params members.UpdateMemberParams) (*models.Member, error) {
	return &models.Member{ID: id}, nil
}

func (stubMemberService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (stubMemberService) Search(ctx context.Context, params members.SearchParams) (*members.SearchResult, error) {
	return &members.SearchResult{}, nil
}

func (stubMemberService) AddVehicle(ctx context.Context, memberID uuid.UUID, input members.VehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubMemberService) RemoveVehicle(ctx context.Context, memberID, vehicleID uuid.UUID) error {
	return nil
}

func (stubMemberService) StatusCheck(ctx context.Context, params members.StatusCheckParams) (*members.StatusSnapshot, error) {
	return &members.StatusSnapshot{Code: "CW-00001"}, nil
}

type stubMembershipService struct{}

func (stubMembershipService) Extend(ctx context.Context, params membership.ExtendParams) (*membership.ExtendResult, error) {
	return &membership.ExtendResult{}, nil
}

func (stubMembershipService) PeriodsFor(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error) {
	return nil, nil
}

type stubAdmissionService struct{}

func (stubAdmissionService) Scan(ctx context.Context, cardUID string) (*admission.Result, error) {
	return &admission.Result{Outcome: enums.AdmissionOutcomeAllowed}, nil
}

type stubVisitService struct{}

func (stubVisitService) List(ctx context.Context, params visits.ListParams) (*visits.ListResult, error) {
	return &visits.ListResult{}, nil
}

type stubReplacementService struct{}

func (stubReplacementService) Submit(ctx context.Context, params replacements.SubmitParams) (*models.CardReplacementRequest, error) {
	return &models.CardReplacementRequest{}, nil
}

func (stubReplacementService) Approve(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error) {
	return &models.CardReplacementRequest{}, nil
}

func (stubReplacementService) Reject(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error) {
	return &models.CardReplacementRequest{}, nil
}

func (stubReplacementService) Get(ctx context.Context, id uuid.UUID) (*models.CardReplacementRequest, error) {
	return &models.CardReplacementRequest{}, nil
}

func (stubReplacementService) List(ctx context.Context, params replacements.ListParams) (*replacements.ListResult, error) {
	return &replacements.ListResult{}, nil
}

type stubDashboardService struct{}

func (stubDashboardService) Snapshot(ctx context.Context) (*dashboard.Snapshot, error) {
	return &dashboard.Snapshot{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "clubwash",
			ExpirationMinutes: 60,
		},
	}
}

func testRouter(t *testing.T, sets map[enums.StaffRole]rbac.CapabilitySet) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	return NewRouter(testConfig(), logg, stubPinger{}, nil, nil, Services{
		Auth:         stubAuthService{},
		RBAC:         stubRBACService{sets: sets},
		Members:      stubMemberService{},
		Membership:   stubMembershipService{},
		Admission:    stubAdmissionService{},
		Visits:       stubVisitService{},
		Replacements: stubReplacementService{},
		Dashboard:    stubDashboardService{},
	})
}

func mintToken(t *testing.T, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		StaffID: uuid.New(),
		Email:   "staff@clubwash.id",
		Role:    role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestScanRequiresAuth(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"card_uid":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestScanDeniedWithoutCapability(t *testing.T) {
	router := testRouter(t, map[enums.StaffRole]rbac.CapabilitySet{
		enums.StaffRoleCashier: {},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"card_uid":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleCashier))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestScanAllowedWithCapability(t *testing.T) {
	router := testRouter(t, map[enums.StaffRole]rbac.CapabilitySet{
		enums.StaffRoleCashier: {enums.CapScanPerform: true},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(`{"card_uid":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleCashier))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestStatusCheckIsPublic(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/status-check", strings.NewReader(`{"phone":"0812345678"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"x@y.id","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRolesGateRequiresManageCapability(t *testing.T) {
	router := testRouter(t, map[enums.StaffRole]rbac.CapabilitySet{
		enums.StaffRoleManager: {enums.CapReportsView: true},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleManager))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
