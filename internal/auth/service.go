package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgauth "github.com/clubwash/clubwash-backend/pkg/auth"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/clubwash/clubwash-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 12

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LoginParams carries staff credentials.
type LoginParams struct {
	Email    string
	Password string
}

// LoginResult is a minted access token plus the authenticated account.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *models.StaffUser
}

// CreateStaffParams registers a new operator account. When Password is empty
// a temporary one is generated and returned alongside the account.
type CreateStaffParams struct {
	Email    string
	Name     string
	Password string
	Role     enums.StaffRole
}

// CreateStaffResult is the created account plus the generated password, if any.
type CreateStaffResult struct {
	Staff        *models.StaffUser
	TempPassword string
}

// ListStaffParams paginates the staff list.
type ListStaffParams struct {
	Limit  int
	Cursor string
}

// ListStaffResult is one page of staff accounts.
type ListStaffResult struct {
	Staff      []models.StaffUser
	NextCursor string
}

// Service authenticates staff and manages operator accounts.
type Service interface {
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	CreateStaff(ctx context.Context, params CreateStaffParams) (*CreateStaffResult, error)
	ListStaff(ctx context.Context, params ListStaffParams) (*ListStaffResult, error)
	SetStaffActive(ctx context.Context, id uuid.UUID, active bool) (*models.StaffUser, error)
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Tx       TxRunner
	Repo     Repository
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Now      func() time.Time
}

type service struct {
	tx       TxRunner
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jwt secret required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:       params.Tx,
		repo:     params.Repo,
		jwt:      params.JWT,
		password: params.Password,
		now:      now,
	}, nil
}

// Login verifies credentials and mints an access token. Unknown email, wrong
// password, and deactivated account all return the same unauthorized error so
// the response does not reveal which part failed.
func (s *service) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || params.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	staff, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find staff by email")
	}

	ok, err := security.VerifyPassword(params.Password, staff.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok || !staff.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		StaffID: staff.ID,
		Email:   staff.Email,
		Role:    staff.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	staff.LastLoginAt = &now
	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record last login")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		Staff:     staff,
	}, nil
}

// CreateStaff registers an operator account.
func (s *service) CreateStaff(ctx context.Context, params CreateStaffParams) (*CreateStaffResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	name := strings.TrimSpace(params.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}

	password := params.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		tempPassword = generated
	}

	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	staff := &models.StaffUser{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         params.Role,
		IsActive:     true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check staff email")
		}
		if err := repo.Create(ctx, staff); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create staff user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateStaffResult{Staff: staff, TempPassword: tempPassword}, nil
}

// ListStaff returns one page of operator accounts.
func (s *service) ListStaff(ctx context.Context, params ListStaffParams) (*ListStaffResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	found, next, err := s.repo.List(ctx, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list staff users")
	}

	result := &ListStaffResult{Staff: found}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// SetStaffActive enables or disables an operator account.
func (s *service) SetStaffActive(ctx context.Context, id uuid.UUID, active bool) (*models.StaffUser, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id is required")
	}

	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find staff user")
	}

	if staff.IsActive == active {
		return staff, nil
	}
	staff.IsActive = active
	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update staff user")
	}
	return staff, nil
}
