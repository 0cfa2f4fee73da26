package members

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/normalize"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles member and vehicle persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMember(ctx context.Context, member *models.Member) error
	MaxCodeNumber(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	FindByCardUID(ctx context.Context, cardUID string) (*models.Member, error)
	FindByPhoneVariants(ctx context.Context, variants []string) (*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error
	DeleteMember(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchQuery) ([]models.Member, *pagination.Cursor, error)
	CreatePeriod(ctx context.Context, period *models.MembershipPeriod) error
	ListPeriodsByMember(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	ListVehiclesByMember(ctx context.Context, memberID uuid.UUID) ([]models.Vehicle, error)
	CountVehiclesByMember(ctx context.Context, memberID uuid.UUID) (int64, error)
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id uuid.UUID) error
	DeleteVehiclesByMember(ctx context.Context, memberID uuid.UUID) error
}

// SearchQuery configures member list queries.
type SearchQuery struct {
	Query  string
	Status *enums.MemberStatus
	Tier   *enums.PackageTier
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a member repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMember(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// MaxCodeNumber returns the numeric part of the highest member code ever
// allocated, 0 when no members exist. Codes are zero padded, so the lexical
// MAX is also the numeric max. Deletions leave gaps; codes are never reused.
func (r *repository) MaxCodeNumber(ctx context.Context) (int64, error) {
	var code sql.NullString
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("MAX(code)").
		Scan(&code).Error; err != nil {
		return 0, err
	}
	if !code.Valid || code.String == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(code.String, memberCodePrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse member code %q: %w", code.String, err)
	}
	return n, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindByCardUID(ctx context.Context, cardUID string) (*models.Member, error) {
	if cardUID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var member models.Member
	if err := r.db.WithContext(ctx).Where("card_uid = ?", cardUID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) FindByPhoneVariants(ctx context.Context, variants []string) (*models.Member, error) {
	if len(variants) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var member models.Member
	if err := r.db.WithContext(ctx).Where("phone IN ?", variants).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) UpdateMember(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Member{}).Error
}

func (r *repository) Search(ctx context.Context, params SearchQuery) ([]models.Member, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Member{})

	if text := strings.TrimSpace(params.Query); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		variants := normalize.PhoneVariants(normalize.Phone(text))
		uid := normalize.CardUID(text)
		if uid == "" {
			uid = text
		}
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(code) LIKE ? OR phone IN ? OR card_uid = ?",
			like, like, variants, uid,
		)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Tier != nil {
		query = query.Where("package_tier = ?", *params.Tier)
	}
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var found []models.Member
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&found).Error; err != nil {
		return nil, nil, err
	}

	if len(found) > limit {
		next := found[limit]
		found = found[:limit]
		return found, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return found, nil, nil
}

func (r *repository) CreatePeriod(ctx context.Context, period *models.MembershipPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) ListPeriodsByMember(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error) {
	var periods []models.MembershipPeriod
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("end_date DESC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) ListVehiclesByMember(ctx context.Context, memberID uuid.UUID) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repository) CountVehiclesByMember(ctx context.Context, memberID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("member_id = ?", memberID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vehicle{}).Error
}

func (r *repository) DeleteVehiclesByMember(ctx context.Context, memberID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("member_id = ?", memberID).Delete(&models.Vehicle{}).Error
}
