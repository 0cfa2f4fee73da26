package auth

import (
	"context"
	"strings"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles staff account persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, staff *models.StaffUser) error
	FindByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	Update(ctx context.Context, staff *models.StaffUser) error
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.StaffUser, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a staff repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, staff *models.StaffUser) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	var staff models.StaffUser
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	var staff models.StaffUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) Update(ctx context.Context, staff *models.StaffUser) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

func (r *repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.StaffUser, *pagination.Cursor, error) {
	limit = pagination.NormalizeLimit(limit)
	query := r.db.WithContext(ctx).Model(&models.StaffUser{})

	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var found []models.StaffUser
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&found).Error; err != nil {
		return nil, nil, err
	}

	if len(found) > limit {
		next := found[limit]
		found = found[:limit]
		return found, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}

	return found, nil, nil
}
