package replacements

import (
	"context"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles card replacement request persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.CardReplacementRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CardReplacementRequest, error)
	FindByNewUID(ctx context.Context, newUID string) (*models.CardReplacementRequest, error)
	Update(ctx context.Context, request *models.CardReplacementRequest) error
	List(ctx context.Context, params ListQuery) ([]models.CardReplacementRequest, *pagination.Cursor, error)
	CountByStatus(ctx context.Context, status enums.ReplacementStatus) (int64, error)
}

// ListQuery configures replacement list queries.
type ListQuery struct {
	MemberID *uuid.UUID
	Status   *enums.ReplacementStatus
	Limit    int
	Cursor   *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a replacement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.CardReplacementRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CardReplacementRequest, error) {
	var request models.CardReplacementRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindByNewUID(ctx context.Context, newUID string) (*models.CardReplacementRequest, error) {
	if newUID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var request models.CardReplacementRequest
	if err := r.db.WithContext(ctx).Where("new_uid = ?", newUID).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Update(ctx context.Context, request *models.CardReplacementRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.CardReplacementRequest, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.CardReplacementRequest{})

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var found []models.CardReplacementRequest
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

func (r *repository) CountByStatus(ctx context.Context, status enums.ReplacementStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CardReplacementRequest{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
