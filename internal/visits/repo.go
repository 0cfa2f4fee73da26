package visits

import (
	"context"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles the append-only visit log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, visit *models.Visit) error
	List(ctx context.Context, params ListQuery) ([]models.Visit, *pagination.Cursor, error)
	CountByOutcomeOn(ctx context.Context, date time.Time) (map[enums.AdmissionOutcome]int64, error)
}

// ListQuery configures visit list queries.
type ListQuery struct {
	MemberID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Outcome  *enums.AdmissionOutcome
	Limit    int
	Cursor   *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a visit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Visit, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Visit{})

	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.From != nil {
		query = query.Where("visit_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("visit_date <= ?", *params.To)
	}
	if params.Outcome != nil {
		query = query.Where("outcome = ?", *params.Outcome)
	}
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var found []models.Visit
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

func (r *repository) CountByOutcomeOn(ctx context.Context, date time.Time) (map[enums.AdmissionOutcome]int64, error) {
	type row struct {
		Outcome enums.AdmissionOutcome
		Total   int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Select("outcome, COUNT(*) AS total").
		Where("visit_date = ?", date).
		Group("outcome").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.AdmissionOutcome]int64, len(rows))
	for _, r := range rows {
		counts[r.Outcome] = r.Total
	}
	return counts, nil
}
