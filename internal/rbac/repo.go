package rbac

import (
	"context"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles the role/capability policy matrix.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByRole(ctx context.Context, role enums.StaffRole) ([]models.RolePermission, error)
	ListAll(ctx context.Context) ([]models.RolePermission, error)
	Upsert(ctx context.Context, permission *models.RolePermission) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a role permission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByRole(ctx context.Context, role enums.StaffRole) ([]models.RolePermission, error) {
	var found []models.RolePermission
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("capability ASC").
		Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.RolePermission, error) {
	var found []models.RolePermission
	if err := r.db.WithContext(ctx).
		Order("role ASC, capability ASC").
		Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repository) Upsert(ctx context.Context, permission *models.RolePermission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "capability"}},
			DoUpdates: clause.AssignmentColumns([]string{"allowed", "updated_at"}),
		}).
		Create(permission).Error
}
