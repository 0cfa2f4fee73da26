package membership

import (
	"context"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles membership period persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePeriod(ctx context.Context, period *models.MembershipPeriod) error
	ListPeriodsByMember(ctx context.Context, memberID uuid.UUID) ([]models.MembershipPeriod, error)
	FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	UpdateMemberStatus(ctx context.Context, id uuid.UUID, status enums.MemberStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a membership repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
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

func (r *repository) FindMemberByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) UpdateMemberStatus(ctx context.Context, id uuid.UUID, status enums.MemberStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("status", status).Error
}
