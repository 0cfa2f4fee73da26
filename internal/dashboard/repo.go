package dashboard

import (
	"context"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository runs the member-side aggregate queries behind the dashboard.
type Repository interface {
	CountMembersByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error)
	CountActiveMembersByTier(ctx context.Context) (map[enums.PackageTier]int64, error)
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a dashboard repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type statusCount struct {
	Status enums.MemberStatus
	Count  int64
}

func (r *repository) CountMembersByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.MemberStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

type tierCount struct {
	PackageTier enums.PackageTier
	Count       int64
}

func (r *repository) CountActiveMembersByTier(ctx context.Context) (map[enums.PackageTier]int64, error) {
	var rows []tierCount
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("package_tier, COUNT(*) AS count").
		Where("status = ?", enums.MemberStatusActive).
		Group("package_tier").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[enums.PackageTier]int64, len(rows))
	for _, row := range rows {
		out[row.PackageTier] = row.Count
	}
	return out, nil
}

// CountExpiringBetween counts active members whose latest active period ends
// inside [from, to].
func (r *repository) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	expiring := r.db.
		Model(&models.MembershipPeriod{}).
		Select("member_id").
		Where("status = ?", enums.PeriodStatusActive).
		Group("member_id").
		Having("MAX(end_date) BETWEEN ? AND ?", from, to)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("status = ?", enums.MemberStatusActive).
		Where("id IN (?)", expiring).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
