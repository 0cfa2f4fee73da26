package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/normalize"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	memberCodePrefix = "CW-"
	memberCodeFormat = memberCodePrefix + "%05d"
)

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SearchResult is one page of members plus the cursor for the next page.
type SearchResult struct {
	Members    []models.Member
	NextCursor string
}

// Service owns member onboarding, lookup, vehicles and deletion.
type Service interface {
	Create(ctx context.Context, params CreateMemberParams) (*MemberDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*MemberDetail, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateMemberParams) (*models.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	AddVehicle(ctx context.Context, memberID uuid.UUID, input VehicleInput) (*models.Vehicle, error)
	RemoveVehicle(ctx context.Context, memberID, vehicleID uuid.UUID) error
	StatusCheck(ctx context.Context, params StatusCheckParams) (*StatusSnapshot, error)
}

// ServiceParams groups dependencies for the members service.
type ServiceParams struct {
	Tx       TxRunner
	Repo     Repository
	Packages config.PackagesConfig
}

type service struct {
	tx       TxRunner
	repo     Repository
	packages config.PackagesConfig
}

// NewService builds a members service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	return &service{tx: params.Tx, repo: params.Repo, packages: params.Packages}, nil
}

// Create onboards a member: normalized phone and card UID, sequential code,
// initial membership period and the signup vehicles, all in one transaction.
func (s *service) Create(ctx context.Context, params CreateMemberParams) (*MemberDetail, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	phone := normalize.Phone(params.Phone)
	if phone == "0" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	cardUID := normalize.CardUID(params.CardUID)
	if cardUID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card uid is required")
	}
	if !params.PackageTier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid package tier")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := membership.DateOnly(now)
	endDate := membership.DateOnly(params.EndDate)
	if params.EndDate.IsZero() || !endDate.After(today) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after today")
	}

	quota := s.packages.VehicleQuota(params.PackageTier)
	if len(params.Vehicles) > quota {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle count exceeds package quota").
			WithDetails(map[string]any{"quota": quota, "vehicles": len(params.Vehicles)})
	}
	for _, v := range params.Vehicles {
		if strings.TrimSpace(v.Plate) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle plate is required")
		}
	}

	var detail MemberDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByPhoneVariants(ctx, normalize.PhoneVariants(phone)); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
		}
		if _, err := repo.FindByCardUID(ctx, cardUID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "card uid already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check card uid")
		}

		maxCode, err := repo.MaxCodeNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate member code")
		}

		member := &models.Member{
			ID:          uuid.New(),
			Code:        fmt.Sprintf(memberCodeFormat, maxCode+1),
			Name:        name,
			Phone:       phone,
			CardUID:     cardUID,
			PackageTier: params.PackageTier,
			Status:      enums.MemberStatusActive,
		}
		if err := repo.CreateMember(ctx, member); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "member already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create member")
		}

		period := &models.MembershipPeriod{
			ID:        uuid.New(),
			MemberID:  member.ID,
			StartDate: today,
			EndDate:   endDate,
			Status:    enums.PeriodStatusActive,
		}
		if err := repo.CreatePeriod(ctx, period); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership period")
		}

		vehicles := make([]models.Vehicle, 0, len(params.Vehicles))
		for _, input := range params.Vehicles {
			vehicle := &models.Vehicle{
				ID:       uuid.New(),
				MemberID: member.ID,
				Plate:    strings.TrimSpace(input.Plate),
				Color:    strings.TrimSpace(input.Color),
			}
			if err := repo.CreateVehicle(ctx, vehicle); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vehicle")
			}
			vehicles = append(vehicles, *vehicle)
		}

		detail = MemberDetail{
			Member:        *member,
			Vehicles:      vehicles,
			Periods:       []models.MembershipPeriod{*period},
			Valid:         true,
			DaysRemaining: membership.DaysRemaining([]models.MembershipPeriod{*period}, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Get returns the member with vehicles, period history and derived validity.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*MemberDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
	}

	vehicles, err := s.repo.ListVehiclesByMember(ctx, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vehicles")
	}
	periods, err := s.repo.ListPeriodsByMember(ctx, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list periods")
	}

	now := time.Now().UTC()
	return &MemberDetail{
		Member:        *member,
		Vehicles:      vehicles,
		Periods:       periods,
		Valid:         membership.IsCurrentlyValid(periods, now),
		DaysRemaining: membership.DaysRemaining(periods, now),
	}, nil
}

// Update applies a partial member update. A tier downgrade is rejected while
// the member still has more vehicles than the new quota allows.
func (s *service) Update(ctx context.Context, id uuid.UUID, params UpdateMemberParams) (*models.Member, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}

	var updated *models.Member
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}

		if params.Name != nil {
			name := strings.TrimSpace(*params.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			member.Name = name
		}
		if params.Phone != nil {
			phone := normalize.Phone(*params.Phone)
			if phone == "0" {
				return pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
			}
			if phone != member.Phone {
				if existing, err := repo.FindByPhoneVariants(ctx, normalize.PhoneVariants(phone)); err == nil && existing.ID != member.ID {
					return pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
				} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
				}
				member.Phone = phone
			}
		}
		if params.PackageTier != nil {
			if !params.PackageTier.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid package tier")
			}
			count, err := repo.CountVehiclesByMember(ctx, member.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count vehicles")
			}
			quota := s.packages.VehicleQuota(*params.PackageTier)
			if int(count) > quota {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "member has more vehicles than the new tier allows").
					WithDetails(map[string]any{"quota": quota, "vehicles": count})
			}
			member.PackageTier = *params.PackageTier
		}
		if params.Status != nil {
			if !params.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid member status")
			}
			member.Status = *params.Status
		}

		if err := repo.UpdateMember(ctx, member); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "member update conflicts")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update member")
		}
		updated = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the member and their vehicles. Visit history stays.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}
		if err := repo.DeleteVehiclesByMember(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vehicles")
		}
		if err := repo.DeleteMember(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete member")
		}
		return nil
	})
}

// Search lists members matching the filters with cursor pagination.
func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member status")
	}
	if params.Tier != nil && !params.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid package tier")
	}

	found, next, err := s.repo.Search(ctx, SearchQuery{
		Query:  params.Query,
		Status: params.Status,
		Tier:   params.Tier,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search members")
	}

	result := &SearchResult{Members: found}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// AddVehicle registers another vehicle, bounded by the tier quota.
func (s *service) AddVehicle(ctx context.Context, memberID uuid.UUID, input VehicleInput) (*models.Vehicle, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	plate := strings.TrimSpace(input.Plate)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle plate is required")
	}

	var vehicle *models.Vehicle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		member, err := repo.FindByID(ctx, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}

		count, err := repo.CountVehiclesByMember(ctx, member.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count vehicles")
		}
		quota := s.packages.VehicleQuota(member.PackageTier)
		if int(count) >= quota {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle quota reached for package tier").
				WithDetails(map[string]any{"quota": quota})
		}

		vehicle = &models.Vehicle{
			ID:       uuid.New(),
			MemberID: member.ID,
			Plate:    plate,
			Color:    strings.TrimSpace(input.Color),
		}
		if err := repo.CreateVehicle(ctx, vehicle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vehicle")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

// RemoveVehicle deletes one vehicle belonging to the member.
func (s *service) RemoveVehicle(ctx context.Context, memberID, vehicleID uuid.UUID) error {
	if memberID == uuid.Nil || vehicleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id and vehicle id are required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		vehicle, err := repo.FindVehicleByID(ctx, vehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find vehicle")
		}
		if vehicle.MemberID != memberID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		if err := repo.DeleteVehicle(ctx, vehicleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vehicle")
		}
		return nil
	})
}

// StatusCheck is the self-service lookup: card UID wins when both are given,
// phone matches any of its three accepted variants.
func (s *service) StatusCheck(ctx context.Context, params StatusCheckParams) (*StatusSnapshot, error) {
	cardUID := normalize.CardUID(params.CardUID)
	phone := normalize.Phone(params.Phone)
	if cardUID == "" && phone == "0" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone or card uid is required")
	}

	var member *models.Member
	var err error
	if cardUID != "" {
		member, err = s.repo.FindByCardUID(ctx, cardUID)
	} else {
		member, err = s.repo.FindByPhoneVariants(ctx, normalize.PhoneVariants(phone))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
	}

	periods, err := s.repo.ListPeriodsByMember(ctx, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list periods")
	}
	vehicles, err := s.repo.ListVehiclesByMember(ctx, member.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vehicles")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	snapshot := &StatusSnapshot{
		Code:          member.Code,
		Name:          member.Name,
		PackageTier:   member.PackageTier,
		Status:        member.Status,
		Valid:         membership.IsCurrentlyValid(periods, now),
		DaysRemaining: membership.DaysRemaining(periods, now),
		Vehicles:      vehicles,
	}
	if end, ok := membership.LatestActiveEnd(periods); ok {
		snapshot.EndDate = &end
	}
	return snapshot, nil
}
