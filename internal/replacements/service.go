package replacements

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/pkg/db"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/normalize"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitParams carries a new replacement request.
type SubmitParams struct {
	MemberID uuid.UUID
	OldUID   string
	NewUID   string
	Reason   enums.ReplacementReason
	Note     *string
	ProofRef *string
	Now      time.Time
}

// ListParams filters and paginates the replacement list from the API side.
type ListParams struct {
	MemberID *uuid.UUID
	Status   *enums.ReplacementStatus
	Limit    int
	Cursor   string
}

// ListResult is one page of requests plus the cursor for the next page.
type ListResult struct {
	Requests   []models.CardReplacementRequest
	NextCursor string
}

// Service owns the card replacement workflow: submit, approve, reject.
type Service interface {
	Submit(ctx context.Context, params SubmitParams) (*models.CardReplacementRequest, error)
	Approve(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error)
	Reject(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CardReplacementRequest, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ServiceParams groups dependencies for the replacements service.
type ServiceParams struct {
	Tx      TxRunner
	Repo    Repository
	Members members.Repository
	Now     func() time.Time
}

type service struct {
	tx      TxRunner
	repo    Repository
	members members.Repository
	now     func() time.Time
}

// NewService builds a replacements service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "members repository required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{tx: params.Tx, repo: params.Repo, members: params.Members, now: now}, nil
}

// Submit files a pending replacement. The new UID must be free among current
// member cards and among every other request's new_uid regardless of status;
// the DB unique index settles concurrent submissions the pre-check misses.
func (s *service) Submit(ctx context.Context, params SubmitParams) (*models.CardReplacementRequest, error) {
	if params.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id is required")
	}
	oldUID := normalize.CardUID(params.OldUID)
	newUID := normalize.CardUID(params.NewUID)
	if oldUID == "" || newUID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "old and new card uids are required")
	}
	if oldUID == newUID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new card uid must differ from the current one")
	}
	if !params.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid replacement reason")
	}

	now := params.Now
	if now.IsZero() {
		now = s.now()
	}

	var request *models.CardReplacementRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.members.WithTx(tx)

		member, err := memberRepo.FindByID(ctx, params.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}
		if member.Status != enums.MemberStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "member is not active")
		}
		if member.CardUID != oldUID {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "old uid does not match the member's current card")
		}

		if other, err := memberRepo.FindByCardUID(ctx, newUID); err == nil && other.ID != member.ID {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "new uid is already assigned to another member")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check member card uids")
		}

		if _, err := repo.FindByNewUID(ctx, newUID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "new uid is already claimed by another replacement request")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check replacement requests")
		}

		request = &models.CardReplacementRequest{
			ID:          uuid.New(),
			MemberID:    member.ID,
			OldUID:      oldUID,
			NewUID:      newUID,
			Reason:      params.Reason,
			Note:        trimmedOrNil(params.Note),
			ProofRef:    trimmedOrNil(params.ProofRef),
			Status:      enums.ReplacementStatusPending,
			RequestedAt: now,
		}
		if err := repo.Create(ctx, request); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "new uid is already claimed by another replacement request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create replacement request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Approve decides a pending request: re-checks the new UID against current
// member cards, then mutates the member's card UID and the request row in the
// same transaction.
func (s *service) Approve(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error) {
	if requestID == uuid.Nil || actingStaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id and acting staff id are required")
	}

	var request *models.CardReplacementRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		memberRepo := s.members.WithTx(tx)

		found, err := repo.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "replacement request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find replacement request")
		}
		if found.Status != enums.ReplacementStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "replacement request already decided")
		}

		member, err := memberRepo.FindByID(ctx, found.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "member no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find member")
		}

		// Close the race between submission and decision.
		if other, err := memberRepo.FindByCardUID(ctx, found.NewUID); err == nil && other.ID != member.ID {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "new uid was assigned to another member after submission")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check member card uids")
		}

		member.CardUID = found.NewUID
		if err := memberRepo.UpdateMember(ctx, member); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "card uid conflict")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update member card uid")
		}

		decidedAt := s.now()
		found.Status = enums.ReplacementStatusApproved
		found.DecidedAt = &decidedAt
		found.DecidedBy = &actingStaffID
		if err := repo.Update(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update replacement request")
		}

		request = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Reject marks a pending request rejected. The member's card is untouched.
func (s *service) Reject(ctx context.Context, requestID, actingStaffID uuid.UUID) (*models.CardReplacementRequest, error) {
	if requestID == uuid.Nil || actingStaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id and acting staff id are required")
	}

	var request *models.CardReplacementRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "replacement request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find replacement request")
		}
		if found.Status != enums.ReplacementStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "replacement request already decided")
		}

		decidedAt := s.now()
		found.Status = enums.ReplacementStatusRejected
		found.DecidedAt = &decidedAt
		found.DecidedBy = &actingStaffID
		if err := repo.Update(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update replacement request")
		}

		request = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Get returns one request by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CardReplacementRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "replacement request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find replacement request")
	}
	return request, nil
}

// List returns requests matching the filters with cursor pagination.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid replacement status")
	}

	found, next, err := s.repo.List(ctx, ListQuery{
		MemberID: params.MemberID,
		Status:   params.Status,
		Limit:    params.Limit,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list replacement requests")
	}

	result := &ListResult{Requests: found}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
