package visits

import (
	"context"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
)

// ListParams filters and paginates the visit log from the API side.
type ListParams struct {
	MemberID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Outcome  *enums.AdmissionOutcome
	Limit    int
	Cursor   string
}

// ListResult is one page of visits plus the cursor for the next page.
type ListResult struct {
	Visits     []models.Visit
	NextCursor string
}

// Service reads the visit log.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ServiceParams groups dependencies for the visits service.
type ServiceParams struct {
	Repo Repository
}

type service struct {
	repo Repository
}

// NewService builds a visits service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if params.Outcome != nil && !params.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid outcome")
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}

	found, next, err := s.repo.List(ctx, ListQuery{
		MemberID: params.MemberID,
		From:     params.From,
		To:       params.To,
		Outcome:  params.Outcome,
		Limit:    params.Limit,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list visits")
	}

	result := &ListResult{Visits: found}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
