package rbac

import (
	"context"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner abstracts the transactional boundary provided by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CapabilitySet is the resolved permission set for one role.
type CapabilitySet map[enums.Capability]bool

// Allows reports whether the set grants the capability. Capabilities absent
// from the policy table are denied.
func (c CapabilitySet) Allows(capability enums.Capability) bool {
	return c[capability]
}

// RoleMatrix is the full policy table grouped by role.
type RoleMatrix map[enums.StaffRole]CapabilitySet

// UpdateRoleParams toggles capabilities for one role. Capabilities not listed
// keep their current value.
type UpdateRoleParams struct {
	Role    enums.StaffRole
	Changes map[enums.Capability]bool
}

// Service resolves and administers the role/capability policy.
type Service interface {
	Resolve(ctx context.Context, role enums.StaffRole) (CapabilitySet, error)
	Matrix(ctx context.Context) (RoleMatrix, error)
	UpdateRole(ctx context.Context, params UpdateRoleParams) (CapabilitySet, error)
}

// ServiceParams groups dependencies for the rbac service.
type ServiceParams struct {
	Tx   TxRunner
	Repo Repository
}

type service struct {
	tx   TxRunner
	repo Repository
}

// NewService builds an rbac service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "repository required")
	}
	return &service{tx: params.Tx, repo: params.Repo}, nil
}

// Resolve returns the capability set for a role. Missing rows deny.
func (s *service) Resolve(ctx context.Context, role enums.StaffRole) (CapabilitySet, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	rows, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list role permissions")
	}
	set := make(CapabilitySet, len(rows))
	for _, row := range rows {
		set[row.Capability] = row.Allowed
	}
	return set, nil
}

// Matrix returns the full policy table.
func (s *service) Matrix(ctx context.Context) (RoleMatrix, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list role permissions")
	}
	matrix := make(RoleMatrix, len(enums.StaffRoles()))
	for _, role := range enums.StaffRoles() {
		matrix[role] = make(CapabilitySet)
	}
	for _, row := range rows {
		if matrix[row.Role] == nil {
			matrix[row.Role] = make(CapabilitySet)
		}
		matrix[row.Role][row.Capability] = row.Allowed
	}
	return matrix, nil
}

// UpdateRole applies capability toggles for one role and returns the updated
// set. Revoking roles.manage from the owner role is refused so the policy
// table always has at least one role able to edit it.
func (s *service) UpdateRole(ctx context.Context, params UpdateRoleParams) (CapabilitySet, error) {
	if !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if len(params.Changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no capability changes provided")
	}
	for capability := range params.Changes {
		if !capability.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid capability").WithDetails(map[string]any{
				"capability": capability.String(),
			})
		}
	}
	if params.Role == enums.StaffRoleOwner {
		if allowed, present := params.Changes[enums.CapRolesManage]; present && !allowed {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "owner role must keep roles.manage")
		}
	}

	var set CapabilitySet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for capability, allowed := range params.Changes {
			row := &models.RolePermission{
				ID:         uuid.New(),
				Role:       params.Role,
				Capability: capability,
				Allowed:    allowed,
			}
			if err := repo.Upsert(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert role permission")
			}
		}
		rows, err := repo.ListByRole(ctx, params.Role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list role permissions")
		}
		set = make(CapabilitySet, len(rows))
		for _, row := range rows {
			set[row.Capability] = row.Allowed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
