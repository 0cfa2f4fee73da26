package middleware

import (
	"context"
	"net/http"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/internal/rbac"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/logger"
)

// CapabilityResolver maps a role to its allowed capability set.
type CapabilityResolver interface {
	Resolve(ctx context.Context, role enums.StaffRole) (rbac.CapabilitySet, error)
}

// RequireCapability gates a route on the policy table. The request must have
// passed Auth first so the role is present in the context.
func RequireCapability(resolver CapabilityResolver, capability enums.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role := enums.StaffRole(RoleFromContext(ctx))
			if !role.IsValid() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			set, err := resolver.Resolve(ctx, role)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve capabilities"))
				return
			}
			if !set.Allows(capability) {
				if logg != nil {
					denied := logg.WithFields(ctx, map[string]any{
						"capability": capability.String(),
						"role":       role.String(),
					})
					logg.Warn(denied, "capability.denied")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "capability not granted"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
