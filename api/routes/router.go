package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubwash/clubwash-backend/api/controllers"
	"github.com/clubwash/clubwash-backend/api/middleware"
	"github.com/clubwash/clubwash-backend/internal/admission"
	authsvc "github.com/clubwash/clubwash-backend/internal/auth"
	"github.com/clubwash/clubwash-backend/internal/dashboard"
	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/internal/rbac"
	"github.com/clubwash/clubwash-backend/internal/replacements"
	"github.com/clubwash/clubwash-backend/internal/visits"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth         authsvc.Service
	RBAC         rbac.Service
	Members      members.Service
	Membership   membership.Service
	Admission    admission.Service
	Visits       visits.Service
	Replacements replacements.Service
	Dashboard    dashboard.Service
}

// NewRouter wires every endpoint, middleware chain and gate.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsReg *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var limiterStore middleware.RateLimiterStore
	if redisClient != nil {
		limiterStore = redisClient
	}
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		if redisClient != nil {
			r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
		} else {
			r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, nil))
		}
	})

	if metricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
			Post("/auth/login", controllers.AuthLogin(svcs.Auth, logg))

		r.Post("/status-check", controllers.StatusCheck(svcs.Members, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			gate := func(capability enums.Capability) func(http.Handler) http.Handler {
				return middleware.RequireCapability(svcs.RBAC, capability, logg)
			}

			r.With(gate(enums.CapScanPerform)).Post("/scan", controllers.Scan(svcs.Admission, logg))

			r.Route("/members", func(r chi.Router) {
				r.With(gate(enums.CapMembersManage)).Post("/", controllers.CreateMember(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Get("/", controllers.SearchMembers(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Get("/{id}", controllers.GetMember(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Patch("/{id}", controllers.UpdateMember(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Delete("/{id}", controllers.DeleteMember(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Post("/{id}/vehicles", controllers.AddVehicle(svcs.Members, logg))
				r.With(gate(enums.CapMembersManage)).Delete("/{id}/vehicles/{vehicleID}", controllers.RemoveVehicle(svcs.Members, logg))
				r.With(gate(enums.CapPeriodsExtend)).Post("/{id}/extend", controllers.ExtendMembership(svcs.Membership, logg))
			})

			r.With(gate(enums.CapReportsView)).Get("/visits", controllers.ListVisits(svcs.Visits, logg))

			r.Route("/replacements", func(r chi.Router) {
				r.With(gate(enums.CapReplacementsRequest)).Post("/", controllers.SubmitReplacement(svcs.Replacements, logg))
				r.With(gate(enums.CapReplacementsRequest)).Get("/", controllers.ListReplacements(svcs.Replacements, logg))
				r.With(gate(enums.CapReplacementsRequest)).Get("/{id}", controllers.GetReplacement(svcs.Replacements, logg))
				r.With(gate(enums.CapReplacementsDecide)).Post("/{id}/approve", controllers.ApproveReplacement(svcs.Replacements, logg))
				r.With(gate(enums.CapReplacementsDecide)).Post("/{id}/reject", controllers.RejectReplacement(svcs.Replacements, logg))
			})

			r.With(gate(enums.CapReportsView)).Get("/dashboard", controllers.Dashboard(svcs.Dashboard, logg))

			r.Route("/roles", func(r chi.Router) {
				r.With(gate(enums.CapRolesManage)).Get("/", controllers.GetRoleMatrix(svcs.RBAC, logg))
				r.With(gate(enums.CapRolesManage)).Put("/{role}", controllers.UpdateRole(svcs.RBAC, logg))
			})

			r.Route("/staff", func(r chi.Router) {
				r.With(gate(enums.CapRolesManage)).Post("/", controllers.CreateStaff(svcs.Auth, logg))
				r.With(gate(enums.CapRolesManage)).Get("/", controllers.ListStaff(svcs.Auth, logg))
				r.With(gate(enums.CapRolesManage)).Patch("/{id}/active", controllers.SetStaffActive(svcs.Auth, logg))
			})
		})
	})

	return r
}
