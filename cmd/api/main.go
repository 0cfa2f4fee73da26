package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/clubwash/clubwash-backend/api/routes"
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
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/metrics"
	"github.com/clubwash/clubwash-backend/pkg/migrate"
	"github.com/clubwash/clubwash-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dbClient *db.Client
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var dialErr error
		dbClient, dialErr = db.New(ctx, cfg.DB, logg)
		if dialErr != nil {
			logg.Warn(ctx, "database not reachable yet, retrying")
			return retry.RetryableError(dialErr)
		}
		return nil
	})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured, login rate limiting disabled")
	}

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	scanMetrics := metrics.NewScanMetrics(metricsReg)

	svcs, err := buildServices(cfg, dbClient, scanMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serveCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(serveCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, metricsReg, svcs),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(serveCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serveCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if closeErr != nil {
			logg.Error(serveCtx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(serveCtx, "shutdown complete")
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, scanMetrics *metrics.ScanMetrics) (routes.Services, error) {
	gdb := dbClient.DB()

	memberRepo := members.NewRepository(gdb)
	membershipRepo := membership.NewRepository(gdb)
	visitRepo := visits.NewRepository(gdb)
	replacementRepo := replacements.NewRepository(gdb)
	rbacRepo := rbac.NewRepository(gdb)
	staffRepo := authsvc.NewRepository(gdb)
	dashboardRepo := dashboard.NewRepository(gdb)

	memberService, err := members.NewService(members.ServiceParams{
		Tx:       dbClient,
		Repo:     memberRepo,
		Packages: cfg.Packages,
	})
	if err != nil {
		return routes.Services{}, err
	}

	membershipService, err := membership.NewService(membership.ServiceParams{
		Tx:   dbClient,
		Repo: membershipRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	admissionService, err := admission.NewService(admission.ServiceParams{
		Tx:      dbClient,
		Members: memberRepo,
		Visits:  visitRepo,
		Metrics: scanMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	visitService, err := visits.NewService(visits.ServiceParams{Repo: visitRepo})
	if err != nil {
		return routes.Services{}, err
	}

	replacementService, err := replacements.NewService(replacements.ServiceParams{
		Tx:      dbClient,
		Repo:    replacementRepo,
		Members: memberRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	rbacService, err := rbac.NewService(rbac.ServiceParams{
		Tx:   dbClient,
		Repo: rbacRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Tx:       dbClient,
		Repo:     staffRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:         dashboardRepo,
		Visits:       visitRepo,
		Replacements: replacementRepo,
		Packages:     cfg.Packages,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:         authService,
		RBAC:         rbacService,
		Members:      memberService,
		Membership:   membershipService,
		Admission:    admissionService,
		Visits:       visitService,
		Replacements: replacementService,
		Dashboard:    dashboardService,
	}, nil
}
