package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api"
	"github.com/kontorapp/kontor/internal/api/cron"
	v1 "github.com/kontorapp/kontor/internal/api/v1"
	"github.com/kontorapp/kontor/internal/cache"
	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/notification"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/repository"
	"github.com/kontorapp/kontor/internal/scheduler"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Clock
			provideClock,

			// Cache
			fx.Annotate(cache.NewInMemoryCache, fx.As(new(cache.Cache))),

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Notifications
			notification.NewSender,

			// Repositories
			repository.NewTenantRepository,
			repository.NewUserRepository,
			repository.NewRecurringTaskRepository,
			repository.NewTaskRepository,
			repository.NewTimeEntryRepository,
			repository.NewLicenseRepository,
			repository.NewInvoiceRepository,
			repository.NewInvoiceLineRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewLicenseService,
			provideSeatGuard,
			service.NewEmployeeService,
			service.NewTaskService,
			service.NewRecurringTaskService,
			service.NewNotificationService,

			scheduler.New,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			registerDBHooks,
			startAPIServer,
			startScheduler,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideClock() types.Clock {
	return types.RealClock{}
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideSeatGuard(ledger service.LicenseService) service.SeatGuard {
	return service.NewSeatGuard(ledger)
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	clock types.Clock,
	tenantRepo tenant.Repository,
	licenseService service.LicenseService,
	employeeService service.EmployeeService,
	taskService service.TaskService,
	recurringTaskService service.RecurringTaskService,
	sched *scheduler.Scheduler,
) api.Handlers {
	return api.Handlers{
		Health:        v1.NewHealthHandler(logger),
		Employee:      v1.NewEmployeeHandler(employeeService, logger),
		Subscription:  v1.NewSubscriptionHandler(licenseService, logger),
		Task:          v1.NewTaskHandler(taskService, logger),
		RecurringTask: v1.NewRecurringTaskHandler(recurringTaskService, logger),
		Scheduler:     v1.NewSchedulerHandler(cfg, sched, logger),
		CronLicensing: cron.NewLicensingHandler(licenseService, tenantRepo, clock, logger),
	}
}

func registerDBHooks(lc fx.Lifecycle, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Closing database connection...")
			return db.Close()
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

// startScheduler runs the recurring task scheduler in local and scheduler
// mode. In api mode it can still be started through the admin routes.
func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Scheduler.Enabled || cfg.Deployment.Mode == types.ModeAPI {
				log.Infow("recurring task scheduler not started", "mode", cfg.Deployment.Mode)
				return nil
			}
			return sched.Start()
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
}
