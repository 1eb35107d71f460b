package service

import (
	"time"

	"github.com/kontorapp/kontor/internal/cache"
	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/domain/invoice"
	"github.com/kontorapp/kontor/internal/domain/license"
	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/domain/timeentry"
	"github.com/kontorapp/kontor/internal/domain/user"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/notification"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Clock   types.Clock
	Cache   cache.Cache
	Pricing config.Pricing

	// Repositories
	TenantRepo        tenant.Repository
	UserRepo          user.Repository
	RecurringTaskRepo recurringtask.Repository
	TaskRepo          task.Repository
	TimeEntryRepo     timeentry.Repository
	LicenseRepo       license.Repository
	InvoiceRepo       invoice.Repository
	InvoiceLineRepo   invoice.LineRepository

	// Notifications
	Sender notification.Sender
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	clock types.Clock,
	cache cache.Cache,
	tenantRepo tenant.Repository,
	userRepo user.Repository,
	recurringTaskRepo recurringtask.Repository,
	taskRepo task.Repository,
	timeEntryRepo timeentry.Repository,
	licenseRepo license.Repository,
	invoiceRepo invoice.Repository,
	invoiceLineRepo invoice.LineRepository,
	sender notification.Sender,
) (ServiceParams, error) {
	pricing, err := config.Licensing.Pricing()
	if err != nil {
		return ServiceParams{}, err
	}

	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		Clock:             clock,
		Cache:             cache,
		Pricing:           pricing,
		TenantRepo:        tenantRepo,
		UserRepo:          userRepo,
		RecurringTaskRepo: recurringTaskRepo,
		TaskRepo:          taskRepo,
		TimeEntryRepo:     timeEntryRepo,
		LicenseRepo:       licenseRepo,
		InvoiceRepo:       invoiceRepo,
		InvoiceLineRepo:   invoiceLineRepo,
		Sender:            sender,
	}, nil
}

func (p ServiceParams) now() time.Time {
	if p.Clock == nil {
		return time.Now().UTC()
	}
	return p.Clock.Now()
}
