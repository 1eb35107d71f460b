package repository

import (
	"github.com/kontorapp/kontor/internal/domain/invoice"
	"github.com/kontorapp/kontor/internal/domain/license"
	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/domain/timeentry"
	"github.com/kontorapp/kontor/internal/domain/user"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	postgresRepo "github.com/kontorapp/kontor/internal/repository/postgres"
)

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(db, logger)
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}

func NewRecurringTaskRepository(db *postgres.DB, logger *logger.Logger) recurringtask.Repository {
	return postgresRepo.NewRecurringTaskRepository(db, logger)
}

func NewTaskRepository(db *postgres.DB, logger *logger.Logger) task.Repository {
	return postgresRepo.NewTaskRepository(db, logger)
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return postgresRepo.NewTimeEntryRepository(db, logger)
}

func NewLicenseRepository(db *postgres.DB, logger *logger.Logger) license.Repository {
	return postgresRepo.NewLicenseRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewInvoiceLineRepository(db *postgres.DB, logger *logger.Logger) invoice.LineRepository {
	return postgresRepo.NewInvoiceLineRepository(db, logger)
}
