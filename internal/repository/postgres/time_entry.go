package postgres

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/timeentry"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

const timeEntryColumns = `id, tenant_id, task_id, client_id, user_id, work_date, minutes, description, status, created_at, updated_at, created_by, updated_by`

type timeEntryRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return &timeEntryRepository{db: db, logger: logger}
}

func (r *timeEntryRepository) Create(ctx context.Context, e *timeentry.TimeEntry) error {
	query := `
	INSERT INTO time_entries (` + timeEntryColumns + `)
	VALUES (:id, :tenant_id, :task_id, :client_id, :user_id, :work_date, :minutes, :description, :status, :created_at, :updated_at, :created_by, :updated_by)
	`

	_, err := r.db.NamedExecContext(ctx, query, e)
	return postgres.WrapError(err, "time entry")
}

func (r *timeEntryRepository) ListByTask(ctx context.Context, taskID string) ([]*timeentry.TimeEntry, error) {
	query := `
	SELECT ` + timeEntryColumns + ` FROM time_entries
	WHERE tenant_id = $1 AND task_id = $2 AND status = 'published'
	ORDER BY work_date, id
	`

	var entries []*timeentry.TimeEntry
	if err := r.db.SelectContext(ctx, &entries, query, types.GetTenantID(ctx), taskID); err != nil {
		return nil, postgres.WrapError(err, "time entry")
	}
	return entries, nil
}
