package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

const templateColumns = `id, tenant_id, client_id, name, description, frequency, next_due_at, anchor_day, assignee_id, status, created_at, updated_at, created_by, updated_by`

type recurringTaskRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRecurringTaskRepository(db *postgres.DB, logger *logger.Logger) recurringtask.Repository {
	return &recurringTaskRepository{db: db, logger: logger}
}

func (r *recurringTaskRepository) Create(ctx context.Context, t *recurringtask.Template) error {
	query := `
	INSERT INTO recurring_task_templates (` + templateColumns + `)
	VALUES (:id, :tenant_id, :client_id, :name, :description, :frequency, :next_due_at, :anchor_day, :assignee_id, :status, :created_at, :updated_at, :created_by, :updated_by)
	`

	_, err := r.db.NamedExecContext(ctx, query, t)
	return postgres.WrapError(err, "recurring task")
}

func (r *recurringTaskRepository) Get(ctx context.Context, id string) (*recurringtask.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_task_templates WHERE id = $1 AND tenant_id = $2 AND status <> 'deleted'`

	var t recurringtask.Template
	if err := r.db.GetContext(ctx, &t, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.WrapError(err, "recurring task")
	}
	return &t, nil
}

func (r *recurringTaskRepository) List(ctx context.Context, filter *types.RecurringTaskFilter) ([]*recurringtask.Template, error) {
	var (
		where = []string{"tenant_id = $1", "status <> 'deleted'"}
		args  = []interface{}{types.GetTenantID(ctx)}
	)

	if filter != nil {
		if filter.ClientID != "" {
			args = append(args, filter.ClientID)
			where = append(where, "client_id = $"+strconv.Itoa(len(args)))
		}
		if filter.Frequency != "" {
			args = append(args, filter.Frequency)
			where = append(where, "frequency = $"+strconv.Itoa(len(args)))
		}
	}

	query := `SELECT ` + templateColumns + ` FROM recurring_task_templates WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at, id`

	var templates []*recurringtask.Template
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, postgres.WrapError(err, "recurring task")
	}
	return templates, nil
}

func (r *recurringTaskRepository) Update(ctx context.Context, t *recurringtask.Template) error {
	query := `
	UPDATE recurring_task_templates
	SET name = :name, description = :description, frequency = :frequency, next_due_at = :next_due_at,
		anchor_day = :anchor_day, assignee_id = :assignee_id, status = :status, updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id
	`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return postgres.WrapError(err, "recurring task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("recurring task not found").
			WithHintf("recurring task %s not found", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *recurringTaskRepository) ListActive(ctx context.Context) ([]*recurringtask.Template, error) {
	query := `
	SELECT ` + templateColumns + ` FROM recurring_task_templates
	WHERE status = 'published'
	ORDER BY next_due_at NULLS FIRST, id
	`

	var templates []*recurringtask.Template
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, postgres.WrapError(err, "recurring task")
	}
	return templates, nil
}
