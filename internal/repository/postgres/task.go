package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kontorapp/kontor/internal/domain/task"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

const taskColumns = `id, tenant_id, template_id, client_id, assignee_id, title, description, task_status, due_at, completed_at, status, created_at, updated_at, created_by, updated_by`

type taskRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTaskRepository(db *postgres.DB, logger *logger.Logger) task.Repository {
	return &taskRepository{db: db, logger: logger}
}

func (r *taskRepository) Create(ctx context.Context, t *task.Task) error {
	// DO NOTHING keeps a surrounding transaction usable when the natural key collides
	query := `
	INSERT INTO tasks (` + taskColumns + `)
	VALUES (:id, :tenant_id, :template_id, :client_id, :assignee_id, :title, :description, :task_status, :due_at, :completed_at, :status, :created_at, :updated_at, :created_by, :updated_by)
	ON CONFLICT DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return postgres.WrapError(err, "task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("task already exists").
			WithHintf("a task %q for this client is already due on %s", t.Title, t.DueAt.Format(time.DateOnly)).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND tenant_id = $2 AND status <> 'deleted'`

	var t task.Task
	if err := r.db.GetContext(ctx, &t, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.WrapError(err, "task")
	}
	return &t, nil
}

func (r *taskRepository) buildFilter(ctx context.Context, filter *types.TaskFilter) (string, []interface{}) {
	var (
		where = []string{"tenant_id = $1", "status <> 'deleted'"}
		args  = []interface{}{types.GetTenantID(ctx)}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, clause+" $"+strconv.Itoa(len(args)))
	}

	if filter != nil {
		if filter.ClientID != "" {
			add("client_id =", filter.ClientID)
		}
		if filter.AssigneeID != "" {
			add("assignee_id =", filter.AssigneeID)
		}
		if filter.TemplateID != "" {
			add("template_id =", filter.TemplateID)
		}
		if filter.TaskStatus != "" {
			add("task_status =", filter.TaskStatus)
		}
		if filter.DueFrom != nil {
			add("due_at >=", *filter.DueFrom)
		}
		if filter.DueTo != nil {
			add("due_at <=", *filter.DueTo)
		}
	}
	return strings.Join(where, " AND "), args
}

func (r *taskRepository) List(ctx context.Context, filter *types.TaskFilter) ([]*task.Task, error) {
	where, args := r.buildFilter(ctx, filter)
	args = append(args, filter.GetLimit(), filter.GetOffset())

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY due_at, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	var tasks []*task.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, postgres.WrapError(err, "task")
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, filter *types.TaskFilter) (int, error) {
	where, args := r.buildFilter(ctx, filter)

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM tasks WHERE `+where, args...); err != nil {
		return 0, postgres.WrapError(err, "task")
	}
	return count, nil
}

func (r *taskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
	UPDATE tasks
	SET assignee_id = :assignee_id, title = :title, description = :description, task_status = :task_status,
		due_at = :due_at, completed_at = :completed_at, status = :status, updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id
	`

	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return postgres.WrapError(err, "task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("task not found").
			WithHintf("task %s not found", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *taskRepository) ExistsForDueDate(ctx context.Context, clientID, title string, dueAt time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM tasks
		WHERE tenant_id = $1 AND client_id = $2 AND title = $3
		AND (due_at AT TIME ZONE 'UTC')::date = $4::date
		AND status <> 'deleted'
	)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query,
		types.GetTenantID(ctx), clientID, title, dueAt.UTC().Format(time.DateOnly))
	if err != nil {
		return false, postgres.WrapError(err, "task")
	}
	return exists, nil
}
