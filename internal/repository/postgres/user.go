package postgres

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/user"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

const userColumns = `id, tenant_id, email, name, role, is_licensed, status, created_at, updated_at, created_by, updated_by`

type userRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (` + userColumns + `)
	VALUES (:id, :tenant_id, :email, :name, :role, :is_licensed, :status, :created_at, :updated_at, :created_by, :updated_by)
	`

	_, err := r.db.NamedExecContext(ctx, query, u)
	return postgres.WrapError(err, "user")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	tenantID := types.GetTenantID(ctx)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND tenant_id = $2 AND status <> 'deleted'`

	var u user.User
	if err := r.db.GetContext(ctx, &u, query, id, tenantID); err != nil {
		return nil, postgres.WrapError(err, "user")
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	query := `
	UPDATE users
	SET email = :email, name = :name, role = :role, is_licensed = :is_licensed,
		status = :status, updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id
	`

	res, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return postgres.WrapError(err, "user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("user not found").
			WithHintf("user %s not found", u.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *userRepository) CountLicensed(ctx context.Context) (int, error) {
	query := `SELECT count(*) FROM users WHERE tenant_id = $1 AND is_licensed AND status = 'published'`

	var count int
	if err := r.db.GetContext(ctx, &count, query, types.GetTenantID(ctx)); err != nil {
		return 0, postgres.WrapError(err, "user")
	}
	return count, nil
}

func (r *userRepository) ListLicensed(ctx context.Context) ([]*user.User, error) {
	query := `
	SELECT ` + userColumns + ` FROM users
	WHERE tenant_id = $1 AND is_licensed AND status = 'published'
	ORDER BY created_at, id
	`

	var users []*user.User
	if err := r.db.SelectContext(ctx, &users, query, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.WrapError(err, "user")
	}
	return users, nil
}
