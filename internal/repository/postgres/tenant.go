package postgres

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
)

const tenantColumns = `id, name, org_number, plan, employee_limit, status, created_at, updated_at, created_by, updated_by`

type tenantRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: logger}
}

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
	INSERT INTO tenants (` + tenantColumns + `)
	VALUES (:id, :name, :org_number, :plan, :employee_limit, :status, :created_at, :updated_at, :created_by, :updated_by)
	`

	_, err := r.db.NamedExecContext(ctx, query, t)
	return postgres.WrapError(err, "tenant")
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 AND status <> 'deleted'`

	var t tenant.Tenant
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, postgres.WrapError(err, "tenant")
	}
	return &t, nil
}

func (r *tenantRepository) GetForUpdate(ctx context.Context, id string) (*tenant.Tenant, error) {
	if _, ok := postgres.GetTx(ctx); !ok {
		r.logger.Warnw("tenant row lock requested outside a transaction", "tenant_id", id)
	}

	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 AND status <> 'deleted' FOR UPDATE`

	var t tenant.Tenant
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, postgres.WrapError(err, "tenant")
	}
	return &t, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE status = 'published' ORDER BY created_at`

	var tenants []*tenant.Tenant
	if err := r.db.SelectContext(ctx, &tenants, query); err != nil {
		return nil, postgres.WrapError(err, "tenant")
	}
	return tenants, nil
}
