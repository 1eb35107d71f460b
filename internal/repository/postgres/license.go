package postgres

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/license"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
)

const licenseColumns = `id, tenant_id, user_id, billing_period, is_licensed, status, created_at, updated_at, created_by, updated_by`

type licenseRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLicenseRepository(db *postgres.DB, logger *logger.Logger) license.Repository {
	return &licenseRepository{db: db, logger: logger}
}

func (r *licenseRepository) Upsert(ctx context.Context, rec *license.Record) (*license.Record, error) {
	query := `
	INSERT INTO licensed_employees (` + licenseColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT ON CONSTRAINT uq_licensed_employees_period DO UPDATE
	SET is_licensed = EXCLUDED.is_licensed, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
	RETURNING ` + licenseColumns

	var stored license.Record
	err := r.db.GetContext(ctx, &stored, query,
		rec.ID, rec.TenantID, rec.UserID, rec.BillingPeriod, rec.IsLicensed,
		rec.Status, rec.CreatedAt, rec.UpdatedAt, rec.CreatedBy, rec.UpdatedBy,
	)
	if err != nil {
		return nil, postgres.WrapError(err, "licensed employee")
	}
	return &stored, nil
}

func (r *licenseRepository) Get(ctx context.Context, userID, period string) (*license.Record, error) {
	query := `SELECT ` + licenseColumns + ` FROM licensed_employees WHERE tenant_id = $1 AND user_id = $2 AND billing_period = $3`

	var rec license.Record
	if err := r.db.GetContext(ctx, &rec, query, types.GetTenantID(ctx), userID, period); err != nil {
		return nil, postgres.WrapError(err, "licensed employee")
	}
	return &rec, nil
}

func (r *licenseRepository) ListByPeriod(ctx context.Context, period string) ([]*license.Record, error) {
	query := `SELECT ` + licenseColumns + ` FROM licensed_employees WHERE tenant_id = $1 AND billing_period = $2 ORDER BY created_at, id`

	var recs []*license.Record
	if err := r.db.SelectContext(ctx, &recs, query, types.GetTenantID(ctx), period); err != nil {
		return nil, postgres.WrapError(err, "licensed employee")
	}
	return recs, nil
}
