package service

import (
	"context"

	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
)

// scopeTenant returns ctx scoped to tenantID. A ctx already scoped to a
// different tenant is rejected so a caller can never reach across tenants.
func scopeTenant(ctx context.Context, tenantID string) (context.Context, error) {
	if tenantID == "" {
		return ctx, ierr.NewError("tenant id is required").
			WithHint("Tenant ID is required").
			Mark(ierr.ErrValidation)
	}

	if current := types.GetTenantID(ctx); current != "" && current != tenantID {
		return ctx, ierr.NewError("tenant mismatch").
			WithHint("The resource belongs to another tenant").
			WithReportableDetails(map[string]any{"tenant_id": tenantID}).
			Mark(ierr.ErrPermissionDenied)
	}

	ctx = types.WithTenantID(ctx, tenantID)
	if types.GetUserID(ctx) == "" {
		ctx = types.WithUserID(ctx, types.SystemUserID)
	}
	return ctx, nil
}
