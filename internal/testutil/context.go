package testutil

import (
	"context"

	"github.com/kontorapp/kontor/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxTenantID, TestTenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, "user_test")
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
