package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/types"
)

// slowQueryThreshold promotes query logs from debug to warn
const slowQueryThreshold = 500 * time.Millisecond

// queryTrace times one statement and logs it with the tenant and request
// that issued it
type queryTrace struct {
	logger *logger.Logger
	query  string
	params interface{}
	start  time.Time
	fields []interface{}
}

func startTrace(ctx context.Context, logger *logger.Logger, query string, params interface{}, txID string) *queryTrace {
	fields := make([]interface{}, 0, 6)
	if tenantID := types.GetTenantID(ctx); tenantID != "" {
		fields = append(fields, "tenant_id", tenantID)
	}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if txID != "" {
		fields = append(fields, "tx_id", txID)
	}

	return &queryTrace{
		logger: logger,
		query:  query,
		params: params,
		start:  time.Now(),
		fields: fields,
	}
}

func (qt *queryTrace) done(err error) {
	duration := time.Since(qt.start)
	fields := append(qt.fields,
		"duration_ms", duration.Milliseconds(),
		"query", strings.Join(strings.Fields(qt.query), " "),
	)

	switch {
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		fields = append(fields, "params", fmt.Sprintf("%+v", qt.params), "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
	case duration > slowQueryThreshold:
		qt.logger.Warnw("slow database query", fields...)
	default:
		qt.logger.Debugw("database query completed", fields...)
	}
}

// TracedQuerier logs every statement run through the wrapped Querier
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

// NewTracedQuerier creates a new traced querier
func NewTracedQuerier(q Querier, logger *logger.Logger, txID string) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
		txID:    txID,
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	trace := startTrace(ctx, tq.logger, query, args, tq.txID)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	trace.done(err)
	return result, err
}

func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	trace := startTrace(ctx, tq.logger, query, arg, tq.txID)
	result, err := tq.Querier.NamedExecContext(ctx, query, arg)
	trace.done(err)
	return result, err
}

func (tq *TracedQuerier) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	trace := startTrace(ctx, tq.logger, query, args, tq.txID)
	rows, err := tq.Querier.QueryxContext(ctx, query, args...)
	trace.done(err)
	return rows, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	trace := startTrace(ctx, tq.logger, query, args, tq.txID)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	trace.done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	trace := startTrace(ctx, tq.logger, query, args, tq.txID)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	trace.done(err)
	return err
}
