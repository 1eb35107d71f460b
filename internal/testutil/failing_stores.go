package testutil

import (
	"context"
	"sync/atomic"

	"github.com/kontorapp/kontor/internal/domain/invoice"
	"github.com/kontorapp/kontor/internal/domain/task"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
)

// ErrInjected is returned by the failure injecting repositories
var ErrInjected = ierr.NewError("injected failure").
	WithHint("Simulated database failure").
	Mark(ierr.ErrDatabase)

// FailingLineRepository fails Create of USER_LICENSE lines while FailUserLines is set
type FailingLineRepository struct {
	invoice.LineRepository
	FailUserLines atomic.Bool
}

func (r *FailingLineRepository) Create(ctx context.Context, l *invoice.Line) error {
	if r.FailUserLines.Load() && l.LineType == types.InvoiceLineTypeUserLicense {
		return ErrInjected
	}
	return r.LineRepository.Create(ctx, l)
}

// FailingTaskRepository fails Create for tasks of one client
type FailingTaskRepository struct {
	task.Repository
	FailClientID string
	Panic        bool
}

func (r *FailingTaskRepository) Create(ctx context.Context, t *task.Task) error {
	if t.ClientID == r.FailClientID {
		if r.Panic {
			panic("task store crashed")
		}
		return ErrInjected
	}
	return r.Repository.Create(ctx, t)
}
