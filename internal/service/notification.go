package service

import (
	"context"
	"fmt"

	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/types"
)

// NotificationService turns generated tasks into assignee reminders.
// Failures are logged and never returned.
type NotificationService interface {
	NotifyAssignees(ctx context.Context, tasks []*task.Task) int
}

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{ServiceParams: params}
}

// NotifyAssignees returns the number of reminders the sender accepted
func (s *notificationService) NotifyAssignees(ctx context.Context, tasks []*task.Task) int {
	if s.Sender == nil {
		return 0
	}

	sent := 0
	for _, t := range tasks {
		if t == nil || t.AssigneeID == nil {
			continue
		}

		tctx := types.WithTenantID(ctx, t.TenantID)
		u, err := s.UserRepo.GetByID(tctx, *t.AssigneeID)
		if err != nil {
			s.Logger.Warnw("failed to look up task assignee",
				"task_id", t.ID,
				"assignee_id", *t.AssigneeID,
				"error", err,
			)
			continue
		}

		ok, err := s.Sender.Notify(tctx, u.Email, fmt.Sprintf("Ny oppgave: %s", t.Title), t.DueAt)
		if err != nil {
			s.Logger.Warnw("failed to send task notification",
				"task_id", t.ID,
				"user_id", u.ID,
				"error", err,
			)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}
