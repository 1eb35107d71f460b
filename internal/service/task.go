package service

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/domain/timeentry"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
)

type TaskService interface {
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, id string) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, filter *types.TaskFilter) (*dto.ListTasksResponse, error)
	UpdateTaskStatus(ctx context.Context, id string, status string) (*dto.TaskResponse, error)
	CompleteTask(ctx context.Context, id string, req dto.CompleteTaskRequest) (*dto.CompleteTaskResponse, error)
}

type taskService struct {
	ServiceParams
}

func NewTaskService(
	serviceParams ServiceParams,
) TaskService {
	return &taskService{
		ServiceParams: serviceParams,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := req.ToTask(ctx, s.now())
	if err := s.TaskRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	return dto.NewTaskResponse(t), nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*dto.TaskResponse, error) {
	t, err := s.TaskRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponse(t), nil
}

func (s *taskService) ListTasks(ctx context.Context, filter *types.TaskFilter) (*dto.ListTasksResponse, error) {
	if filter == nil {
		filter = types.NewDefaultTaskFilter()
	}

	tasks, err := s.TaskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TaskRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(dto.NewTaskResponses(tasks), count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *taskService) UpdateTaskStatus(ctx context.Context, id string, raw string) (*dto.TaskResponse, error) {
	status, err := types.ParseTaskStatus(raw)
	if err != nil {
		return nil, err
	}

	t, err := s.TaskRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.TaskStatus.CanTransitionTo(status) {
		return nil, ierr.NewError("invalid status transition").
			WithHintf("A task cannot move from %s to %s", t.TaskStatus.Norwegian(), status.Norwegian()).
			WithReportableDetails(map[string]interface{}{
				"from": t.TaskStatus,
				"to":   status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := s.now()
	t.TaskStatus = status
	if status == types.TaskStatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.UpdatedAt = now
	t.UpdatedBy = types.GetUserID(ctx)

	if err := s.TaskRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	return dto.NewTaskResponse(t), nil
}

func (s *taskService) CompleteTask(ctx context.Context, id string, req dto.CompleteTaskRequest) (*dto.CompleteTaskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.CompleteTaskResponse{}
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.TaskRepo.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.TaskStatus == types.TaskStatusCompleted {
			return ierr.NewError("task already completed").
				WithHint("The task is already completed").
				Mark(ierr.ErrInvalidOperation)
		}

		now := s.now()
		t.TaskStatus = types.TaskStatusCompleted
		t.CompletedAt = &now
		t.UpdatedAt = now
		t.UpdatedBy = types.GetUserID(ctx)
		if err := s.TaskRepo.Update(ctx, t); err != nil {
			return err
		}
		resp.Task = dto.NewTaskResponse(t)

		if req.Minutes == 0 {
			return nil
		}

		userID := types.GetUserID(ctx)
		if userID == "" && t.AssigneeID != nil {
			userID = *t.AssigneeID
		}
		workDate := now
		if req.WorkDate != nil {
			workDate = req.WorkDate.UTC()
		}

		entry := &timeentry.TimeEntry{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TIME_ENTRY),
			TaskID:      lo.ToPtr(t.ID),
			ClientID:    t.ClientID,
			UserID:      userID,
			WorkDate:    types.StartOfDay(workDate),
			Minutes:     req.Minutes,
			Description: lo.Ternary(req.Description != "", req.Description, t.Title),
			BaseModel:   types.GetBaseModelAt(ctx, now),
		}
		if err := s.TimeEntryRepo.Create(ctx, entry); err != nil {
			return err
		}
		resp.TimeEntry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("completed task",
		"task_id", id,
		"minutes", req.Minutes,
		"completed_at", resp.Task.CompletedAt.Format(time.RFC3339),
	)
	return resp, nil
}
