package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/domain/task"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// TickResult summarises one pass of the recurring task engine
type TickResult struct {
	StartedAt time.Time `json:"started_at"`
	// Processed counts the active templates the tick looked at
	Processed int `json:"processed"`
	// Generated holds the task instances created by this tick
	Generated []*task.Task `json:"generated"`
	// Skipped counts templates that were not due
	Skipped int `json:"skipped"`
	// Failed counts templates whose generation failed; they are retried next tick
	Failed int               `json:"failed"`
	Errors map[string]string `json:"errors,omitempty"`
}

// RecurringTaskService owns recurring task templates and the engine that turns
// them into task instances.
type RecurringTaskService interface {
	CreateTemplate(ctx context.Context, req dto.CreateRecurringTaskRequest) (*dto.RecurringTaskResponse, error)
	GetTemplate(ctx context.Context, id string) (*dto.RecurringTaskResponse, error)
	ListTemplates(ctx context.Context, filter *types.RecurringTaskFilter) (*dto.ListRecurringTasksResponse, error)
	UpdateTemplate(ctx context.Context, id string, req dto.UpdateRecurringTaskRequest) (*dto.RecurringTaskResponse, error)

	// Tick generates every due occurrence of every active template. A failing
	// template is logged and counted; it never aborts the tick.
	Tick(ctx context.Context) (*TickResult, error)

	// GenerateInstance creates the task for one occurrence of tmpl and moves the
	// template to the following occurrence. It returns nil, nil when the
	// occurrence already had a task. A ctx scoped to another tenant than the
	// template's is rejected.
	GenerateInstance(ctx context.Context, tmpl *recurringtask.Template, dueDate time.Time) (*task.Task, error)
}

type recurringTaskService struct {
	ServiceParams
}

func NewRecurringTaskService(params ServiceParams) RecurringTaskService {
	return &recurringTaskService{ServiceParams: params}
}

// normalizeFrequency maps free text to a canonical frequency, logging the
// monthly fallback so bad template data is visible.
func (s *recurringTaskService) normalizeFrequency(raw string, keysAndValues ...interface{}) types.Frequency {
	f, ok := types.ParseFrequency(raw)
	if !ok {
		s.Logger.Warnw("unrecognised frequency, falling back to monthly",
			append([]interface{}{"frequency", raw, "fallback", f}, keysAndValues...)...)
	}
	return f
}

func (s *recurringTaskService) CreateTemplate(ctx context.Context, req dto.CreateRecurringTaskRequest) (*dto.RecurringTaskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	freq := s.normalizeFrequency(req.Frequency, "client_id", req.ClientID)
	tmpl := req.ToTemplate(ctx, freq, s.now())

	if err := s.RecurringTaskRepo.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.Logger.Infow("created recurring task",
		"template_id", tmpl.ID,
		"tenant_id", tmpl.TenantID,
		"frequency", tmpl.Frequency,
	)
	return dto.NewRecurringTaskResponse(tmpl), nil
}

func (s *recurringTaskService) GetTemplate(ctx context.Context, id string) (*dto.RecurringTaskResponse, error) {
	tmpl, err := s.RecurringTaskRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewRecurringTaskResponse(tmpl), nil
}

func (s *recurringTaskService) ListTemplates(ctx context.Context, filter *types.RecurringTaskFilter) (*dto.ListRecurringTasksResponse, error) {
	if filter != nil && filter.Frequency != "" {
		filter.Frequency = s.normalizeFrequency(string(filter.Frequency))
	}

	templates, err := s.RecurringTaskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(templates, func(t *recurringtask.Template, _ int) *dto.RecurringTaskResponse {
		return dto.NewRecurringTaskResponse(t)
	})
	resp := types.NewListResponse(items, len(items), len(items), 0)
	return &resp, nil
}

func (s *recurringTaskService) UpdateTemplate(ctx context.Context, id string, req dto.UpdateRecurringTaskRequest) (*dto.RecurringTaskResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := s.RecurringTaskRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.Frequency != nil {
		tmpl.Frequency = s.normalizeFrequency(*req.Frequency, "template_id", id)
	}
	if req.NextDueAt != nil {
		tmpl.SetNextDueAt(*req.NextDueAt)
	}
	if req.AssigneeID != nil {
		tmpl.AssigneeID = lo.EmptyableToPtr(*req.AssigneeID)
	}
	tmpl.UpdatedAt = s.now()
	tmpl.UpdatedBy = types.GetUserID(ctx)

	if err := s.RecurringTaskRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return dto.NewRecurringTaskResponse(tmpl), nil
}

func (s *recurringTaskService) Tick(ctx context.Context) (*TickResult, error) {
	now := s.now()
	result := &TickResult{
		StartedAt: now,
		Generated: []*task.Task{},
		Errors:    map[string]string{},
	}

	templates, err := s.RecurringTaskRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(s.workers())

	for _, tmpl := range templates {
		if !tmpl.IsActive() {
			continue
		}
		result.Processed++

		tmpl := tmpl
		p.Go(func() {
			generated, due, err := s.processTemplate(ctx, tmpl, now)

			mu.Lock()
			defer mu.Unlock()
			result.Generated = append(result.Generated, generated...)
			switch {
			case err != nil:
				result.Failed++
				result.Errors[tmpl.ID] = err.Error()
				s.Logger.Errorw("failed to generate recurring task",
					"template_id", tmpl.ID,
					"tenant_id", tmpl.TenantID,
					"error", err,
				)
			case !due:
				result.Skipped++
			}
		})
	}
	p.Wait()

	s.Logger.Infow("recurring task tick finished",
		"processed", result.Processed,
		"generated", len(result.Generated),
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(now),
	)
	return result, nil
}

func (s *recurringTaskService) workers() int {
	if s.Config == nil || s.Config.Scheduler.Workers < 1 {
		return 1
	}
	return s.Config.Scheduler.Workers
}

func (s *recurringTaskService) maxCatchUp() int {
	if s.Config == nil || s.Config.Scheduler.MaxCatchUp < 1 {
		return 1
	}
	return s.Config.Scheduler.MaxCatchUp
}

// processTemplate generates every occurrence of tmpl due at now. due reports
// whether the template had anything due at all. A panic is turned into an
// error so one template cannot take down the tick.
func (s *recurringTaskService) processTemplate(ctx context.Context, tmpl *recurringtask.Template, now time.Time) (generated []*task.Task, due bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ierr.NewError(fmt.Sprintf("panic while generating recurring task: %v", r)).
				Mark(ierr.ErrSystem)
		}
	}()

	ctx = types.WithUserID(types.WithTenantID(ctx, tmpl.TenantID), types.SystemUserID)
	tmpl.Frequency = s.normalizeFrequency(string(tmpl.Frequency), "template_id", tmpl.ID)

	dueDate := tmpl.DueDate(now)
	if dueDate.After(now) {
		return nil, false, nil
	}

	for n := 0; !dueDate.After(now); n++ {
		if n >= s.maxCatchUp() {
			return generated, true, s.fastForward(ctx, tmpl, dueDate, now)
		}

		t, err := s.GenerateInstance(ctx, tmpl, dueDate)
		if err != nil {
			return generated, true, err
		}
		if t != nil {
			generated = append(generated, t)
		}

		if !tmpl.IsActive() {
			break
		}
		dueDate = *tmpl.NextDueAt
	}
	return generated, true, nil
}

// fastForward moves a template that is too far behind to its first future
// occurrence without generating the skipped ones.
func (s *recurringTaskService) fastForward(ctx context.Context, tmpl *recurringtask.Template, from, now time.Time) error {
	next := from
	skipped := 0
	for !next.After(now) {
		next = tmpl.NextOccurrence(next, tmpl.Frequency)
		skipped++
	}

	s.Logger.Warnw("recurring task too far behind, skipping missed occurrences",
		"template_id", tmpl.ID,
		"tenant_id", tmpl.TenantID,
		"skipped", skipped,
		"next_due_at", next,
	)

	tmpl.NextDueAt = &next
	tmpl.UpdatedAt = now
	tmpl.UpdatedBy = types.SystemUserID
	return s.RecurringTaskRepo.Update(ctx, tmpl)
}

func (s *recurringTaskService) GenerateInstance(ctx context.Context, tmpl *recurringtask.Template, dueDate time.Time) (*task.Task, error) {
	if tmpl == nil {
		return nil, ierr.NewError("template is required").Mark(ierr.ErrValidation)
	}
	ctx, err := scopeTenant(ctx, tmpl.TenantID)
	if err != nil {
		return nil, err
	}

	dueDate = dueDate.UTC()
	freq := tmpl.Frequency
	if !freq.IsCanonical() {
		freq = s.normalizeFrequency(string(freq), "template_id", tmpl.ID)
	}

	var created *task.Task
	updated := *tmpl

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		exists, err := s.TaskRepo.ExistsForDueDate(ctx, tmpl.ClientID, tmpl.Name, dueDate)
		if err != nil {
			return err
		}

		if !exists {
			t := &task.Task{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TASK),
				TemplateID:  lo.ToPtr(tmpl.ID),
				ClientID:    tmpl.ClientID,
				AssigneeID:  tmpl.AssigneeID,
				Title:       tmpl.Name,
				Description: tmpl.InstanceDescription(),
				TaskStatus:  types.TaskStatusPending,
				DueAt:       dueDate,
				BaseModel:   types.GetBaseModelAt(ctx, s.now()),
			}
			t.TenantID = tmpl.TenantID

			switch err := s.TaskRepo.Create(ctx, t); {
			case err == nil:
				created = t
			case ierr.IsAlreadyExists(err):
				// lost a race with another generator for the same occurrence
			default:
				return err
			}
		}

		next := tmpl.NextOccurrence(dueDate, freq)
		if updated.AnchorDay == 0 {
			updated.AnchorDay = dueDate.Day()
		}
		updated.Frequency = freq
		updated.NextDueAt = &next
		updated.UpdatedAt = s.now()
		updated.UpdatedBy = types.GetUserID(ctx)
		if freq == types.FrequencyOnce {
			updated.Status = types.StatusArchived
		}
		return s.RecurringTaskRepo.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	*tmpl = updated

	if created == nil {
		s.Logger.Debugw("recurring task occurrence already exists",
			"template_id", tmpl.ID,
			"due_at", dueDate,
		)
		return nil, nil
	}

	s.Logger.Infow("generated recurring task",
		"template_id", tmpl.ID,
		"task_id", created.ID,
		"tenant_id", created.TenantID,
		"due_at", dueDate,
		"next_due_at", tmpl.NextDueAt,
	)
	return created, nil
}
