package service

import (
	"sync"
	"testing"
	"time"

	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/domain/task"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/testutil"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type RecurringTaskServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service RecurringTaskService
}

func TestRecurringTaskService(t *testing.T) {
	suite.Run(t, new(RecurringTaskServiceSuite))
}

func (s *RecurringTaskServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewRecurringTaskService(s.params)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *RecurringTaskServiceSuite) createTemplate(clientID, name, frequency string, next *time.Time) *recurringtask.Template {
	resp, err := s.service.CreateTemplate(s.GetContext(), dto.CreateRecurringTaskRequest{
		ClientID:  clientID,
		Name:      name,
		Frequency: frequency,
		NextDueAt: next,
	})
	s.Require().NoError(err)
	return resp.Template
}

func (s *RecurringTaskServiceSuite) reload(id string) *recurringtask.Template {
	tmpl, err := s.GetStores().RecurringTaskRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return tmpl
}

func (s *RecurringTaskServiceSuite) TestQuarterlyNorwegianTemplate() {
	tmpl := s.createTemplate("client_1", "MVA-melding", "kvartalsvis", lo.ToPtr(date(2024, 1, 1)))
	s.Equal(types.FrequencyQuarterly, tmpl.Frequency)

	s.GetClock().Set(date(2024, 1, 2))
	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)

	s.Equal(1, result.Processed)
	s.Equal(0, result.Failed)
	s.Require().Len(result.Generated, 1)
	s.Equal(date(2024, 1, 1), result.Generated[0].DueAt)
	s.Equal("MVA-melding", result.Generated[0].Title)
	s.Equal(types.TaskStatusPending, result.Generated[0].TaskStatus)
	s.Equal(tmpl.ID, lo.FromPtr(result.Generated[0].TemplateID))

	s.Equal(date(2024, 4, 1), *s.reload(tmpl.ID).NextDueAt)

	// nothing is due until April
	result, err = s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Empty(result.Generated)
	s.Equal(1, result.Skipped)
}

func (s *RecurringTaskServiceSuite) TestGenerateInstanceIsIdempotent() {
	tmpl := s.createTemplate("client_1", "Lønnskjøring", "monthly", lo.ToPtr(date(2024, 3, 10)))

	first, err := s.service.GenerateInstance(s.GetContext(), tmpl, date(2024, 3, 10))
	s.Require().NoError(err)
	s.Require().NotNil(first)

	second, err := s.service.GenerateInstance(s.GetContext(), tmpl, date(2024, 3, 10))
	s.Require().NoError(err)
	s.Nil(second)

	count, err := s.GetStores().TaskRepo.Count(s.GetContext(), &types.TaskFilter{ClientID: "client_1"})
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RecurringTaskServiceSuite) TestConcurrentGenerateInstanceCreatesOneTask() {
	tmpl := s.createTemplate("client_1", "Avstemming", "weekly", lo.ToPtr(date(2024, 3, 4)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copied := *tmpl
			_, err := s.service.GenerateInstance(s.GetContext(), &copied, date(2024, 3, 4))
			s.NoError(err)
		}()
	}
	wg.Wait()

	count, err := s.GetStores().TaskRepo.Count(s.GetContext(), &types.TaskFilter{ClientID: "client_1"})
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *RecurringTaskServiceSuite) TestMonthEndAdvance() {
	tests := []struct {
		name string
		due  time.Time
		now  time.Time
		next time.Time
	}{
		{"non leap year", date(2023, 1, 31), date(2023, 2, 1), date(2023, 2, 28)},
		{"leap year", date(2024, 1, 31), date(2024, 2, 1), date(2024, 2, 29)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tmpl := s.createTemplate("client_"+tt.name, "Månedsavslutning", "månedlig", &tt.due)
			s.GetClock().Set(tt.now)

			result, err := s.service.Tick(s.GetContext())
			s.Require().NoError(err)

			generated := lo.Filter(result.Generated, func(t *task.Task, _ int) bool { return t.ClientID == tmpl.ClientID })
			s.Require().Len(generated, 1)
			s.Equal(tt.due, generated[0].DueAt)
			s.Equal(tt.next, *s.reload(tmpl.ID).NextDueAt)
		})
	}
}

func (s *RecurringTaskServiceSuite) TestUnknownFrequencyFallsBackToMonthly() {
	tmpl := s.createTemplate("client_1", "Diverse", "av og til", lo.ToPtr(date(2024, 5, 15)))
	s.Equal(types.FrequencyMonthly, tmpl.Frequency)
}

func (s *RecurringTaskServiceSuite) TestNilNextDueAtIsDueNow() {
	now := date(2024, 6, 15).Add(9 * time.Hour)
	s.GetClock().Set(now)
	tmpl := s.createTemplate("client_1", "Oppstart", "weekly", nil)

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(result.Generated, 1)
	s.Equal(now, result.Generated[0].DueAt)
	s.Equal(now.AddDate(0, 0, 7), *s.reload(tmpl.ID).NextDueAt)
}

func (s *RecurringTaskServiceSuite) TestOnceTemplateIsArchivedAfterGenerating() {
	tmpl := s.createTemplate("client_1", "Stiftelse", "engangs", lo.ToPtr(date(2024, 6, 1)))
	s.Equal(types.FrequencyOnce, tmpl.Frequency)

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Len(result.Generated, 1)

	stored := s.reload(tmpl.ID)
	s.Equal(types.StatusArchived, stored.Status)

	s.GetClock().Advance(90 * 24 * time.Hour)
	result, err = s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Empty(result.Generated)
	s.Equal(0, result.Processed)
}

func (s *RecurringTaskServiceSuite) TestCatchUpGeneratesMissedOccurrences() {
	tmpl := s.createTemplate("client_1", "Bilag", "weekly", lo.ToPtr(date(2024, 5, 20)))
	s.GetClock().Set(date(2024, 6, 12))

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)

	dues := lo.Map(result.Generated, func(t *task.Task, _ int) time.Time { return t.DueAt })
	s.ElementsMatch([]time.Time{date(2024, 5, 20), date(2024, 5, 27), date(2024, 6, 3), date(2024, 6, 10)}, dues)
	s.Equal(date(2024, 6, 17), *s.reload(tmpl.ID).NextDueAt)
}

func (s *RecurringTaskServiceSuite) TestCatchUpIsCappedAndFastForwards() {
	s.GetConfig().Scheduler.MaxCatchUp = 3
	defer func() { s.GetConfig().Scheduler.MaxCatchUp = 12 }()

	tmpl := s.createTemplate("client_1", "Dagsoppgjør", "daily", lo.ToPtr(date(2024, 6, 1)))
	s.GetClock().Set(date(2024, 6, 15).Add(time.Hour))

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Len(result.Generated, 3)
	s.Equal(0, result.Failed)
	s.Equal(date(2024, 6, 16), *s.reload(tmpl.ID).NextDueAt)
}

func (s *RecurringTaskServiceSuite) TestFailingTemplateDoesNotAbortTick() {
	failing := &testutil.FailingTaskRepository{
		Repository:   s.GetStores().TaskRepo,
		FailClientID: "client_bad",
	}
	s.params.TaskRepo = failing
	s.service = NewRecurringTaskService(s.params)

	good := s.createTemplate("client_good", "Lønn", "monthly", lo.ToPtr(date(2024, 6, 1)))
	bad := s.createTemplate("client_bad", "Lønn", "monthly", lo.ToPtr(date(2024, 6, 1)))

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Equal(2, result.Processed)
	s.Equal(1, result.Failed)
	s.Require().Len(result.Generated, 1)
	s.Equal("client_good", result.Generated[0].ClientID)
	s.Contains(result.Errors, bad.ID)

	// the failed template is left unadvanced and retried next tick
	s.Equal(date(2024, 6, 1), *s.reload(bad.ID).NextDueAt)
	s.Equal(date(2024, 7, 1), *s.reload(good.ID).NextDueAt)

	failing.FailClientID = ""
	result, err = s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(result.Generated, 1)
	s.Equal("client_bad", result.Generated[0].ClientID)
}

func (s *RecurringTaskServiceSuite) TestPanickingTemplateIsContained() {
	s.params.TaskRepo = &testutil.FailingTaskRepository{
		Repository:   s.GetStores().TaskRepo,
		FailClientID: "client_bad",
		Panic:        true,
	}
	s.service = NewRecurringTaskService(s.params)

	s.createTemplate("client_good", "Lønn", "monthly", lo.ToPtr(date(2024, 6, 1)))
	bad := s.createTemplate("client_bad", "Lønn", "monthly", lo.ToPtr(date(2024, 6, 1)))

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Equal(1, result.Failed)
	s.Len(result.Generated, 1)
	s.Contains(result.Errors[bad.ID], "panic")
}

func (s *RecurringTaskServiceSuite) TestTickCoversEveryTenant() {
	s.createTemplate("client_1", "Årsoppgjør", "yearly", lo.ToPtr(date(2024, 6, 1)))

	other := types.WithTenantID(s.GetContext(), "tenant_other")
	_, err := s.service.CreateTemplate(other, dto.CreateRecurringTaskRequest{
		ClientID:  "client_1",
		Name:      "Årsoppgjør",
		Frequency: "yearly",
		NextDueAt: lo.ToPtr(date(2024, 6, 1)),
	})
	s.Require().NoError(err)

	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)
	s.Len(result.Generated, 2)

	tenants := lo.Uniq(lo.Map(result.Generated, func(t *task.Task, _ int) string { return t.TenantID }))
	s.ElementsMatch([]string{testutil.TestTenantID, "tenant_other"}, tenants)
}

func (s *RecurringTaskServiceSuite) TestUpdateTemplateNormalizesFrequency() {
	tmpl := s.createTemplate("client_1", "Rapport", "monthly", lo.ToPtr(date(2024, 7, 1)))

	resp, err := s.service.UpdateTemplate(s.GetContext(), tmpl.ID, dto.UpdateRecurringTaskRequest{
		Frequency: lo.ToPtr("Hver andre måned"),
		Name:      lo.ToPtr("Tertialrapport"),
	})
	s.Require().NoError(err)
	s.Equal(types.FrequencyBiMonthly, resp.Frequency)
	s.Equal("Tertialrapport", resp.Name)

	list, err := s.service.ListTemplates(s.GetContext(), &types.RecurringTaskFilter{Frequency: "tomånedlig"})
	s.Require().NoError(err)
	s.Len(list.Items, 1)
}

func (s *RecurringTaskServiceSuite) TestTemplatesAreTenantScoped() {
	tmpl := s.createTemplate("client_1", "Rapport", "monthly", nil)

	_, err := s.service.GetTemplate(types.WithTenantID(s.GetContext(), "tenant_other"), tmpl.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *RecurringTaskServiceSuite) TestMonthEndScheduleKeepsAnchorDay() {
	tmpl := s.createTemplate("client_1", "Månedsavslutning", "monthly", lo.ToPtr(date(2024, 1, 31)))
	s.Equal(31, tmpl.AnchorDay)

	s.GetClock().Set(date(2024, 4, 1))
	result, err := s.service.Tick(s.GetContext())
	s.Require().NoError(err)

	dues := lo.Map(result.Generated, func(t *task.Task, _ int) time.Time { return t.DueAt })
	s.Equal([]time.Time{date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31)}, dues)
	s.Equal(date(2024, 4, 30), *s.reload(tmpl.ID).NextDueAt)
}

func (s *RecurringTaskServiceSuite) TestUnscheduledTemplateTakesAnchorFromFirstDueDate() {
	tmpl := s.createTemplate("client_1", "Lønn", "monthly", nil)
	s.Zero(tmpl.AnchorDay)

	_, err := s.service.GenerateInstance(s.GetContext(), tmpl, date(2024, 1, 30))
	s.Require().NoError(err)

	stored := s.reload(tmpl.ID)
	s.Equal(30, stored.AnchorDay)
	s.Equal(date(2024, 2, 29), *stored.NextDueAt)

	_, err = s.service.GenerateInstance(s.GetContext(), stored, *stored.NextDueAt)
	s.Require().NoError(err)
	s.Equal(date(2024, 3, 30), *s.reload(tmpl.ID).NextDueAt)
}

func (s *RecurringTaskServiceSuite) TestGenerateInstanceRejectsForeignTenantContext() {
	tmpl := s.createTemplate("client_1", "MVA-melding", "monthly", lo.ToPtr(date(2024, 3, 10)))

	ctx := types.WithTenantID(s.GetContext(), "tenant_other")
	created, err := s.service.GenerateInstance(ctx, tmpl, date(2024, 3, 10))
	s.Nil(created)
	s.True(ierr.IsPermissionDenied(err))

	count, err := s.GetStores().TaskRepo.Count(s.GetContext(), &types.TaskFilter{ClientID: "client_1"})
	s.Require().NoError(err)
	s.Zero(count)
	s.Equal(date(2024, 3, 10), *s.reload(tmpl.ID).NextDueAt)

	// a ctx without tenant is scoped to the template's tenant
	created, err = s.service.GenerateInstance(types.WithTenantID(s.GetContext(), ""), tmpl, date(2024, 3, 10))
	s.Require().NoError(err)
	s.Require().NotNil(created)
	s.Equal(testutil.TestTenantID, created.TenantID)
}
