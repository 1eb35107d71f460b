package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kontorapp/kontor/internal/api/cron"
	v1 "github.com/kontorapp/kontor/internal/api/v1"
	"github.com/kontorapp/kontor/internal/scheduler"
	"github.com/kontorapp/kontor/internal/service"
	"github.com/kontorapp/kontor/internal/testutil"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/stretchr/testify/suite"
)

const testAdminKey = "test-admin-key"

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	cfg := s.GetConfig()
	cfg.Admin.APIKey = testAdminKey
	cfg.Scheduler.TriggerRatePerMinute = 1

	stores := s.GetStores()
	params, err := service.NewServiceParams(
		s.GetLogger(), cfg, s.GetDB(), s.GetClock(), s.GetCache(),
		stores.TenantRepo, stores.UserRepo, stores.RecurringTaskRepo, stores.TaskRepo,
		stores.TimeEntryRepo, stores.LicenseRepo, stores.InvoiceRepo, stores.InvoiceLineRepo,
		s.GetSender(),
	)
	s.Require().NoError(err)

	ledger := service.NewLicenseService(params)
	guard := service.NewSeatGuard(ledger)
	engine := service.NewRecurringTaskService(params)
	sched := scheduler.New(cfg, engine, service.NewNotificationService(params), s.GetLogger())

	s.router = NewRouter(Handlers{
		Health:        v1.NewHealthHandler(s.GetLogger()),
		Employee:      v1.NewEmployeeHandler(service.NewEmployeeService(params, ledger, guard), s.GetLogger()),
		Subscription:  v1.NewSubscriptionHandler(ledger, s.GetLogger()),
		Task:          v1.NewTaskHandler(service.NewTaskService(params), s.GetLogger()),
		RecurringTask: v1.NewRecurringTaskHandler(engine, s.GetLogger()),
		Scheduler:     v1.NewSchedulerHandler(cfg, sched, s.GetLogger()),
		CronLicensing: cron.NewLicensingHandler(ledger, stores.TenantRepo, s.GetClock(), s.GetLogger()),
	}, cfg, s.GetLogger())
}

func (s *RouterSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) tenantRequest(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{types.HeaderTenantID: testutil.TestTenantID})
}

func (s *RouterSuite) adminRequest(method, path string, body any) *httptest.ResponseRecorder {
	return s.do(method, path, body, map[string]string{types.HeaderAdminKey: testAdminKey})
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestV1RequiresTenant() {
	w := s.do(http.MethodGet, "/v1/seats", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestCreateEmployeeSeatLimit() {
	s.CreateTenant(testutil.TestTenantID, 1)

	w := s.tenantRequest(http.MethodPost, "/v1/employees", map[string]any{
		"email": "kari@example.no", "name": "Kari Nordmann", "licensed": true,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID         string `json:"id"`
		IsLicensed bool   `json:"is_licensed"`
	}
	s.decode(w, &created)
	s.NotEmpty(created.ID)
	s.True(created.IsLicensed)

	w = s.tenantRequest(http.MethodPost, "/v1/employees", map[string]any{
		"email": "ola@example.no", "name": "Ola Nordmann", "licensed": true,
	})
	s.Require().Equal(http.StatusForbidden, w.Code, w.Body.String())

	var body struct {
		Error   string `json:"error"`
		Details struct {
			CurrentSeats int `json:"currentSeats"`
			SeatLimit    int `json:"seatLimit"`
		} `json:"details"`
	}
	s.decode(w, &body)
	s.Equal("SEAT_LIMIT_EXCEEDED", body.Error)
	s.Equal(1, body.Details.CurrentSeats)
	s.Equal(1, body.Details.SeatLimit)

	w = s.tenantRequest(http.MethodGet, "/v1/seats", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var seats struct {
		CurrentSeats int  `json:"currentSeats"`
		SeatLimit    int  `json:"seatLimit"`
		CanAddUser   bool `json:"canAddUser"`
	}
	s.decode(w, &seats)
	s.Equal(1, seats.CurrentSeats)
	s.Equal(1, seats.SeatLimit)
	s.False(seats.CanAddUser)
}

func (s *RouterSuite) TestToggleLicenseOverLimit() {
	s.CreateTenant(testutil.TestTenantID, 1)
	s.CreateUser(testutil.TestTenantID, "a@example.no", true)
	u := s.CreateUser(testutil.TestTenantID, "b@example.no", false)

	w := s.tenantRequest(http.MethodPut, "/v1/employees/"+u.ID+"/license", map[string]any{"is_licensed": true})
	s.Equal(http.StatusForbidden, w.Code, w.Body.String())

	w = s.tenantRequest(http.MethodPut, "/v1/employees/"+u.ID+"/license", map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *RouterSuite) TestSubscriptionSummary() {
	s.CreateTenant(testutil.TestTenantID, 0)

	w := s.tenantRequest(http.MethodGet, "/v1/subscription?period=2024-06", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var summary struct {
		Period    string `json:"period"`
		SeatUsage int    `json:"seatUsage"`
		Status    string `json:"status"`
	}
	s.decode(w, &summary)
	s.Equal("2024-06", summary.Period)
	s.Equal(0, summary.SeatUsage)
	s.Equal(types.SubscriptionSummaryStatusEstimated, summary.Status)
}

func (s *RouterSuite) TestTaskLifecycle() {
	s.CreateTenant(testutil.TestTenantID, 0)

	w := s.tenantRequest(http.MethodPost, "/v1/tasks", map[string]any{
		"client_id": "client_1",
		"title":     "MVA-melding",
		"due_at":    "2024-06-20T00:00:00Z",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID         string `json:"id"`
		TaskStatus string `json:"task_status"`
	}
	s.decode(w, &created)
	s.Equal(string(types.TaskStatusPending), created.TaskStatus)

	w = s.tenantRequest(http.MethodPut, "/v1/tasks/"+created.ID+"/status", map[string]any{"status": "pågår"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.tenantRequest(http.MethodPost, "/v1/tasks/"+created.ID+"/complete", map[string]any{"minutes": 90})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var completed struct {
		Task struct {
			TaskStatus string `json:"task_status"`
		} `json:"task"`
		TimeEntry *struct {
			Minutes int `json:"minutes"`
		} `json:"time_entry"`
	}
	s.decode(w, &completed)
	s.Equal(string(types.TaskStatusCompleted), completed.Task.TaskStatus)
	s.Require().NotNil(completed.TimeEntry)
	s.Equal(90, completed.TimeEntry.Minutes)

	// status never moves backwards
	w = s.tenantRequest(http.MethodPut, "/v1/tasks/"+created.ID+"/status", map[string]any{"status": "pending"})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	w = s.tenantRequest(http.MethodGet, "/v1/tasks?client_id=client_1", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	s.decode(w, &list)
	s.Len(list.Items, 1)

	w = s.tenantRequest(http.MethodGet, "/v1/tasks/task_missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestInvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString("{"))
	req.Header.Set(types.HeaderTenantID, testutil.TestTenantID)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	var body struct {
		Success bool `json:"success"`
	}
	s.decode(w, &body)
	s.False(body.Success)
}

func (s *RouterSuite) TestRecurringTaskNormalizesFrequency() {
	s.CreateTenant(testutil.TestTenantID, 0)

	w := s.tenantRequest(http.MethodPost, "/v1/recurring-tasks", map[string]any{
		"client_id":   "client_1",
		"name":        "MVA-oppgave",
		"frequency":   "kvartalsvis",
		"next_due_at": "2024-07-10T00:00:00Z",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var tmpl struct {
		ID        string `json:"id"`
		Frequency string `json:"frequency"`
	}
	s.decode(w, &tmpl)
	s.Equal(string(types.FrequencyQuarterly), tmpl.Frequency)

	w = s.tenantRequest(http.MethodPut, "/v1/recurring-tasks/"+tmpl.ID, map[string]any{"frequency": "ukentlig"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &tmpl)
	s.Equal(string(types.FrequencyWeekly), tmpl.Frequency)
}

func (s *RouterSuite) TestAdminRequiresKey() {
	w := s.do(http.MethodGet, "/admin/scheduler/status", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/scheduler/status", nil, map[string]string{types.HeaderAdminKey: "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.adminRequest(http.MethodGet, "/admin/scheduler/status", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var status struct {
		IsRunning bool `json:"isRunning"`
	}
	s.decode(w, &status)
	s.False(status.IsRunning)
}

func (s *RouterSuite) TestSchedulerStartStop() {
	w := s.adminRequest(http.MethodPost, "/admin/scheduler/start", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var status struct {
		IsRunning   bool    `json:"isRunning"`
		NextCheckAt *string `json:"nextCheckAt"`
	}
	s.decode(w, &status)
	s.True(status.IsRunning)
	s.NotNil(status.NextCheckAt)

	w = s.adminRequest(http.MethodPost, "/admin/scheduler/stop", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &status)
	s.False(status.IsRunning)
}

func (s *RouterSuite) TestTriggerIsRateLimited() {
	s.CreateTenant(testutil.TestTenantID, 0)

	w := s.tenantRequest(http.MethodPost, "/v1/recurring-tasks", map[string]any{
		"client_id": "client_1",
		"name":      "Lønnskjøring",
		"frequency": "månedlig",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.adminRequest(http.MethodPost, "/admin/scheduler/trigger", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Processed int `json:"processed"`
		Generated []struct {
			Title string `json:"title"`
		} `json:"generated"`
	}
	s.decode(w, &result)
	s.Equal(1, result.Processed)
	s.Require().Len(result.Generated, 1)
	s.Equal("Lønnskjøring", result.Generated[0].Title)

	w = s.adminRequest(http.MethodPost, "/admin/scheduler/trigger", nil)
	s.Equal(http.StatusTooManyRequests, w.Code, w.Body.String())
}

func (s *RouterSuite) TestCronRollOver() {
	s.CreateTenant(testutil.TestTenantID, 0)
	s.CreateTenant("tenant_other", 0)
	s.CreateUser(testutil.TestTenantID, "a@example.no", true)

	w := s.adminRequest(http.MethodPost, "/cron/licensing/rollover", map[string]any{"period": "2024-07"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Period    string            `json:"period"`
		Succeeded []string          `json:"succeeded"`
		Failed    map[string]string `json:"failed"`
	}
	s.decode(w, &resp)
	s.Equal("2024-07", resp.Period)
	s.ElementsMatch([]string{testutil.TestTenantID, "tenant_other"}, resp.Succeeded)
	s.Empty(resp.Failed)

	w = s.adminRequest(http.MethodPost, "/cron/licensing/rollover", map[string]any{"period": "juli"})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}
