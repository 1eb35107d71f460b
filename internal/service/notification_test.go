package service

import (
	"testing"

	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/testutil"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type NotificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service NotificationService
}

func TestNotificationService(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewNotificationService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *NotificationServiceSuite) TestNotifiesAssigneesBestEffort() {
	u := s.CreateUser(testutil.TestTenantID, "kari@example.no", true)
	due := date(2024, 7, 1)

	tasks := []*task.Task{
		{ID: "task_1", Title: "MVA", AssigneeID: lo.ToPtr(u.ID), DueAt: due, BaseModel: types.BaseModel{TenantID: testutil.TestTenantID}},
		{ID: "task_2", Title: "Uten ansvarlig", DueAt: due, BaseModel: types.BaseModel{TenantID: testutil.TestTenantID}},
		{ID: "task_3", Title: "Slettet bruker", AssigneeID: lo.ToPtr("user_missing"), DueAt: due, BaseModel: types.BaseModel{TenantID: testutil.TestTenantID}},
	}

	sent := s.service.NotifyAssignees(s.GetContext(), tasks)
	s.Equal(1, sent)

	recorded := s.GetSender().Sent()
	s.Require().Len(recorded, 1)
	s.Equal("kari@example.no", recorded[0].Email)
	s.Equal("Ny oppgave: MVA", recorded[0].Subject)
	s.Equal(due, recorded[0].DueDate)
}

func (s *NotificationServiceSuite) TestSenderFailureIsSwallowed() {
	u := s.CreateUser(testutil.TestTenantID, "kari@example.no", true)
	s.GetSender().Err = testutil.ErrInjected

	sent := s.service.NotifyAssignees(s.GetContext(), []*task.Task{
		{ID: "task_1", Title: "MVA", AssigneeID: lo.ToPtr(u.ID), DueAt: date(2024, 7, 1), BaseModel: types.BaseModel{TenantID: testutil.TestTenantID}},
	})
	s.Equal(0, sent)
}
