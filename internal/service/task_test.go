package service

import (
	"testing"
	"time"

	"github.com/kontorapp/kontor/internal/api/dto"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/testutil"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type TaskServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TaskService
}

func TestTaskService(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewTaskService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *TaskServiceSuite) createTask(clientID, title string, due time.Time) *dto.TaskResponse {
	resp, err := s.service.CreateTask(s.GetContext(), dto.CreateTaskRequest{
		ClientID:   clientID,
		Title:      title,
		AssigneeID: lo.ToPtr("user_test"),
		DueAt:      due,
	})
	s.Require().NoError(err)
	return resp
}

func (s *TaskServiceSuite) TestCreateAndGet() {
	created := s.createTask("client_1", "A-melding", date(2024, 7, 5))
	s.Equal(types.TaskStatusPending, created.TaskStatus)
	s.Equal("ikke_startet", created.StatusLabel)
	s.Nil(created.TemplateID)

	got, err := s.service.GetTask(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal(created.Title, got.Title)

	_, err = s.service.CreateTask(s.GetContext(), dto.CreateTaskRequest{
		ClientID: "client_1",
		Title:    "A-melding",
		DueAt:    date(2024, 7, 5).Add(3 * time.Hour),
	})
	s.True(ierr.IsAlreadyExists(err))

	_, err = s.service.CreateTask(s.GetContext(), dto.CreateTaskRequest{Title: "uten klient"})
	s.True(ierr.IsValidation(err))
}

func (s *TaskServiceSuite) TestListTasks() {
	s.createTask("client_1", "Bilag juni", date(2024, 7, 1))
	s.createTask("client_1", "Bilag juli", date(2024, 8, 1))
	s.createTask("client_2", "Bilag juni", date(2024, 7, 1))

	resp, err := s.service.ListTasks(s.GetContext(), &types.TaskFilter{ClientID: "client_1"})
	s.Require().NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Require().Len(resp.Items, 2)
	s.Equal("Bilag juni", resp.Items[0].Title)

	resp, err = s.service.ListTasks(s.GetContext(), &types.TaskFilter{DueFrom: lo.ToPtr(date(2024, 7, 15)), Limit: 1})
	s.Require().NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Equal("Bilag juli", resp.Items[0].Title)

	resp, err = s.service.ListTasks(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(resp.Items, 3)
}

func (s *TaskServiceSuite) TestUpdateTaskStatus() {
	created := s.createTask("client_1", "Årsregnskap", date(2024, 7, 1))

	resp, err := s.service.UpdateTaskStatus(s.GetContext(), created.ID, "pågår")
	s.Require().NoError(err)
	s.Equal(types.TaskStatusInProgress, resp.TaskStatus)
	s.Nil(resp.CompletedAt)

	_, err = s.service.UpdateTaskStatus(s.GetContext(), created.ID, "ikke_startet")
	s.True(ierr.IsInvalidOperation(err))

	resp, err = s.service.UpdateTaskStatus(s.GetContext(), created.ID, "completed")
	s.Require().NoError(err)
	s.Equal(types.TaskStatusCompleted, resp.TaskStatus)
	s.Require().NotNil(resp.CompletedAt)
	s.Equal(s.GetNow(), *resp.CompletedAt)

	_, err = s.service.UpdateTaskStatus(s.GetContext(), created.ID, "kanskje")
	s.True(ierr.IsValidation(err))
}

func (s *TaskServiceSuite) TestCompleteTaskRecordsTime() {
	created := s.createTask("client_1", "Avstemming bank", date(2024, 6, 14))

	resp, err := s.service.CompleteTask(s.GetContext(), created.ID, dto.CompleteTaskRequest{Minutes: 90})
	s.Require().NoError(err)
	s.Equal(types.TaskStatusCompleted, resp.Task.TaskStatus)
	s.Require().NotNil(resp.TimeEntry)
	s.Equal(90, resp.TimeEntry.Minutes)
	s.Equal("user_test", resp.TimeEntry.UserID)
	s.Equal("Avstemming bank", resp.TimeEntry.Description)
	s.Equal(date(2024, 6, 15), resp.TimeEntry.WorkDate)
	s.Equal("1.5", resp.TimeEntry.Hours().String())

	entries, err := s.GetStores().TimeEntryRepo.ListByTask(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)

	_, err = s.service.CompleteTask(s.GetContext(), created.ID, dto.CompleteTaskRequest{Minutes: 10})
	s.True(ierr.IsInvalidOperation(err))

	entries, err = s.GetStores().TimeEntryRepo.ListByTask(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *TaskServiceSuite) TestCompleteTaskWithoutMinutes() {
	created := s.createTask("client_1", "Purring", date(2024, 6, 14))

	resp, err := s.service.CompleteTask(s.GetContext(), created.ID, dto.CompleteTaskRequest{})
	s.Require().NoError(err)
	s.Nil(resp.TimeEntry)

	_, err = s.service.CompleteTask(s.GetContext(), created.ID, dto.CompleteTaskRequest{Description: "bare tekst"})
	s.True(ierr.IsValidation(err))
}
