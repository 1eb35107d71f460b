package service

import (
	"fmt"
	"testing"

	"github.com/kontorapp/kontor/internal/api/dto"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/testutil"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type EmployeeServiceSuite struct {
	testutil.BaseServiceTestSuite
	ledger  LicenseService
	service EmployeeService
}

func TestEmployeeService(t *testing.T) {
	suite.Run(t, new(EmployeeServiceSuite))
}

func (s *EmployeeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.ledger = NewLicenseService(params)
	s.service = NewEmployeeService(params, s.ledger, NewSeatGuard(s.ledger))
	s.CreateTenant(testutil.TestTenantID, 2)
}

func (s *EmployeeServiceSuite) create(n int, licensed bool) (*dto.EmployeeResponse, error) {
	return s.service.CreateEmployee(s.GetContext(), dto.CreateEmployeeRequest{
		Email:    fmt.Sprintf("Ansatt%d@Example.no", n),
		Name:     fmt.Sprintf("Ansatt %d", n),
		Licensed: licensed,
	})
}

func (s *EmployeeServiceSuite) TestCreateLicensedEmployee() {
	resp, err := s.create(1, true)
	s.Require().NoError(err)
	s.True(resp.IsLicensed)
	s.Equal("ansatt1@example.no", resp.Email)

	seats, err := s.ledger.GetSeatUsage(s.GetContext(), testutil.TestTenantID)
	s.Require().NoError(err)
	s.Equal(1, seats)

	record, err := s.GetStores().LicenseRepo.Get(s.GetContext(), resp.ID, "2024-06")
	s.Require().NoError(err)
	s.True(record.IsLicensed)
}

func (s *EmployeeServiceSuite) TestCreateBeyondLimitRollsBackUser() {
	_, err := s.create(1, true)
	s.Require().NoError(err)
	_, err = s.create(2, true)
	s.Require().NoError(err)

	_, err = s.create(3, true)
	s.Require().Error(err)
	s.True(ierr.IsSeatLimitExceeded(err))

	details := ierr.ReportableDetails(err)
	s.EqualValues(2, details["currentSeats"])
	s.EqualValues(2, details["seatLimit"])

	s.Equal(2, s.GetStores().UserRepo.Count(s.GetContext(), nil))

	// unlicensed employees do not need a seat
	resp, err := s.create(3, false)
	s.Require().NoError(err)
	s.False(resp.IsLicensed)
}

func (s *EmployeeServiceSuite) TestDuplicateEmailIsRejected() {
	_, err := s.create(1, false)
	s.Require().NoError(err)

	_, err = s.create(1, false)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *EmployeeServiceSuite) TestToggleLicense() {
	a, err := s.create(1, true)
	s.Require().NoError(err)
	b, err := s.create(2, true)
	s.Require().NoError(err)
	c, err := s.create(3, false)
	s.Require().NoError(err)

	_, err = s.service.ToggleLicense(s.GetContext(), c.ID, dto.ToggleLicenseRequest{IsLicensed: lo.ToPtr(true)})
	s.True(ierr.IsSeatLimitExceeded(err))

	resp, err := s.service.ToggleLicense(s.GetContext(), a.ID, dto.ToggleLicenseRequest{IsLicensed: lo.ToPtr(false)})
	s.Require().NoError(err)
	s.False(resp.IsLicensed)

	resp, err = s.service.ToggleLicense(s.GetContext(), c.ID, dto.ToggleLicenseRequest{IsLicensed: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.True(resp.IsLicensed)

	// an already licensed employee keeps its seat at the limit
	resp, err = s.service.ToggleLicense(s.GetContext(), b.ID, dto.ToggleLicenseRequest{IsLicensed: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.True(resp.IsLicensed)

	_, err = s.service.ToggleLicense(s.GetContext(), c.ID, dto.ToggleLicenseRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *EmployeeServiceSuite) TestRequiresTenant() {
	ctx := types.WithTenantID(s.GetContext(), "")
	_, err := s.service.CreateEmployee(ctx, dto.CreateEmployeeRequest{Email: "a@example.no", Name: "A"})
	s.True(ierr.IsValidation(err))
}

func (s *EmployeeServiceSuite) TestCreateLicensedEmployeeLocksTenantBeforeInsert() {
	log := &testutil.CallLog{}
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.TenantRepo = &testutil.RecordingTenantRepository{Repository: params.TenantRepo, Log: log}
	params.UserRepo = &testutil.RecordingUserRepository{Repository: params.UserRepo, Log: log}
	ledger := NewLicenseService(params)
	svc := NewEmployeeService(params, ledger, NewSeatGuard(ledger))

	_, err := svc.CreateEmployee(s.GetContext(), dto.CreateEmployeeRequest{
		Email:    "laas@example.no",
		Name:     "Laas",
		Licensed: true,
	})
	s.Require().NoError(err)

	calls := log.Calls()
	lockAt := lo.IndexOf(calls, "tenant.GetForUpdate")
	createAt := lo.IndexOf(calls, "user.Create")
	s.Require().NotEqual(-1, lockAt)
	s.Require().NotEqual(-1, createAt)
	s.Less(lockAt, createAt, "calls: %v", calls)
}
