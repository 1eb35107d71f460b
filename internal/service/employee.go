package service

import (
	"context"

	"github.com/kontorapp/kontor/internal/api/dto"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
)

// EmployeeService creates tenant users and flips their license. Every path
// that adds a licensed employee goes through the SeatGuard and the ledger.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetEmployee(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	ToggleLicense(ctx context.Context, id string, req dto.ToggleLicenseRequest) (*dto.EmployeeResponse, error)
}

type employeeService struct {
	ServiceParams
	ledger LicenseService
	guard  SeatGuard
}

func NewEmployeeService(params ServiceParams, ledger LicenseService, guard SeatGuard) EmployeeService {
	return &employeeService{
		ServiceParams: params,
		ledger:        ledger,
		guard:         guard,
	}
}

func (s *employeeService) tenantID(ctx context.Context) (string, error) {
	tenantID := types.GetTenantID(ctx)
	if tenantID == "" {
		return "", ierr.NewError("tenant id missing from context").
			WithHint("Tenant ID is required").
			Mark(ierr.ErrValidation)
	}
	return tenantID, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}

	// cheap rejection before any write; the ledger re-checks under the lock
	if req.Licensed {
		if err := s.guard.Check(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	u := req.ToUser(ctx, s.now())
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// The tenant row lock must precede the user insert: the insert takes
		// a key share lock on the tenant through the foreign key.
		if req.Licensed {
			if _, err := s.TenantRepo.GetForUpdate(ctx, tenantID); err != nil {
				return err
			}
		}
		if err := s.UserRepo.Create(ctx, u); err != nil {
			return err
		}
		if !req.Licensed {
			return nil
		}
		return s.ledger.ProcessNewEmployeeLicense(ctx, tenantID, u.ID)
	})
	if err != nil {
		return nil, err
	}

	if req.Licensed {
		u.IsLicensed = true
	}

	s.Logger.Infow("created employee",
		"tenant_id", tenantID,
		"user_id", u.ID,
		"licensed", u.IsLicensed,
	)
	return dto.NewEmployeeResponse(u), nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	u, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewEmployeeResponse(u), nil
}

func (s *employeeService) ToggleLicense(ctx context.Context, id string, req dto.ToggleLicenseRequest) (*dto.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tenantID, err := s.tenantID(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if *req.IsLicensed && !current.IsLicensed {
		if err := s.guard.Check(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	if err := s.ledger.ToggleEmployeeLicense(ctx, tenantID, id, *req.IsLicensed); err != nil {
		return nil, err
	}

	return s.GetEmployee(ctx, id)
}
