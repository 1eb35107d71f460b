package service

import (
	"github.com/kontorapp/kontor/internal/testutil"
)

// newTestServiceParams wires the suite's in-memory stores into ServiceParams
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	pricing, err := s.GetConfig().Licensing.Pricing()
	s.Require().NoError(err)

	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		Clock:             s.GetClock(),
		Cache:             s.GetCache(),
		Pricing:           pricing,
		TenantRepo:        stores.TenantRepo,
		UserRepo:          stores.UserRepo,
		RecurringTaskRepo: stores.RecurringTaskRepo,
		TaskRepo:          stores.TaskRepo,
		TimeEntryRepo:     stores.TimeEntryRepo,
		LicenseRepo:       stores.LicenseRepo,
		InvoiceRepo:       stores.InvoiceRepo,
		InvoiceLineRepo:   stores.InvoiceLineRepo,
		Sender:            s.GetSender(),
	}
}
