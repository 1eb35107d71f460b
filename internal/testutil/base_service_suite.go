package testutil

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/cache"
	"github.com/kontorapp/kontor/internal/config"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/domain/user"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

// TestTenantID is the tenant the suite context is scoped to
const TestTenantID = "tenant_test"

// Stores holds the in-memory repositories of a test
type Stores struct {
	TenantRepo        *InMemoryTenantStore
	UserRepo          *InMemoryUserStore
	RecurringTaskRepo *InMemoryRecurringTaskStore
	TaskRepo          *InMemoryTaskStore
	TimeEntryRepo     *InMemoryTimeEntryStore
	LicenseRepo       *InMemoryLicenseStore
	InvoiceRepo       *InMemoryInvoiceStore
	InvoiceLineRepo   *InMemoryInvoiceLineStore
}

func (s Stores) all() []Snapshotter {
	return []Snapshotter{
		s.TenantRepo, s.UserRepo, s.RecurringTaskRepo, s.TaskRepo,
		s.TimeEntryRepo, s.LicenseRepo, s.InvoiceRepo, s.InvoiceLineRepo,
	}
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     *MockPostgresClient
	logger *logger.Logger
	config *config.Configuration
	clock  *types.FixedClock
	cache  cache.Cache
	sender *RecordingSender
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.clock = types.NewFixedClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.sender = NewRecordingSender()
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TenantRepo:        NewInMemoryTenantStore(),
		UserRepo:          NewInMemoryUserStore(),
		RecurringTaskRepo: NewInMemoryRecurringTaskStore(),
		TaskRepo:          NewInMemoryTaskStore(),
		TimeEntryRepo:     NewInMemoryTimeEntryStore(),
		LicenseRepo:       NewInMemoryLicenseStore(),
		InvoiceRepo:       NewInMemoryInvoiceStore(),
		InvoiceLineRepo:   NewInMemoryInvoiceLineStore(),
	}
	s.db = NewMockPostgresClient(s.stores.all()...)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TenantRepo.Clear()
	s.stores.UserRepo.Clear()
	s.stores.RecurringTaskRepo.Clear()
	s.stores.TaskRepo.Clear()
	s.stores.TimeEntryRepo.Clear()
	s.stores.LicenseRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.InvoiceLineRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context, scoped to TestTenantID
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetClock returns the fixed test clock
func (s *BaseServiceTestSuite) GetClock() *types.FixedClock {
	return s.clock
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.clock.Now()
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetSender() *RecordingSender {
	return s.sender
}

// CreateTenant stores a tenant with the given seat limit; a limit of 0 means
// the plan default
func (s *BaseServiceTestSuite) CreateTenant(id string, employeeLimit int) *tenant.Tenant {
	now := s.GetNow()
	t := &tenant.Tenant{
		ID:            id,
		Name:          "Regnskap " + id,
		Plan:          "standard",
		EmployeeLimit: lo.Ternary(employeeLimit > 0, lo.ToPtr(employeeLimit), (*int)(nil)),
		Status:        types.StatusPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     types.SystemUserID,
		UpdatedBy:     types.SystemUserID,
	}
	s.Require().NoError(s.stores.TenantRepo.Create(s.ctx, t))
	return t
}

// CreateUser stores a user of tenantID without touching the ledger
func (s *BaseServiceTestSuite) CreateUser(tenantID, email string, licensed bool) *user.User {
	ctx := types.WithTenantID(s.ctx, tenantID)
	u := &user.User{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Email:      email,
		Name:       email,
		Role:       user.RoleEmployee,
		IsLicensed: licensed,
		BaseModel:  types.GetBaseModelAt(ctx, s.GetNow()),
	}
	s.Require().NoError(s.stores.UserRepo.Create(ctx, u))
	return u
}
