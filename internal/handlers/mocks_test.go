package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/routing"
)

const testFilesBaseURL = "https://files.example.com/public"

// testServices bundles the mocked services behind a test router.
type testServices struct {
	lands        *MockLandService
	verification *MockVerificationService
	codes        *MockLandCodeService
	purchases    *MockPurchaseService
	ledger       *MockLedgerService
}

// setupAPIRouter creates a router with the production middleware chain
// and all API v1 routes backed by mocks.
func setupAPIRouter() (*gin.Engine, *testServices) {
	gin.SetMode(gin.TestMode)

	svc := &testServices{
		lands:        new(MockLandService),
		verification: new(MockVerificationService),
		codes:        new(MockLandCodeService),
		purchases:    new(MockPurchaseService),
		ledger:       new(MockLedgerService),
	}
	files := NewFileResolver(testFilesBaseURL)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	router.Use(middleware.Actor())

	Handlers{
		Lands:     NewLandHandler(svc.lands, svc.verification, files),
		LandCodes: NewLandCodeHandler(svc.codes),
		Purchases: NewPurchaseHandler(svc.purchases, files),
		Ledger:    NewLedgerHandler(svc.ledger),
	}.Register(router.Group("/api/v1"))

	return router, svc
}

// MockLandService is a mock implementation of services.LandService for testing
type MockLandService struct {
	mock.Mock
}

func (m *MockLandService) CreateRecord(ctx context.Context, actor models.Actor, bag routing.FieldBag, files routing.FileRefs) (string, error) {
	args := m.Called(ctx, actor, bag, files)
	return args.String(0), args.Error(1)
}

func (m *MockLandService) UpdateRecord(ctx context.Context, landID string, bag routing.FieldBag, files routing.FileRefs, actor models.Actor, mode models.Mode) error {
	return m.Called(ctx, landID, bag, files, actor, mode).Error(0)
}

func (m *MockLandService) GetRecord(ctx context.Context, landID string) (*models.LandRecord, error) {
	args := m.Called(ctx, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandRecord), args.Error(1)
}

func (m *MockLandService) ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.LandRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LandRecord), args.Error(1)
}

func (m *MockLandService) DeleteRecord(ctx context.Context, landID string) error {
	return m.Called(ctx, landID).Error(0)
}

// MockVerificationService is a mock implementation of services.VerificationService for testing
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) TransitionVerification(ctx context.Context, landID string, state models.VerificationState, remarks string, actor models.Actor) error {
	return m.Called(ctx, landID, state, remarks, actor).Error(0)
}

// MockLandCodeService is a mock implementation of services.LandCodeService for testing
type MockLandCodeService struct {
	mock.Mock
}

func (m *MockLandCodeService) Generate(ctx context.Context, region models.Region, prefix string, count int) ([]models.LandCode, error) {
	args := m.Called(ctx, region, prefix, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LandCode), args.Error(1)
}

func (m *MockLandCodeService) Assign(ctx context.Context, id int64, in models.AssignInput) (*models.LandCode, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeService) BulkAssign(ctx context.Context, items []models.AssignInput) ([]models.BulkAssignResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BulkAssignResult), args.Error(1)
}

func (m *MockLandCodeService) Get(ctx context.Context, id int64) (*models.LandCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeService) List(ctx context.Context, filter models.LandCodeFilter) ([]models.LandCode, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LandCode), args.Error(1)
}

func (m *MockLandCodeService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLandCodeService) Stats(ctx context.Context, filter models.LandCodeFilter) (*models.LandCodeStats, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCodeStats), args.Error(1)
}

// MockPurchaseService is a mock implementation of services.PurchaseService for testing
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Request(ctx context.Context, landID, buyerID, landCode string) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, landID, buyerID, landCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseService) ListByBuyer(ctx context.Context, buyerID string) ([]models.PurchaseRequestWithLand, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseRequestWithLand), args.Error(1)
}

func (m *MockPurchaseService) Get(ctx context.Context, id int64, buyerID string) (*models.PurchaseRequestWithLand, error) {
	args := m.Called(ctx, id, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequestWithLand), args.Error(1)
}

func (m *MockPurchaseService) Decide(ctx context.Context, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

// MockLedgerService is a mock implementation of services.LedgerService for testing
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Open(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error) {
	args := m.Called(ctx, q, entry)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, subjectID string, tag models.VerificationTag) (bool, error) {
	args := m.Called(ctx, q, kind, subjectID, tag)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Settle(ctx context.Context, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id, status, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) OpenTravel(ctx context.Context, sessionID, payeeID string, distanceKM decimal.Decimal) (*models.LedgerEntry, bool, error) {
	args := m.Called(ctx, sessionID, payeeID, distanceKM)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) ListByPayee(ctx context.Context, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, payeeID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) ListByLand(ctx context.Context, landID string) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}
