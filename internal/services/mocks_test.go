package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/landbroker/api/internal/database"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// fakeStore runs transaction bodies inline and counts the outcome.
type fakeStore struct {
	commits   int
	rollbacks int
}

func (f *fakeStore) WithTx(_ context.Context, fn func(q database.Querier) error) error {
	if err := fn(nil); err != nil {
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

func (f *fakeStore) Querier() database.Querier { return nil }

// MockLandRepository is a mock implementation of LandRepository for testing
type MockLandRepository struct {
	mock.Mock
}

func (m *MockLandRepository) NextLandID(ctx context.Context, q database.Querier) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

func (m *MockLandRepository) Insert(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error {
	return m.Called(ctx, q, landID, patch).Error(0)
}

func (m *MockLandRepository) LockLocation(ctx context.Context, q database.Querier, landID string) (*models.LocationSection, error) {
	args := m.Called(ctx, q, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationSection), args.Error(1)
}

func (m *MockLandRepository) ApplyPatch(ctx context.Context, q database.Querier, landID string, patch models.RecordPatch) error {
	return m.Called(ctx, q, landID, patch).Error(0)
}

func (m *MockLandRepository) StampVerified(ctx context.Context, q database.Querier, landID, verifierID string, at time.Time) error {
	return m.Called(ctx, q, landID, verifierID, at).Error(0)
}

func (m *MockLandRepository) Get(ctx context.Context, q database.Querier, landID string) (*models.LandRecord, error) {
	args := m.Called(ctx, q, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandRecord), args.Error(1)
}

func (m *MockLandRepository) List(ctx context.Context, q database.Querier, filter models.RecordFilter) ([]models.LandRecord, error) {
	args := m.Called(ctx, q, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LandRecord), args.Error(1)
}

func (m *MockLandRepository) Delete(ctx context.Context, q database.Querier, landID string) (bool, error) {
	args := m.Called(ctx, q, landID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLandRepository) Exists(ctx context.Context, q database.Querier, landID string) (bool, error) {
	args := m.Called(ctx, q, landID)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository for testing
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Insert(ctx context.Context, q database.Querier, entry models.OpenEntry) (*models.LedgerEntry, bool, error) {
	args := m.Called(ctx, q, entry)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) Exists(ctx context.Context, q database.Querier, kind models.LedgerKind, landID string, tag models.VerificationTag) (bool, error) {
	args := m.Called(ctx, q, kind, landID, tag)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.LedgerEntry, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateSettlement(ctx context.Context, q database.Querier, id int64, status models.LedgerStatus, amount *decimal.Decimal) (*models.LedgerEntry, error) {
	args := m.Called(ctx, q, id, status, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByPayee(ctx context.Context, q database.Querier, payeeID string, kind *models.LedgerKind) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, q, payeeID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByLand(ctx context.Context, q database.Querier, landID string) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, q, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

// MockLandCodeRepository is a mock implementation of LandCodeRepository for testing
type MockLandCodeRepository struct {
	mock.Mock
}

func (m *MockLandCodeRepository) ExistingCodes(ctx context.Context, q database.Querier, region models.Region) (map[string]struct{}, error) {
	args := m.Called(ctx, q, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockLandCodeRepository) InsertCode(ctx context.Context, q database.Querier, region models.Region, code string) (*models.LandCode, error) {
	args := m.Called(ctx, q, region, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeRepository) Get(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.LandCode, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeRepository) Update(ctx context.Context, q database.Querier, code *models.LandCode) (*models.LandCode, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LandCode), args.Error(1)
}

func (m *MockLandCodeRepository) List(ctx context.Context, q database.Querier, filter models.LandCodeFilter) ([]models.LandCode, error) {
	args := m.Called(ctx, q, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LandCode), args.Error(1)
}

func (m *MockLandCodeRepository) Delete(ctx context.Context, q database.Querier, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockLandCodeRepository) Count(ctx context.Context, q database.Querier, filter models.LandCodeFilter) (int64, error) {
	args := m.Called(ctx, q, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPurchaseRepository is a mock implementation of PurchaseRepository for testing
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Insert(ctx context.Context, q database.Querier, landID, buyerID, landCode string) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, q, landID, buyerID, landCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRepository) FindByLandAndBuyer(ctx context.Context, q database.Querier, landID, buyerID string) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, q, landID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRepository) Lock(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRepository) UpdateStatus(ctx context.Context, q database.Querier, id int64, status models.PurchaseStatus) (*models.PurchaseRequest, error) {
	args := m.Called(ctx, q, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRepository) ListByBuyer(ctx context.Context, q database.Querier, buyerID string) ([]models.PurchaseRequestWithLand, error) {
	args := m.Called(ctx, q, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PurchaseRequestWithLand), args.Error(1)
}

func (m *MockPurchaseRepository) GetWithLand(ctx context.Context, q database.Querier, id int64) (*models.PurchaseRequestWithLand, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseRequestWithLand), args.Error(1)
}

// MockRecordCache is a mock implementation of cache.RecordCache for testing
type MockRecordCache struct {
	mock.Mock
}

func (m *MockRecordCache) Get(ctx context.Context, landID string) (*models.LandRecord, bool, error) {
	args := m.Called(ctx, landID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.LandRecord), args.Bool(1), args.Error(2)
}

func (m *MockRecordCache) Generation(ctx context.Context, landID string) (int64, error) {
	args := m.Called(ctx, landID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordCache) Fill(ctx context.Context, record *models.LandRecord, generation int64) (bool, error) {
	args := m.Called(ctx, record, generation)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordCache) Invalidate(ctx context.Context, landIDs ...string) error {
	args := make([]interface{}, 0, len(landIDs)+1)
	args = append(args, ctx)
	for _, id := range landIDs {
		args = append(args, id)
	}
	return m.Called(args...).Error(0)
}

func strPtr(v string) *string { return &v }
