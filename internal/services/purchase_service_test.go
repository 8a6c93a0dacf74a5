package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/landbroker/api/internal/logger"
	"github.com/stwalsh4118/landbroker/api/internal/metrics"
	"github.com/stwalsh4118/landbroker/api/internal/models"
)

type purchaseFixture struct {
	svc       PurchaseService
	store     *fakeStore
	purchases *MockPurchaseRepository
	lands     *MockLandRepository
	metrics   *metrics.Metrics
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		store:     &fakeStore{},
		purchases: new(MockPurchaseRepository),
		lands:     new(MockLandRepository),
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}
	f.svc = NewPurchaseService(f.store, f.purchases, f.lands, f.metrics, logger.Nop())
	return f
}

func TestPurchaseRequest_Created(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	f.lands.On("Exists", ctx, mock.Anything, "LAND-1").Return(true, nil)
	f.purchases.On("Insert", ctx, mock.Anything, "LAND-1", "buyer-1", "AB@01").
		Return(&models.PurchaseRequest{ID: 1, LandID: "LAND-1", BuyerID: "buyer-1", Status: models.PurchasePending}, nil)

	req, err := f.svc.Request(ctx, "LAND-1", "buyer-1", "AB@01")

	require.NoError(t, err)
	assert.Equal(t, models.PurchasePending, req.Status)
	assert.Equal(t, 1, f.store.commits)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.PurchaseRequests.WithLabelValues("created")))
}

func TestPurchaseRequest_DuplicateConflicts(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	f.lands.On("Exists", ctx, mock.Anything, "LAND-1").Return(true, nil)
	f.purchases.On("Insert", ctx, mock.Anything, "LAND-1", "buyer-1", "AB@01").Return(nil, nil)
	f.purchases.On("FindByLandAndBuyer", ctx, mock.Anything, "LAND-1", "buyer-1").
		Return(&models.PurchaseRequest{ID: 1, Status: models.PurchaseApproved}, nil)

	_, err := f.svc.Request(ctx, "LAND-1", "buyer-1", "AB@01")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "approved")
	assert.Equal(t, 1.0, promtestutil.ToFloat64(f.metrics.PurchaseRequests.WithLabelValues("duplicate")))
}

func TestPurchaseRequest_UnknownLand(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	f.lands.On("Exists", ctx, mock.Anything, "LAND-404").Return(false, nil)

	_, err := f.svc.Request(ctx, "LAND-404", "buyer-1", "AB@01")

	assert.ErrorIs(t, err, ErrNotFound)
	f.purchases.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseRequest_Validation(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	_, err := f.svc.Request(ctx, "", "buyer-1", "AB@01")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "land_id")

	_, err = f.svc.Request(ctx, "LAND-1", "buyer-1", " ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "land_code")

	assert.Zero(t, f.store.commits+f.store.rollbacks)
}

func TestPurchaseDecide(t *testing.T) {
	t.Run("pending to approved", func(t *testing.T) {
		f := newPurchaseFixture()
		ctx := context.Background()

		f.purchases.On("Lock", ctx, mock.Anything, int64(1)).
			Return(&models.PurchaseRequest{ID: 1, Status: models.PurchasePending}, nil)
		f.purchases.On("UpdateStatus", ctx, mock.Anything, int64(1), models.PurchaseApproved).
			Return(&models.PurchaseRequest{ID: 1, Status: models.PurchaseApproved}, nil)

		req, err := f.svc.Decide(ctx, 1, models.PurchaseApproved)

		require.NoError(t, err)
		assert.Equal(t, models.PurchaseApproved, req.Status)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newPurchaseFixture()
		ctx := context.Background()

		f.purchases.On("Lock", ctx, mock.Anything, int64(2)).
			Return(&models.PurchaseRequest{ID: 2, Status: models.PurchaseRejected}, nil)

		_, err := f.svc.Decide(ctx, 2, models.PurchaseApproved)

		assert.ErrorIs(t, err, ErrConflict)
		assert.Contains(t, err.Error(), "already rejected")
	})

	t.Run("cannot decide pending", func(t *testing.T) {
		f := newPurchaseFixture()

		_, err := f.svc.Decide(context.Background(), 3, models.PurchasePending)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newPurchaseFixture()
		ctx := context.Background()

		f.purchases.On("Lock", ctx, mock.Anything, int64(4)).Return(nil, nil)

		_, err := f.svc.Decide(ctx, 4, models.PurchaseRejected)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPurchaseListByBuyer(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	_, err := f.svc.ListByBuyer(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	f.purchases.On("ListByBuyer", ctx, mock.Anything, "buyer-1").Return([]models.PurchaseRequestWithLand{
		{PurchaseRequest: models.PurchaseRequest{ID: 1}, Land: models.LandRecord{LandID: "LAND-1"}},
	}, nil)

	requests, err := f.svc.ListByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "LAND-1", requests[0].Land.LandID)
}

func TestPurchaseGet(t *testing.T) {
	ctx := context.Background()
	item := &models.PurchaseRequestWithLand{
		PurchaseRequest: models.PurchaseRequest{ID: 7, LandID: "LAND-1", BuyerID: "buyer-1", Status: models.PurchasePending},
		Land:            models.LandRecord{LandID: "LAND-1"},
	}

	t.Run("owner sees own request", func(t *testing.T) {
		f := newPurchaseFixture()
		f.purchases.On("GetWithLand", ctx, mock.Anything, int64(7)).Return(item, nil)

		got, err := f.svc.Get(ctx, 7, "buyer-1")

		require.NoError(t, err)
		assert.Equal(t, "LAND-1", got.Land.LandID)
		assert.Equal(t, models.PurchasePending, got.Status)
	})

	t.Run("unscoped lookup", func(t *testing.T) {
		f := newPurchaseFixture()
		f.purchases.On("GetWithLand", ctx, mock.Anything, int64(7)).Return(item, nil)

		got, err := f.svc.Get(ctx, 7, "")

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("another buyer", func(t *testing.T) {
		f := newPurchaseFixture()
		f.purchases.On("GetWithLand", ctx, mock.Anything, int64(7)).Return(item, nil)

		_, err := f.svc.Get(ctx, 7, "buyer-2")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		f := newPurchaseFixture()
		f.purchases.On("GetWithLand", ctx, mock.Anything, int64(8)).Return(nil, nil)

		_, err := f.svc.Get(ctx, 8, "buyer-1")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
