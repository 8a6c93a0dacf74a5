package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/landbroker/api/internal/errors"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

var buyer = models.Actor{ID: "buyer-1", Role: models.RoleBuyer}

func TestCreatePurchaseRequest(t *testing.T) {
	t.Run("buyer is the caller", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.purchases.On("Request", mock.Anything, "LAND-1", "buyer-1", "AB@01").
			Return(&models.PurchaseRequest{ID: 1, LandID: "LAND-1", BuyerID: "buyer-1", Status: models.PurchasePending}, nil)

		w := doJSON(router, http.MethodPost, "/api/v1/purchase-requests", `{"land_id":"LAND-1","land_code":"AB@01"}`, &buyer)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var req models.PurchaseRequest
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))
		assert.Equal(t, models.PurchasePending, req.Status)
	})

	t.Run("duplicate", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.purchases.On("Request", mock.Anything, "LAND-1", "buyer-1", "AB@01").
			Return(nil, fmt.Errorf("%w: purchase request already exists with status pending", services.ErrConflict))

		w := doJSON(router, http.MethodPost, "/api/v1/purchase-requests", `{"land_id":"LAND-1","land_code":"AB@01"}`, &buyer)

		assert.Equal(t, http.StatusConflict, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, apierrors.ErrConflict, detail.Code)
		assert.Contains(t, detail.Message, "status pending")
	})

	t.Run("missing land code", func(t *testing.T) {
		router, svc := setupAPIRouter()

		w := doJSON(router, http.MethodPost, "/api/v1/purchase-requests", `{"land_id":"LAND-1"}`, &buyer)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Details, "LandCode")
		svc.purchases.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		router, _ := setupAPIRouter()

		w := doJSON(router, http.MethodPost, "/api/v1/purchase-requests", `{"land_id":"LAND-1","land_code":"AB@01"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMyPurchaseRequests_ResolvesLandMedia(t *testing.T) {
	router, svc := setupAPIRouter()
	svc.purchases.On("ListByBuyer", mock.Anything, "buyer-1").Return([]models.PurchaseRequestWithLand{
		{
			PurchaseRequest: models.PurchaseRequest{ID: 1, LandID: "LAND-1"},
			Land:            models.LandRecord{LandID: "LAND-1", Media: models.MediaSection{LandPhoto: []string{"a.jpg"}}},
		},
	}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/mine", "", &buyer)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp PurchaseListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{testFilesBaseURL + "/images/a.jpg"}, resp.PurchaseRequests[0].Land.Media.LandPhoto)
}

func TestGetPurchaseRequest(t *testing.T) {
	item := &models.PurchaseRequestWithLand{
		PurchaseRequest: models.PurchaseRequest{ID: 7, LandID: "LAND-1", BuyerID: "buyer-1", Status: models.PurchasePending},
		Land:            models.LandRecord{LandID: "LAND-1", Media: models.MediaSection{LandPhoto: []string{"a.jpg"}}},
	}

	t.Run("buyer lookup is scoped to the caller", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.purchases.On("Get", mock.Anything, int64(7), "buyer-1").Return(item, nil)

		w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/7", "", &buyer)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got models.PurchaseRequestWithLand
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, models.PurchasePending, got.Status)
		assert.Equal(t, []string{testFilesBaseURL + "/images/a.jpg"}, got.Land.Media.LandPhoto)
	})

	t.Run("admin lookup is unscoped", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.purchases.On("Get", mock.Anything, int64(7), "").Return(item, nil)

		w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/7", "", &admin)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.purchases.On("Get", mock.Anything, int64(9), "buyer-1").
			Return(nil, fmt.Errorf("%w: purchase request 9", services.ErrNotFound))

		w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/9", "", &buyer)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		router, svc := setupAPIRouter()

		w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/abc", "", &buyer)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.purchases.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("anonymous", func(t *testing.T) {
		router, _ := setupAPIRouter()

		w := doJSON(router, http.MethodGet, "/api/v1/purchase-requests/7", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDecidePurchaseRequest(t *testing.T) {
	router, svc := setupAPIRouter()
	svc.purchases.On("Decide", mock.Anything, int64(5), models.PurchaseApproved).
		Return(&models.PurchaseRequest{ID: 5, Status: models.PurchaseApproved}, nil)
	svc.purchases.On("Decide", mock.Anything, int64(6), models.PurchaseRejected).
		Return(nil, fmt.Errorf("%w: purchase request is already approved", services.ErrConflict))

	w := doJSON(router, http.MethodPatch, "/api/v1/purchase-requests/5", `{"status":"approved"}`, &agent)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/v1/purchase-requests/6", `{"status":"rejected"}`, &agent)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/v1/purchase-requests/5", `{"status":"pending"}`, &agent)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
