package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

func TestMyLedger(t *testing.T) {
	router, svc := setupAPIRouter()
	travel := models.LedgerTravel

	svc.ledger.On("ListByPayee", mock.Anything, "agent-1", (*models.LedgerKind)(nil)).
		Return([]models.LedgerEntry{{ID: 1}, {ID: 2}}, nil)
	svc.ledger.On("ListByPayee", mock.Anything, "agent-1", &travel).
		Return([]models.LedgerEntry{{ID: 2, Kind: models.LedgerTravel}}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/ledger/mine", "", &agent)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LedgerListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	w = doJSON(router, http.MethodGet, "/api/v1/ledger/mine?kind=travel", "", &agent)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)

	w = doJSON(router, http.MethodGet, "/api/v1/ledger/mine?kind=bonus", "", &agent)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/ledger/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLandLedger(t *testing.T) {
	router, svc := setupAPIRouter()
	svc.ledger.On("ListByLand", mock.Anything, "LAND-1").Return([]models.LedgerEntry{
		{ID: 1, Kind: models.LedgerCreationWork},
		{ID: 2, Kind: models.LedgerMonthEndWork},
		{ID: 3, Kind: models.LedgerPhysicalVerification},
	}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/lands/LAND-1/ledger", "", &admin)

	require.Equal(t, http.StatusOK, w.Code)
	var resp LedgerListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestRecordTravel(t *testing.T) {
	distance := decimal.RequireFromString("12.5")
	matchDistance := mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(distance) })

	t.Run("first call creates", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.ledger.On("OpenTravel", mock.Anything, "session-1", "agent-1", matchDistance).
			Return(&models.LedgerEntry{ID: 9, Kind: models.LedgerTravel}, true, nil)

		w := doJSON(router, http.MethodPost, "/api/v1/ledger/travel", `{"session_id":"session-1","distance_km":12.5}`, &agent)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp TravelResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Created)
		assert.Equal(t, int64(9), resp.Entry.ID)
	})

	t.Run("repeat returns existing", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.ledger.On("OpenTravel", mock.Anything, "session-1", "agent-1", matchDistance).
			Return(&models.LedgerEntry{ID: 9, Kind: models.LedgerTravel}, false, nil)

		w := doJSON(router, http.MethodPost, "/api/v1/ledger/travel", `{"session_id":"session-1","distance_km":"12.5"}`, &agent)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing session", func(t *testing.T) {
		router, _ := setupAPIRouter()

		w := doJSON(router, http.MethodPost, "/api/v1/ledger/travel", `{"distance_km":3}`, &agent)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettleLedgerEntry(t *testing.T) {
	amount := decimal.RequireFromString("150")

	t.Run("approve with amount", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.ledger.On("Settle", mock.Anything, int64(3), models.LedgerApproved,
			mock.MatchedBy(func(a *decimal.Decimal) bool { return a != nil && a.Equal(amount) })).
			Return(&models.LedgerEntry{ID: 3, Status: models.LedgerApproved, Amount: amount}, nil)

		w := doJSON(router, http.MethodPatch, "/api/v1/ledger/3", `{"status":"approved","amount":"150"}`, &admin)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("paid is terminal", func(t *testing.T) {
		router, svc := setupAPIRouter()
		svc.ledger.On("Settle", mock.Anything, int64(3), models.LedgerPaid, (*decimal.Decimal)(nil)).
			Return(nil, fmt.Errorf("%w: ledger entry is already paid", services.ErrConflict))

		w := doJSON(router, http.MethodPatch, "/api/v1/ledger/3", `{"status":"paid"}`, &admin)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "already paid")
	})

	t.Run("cannot move back to pending", func(t *testing.T) {
		router, _ := setupAPIRouter()

		w := doJSON(router, http.MethodPatch, "/api/v1/ledger/3", `{"status":"pending"}`, &admin)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
