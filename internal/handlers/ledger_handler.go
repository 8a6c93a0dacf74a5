package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

// LedgerHandler handles payout ledger HTTP requests.
type LedgerHandler struct {
	service services.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler instance.
func NewLedgerHandler(service services.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// LedgerQuery represents the query parameters for GET /ledger/mine.
type LedgerQuery struct {
	Kind string `form:"kind" binding:"omitempty,oneof=creation_work month_end_work physical_verification travel"`
}

// TravelRequest is the body of POST /ledger/travel.
type TravelRequest struct {
	SessionID  string          `json:"session_id" binding:"required"`
	DistanceKM decimal.Decimal `json:"distance_km"`
}

// SettleRequest is the body of PATCH /ledger/:id.
type SettleRequest struct {
	Status string           `json:"status" binding:"required,oneof=approved paid"`
	Amount *decimal.Decimal `json:"amount"`
}

// LedgerListResponse wraps a list of ledger entries.
type LedgerListResponse struct {
	Entries []models.LedgerEntry `json:"entries"`
	Count   int                  `json:"count"`
}

// TravelResponse reports the travel entry and whether it was new.
type TravelResponse struct {
	Entry   *models.LedgerEntry `json:"entry"`
	Created bool                `json:"created"`
}

// Mine handles GET /api/v1/ledger/mine.
func (h *LedgerHandler) Mine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var query LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	var kind *models.LedgerKind
	if query.Kind != "" {
		k := models.LedgerKind(query.Kind)
		kind = &k
	}

	entries, err := h.service.ListByPayee(c.Request.Context(), actor.ID, kind)
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}

	c.JSON(http.StatusOK, LedgerListResponse{Entries: entries, Count: len(entries)})
}

// ByLand handles GET /api/v1/lands/:id/ledger.
func (h *LedgerHandler) ByLand(c *gin.Context) {
	entries, err := h.service.ListByLand(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}

	c.JSON(http.StatusOK, LedgerListResponse{Entries: entries, Count: len(entries)})
}

// Travel handles POST /api/v1/ledger/travel.
// Repeating the call for the same session returns the existing entry.
func (h *LedgerHandler) Travel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req TravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	entry, created, err := h.service.OpenTravel(c.Request.Context(), req.SessionID, actor.ID, req.DistanceKM)
	if err != nil {
		respondError(c, err, "Failed to record travel")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, TravelResponse{Entry: entry, Created: created})
}

// Settle handles PATCH /api/v1/ledger/:id.
func (h *LedgerHandler) Settle(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	entry, err := h.service.Settle(c.Request.Context(), id, models.LedgerStatus(req.Status), req.Amount)
	if err != nil {
		respondError(c, err, "Failed to settle ledger entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}
