package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

// PurchaseHandler handles purchase request HTTP requests.
type PurchaseHandler struct {
	service services.PurchaseService
	files   *FileResolver
}

// NewPurchaseHandler creates a new PurchaseHandler instance.
func NewPurchaseHandler(service services.PurchaseService, files *FileResolver) *PurchaseHandler {
	return &PurchaseHandler{service: service, files: files}
}

// PurchaseRequestBody is the body of POST /purchase-requests.
type PurchaseRequestBody struct {
	LandID   string `json:"land_id" binding:"required"`
	LandCode string `json:"land_code" binding:"required"`
}

// DecideRequest is the body of PATCH /purchase-requests/:id.
type DecideRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// PurchaseListResponse wraps a buyer's requests.
type PurchaseListResponse struct {
	PurchaseRequests []models.PurchaseRequestWithLand `json:"purchase_requests"`
	Count            int                              `json:"count"`
}

// Create handles POST /api/v1/purchase-requests.
// The buyer is the calling actor.
func (h *PurchaseHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var body PurchaseRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	req, err := h.service.Request(c.Request.Context(), body.LandID, actor.ID, body.LandCode)
	if err != nil {
		respondError(c, err, "Failed to create purchase request")
		return
	}

	c.JSON(http.StatusCreated, req)
}

// Mine handles GET /api/v1/purchase-requests/mine.
func (h *PurchaseHandler) Mine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	requests, err := h.service.ListByBuyer(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err, "Failed to list purchase requests")
		return
	}

	for i := range requests {
		requests[i].Land = h.files.Resolve(requests[i].Land)
	}
	c.JSON(http.StatusOK, PurchaseListResponse{PurchaseRequests: requests, Count: len(requests)})
}

// Get handles GET /api/v1/purchase-requests/:id.
// Buyers see only their own requests; admins see any.
func (h *PurchaseHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	buyerID := actor.ID
	if actor.IsAdmin() {
		buyerID = ""
	}

	item, err := h.service.Get(c.Request.Context(), id, buyerID)
	if err != nil {
		respondError(c, err, "Failed to get purchase request")
		return
	}

	item.Land = h.files.Resolve(item.Land)
	c.JSON(http.StatusOK, item)
}

// Decide handles PATCH /api/v1/purchase-requests/:id.
func (h *PurchaseHandler) Decide(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	req, err := h.service.Decide(c.Request.Context(), id, models.PurchaseStatus(body.Status))
	if err != nil {
		respondError(c, err, "Failed to update purchase request")
		return
	}

	c.JSON(http.StatusOK, req)
}
