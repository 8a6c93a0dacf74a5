package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

// LandCodeHandler handles land code inventory HTTP requests.
type LandCodeHandler struct {
	service services.LandCodeService
}

// NewLandCodeHandler creates a new LandCodeHandler instance.
func NewLandCodeHandler(service services.LandCodeService) *LandCodeHandler {
	return &LandCodeHandler{service: service}
}

// GenerateRequest is the body of POST /land-codes/generate.
type GenerateRequest struct {
	models.Region
	Prefix string `json:"prefix" binding:"required,alphanum"`
	Count  int    `json:"count" binding:"required,min=1,max=1000"`
}

// LandCodeQuery represents the query parameters for listing land codes and stats.
type LandCodeQuery struct {
	StateID    string `form:"state_id"`
	DistrictID string `form:"district_id"`
	TownID     string `form:"town_id"`
	Status     string `form:"status" binding:"omitempty,oneof=Available Assigned"`
}

func (q LandCodeQuery) filter() models.LandCodeFilter {
	f := models.LandCodeFilter{StateID: q.StateID, DistrictID: q.DistrictID, TownID: q.TownID}
	if q.Status != "" {
		status := models.LandCodeStatus(q.Status)
		f.Status = &status
	}
	return f
}

// BulkAssignRequest is the body of PATCH /land-codes.
type BulkAssignRequest struct {
	Items []models.AssignInput `json:"items" binding:"required,min=1"`
}

// LandCodeListResponse wraps a list of codes.
type LandCodeListResponse struct {
	LandCodes []models.LandCode `json:"land_codes"`
	Count     int               `json:"count"`
}

// BulkAssignResponse reports the per-item outcome of a bulk assignment.
type BulkAssignResponse struct {
	Results []models.BulkAssignResult `json:"results"`
}

// Generate handles POST /api/v1/land-codes/generate.
func (h *LandCodeHandler) Generate(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	codes, err := h.service.Generate(c.Request.Context(), req.Region, req.Prefix, req.Count)
	if err != nil {
		respondError(c, err, "Failed to generate land codes")
		return
	}

	c.JSON(http.StatusCreated, LandCodeListResponse{LandCodes: codes, Count: len(codes)})
}

// List handles GET /api/v1/land-codes.
func (h *LandCodeHandler) List(c *gin.Context) {
	var query LandCodeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	codes, err := h.service.List(c.Request.Context(), query.filter())
	if err != nil {
		respondError(c, err, "Failed to list land codes")
		return
	}

	c.JSON(http.StatusOK, LandCodeListResponse{LandCodes: codes, Count: len(codes)})
}

// Stats handles GET /api/v1/land-codes/stats.
func (h *LandCodeHandler) Stats(c *gin.Context) {
	var query LandCodeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), query.filter())
	if err != nil {
		respondError(c, err, "Failed to compute land code stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Get handles GET /api/v1/land-codes/:id.
func (h *LandCodeHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	code, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load land code")
		return
	}

	c.JSON(http.StatusOK, code)
}

// Assign handles PATCH /api/v1/land-codes/:id.
func (h *LandCodeHandler) Assign(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var in models.AssignInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	code, err := h.service.Assign(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "Failed to update land code")
		return
	}

	c.JSON(http.StatusOK, code)
}

// BulkAssign handles PATCH /api/v1/land-codes.
func (h *LandCodeHandler) BulkAssign(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	var req BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	results, err := h.service.BulkAssign(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err, "Failed to update land codes")
		return
	}

	c.JSON(http.StatusOK, BulkAssignResponse{Results: results})
}

// Delete handles DELETE /api/v1/land-codes/:id.
func (h *LandCodeHandler) Delete(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete land code")
		return
	}

	c.Status(http.StatusNoContent)
}
