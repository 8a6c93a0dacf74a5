package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	apierrors "github.com/stwalsh4118/landbroker/api/internal/errors"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

// LandHandler handles land record HTTP requests.
type LandHandler struct {
	lands        services.LandService
	verification services.VerificationService
	files        *FileResolver
}

// NewLandHandler creates a new LandHandler instance.
func NewLandHandler(lands services.LandService, verification services.VerificationService, files *FileResolver) *LandHandler {
	return &LandHandler{
		lands:        lands,
		verification: verification,
		files:        files,
	}
}

// ListLandsQuery represents the query parameters for listing land records.
type ListLandsQuery struct {
	Status          string `form:"status" binding:"omitempty,oneof=draft published"`
	Verification    string `form:"verification" binding:"omitempty,oneof=pending verified rejected"`
	LandID          string `form:"land_id"`
	OwnerID         string `form:"owner_id"`
	State           string `form:"state"`
	District        string `form:"district"`
	MaxPricePerAcre string `form:"max_price_per_acre" binding:"omitempty,numeric"`
	MaxTotalPrice   string `form:"max_total_price" binding:"omitempty,numeric"`
	MaxLandArea     string `form:"max_land_area" binding:"omitempty,numeric"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

// TransitionRequest is the body of POST /lands/:id/verification.
type TransitionRequest struct {
	Verification string `json:"verification" binding:"required,oneof=pending verified rejected"`
	Remarks      string `json:"remarks"`
}

// CreateLandResponse is returned after a record is created.
type CreateLandResponse struct {
	LandID string `json:"land_id"`
}

// LandResponse wraps a single record.
type LandResponse struct {
	Land models.LandRecord `json:"land"`
}

// LandListResponse wraps a page of records.
type LandListResponse struct {
	Lands  []models.LandRecord `json:"lands"`
	Count  int                 `json:"count"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// Create handles POST /api/v1/lands.
func (h *LandHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	bag, files, err := readRecordInput(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	landID, err := h.lands.CreateRecord(c.Request.Context(), actor, bag, files)
	if err != nil {
		respondError(c, err, "Failed to create land record")
		return
	}

	c.JSON(http.StatusCreated, CreateLandResponse{LandID: landID})
}

// List handles GET /api/v1/lands.
func (h *LandHandler) List(c *gin.Context) {
	var query ListLandsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err, "Invalid query parameters")
		return
	}

	filter := models.RecordFilter{
		LandID:   query.LandID,
		OwnerID:  query.OwnerID,
		State:    query.State,
		District: query.District,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	if query.Status != "" {
		status := models.RecordStatus(query.Status)
		filter.Status = &status
	}
	if query.Verification != "" {
		verification := models.VerificationState(query.Verification)
		filter.Verification = &verification
	}

	bounds := []struct {
		name  string
		value string
		dst   **decimal.Decimal
	}{
		{"max_price_per_acre", query.MaxPricePerAcre, &filter.MaxPricePerAcre},
		{"max_total_price", query.MaxTotalPrice, &filter.MaxTotalPrice},
		{"max_land_area", query.MaxLandArea, &filter.MaxLandArea},
	}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		d, err := decimal.NewFromString(b.value)
		if err != nil {
			apierrors.FieldValidationError(c, b.name, "Must be numeric")
			return
		}
		*b.dst = &d
	}

	filter.Normalize()
	records, err := h.lands.ListRecords(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list land records")
		return
	}

	c.JSON(http.StatusOK, LandListResponse{
		Lands:  h.files.ResolveAll(records),
		Count:  len(records),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// Get handles GET /api/v1/lands/:id.
func (h *LandHandler) Get(c *gin.Context) {
	record, err := h.lands.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load land record")
		return
	}

	c.JSON(http.StatusOK, LandResponse{Land: h.files.Resolve(*record)})
}

// Update handles PATCH /api/v1/lands/:id as an owner edit.
func (h *LandHandler) Update(c *gin.Context) {
	h.update(c, models.ModeNormal)
}

// UpdateAsVerifier handles PATCH /api/v1/lands/:id/verification.
// Section edits and the verification decision are applied together.
func (h *LandHandler) UpdateAsVerifier(c *gin.Context) {
	h.update(c, models.ModeVerification)
}

func (h *LandHandler) update(c *gin.Context, mode models.Mode) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	bag, files, err := readRecordInput(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	landID := c.Param("id")
	if err := h.lands.UpdateRecord(c.Request.Context(), landID, bag, files, actor, mode); err != nil {
		respondError(c, err, "Failed to update land record")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Land record update accepted", map[string]interface{}{
			"land_id": landID,
			"mode":    mode,
		})
	}
	c.JSON(http.StatusOK, CreateLandResponse{LandID: landID})
}

// Transition handles POST /api/v1/lands/:id/verification.
func (h *LandHandler) Transition(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	landID := c.Param("id")
	err := h.verification.TransitionVerification(c.Request.Context(), landID,
		models.VerificationState(req.Verification), req.Remarks, actor)
	if err != nil {
		respondError(c, err, "Failed to update verification")
		return
	}

	c.JSON(http.StatusOK, CreateLandResponse{LandID: landID})
}

// Delete handles DELETE /api/v1/lands/:id. Only admins may delete records.
func (h *LandHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		apierrors.Forbidden(c, "Only admins may delete land records")
		return
	}

	if err := h.lands.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete land record")
		return
	}

	c.Status(http.StatusNoContent)
}
