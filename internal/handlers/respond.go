package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/landbroker/api/internal/errors"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
	"github.com/stwalsh4118/landbroker/api/internal/models"
	"github.com/stwalsh4118/landbroker/api/internal/services"
)

// respondError maps a service error to the standard error envelope.
// Unrecognized errors become a 500 carrying only fallback.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrValidation):
		apierrors.FieldValidationError(c, "", err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, fallback, err)
	}
}

// respondBindError reports a request binding failure.
func respondBindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, message, nil)
}

// requireActor returns the gateway identity or writes a 401.
func requireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Actor identity is required")
		return models.Actor{}, false
	}
	return actor, true
}

// int64Param parses a numeric path parameter or writes a 400.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		apierrors.BadRequest(c, "Invalid "+name, map[string]interface{}{name: c.Param(name)})
		return 0, false
	}
	return id, true
}
