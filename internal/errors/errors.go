package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/landbroker/api/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrConflict           = "CONFLICT"
	ErrUnauthorized       = "UNAUTHORIZED"
	ErrForbidden          = "FORBIDDEN"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", message, nil)
	write(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, "Bad request", message, details)
	write(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Conflict returns a 409 Conflict error response.
// The message should name the state that blocked the operation.
func Conflict(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, "Conflict", message, details)
	write(c, http.StatusConflict, ErrConflict, message, details)
}

// Unauthorized returns a 401 response for requests without a usable identity.
func Unauthorized(c *gin.Context, message string) {
	warn(c, "Unauthorized", message, nil)
	write(c, http.StatusUnauthorized, ErrUnauthorized, message, nil)
	c.Abort()
}

// Forbidden returns a 403 response when the actor's role may not perform the operation.
func Forbidden(c *gin.Context, message string) {
	warn(c, "Forbidden", message, nil)
	write(c, http.StatusForbidden, ErrForbidden, message, nil)
	c.Abort()
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged with full context; only the generic message reaches the client.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	write(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
// It parses the validation errors from the validator library and formats them for the client.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"fields":     details,
		})
	}

	write(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// FieldValidationError returns a 400 response for a single rejected input field.
func FieldValidationError(c *gin.Context, field, message string) {
	details := map[string]interface{}{field: message}
	if field == "" {
		details = nil
	}
	warn(c, "Validation error", message, details)
	write(c, http.StatusBadRequest, ErrValidation, message, details)
}

func warn(c *gin.Context, event, message string, details map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}

	fields := map[string]interface{}{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}
	if details != nil {
		fields["details"] = details
	}
	log.Warn(event, fields)
}

func write(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return "Required when " + err.Param() + " is absent"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "len":
		return "Must have length of " + err.Param()
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "alphanum":
		return "Must contain only letters and digits"
	case "numeric":
		return "Must be numeric"
	case "dive":
		return "One or more items are invalid"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
