// Package handler exposes the resolution engine over HTTP.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
	"github.com/signage/backend/internal/interfaces/http/dto"
	"github.com/signage/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// sentinelCodes maps plain sentinel errors to API error codes. Coded domain
// errors are mapped through dto.NormalizeErrorCode instead.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{integration.ErrRecordNotFound, dto.ErrCodeNotFound},
	{integration.ErrMappingNotFound, dto.ErrCodeBusinessRule},
	{integration.ErrParentNotLinked, dto.ErrCodeInvalidState},
	{integration.ErrEntityNotLinked, dto.ErrCodeInvalidState},
	{integration.ErrInvalidCalculation, dto.ErrCodeInvalidInput},
	{integration.ErrInvalidOperation, dto.ErrCodeInvalidInput},
	{integration.ErrInvalidEntityType, dto.ErrCodeInvalidInput},
	{integration.ErrInvalidMappingID, dto.ErrCodeInvalidInput},
	{integration.ErrInvalidSourceID, dto.ErrCodeInvalidInput},
	{integration.ErrInvalidFieldMapping, dto.ErrCodeInvalidInput},
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service errors to HTTP responses. Unrecognized errors
// are attached to the gin context for the request logger and reported as 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			h.Error(c, dto.GetHTTPStatus(s.code), s.code, err.Error())
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if _, known := dto.ErrorCodeHTTPStatus[code]; !known {
			code = dto.ErrCodeUnknown
		}
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}

// bindURI binds path parameters, writing the validation response on failure
func (h *BaseHandler) bindURI(c *gin.Context, obj any) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindJSON binds the request body, writing the validation response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// entityID binds and parses the :id path parameter
func (h *BaseHandler) entityID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.EntityIDRequest
	if !h.bindURI(c, &req) {
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// optionIDs binds and parses the :id and :optionId path parameters
func (h *BaseHandler) optionIDs(c *gin.Context) (productID, optionID uuid.UUID, ok bool) {
	var req dto.OptionRequest
	if !h.bindURI(c, &req) {
		return uuid.Nil, uuid.Nil, false
	}
	return uuid.MustParse(req.ID), uuid.MustParse(req.OptionID), true
}

// entityField binds and parses the :id and :field path parameters
func (h *BaseHandler) entityField(c *gin.Context) (uuid.UUID, string, bool) {
	var req dto.EntityFieldRequest
	if !h.bindURI(c, &req) {
		return uuid.Nil, "", false
	}
	return uuid.MustParse(req.ID), req.Field, true
}
