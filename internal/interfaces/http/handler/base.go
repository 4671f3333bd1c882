// Package handler holds the gin handlers of the ledger API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/logger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/ecsledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError translates err into the response envelope. Domain errors keep
// their message unless they map to a 5xx, in which case the client gets a
// generic message and the detail goes to the log.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	message := domainErr.Message
	if dto.IsServerError(code) {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", domainErr.Code),
			zap.Error(err),
		)
		message = serverErrorMessage(code)
	}
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func serverErrorMessage(code string) string {
	switch code {
	case dto.ErrCodePropagationFailure:
		return "The change was saved but review flags could not be updated"
	case dto.ErrCodeStorageFailure:
		return "Storage is temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// bindJSON binds the request body into req, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// parseID reads a positive integer path parameter, answering 400 on failure
func (h *BaseHandler) parseID(c *gin.Context, param string) (uint64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid id: "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}
