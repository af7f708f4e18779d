package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/middleware"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeUsernameExists = "USERNAME_EXISTS"
	CodePaymentFailed  = "PAYMENT_FAILED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// respondError translates a service error into its HTTP status and body.
// Unexpected errors are logged with their cause and reported generically.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Unexpected("unexpected error", err)
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Code: CodeInvalidInput, Fields: appErr.Fields})
	case apperrors.KindAuthentication:
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: appErr.Message, Code: CodeUnauthorized})
	case apperrors.KindAuthorization:
		c.JSON(http.StatusForbidden, ErrorResponse{Error: appErr.Message, Code: CodeForbidden})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: appErr.Message, Code: CodeNotFound})
	case apperrors.KindConflict:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message, Code: CodeUsernameExists})
	case apperrors.KindDownstream:
		h.logFailure(c, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: appErr.Message, Code: CodePaymentFailed})
	default:
		h.logFailure(c, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected error occurred", Code: CodeInternalError})
	}
}

func (h *Handler) logFailure(c *gin.Context, err error) {
	rid, _ := c.Get(middleware.ContextRequestID)
	ridStr, _ := rid.(string)
	h.log.Error().Err(err).
		Str("request_id", ridStr).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	c.Error(err)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidInput})
}

func forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: message, Code: CodeForbidden})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required", Code: CodeUnauthorized})
}
