package v1handler

import (
	"aviators/pkg/logger"
	"aviators/pkg/serrors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type kindStatus struct {
	status  int
	message string
}

//nolint: gochecknoglobals
var statusByKind = map[serrors.Kind]kindStatus{
	serrors.ErrBadRequest:   {http.StatusBadRequest, "bad request"},
	serrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	serrors.ErrForbidden:    {http.StatusForbidden, "forbidden"},
	serrors.ErrNotFound:     {http.StatusNotFound, "resource not found"},
	serrors.ErrConflict:     {http.StatusConflict, "conflict"},
	serrors.ErrRateLimited:  {http.StatusTooManyRequests, "too many requests"},
	serrors.ErrTimeout:      {http.StatusGatewayTimeout, "request timed out"},
	serrors.ErrUnavailable:  {http.StatusServiceUnavailable, "service unavailable"},
}

// NewError maps err to its HTTP status and response body. Errors without a
// known kind are internal and keep their message to the logs.
func NewError(err error) (int, ErrorResponse) {
	kind := serrors.KindOf(err)
	s, ok := statusByKind[kind]
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Code: serrors.ErrInternal.Error(), Message: "internal error"}
	}

	msg := s.message
	if m := serrors.MessageOf(err); m != "" {
		msg = m
	}

	return s.status, ErrorResponse{Code: kind.Error(), Message: msg}
}

// Fail aborts the request with the response for err. Messages of internal
// errors are logged but never sent to the client.
func Fail(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status, resp := NewError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err), zap.String("code", resp.Code))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err), zap.String("code", resp.Code))
	}

	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into v and fails the request on error.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		Fail(c, serrors.With(serrors.ErrBadRequest, "invalid request body: %v", err))

		return false
	}

	return true
}

// bindQuery decodes the query string into v and fails the request on error.
func bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		Fail(c, serrors.With(serrors.ErrBadRequest, "invalid query: %v", err))

		return false
	}

	return true
}
