package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// retryAfterSeconds is sent with 503 responses for busy resources.
const retryAfterSeconds = "1"

// StatusCode maps a use case error onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrBusy), errors.Is(err, notifier.ErrNotifierStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrResourceUnavailable),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrPersistenceFailed):
		return http.StatusInternalServerError
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(ctx echo.Context, err error) error {
	code := StatusCode(err)
	body := Error{Code: code, Outcome: commands.Outcome(err), Message: err.Error()}

	switch code {
	case http.StatusServiceUnavailable:
		ctx.Response().Header().Set(echo.HeaderRetryAfter, retryAfterSeconds)
	case http.StatusInternalServerError:
		s.logger.Error("request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err)
		if !errors.Is(err, errs.ErrPersistenceFailed) {
			body.Outcome = "internal"
			body.Message = "Internal server error"
		}
	}

	return ctx.JSON(code, body)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Outcome: "invalid",
		Message: message,
	})
}
