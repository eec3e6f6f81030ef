package http

import (
	"errors"
	"log/slog"
	"net/http"

	"creator-marketplace/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// statusFor maps an error's apperr kind to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindPrecondition, apperr.KindConcurrency:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a use-case error. Internal errors are logged and their
// text is not sent to the client.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(c.Request().Context(), "request failed",
			"module", "http", "operation", c.Path(), "outcome", "error", "error", err)
		return c.JSON(status, ErrorResponse{Error: "internal error", Code: apperr.KindInternal.String()})
	}
	code := apperr.KindOf(err).String()
	if status == http.StatusNotFound {
		code = apperr.KindNotFound.String()
	}
	return c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// bindAndValidate writes the 400/422 response itself and reports whether the
// handler should go on.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    apperr.KindValidation.String(),
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
