package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/validation"
)

// errorResponse carries a single failure message.
type errorResponse struct {
	Error string `json:"error"`
}

// errorsResponse carries every message of a validation or auth failure.
type errorsResponse struct {
	Errors []string `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and envelopes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, any) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorsResponse{Errors: verr.Errors}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInactiveUser):
		return http.StatusUnauthorized, errorsResponse{Errors: []string{validation.MsgInvalidCredentials}}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorsResponse{Errors: []string{validation.MsgLoginRequiredPage}}
	case errors.Is(err, domain.ErrExpenseNotFound):
		return http.StatusNotFound, errorResponse{Error: "Expense not found"}
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusBadRequest, errorsResponse{Errors: []string{validation.MsgCategoryInvalid}}
	case errors.Is(err, domain.ErrCategoryExists):
		return http.StatusBadRequest, errorResponse{Error: "Category already exists"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, errorsResponse{Errors: []string{"Username or email already exists"}}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
