package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", domain.NewValidationError("Title is required", "Amount is required"), http.StatusBadRequest, `{"errors":["Title is required","Amount is required"]}`},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, `{"errors":["Invalid username/email or password"]}`},
		{"inactive", domain.ErrInactiveUser, http.StatusUnauthorized, `{"errors":["Invalid username/email or password"]}`},
		{"anonymous", domain.ErrUnauthenticated, http.StatusUnauthorized, `{"errors":["Please log in to access this page."]}`},
		{"expense missing", fmt.Errorf("update: %w", domain.ErrExpenseNotFound), http.StatusNotFound, `{"error":"Expense not found"}`},
		{"unknown category", domain.ErrCategoryNotFound, http.StatusBadRequest, `{"errors":["Invalid category selected"]}`},
		{"duplicate category", domain.ErrCategoryExists, http.StatusBadRequest, `{"error":"Category already exists"}`},
		{"duplicate user", domain.ErrUserExists, http.StatusBadRequest, `{"errors":["Username or email already exists"]}`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, `{"error":"method not allowed"}`},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var logs strings.Builder
			h := NewHTTPErrorHandler(zerolog.New(&logs))

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/expenses", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.body {
				t.Fatalf("unexpected body: %s", got)
			}
			if tc.code == http.StatusInternalServerError {
				if !strings.Contains(logs.String(), "disk on fire") {
					t.Fatalf("expected cause to be logged, got %q", logs.String())
				}
				if strings.Contains(rec.Body.String(), "disk") {
					t.Fatal("internal error detail leaked to client")
				}
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	h := NewHTTPErrorHandler(zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	h(errors.New("late"), c)

	if rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %q", rec.Body.String())
	}
}
