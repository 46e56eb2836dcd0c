package handler

import (
	"mime"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/domain"
)

// ctxUser returns the authenticated user set by the Session middleware. The
// API group already rejects anonymous callers, so a miss here means the route
// was mounted without RequireAPILogin.
func ctxUser(c echo.Context) (*domain.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return u, nil
}

// wantsJSON reports whether the client sent or asked for JSON, as opposed to
// a browser form post.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if ct, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType)); err == nil && ct == echo.MIMEApplicationJSON {
		return true
	}
	accept := req.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

// safeNext returns next when it is a local absolute path, fallback otherwise.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
