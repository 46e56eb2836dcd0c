package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

const (
	DefaultCookieName = "session"

	userKey  = "user"
	tokenKey = "session_token"
)

// Session resolves the session cookie, or an Authorization bearer token, into
// the current user. Anonymous requests pass through untouched; RequireLogin
// and RequireAPILogin do the rejecting.
func Session(auth ports.AuthService, cookieName string) echo.MiddlewareFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c, cookieName)
			if token == "" {
				return next(c)
			}

			user, _, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return next(c)
				}
				return err
			}

			SetUser(c, user)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// RequireLogin redirects anonymous page requests to loginPath, remembering
// where they were headed in ?next=.
func RequireLogin(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); ok {
				return next(c)
			}
			target := loginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusFound, target)
		}
	}
}

// RequireAPILogin rejects anonymous API requests with domain.ErrUnauthenticated.
func RequireAPILogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by Session, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(userKey).(*domain.User)
	return u, ok && u != nil
}

// SetUser marks u as the authenticated user of the request.
func SetUser(c echo.Context, u *domain.User) {
	c.Set(userKey, u)
}

// SessionToken returns the raw token presented with the request, resolved or not.
func SessionToken(c echo.Context, cookieName string) string {
	if t, ok := c.Get(tokenKey).(string); ok {
		return t
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return extractToken(c, cookieName)
}

func extractToken(c echo.Context, cookieName string) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
