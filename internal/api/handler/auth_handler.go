package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/metrics"
	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
	"github.com/spendwise/expense-tracker/internal/core/validation"
)

const (
	loginPath     = "/auth/login"
	dashboardPath = "/dashboard"
)

// CookieConfig controls the session cookie written after login or register.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig) *AuthHandler {
	if cookies.Name == "" {
		cookies.Name = middleware.DefaultCookieName
	}
	return &AuthHandler{authService: authService, cookies: cookies}
}

// RegisterPage renders the sign-up form.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, dashboardPath)
	}
	return c.Render(http.StatusOK, "register", pageData{Title: "Register"})
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  authResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		form := map[string]string{
			"username":   req.Username,
			"email":      req.Email,
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		}
		return h.failure(c, "register", "Register", http.StatusBadRequest, verr.Errors, form)
	}

	metrics.RegistrationsTotal.Inc()
	h.setCookie(c, res)

	if wantsJSON(c) {
		return c.JSON(http.StatusCreated, authResponse{
			Success: true,
			Message: "Registration successful",
			User:    toUserResponse(res.User),
		})
	}
	return c.Redirect(http.StatusFound, dashboardPath)
}

// LoginPage renders the sign-in form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, dashboardPath)
	}
	return c.Render(http.StatusOK, "login", pageData{Title: "Login", Next: c.QueryParam("next")})
}

// Login authenticates by username or email and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  authResponse
// @Failure      401   {object}  authResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Login:    req.Username,
		Password: req.Password,
		Remember: req.Remember.truthy(),
	})
	if err != nil {
		form := map[string]string{"username": req.Username}
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return h.failure(c, "login", "Login", http.StatusBadRequest, verr.Errors, form)
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInactiveUser):
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return h.failure(c, "login", "Login", http.StatusUnauthorized, []string{validation.MsgInvalidCredentials}, form)
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setCookie(c, res)

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, authResponse{
			Success: true,
			Message: "Login successful",
			User:    toUserResponse(res.User),
		})
	}
	next := c.QueryParam("next")
	if next == "" {
		next = c.FormValue("next")
	}
	return c.Redirect(http.StatusFound, safeNext(next, dashboardPath))
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /auth/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c, h.cookies.Name); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	h.clearCookie(c)

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, authResponse{Success: true, Message: "Logged out successfully"})
	}
	return c.Redirect(http.StatusFound, loginPath)
}

// Profile returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string][]string
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		if wantsJSON(c) {
			return domain.ErrUnauthenticated
		}
		return c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request().URL.RequestURI()))
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, toUserResponse(user))
	}
	return c.Render(http.StatusOK, "profile", pageData{Title: "Profile", User: user})
}

// failure answers a rejected login or registration: JSON clients get the
// {success:false, errors} envelope, form posts get the page back with errors.
func (h *AuthHandler) failure(c echo.Context, tmpl, title string, status int, msgs []string, form map[string]string) error {
	if wantsJSON(c) {
		return c.JSON(status, authResponse{Success: false, Errors: msgs})
	}
	return c.Render(status, tmpl, pageData{
		Title:  title,
		Errors: msgs,
		Form:   form,
		Next:   c.FormValue("next"),
	})
}

func (h *AuthHandler) setCookie(c echo.Context, res *ports.AuthResult) {
	cookie := &http.Cookie{
		Name:     h.cookies.Name,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if res.Session.Remember {
		cookie.Expires = res.Session.ExpiresAt
		cookie.MaxAge = int(time.Until(res.Session.ExpiresAt).Seconds())
	}
	c.SetCookie(cookie)
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
