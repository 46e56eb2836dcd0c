package api

import (
	"io/fs"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/spendwise/expense-tracker/docs"
	"github.com/spendwise/expense-tracker/internal/api/handler"
	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/ports"
	"github.com/spendwise/expense-tracker/internal/infrastructure/http/handlers"
)

const loginPath = "/auth/login"

// Deps is everything the router needs. Registerer and Gatherer default to the
// global Prometheus registry, where the metrics package registers itself.
type Deps struct {
	Log        zerolog.Logger
	Auth       ports.AuthService
	Expenses   ports.ExpenseService
	Categories ports.CategoryService
	Stats      ports.StatsService
	Export     ports.ExportService
	Renderer   echo.Renderer
	Static     fs.FS
	Cookies    handler.CookieConfig
	Checks     map[string]handlers.Check

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Renderer = d.Renderer

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(d.Auth, d.Cookies.Name))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)
	pageHandler := handler.NewPageHandler(d.Expenses, d.Categories, d.Stats)
	expenseHandler := handler.NewExpenseHandler(d.Expenses)
	categoryHandler := handler.NewCategoryHandler(d.Categories)
	statsHandler := handler.NewStatsHandler(d.Stats)
	exportHandler := handler.NewExportHandler(d.Export)

	// --- Auth routes ---
	e.GET("/", pageHandler.Index)
	auth := e.Group("/auth")
	auth.GET("/register", authHandler.RegisterPage)
	auth.POST("/register", authHandler.Register)
	auth.GET("/login", authHandler.LoginPage)
	auth.POST("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.GET("/profile", authHandler.Profile)

	// --- Pages (login required, redirect otherwise) ---
	pages := e.Group("", middleware.RequireLogin(loginPath))
	pages.GET("/dashboard", pageHandler.Dashboard)
	pages.GET("/expenses", pageHandler.Expenses)
	pages.GET("/analytics", pageHandler.Analytics)
	pages.GET("/categories", pageHandler.Categories)
	pages.GET("/export", pageHandler.Export)

	// --- JSON API (login required, 401 otherwise) ---
	v := e.Group("/api", middleware.RequireAPILogin())
	v.GET("/expenses", expenseHandler.List)
	v.POST("/expenses", expenseHandler.Create)
	v.PUT("/expenses/:id", expenseHandler.Update)
	v.DELETE("/expenses/:id", expenseHandler.Delete)
	v.GET("/categories", categoryHandler.List)
	v.POST("/categories", categoryHandler.Create)
	v.GET("/export/csv", exportHandler.CSV)
	v.GET("/stats/summary", statsHandler.Summary)
	v.GET("/stats/monthly", statsHandler.Monthly)
	v.GET("/stats/yearly", statsHandler.Yearly)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	if d.Static != nil {
		e.StaticFS("/static", d.Static)
	}

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
