// @title        Expense Tracker API
// @version      1.0
// @description  Personal expense tracking: accounts, expenses, categories, statistics and CSV export.
// @BasePath     /
//
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/spendwise/expense-tracker/internal/api"
	"github.com/spendwise/expense-tracker/internal/api/handler"
	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/ports"
	"github.com/spendwise/expense-tracker/internal/core/service"
	mongostore "github.com/spendwise/expense-tracker/internal/infrastructure/db/mongo"
	redisstore "github.com/spendwise/expense-tracker/internal/infrastructure/db/redis"
	"github.com/spendwise/expense-tracker/internal/infrastructure/db/sqlstore"
	"github.com/spendwise/expense-tracker/internal/infrastructure/http/handlers"
	"github.com/spendwise/expense-tracker/internal/pkg/config"
	"github.com/spendwise/expense-tracker/pkg/logger"
	"github.com/spendwise/expense-tracker/web"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "expense-tracker",
	})
	if cfg.InsecureSecret {
		log.Warn().Msg("SECRET_KEY is not set, using the development key; sessions are not secure")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := sqlstore.Open(ctx, sqlstore.Config{URL: cfg.DatabaseURL, Debug: cfg.LogLevel == "debug"})
	if err != nil {
		return err
	}
	defer sqlstore.Close(db)
	log.Info().Msg("database ready")

	checks := map[string]handlers.Check{
		"database": func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
	}

	sessions, rdb, err := sessionStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	activity, mc, err := activityLog(ctx, cfg, log)
	if err != nil {
		return err
	}
	if mc != nil {
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mc.Disconnect(dctx)
		}()
		checks["mongodb"] = func(ctx context.Context) error { return mc.Ping(ctx, nil) }
	}

	users := sqlstore.NewUserRepository(db)
	categories := sqlstore.NewCategoryRepository(db)
	expenses := sqlstore.NewExpenseRepository(db)

	categoryService := service.NewCategoryService(categories, activity, log)
	if _, err := categoryService.SeedDefaults(ctx); err != nil {
		return err
	}

	renderer, err := web.NewRenderer(web.TemplatesFS)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log: log,
		Auth: service.NewAuthService(users, sessions, activity, service.AuthConfig{
			Secret:      cfg.SecretKey,
			SessionTTL:  cfg.Session.TTL,
			RememberTTL: cfg.Session.RememberTTL,
		}, log),
		Expenses:   service.NewExpenseService(expenses, activity, cfg.PageSizeMax, log),
		Categories: categoryService,
		Stats:      service.NewStatsService(expenses, log),
		Export:     service.NewExportService(expenses, log),
		Renderer:   renderer,
		Static:     echo.MustSubFS(web.StaticFS, "static"),
		Cookies: handler.CookieConfig{
			Name:   middleware.DefaultCookieName,
			Secure: cfg.Session.SecureCookie,
		},
		Checks: checks,
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("session_store", cfg.Session.Store).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}

// sessionStore picks the session backend. The Redis client is returned so
// the caller can close it and probe it for readiness.
func sessionStore(ctx context.Context, cfg *config.Config, db *gorm.DB) (ports.SessionStore, *redis.Client, error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		return sqlstore.NewSessionStore(db), nil, nil
	}
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return redisstore.NewSessionStore(rdb), rdb, nil
}

// activityLog uses MongoDB when MONGO_URI is set and the application log otherwise.
func activityLog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.ActivityLog, *mongo.Client, error) {
	if cfg.Mongo.URI == "" {
		return service.NewLogActivity(log), nil, nil
	}
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	return mongostore.NewActivityRepository(db), client, nil
}
