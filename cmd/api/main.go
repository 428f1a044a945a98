// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pkordes/planner/backend/internal/config"
	"github.com/pkordes/planner/backend/internal/handler"
	"github.com/pkordes/planner/backend/internal/mail"
	"github.com/pkordes/planner/backend/internal/middleware"
	"github.com/pkordes/planner/backend/internal/notify"
	"github.com/pkordes/planner/backend/internal/repo"
	"github.com/pkordes/planner/backend/internal/service"
	"github.com/pkordes/planner/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		sqlDB := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", applied)
	}

	// --- Mail -------------------------------------------------------------
	sender, err := newSender(cfg, logger)
	if err != nil {
		slog.Error("failed to configure mail", "error", err)
		os.Exit(1)
	}
	composer := notify.NewComposer(cfg.APIBaseURL, cfg.Mail.Locale)
	dispatcher := notify.NewDispatcher(sender, logger, notify.DispatcherConfig{
		Timeout:     cfg.Mail.Timeout,
		MaxRetries:  cfg.Mail.MaxRetries,
		Concurrency: cfg.Mail.Concurrency,
		Deadline:    cfg.Mail.Deadline,
	})

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	participantRepo := repo.NewParticipantRepo(pool)
	tripSvc := service.NewTripService(tripRepo, composer, dispatcher)
	participantSvc := service.NewParticipantService(tripRepo, participantRepo)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	srv := handler.NewServer(tripSvc, participantSvc, logger)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Trip confirmation waits for every invitation to settle, so the write
	// timeout has to outlast the fan-out deadline.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(cfg.Mail),
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newSender picks the SMTP transport when a host is configured and the
// logging sender otherwise.
func newSender(cfg config.Config, logger *slog.Logger) (notify.Sender, error) {
	if cfg.Mail.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set; emails will be written to the log")
		return mail.NewLogSender(logger, cfg.Mail.FromAddress), nil
	}
	smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:        cfg.Mail.SMTPHost,
		Port:        cfg.Mail.SMTPPort,
		Username:    cfg.Mail.SMTPUsername,
		Password:    cfg.Mail.SMTPPassword,
		TLS:         cfg.Mail.SMTPTLS,
		FromName:    cfg.Mail.FromName,
		FromAddress: cfg.Mail.FromAddress,
		Timeout:     cfg.Mail.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return smtp, nil
}

// writeTimeoutMargin covers the database work before and after a fan-out.
const writeTimeoutMargin = 10 * time.Second

// writeTimeout leaves a margin after the fan-out deadline so the response,
// including a 502 for failed notifications, is written before the server
// drops the connection.
func writeTimeout(m config.Mail) time.Duration {
	return m.Deadline + writeTimeoutMargin
}
