package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veriwork/veriwork/internal/api"
	"github.com/veriwork/veriwork/internal/approval"
	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/config"
	"github.com/veriwork/veriwork/internal/database"
	"github.com/veriwork/veriwork/internal/notify"
	"github.com/veriwork/veriwork/internal/rbac"
	"github.com/veriwork/veriwork/internal/team"
	"github.com/veriwork/veriwork/internal/workentry"
	"github.com/veriwork/veriwork/internal/workview"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	authRepo := auth.NewRepository(db.Pool())
	authService := auth.NewService(authRepo, cfg.BcryptCost)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if _, err := authService.BootstrapCompany(bootstrapCtx, cfg.BootstrapCompany); err != nil {
		cancel()
		slog.Error("failed to bootstrap initial company", "error", err)
		os.Exit(1)
	}
	cancel()

	entries := workentry.NewRepository(db.Pool())
	teams := team.NewRepository(db.Pool())
	views := workview.NewRepository(db.Pool())
	engine := approval.NewEngine(entries, teams, rbac.Default, notify.NewSlogNotifier(nil))

	router := api.NewRouter(api.RouterDeps{
		AuthService: authService,
		Entries:     entries,
		Engine:      engine,
		Teams:       teams,
		Views:       views,
		Policy:      rbac.Default,
		DBPinger:    db,
		Version:     cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting VeriWork server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
