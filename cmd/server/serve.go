package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"synergy/internal/calendar"
	"synergy/internal/config"
	"synergy/internal/diet"
	"synergy/internal/httpapi"
	mcpserver "synergy/internal/mcp"
	"synergy/internal/notes"
	"synergy/internal/oracle"
	"synergy/internal/preferences"
	"synergy/internal/store"
	"synergy/internal/tasks"
	"synergy/internal/workouts"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Logger
	level, _ := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	loc, _ := cfg.Location()

	// Context for startup
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	backend, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	app, err := wire(ctx, cfg, backend, loc, logger)
	if err != nil {
		return err
	}
	defer app.theme.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	stop := make(chan struct{})
	go func() {
		defer close(stop)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", srv.Addr, "store", cfg.Store.Driver, "version", version)
	logger.Info("endpoints available",
		"api", "http://localhost"+srv.Addr+"/api",
		"mcp", "http://localhost"+srv.Addr+"/mcp",
	)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-stop
	logger.Info("server stopped")
	return nil
}

type app struct {
	handler http.Handler
	theme   *preferences.ThemeContext
}

// wire builds every service over backend and mounts the routes.
func wire(ctx context.Context, cfg *config.Config, b *backend, loc *time.Location, logger *slog.Logger) (*app, error) {
	todoColl, err := openCollection[tasks.Task](ctx, b, store.Todos)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", store.Todos, err)
	}
	noteColl, err := openCollection[notes.Note](ctx, b, store.Notes)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", store.Notes, err)
	}
	dietColl, err := openCollection[diet.Item](ctx, b, store.DietItems)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", store.DietItems, err)
	}
	exerciseColl, err := openCollection[workouts.Exercise](ctx, b, store.Exercises)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", store.Exercises, err)
	}
	prefColl, err := openCollection[preferences.Preferences](ctx, b, store.Preferences)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", store.Preferences, err)
	}

	// Oracle
	var model oracle.Model = oracle.Unconfigured{}
	if cfg.Oracle.APIKey != "" {
		g, err := oracle.NewGemini(ctx, cfg.Oracle.APIKey, cfg.Oracle.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		model = g
		logger.Info("oracle configured", "model", cfg.Oracle.Model)
	} else {
		logger.Warn("GEMINI_API_KEY not set, estimation and workout generation are disabled")
	}
	adapter := oracle.New(model, oracle.Options{
		Timeout:           cfg.Oracle.Timeout,
		MaxImageDimension: cfg.Oracle.MaxImageDimension,
	}, logger)

	// Wire dependencies
	clock := calendar.SystemClock
	ids := store.NewIDGen()

	taskSvc := tasks.NewService(tasks.NewRepo(todoColl, ids), loc)
	noteSvc := notes.NewService(notes.NewRepo(noteColl, ids), clock)
	dietSvc := diet.NewService(diet.NewRepo(dietColl, ids), adapter, loc)
	workoutSvc := workouts.NewService(workouts.NewRepo(exerciseColl, ids), adapter)

	theme := preferences.NewThemeContext(preferences.NewStore(prefColl), preferences.DefaultTheme, logger)
	if err := theme.Load(ctx); err != nil {
		logger.Warn("failed to load preferences", "error", err)
	}

	// HTTP router
	mux := http.NewServeMux()
	tasks.NewHandler(taskSvc, logger, clock).Register(mux)
	notes.NewHandler(noteSvc, logger).Register(mux)
	diet.NewHandler(dietSvc, logger, clock).Register(mux)
	workouts.NewHandler(workoutSvc, logger).Register(mux)
	preferences.NewHandler(theme, logger).Register(mux)

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpSrv := mcpserver.NewServer(mcpserver.Services{
		Tasks:    taskSvc,
		Workouts: workoutSvc,
		Diet:     dietSvc,
		Notes:    noteSvc,
		Clock:    clock,
		Location: loc,
	}, version)
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		httpapi.JSON(w, map[string]string{"status": "ok", "message": "Synergy API is running"}, http.StatusOK)
	})

	handler := httpapi.CORS(cfg.Server.AllowedOrigins, httpapi.AccessLog(logger, mux))
	return &app{handler: handler, theme: theme}, nil
}
