// SkillsNavigator - Course Recommendation Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/api"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/chat"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/config"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/identity"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/middleware"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/search"
	"github.com/IU-Capstone-Project-2025/SkillsNavigator.ai/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies. When the database cannot be opened the
	// server degrades to guest mode: conversations live in memory and
	// vanish on restart, but the intake flow keeps working.
	var repo store.Repository
	repo, err = store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Warn("Failed to initialize database, running in guest mode", "error", err)
		repo = store.NewMemory()
	} else {
		if err := repo.Ping(context.Background()); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database connected", "path", cfg.DBPath)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	// The catalog client talks to the external course search service; the
	// static catalog stands in when no URL is configured.
	var searcher search.Searcher
	if cfg.CatalogURL != "" {
		searcher = search.NewClient(cfg.CatalogURL, cfg.SearchTimeout)
		slog.Info("Course catalog client initialized", "url", cfg.CatalogURL)
	} else {
		searcher = search.DefaultCatalog()
		slog.Info("Using built-in course catalog (CATALOG_URL not set)")
	}

	// Initialize services and handlers.
	chatSvc := chat.NewService(repo, searcher)
	baseHandler := api.NewHandler(repo, chatSvc, searcher, cfg)
	wsHandler := api.NewWebSocketHandler(baseHandler, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	// All routes use the anonymous-cookie identity (no auth needed).
	r.Route("/api", func(apiRouter chi.Router) {
		baseHandler.RegisterChatRoutes(apiRouter)
		baseHandler.RegisterCourseRoutes(apiRouter)
		baseHandler.RegisterRoadmapRoutes(apiRouter)
		baseHandler.RegisterUserRoutes(apiRouter)
	})

	// WebSocket endpoint for the paced conversation stream.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	// Create server. WriteTimeout stays 0: the conversation stream holds
	// its connection open across reveal pacing.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
