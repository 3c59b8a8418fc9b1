package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moodlog/api/internal/auth"
	"github.com/moodlog/api/internal/background"
	"github.com/moodlog/api/internal/config"
	"github.com/moodlog/api/internal/database"
	"github.com/moodlog/api/internal/handlers"
	middlewareCustom "github.com/moodlog/api/internal/middleware"
	"github.com/moodlog/api/internal/ratelimit"
	"github.com/moodlog/api/internal/repositories"
	"github.com/moodlog/api/internal/routes"
	"github.com/moodlog/api/internal/services"
	"github.com/moodlog/api/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Apply pending migrations before serving traffic
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.RunMigrations(migrateCtx, &cfg.Database); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize session store
	sessionStore, err := session.NewRedisStore(&cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer sessionStore.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	entryRepo := repositories.NewEntryRepository(db)

	// Login rate limiter
	loginLimiter := ratelimit.NewLoginLimiter(ratelimit.Config{
		Window:        cfg.Auth.LoginRateWindow,
		MaxAttempts:   cfg.Auth.LoginMaxAttempts,
		BlockDuration: cfg.Auth.LoginBlockDuration,
	})

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(userRepo, loginLimiter, logger, cfg.Auth.CleanupInterval)

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionStore, logger, cfg.Auth.SessionTTL, cfg.Auth.ResetTokenTTL)
	userService := services.NewUserService(userRepo, logger)
	entryService := services.NewEntryService(entryRepo, logger)

	// Session cookie settings
	cookieConfig := session.CookieConfig{
		Secure: cfg.IsProduction(),
		MaxAge: cfg.Auth.SessionTTL,
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cookieConfig, !cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	entryHandler := handlers.NewEntryHandler(entryService)

	// Authorization gate
	gate := auth.NewGate(sessionStore, userRepo, cookieConfig)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, userHandler, entryHandler, gate, loginLimiter)

	// Health check with database and session store
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		if err := sessionStore.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","sessions":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
