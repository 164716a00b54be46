// cmd/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"bgde_trainer/internal/config"
	"bgde_trainer/internal/handlers"
	"bgde_trainer/internal/middleware"
	"bgde_trainer/internal/progress"
	"bgde_trainer/internal/repository"
	"bgde_trainer/internal/service"
	"bgde_trainer/internal/srs"
	"bgde_trainer/internal/vocab"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Bootstrap logger until the config is loaded.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment")
	}

	if err := config.LoadConfig("configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" || strings.ToLower(config.Cfg.Log.Format) == "text" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	db, err := repository.NewDB(config.Cfg.Database.Path, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	catalogue, err := vocab.LoadFile(config.Cfg.App.VocabularyPath, logger)
	if err != nil {
		slog.Error("Error loading vocabulary catalogue", slog.Any("error", err))
		os.Exit(1)
	}

	// Dependency injection.
	kv := repository.NewGormKVStore()
	store := srs.NewStore(kv)
	ledger := progress.NewLedger(kv)
	if err := ledger.Load(context.Background(), db, time.Now()); err != nil {
		slog.Error("Error loading progress ledger", slog.Any("error", err))
		os.Exit(1)
	}

	practiceService := service.NewPracticeService(db, kv, store, ledger, catalogue, &config.Cfg)
	progressService := service.NewProgressService(db, store, ledger, &config.Cfg)

	practiceHandler := handlers.NewPracticeHandler(practiceService)
	progressHandler := handlers.NewProgressHandler(progressService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", practiceHandler.StartSession)
			r.Get("/history", practiceHandler.History)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", practiceHandler.GetSession)
				r.Post("/flip", practiceHandler.Flip)
				r.Post("/grade", practiceHandler.Grade)
				r.Post("/skip", practiceHandler.Skip)
				r.Post("/end", practiceHandler.End)
			})
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", progressHandler.GetSummary)
			r.Get("/srs-stats", progressHandler.GetSRSStats)
			r.Get("/weak-items", progressHandler.GetWeakItems)
			r.Post("/reset", progressHandler.ResetProgress)
			r.Post("/clear-reviews", progressHandler.ClearReviews)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         ":" + config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	slog.Info("Server exiting")
}
