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

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/pmo-timeline-api/internal/app"
	"github.com/yukikurage/pmo-timeline-api/internal/clock"
	"github.com/yukikurage/pmo-timeline-api/internal/config"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/database"
	"github.com/yukikurage/pmo-timeline-api/internal/events"
	"github.com/yukikurage/pmo-timeline-api/internal/handlers"
	"github.com/yukikurage/pmo-timeline-api/internal/metrics"
	"github.com/yukikurage/pmo-timeline-api/internal/middleware"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := app.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		fatal("failed to connect to database", err)
	}

	// Run migrations
	if err := database.Migrate(database.GetDB()); err != nil {
		fatal("failed to run migrations", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry, "pmo")
	if err != nil {
		fatal("failed to register metrics", err)
	}

	opts := app.Options{
		Clock:    clock.System{},
		Recorder: recorder,
	}

	// Ledger events go to NATS when configured
	if cfg.NATSURL != "" {
		publisher, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSPrefix)
		if err != nil {
			fatal("failed to connect to nats", err)
		}
		defer publisher.Close()
		opts.Publisher = publisher
	}

	// Initialize AI service
	switch {
	case cfg.OpenAIAPIKey == "":
		slog.Info("OPENAI_API_KEY not set, task generation disabled")
	case cfg.OpenAIBaseURL != "":
		aiConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
		aiConfig.BaseURL = cfg.OpenAIBaseURL
		opts.Generator = services.NewAIServiceWithConfig(aiConfig, cfg.OpenAIModel)
	default:
		opts.Generator = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	svc := app.NewServices(database.GetDB(), opts)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Metrics(recorder), gin.Recovery())

	// Timeline navigation state lives in a Redis-backed session
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		fatal("failed to create redis store", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "PMO Timeline API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(cfg.JWTSecret), sessions.Sessions(constants.SessionCookieName, store))
	handlers.RegisterRoutes(api, svc)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
