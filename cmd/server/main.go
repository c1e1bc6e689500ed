package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slackin/config"
	"slackin/internal/handlers"
	"slackin/internal/lang"
	"slackin/internal/logger"
	"slackin/internal/metrics"
	"slackin/internal/slack"
	"slackin/internal/version"
	"slackin/middleware"
)

func main() {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		logger.Init(logger.Options{})
		logger.Get().Fatal().Err(cfgErr).Msg("Failed to load configuration")
	}

	logger.Init(logger.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Output:   cfg.LogOutput,
		FilePath: cfg.LogFilePath,
	})
	log := logger.Get()

	log.Info().
		Str("version", version.Version).
		Msg("slackin starting")

	log.Info().
		Str("env", string(cfg.Env)).
		Str("log_level", cfg.LogLevel).
		Str("log_format", cfg.LogFormat).
		Str("default_locale", cfg.DefaultLocale).
		Msg("Configuration loaded")

	var slackClient slack.Client
	if cfg.Slack.Token == "" {
		log.Warn().Msg("SLACK_TOKEN is not set, invites and presence are disabled")
		slackClient = slack.NewDisabledClient()
	} else {
		client, err := slack.NewClientFromConfig(cfg.Slack)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Slack client")
		}
		slackClient = client
		log.Info().
			Str("team", cfg.Slack.Team).
			Strs("channels", cfg.Slack.Channels).
			Msg("Slack client initialized")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(metrics.NewPresenceCollector(slackClient))
	inviteCounter := metrics.NewInviteCounter()
	registry.MustRegister(inviteCounter)

	router, routerErr := buildRouter(cfg, slackClient, registry, inviteCounter, embeddedWeb)
	if routerErr != nil {
		log.Fatal().Err(routerErr).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	slackClient.Shutdown()

	log.Info().Msg("Server stopped")
}

// buildRouter assembles the middleware chain and all routes. Split out from
// main so the full HTTP surface is testable with a mock Slack client.
func buildRouter(cfg config.Config, slackClient slack.Client, registry *prometheus.Registry, inviteCounter *prometheus.CounterVec, webFS fs.FS) (chi.Router, error) {
	catalog, err := lang.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}
	resolver := lang.New(cfg.DefaultLocale)
	resolver.SetMessages(catalog)

	router := chi.NewRouter()

	// Middleware must be registered before any routes
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecurityHeaders)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowCredentials = cfg.CORS.AllowCredentials
	router.Use(middleware.CORS(corsConfig))

	router.Use(middleware.BodyLimit(16 << 10))
	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
		MaxRequests: cfg.InvitesPerMin,
		Window:      time.Minute,
		TrustProxy:  cfg.TrustProxy,
		OnlyPaths:   []string{"/invite"},
	}))

	if err := handlers.RegisterIndexRoutes(router, handlers.IndexOptions{
		WebFS:    webFS,
		Slack:    slackClient,
		Resolver: resolver,
		TeamName: cfg.Slack.Team,
		HasCoC:   cfg.CoCPath != "",
	}); err != nil {
		return nil, err
	}
	handlers.RegisterInviteRoutes(router, handlers.InviteOptions{
		Slack:      slackClient,
		Resolver:   resolver,
		Invites:    inviteCounter,
		RequireCoC: cfg.CoCPath != "",
	})
	handlers.RegisterBadgeRoutes(router, slackClient, resolver)
	handlers.RegisterI18nRoutes(router, resolver)
	handlers.RegisterStatusRoutes(router, slackClient)
	handlers.RegisterCoCRoutes(router, resolver, cfg.CoCPath)
	router.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	return router, nil
}
