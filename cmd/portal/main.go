package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vaahan-portal/violation-portal/internal/api/client"
	httptransport "github.com/vaahan-portal/violation-portal/internal/api/http"
	"github.com/vaahan-portal/violation-portal/internal/api/http/handlers"
	"github.com/vaahan-portal/violation-portal/internal/auth"
	"github.com/vaahan-portal/violation-portal/internal/config"
	"github.com/vaahan-portal/violation-portal/internal/events"
	"github.com/vaahan-portal/violation-portal/internal/observability"
	"github.com/vaahan-portal/violation-portal/internal/persistence"
	"github.com/vaahan-portal/violation-portal/internal/service"
	"github.com/vaahan-portal/violation-portal/internal/session"
	"github.com/vaahan-portal/violation-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys, closeKeys, err := persistence.OpenKeySpace(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}
	defer closeKeys()

	metrics := observability.NewMetrics()
	dispatcher := events.NewSyncDispatcher()
	worker.StartSessionAuditor(dispatcher, logger, metrics)

	store := session.NewStore(keys, logger)
	sessions := session.NewManager(
		auth.NewTokenCodec(),
		auth.NewRoleResolver(auth.ParsePrecedence(cfg.Auth.RolePrecedence)...),
		store,
		session.WithDispatcher(dispatcher),
		session.WithLogger(logger),
	)

	// Gated routes read the in-memory session, so restore before listening.
	if err := sessions.Restore(ctx); err != nil {
		logger.Info("no session restored", zap.Error(err))
	}

	remote := client.New(cfg.API.BaseURL, cfg.API.Timeout(), sessions, logger)
	authService := service.NewAuthService(remote, sessions, logger)
	gate := auth.NewGate(sessions, logger, metrics)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store),
		Session: handlers.NewSessionHandler(authService),
		Views:   handlers.NewViewsHandler(sessions, remote, logger),
		Gate: auth.NewGateMiddleware(gate, auth.Redirects{
			Login: cfg.Gate.LoginPath,
			Home:  cfg.Gate.HomePath,
		}),
		Metrics: metrics,
	})

	go func() {
		logger.Info("portal listening", zap.String("addr", cfg.App.Addr()), zap.String("api", cfg.API.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
