package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hesapvitrini.com/vitrine/internal/auth"
	"hesapvitrini.com/vitrine/internal/backend"
	"hesapvitrini.com/vitrine/internal/catalog"
	"hesapvitrini.com/vitrine/internal/config"
	"hesapvitrini.com/vitrine/internal/httpserver"
	"hesapvitrini.com/vitrine/internal/i18n"
	"hesapvitrini.com/vitrine/internal/observability"
	"hesapvitrini.com/vitrine/internal/session"
	"hesapvitrini.com/vitrine/internal/views"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("vitrine")

	if cfg.Session.Ephemeral {
		logger.Warn("session keys generated at startup; sessions will not survive a restart")
	}

	service, origin, err := buildBackend(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise backend client", zap.Error(err))
	}

	bundle, err := i18n.Default(cfg.DefaultLocale)
	if err != nil {
		logger.Fatal("failed to load messages", zap.Error(err))
	}
	renderer, err := views.New(bundle)
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.Secure,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:       cfg.HTTPAddr,
		Logger:        logger,
		Backend:       service,
		Auth:          auth.New(service, auth.WithLogger(logger.Named("auth"))),
		Bundle:        bundle,
		Renderer:      renderer,
		Sessions:      sessions,
		Lists:         catalog.NewRegistry(0),
		PublicURL:     cfg.PublicURL,
		BackendOrigin: origin,
		SecureCookies: cfg.Session.Secure,
		LoginRate:     cfg.RateLimit.Login,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("server listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("environment", cfg.Environment),
		zap.String("backend", origin),
	)

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildBackend returns the marketplace client and the origin media paths
// resolve against.
func buildBackend(cfg config.Config, logger *zap.Logger) (backend.Service, string, error) {
	if cfg.DevStaticBackend || cfg.BackendURL == "" {
		logger.Warn("using in-memory demo catalog")
		return backend.NewStaticService(), "", nil
	}
	timeout := cfg.BackendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	svc, err := backend.NewHTTPService(cfg.BackendURL, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, "", err
	}
	return svc, svc.Origin(), nil
}
