package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	v1 "github.com/querydesk/querydesk/api/v1"
	"github.com/querydesk/querydesk/internal/config"
	"github.com/querydesk/querydesk/internal/handlers"
	"github.com/querydesk/querydesk/internal/server"
	"github.com/querydesk/querydesk/internal/server/middlewares"
	"github.com/querydesk/querydesk/internal/services"
	"github.com/querydesk/querydesk/internal/store"
)

const shutdownTimeout = 10 * time.Second

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the query API server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateConfiguration(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	registerLogFlags(fs, cfg)
	registerServerFlags(fs, cfg)
	registerSupabaseFlags(fs, cfg)
	registerStoreFlags(fs, cfg)
	registerBootstrapFlags(fs, cfg)
	registerAuthFlags(fs, cfg)

	return cmd
}

func validateConfiguration(cfg *config.Configuration) error {
	switch cfg.Server.ServerMode {
	case server.DevServer:
	case server.ProductionServer:
		if cfg.Server.StaticsFolder == "" {
			return errors.New("statics folder must be set when server-mode is prod")
		}
	default:
		return fmt.Errorf("invalid server mode %q: must be %q or %q", cfg.Server.ServerMode, server.DevServer, server.ProductionServer)
	}

	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port %d: must be between 1 and 65535", cfg.Server.HTTPPort)
	}

	if cfg.Bootstrap.NumWorkers < 1 {
		return fmt.Errorf("invalid num-workers %d: must be at least 1", cfg.Bootstrap.NumWorkers)
	}

	if err := validateStore(cfg); err != nil {
		return err
	}

	if cfg.Supabase.URL == "" {
		return errors.New("supabase-url cannot be empty")
	}
	if cfg.Supabase.AnonKey == "" && cfg.Supabase.ServiceRoleKey == "" {
		return errors.New("one of supabase-anon-key or supabase-service-role-key must be set")
	}

	if cfg.Auth.Enabled && cfg.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid authentication-token-ttl %s: must be positive", cfg.Auth.TokenTTL)
	}

	return nil
}

func validateStore(cfg *config.Configuration) error {
	switch cfg.Store.Driver {
	case store.DriverDuckDB, store.DriverPostgres:
	default:
		return fmt.Errorf("invalid store-driver %q: must be %q or %q", cfg.Store.Driver, store.DriverDuckDB, store.DriverPostgres)
	}
	if cfg.Store.DSN == "" {
		return errors.New("store-dsn cannot be empty")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Configuration) error {
	flush, err := setupLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer flush()

	logger := zap.S().Named("run")
	logger.Infow("starting querydesk", "configuration", cfg.DebugMap())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return err
		}
		logger.Warn("no jwt secret configured, using a random one: sessions will not survive a restart")
	}

	authSrv, err := services.NewAuthService(a.store.Users(), secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	password, err := authSrv.SeedAdmin(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if password != "" {
		logger.Infow("created admin user, change its password after the first login", "user_name", "admin", "password", password)
	}

	go a.deployDefault(ctx)

	h := handlers.New(a.query, a.export, a.catalog, a.databases, authSrv, cfg.Server.DebugSQL)

	mws := []gin.HandlerFunc{
		middlewares.RateLimit(cfg.Auth.LoginRate, cfg.Auth.LoginBurst, v1.LoginPath),
	}
	if cfg.Auth.Enabled {
		mws = append(mws, middlewares.Auth(authSrv, v1.LoginPath))
	} else {
		logger.Warn("authentication is disabled")
	}

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	}, mws...)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "port", cfg.Server.HTTPPort, "mode", cfg.Server.ServerMode)
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)

	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
