package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/querydesk/querydesk/internal/config"
	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/internal/services"
	"github.com/querydesk/querydesk/internal/store"
	"github.com/querydesk/querydesk/internal/store/migrations"
	"github.com/querydesk/querydesk/pkg/scheduler"
)

// app holds the services shared by the server and the command line tools.
type app struct {
	store     *store.Store
	sched     *scheduler.Scheduler
	defaultDB models.Database
	deployer  *services.Deployer
	resolver  *services.TenantResolver
	query     *services.QueryService
	export    *services.ExportService
	catalog   *services.CatalogService
	databases *services.DatabaseService
}

func newApp(ctx context.Context, cfg *config.Configuration) (*app, error) {
	db, err := store.NewDB(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	deployerOpts := []services.DeployerOption{
		services.WithScriptRunner(services.PostgresScriptRunner(cfg.Bootstrap.ConnectTimeout)),
	}
	if cfg.Bootstrap.ScriptPath != "" {
		script, err := os.ReadFile(cfg.Bootstrap.ScriptPath)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to read functions script: %w", err)
		}
		deployerOpts = append(deployerOpts, services.WithScript(string(script)))
	}

	defaultDB := models.NewDefaultDatabase(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.ServiceRoleKey, cfg.Supabase.DatabaseURL)

	a := &app{
		store:     store.NewStore(db),
		sched:     scheduler.NewScheduler(cfg.Bootstrap.NumWorkers),
		defaultDB: defaultDB,
	}

	cache := services.NewBootstrapCache()
	a.deployer = services.NewDeployer(cache, a.sched, deployerOpts...)
	a.resolver = services.NewTenantResolver(a.defaultDB, a.store.Databases(), a.deployer, services.SupabaseClientFactory(cfg.Supabase.RPCTimeout))
	a.query = services.NewQueryService(a.resolver)
	a.export = services.NewExportService(a.query)
	a.catalog = services.NewCatalogService(a.resolver)
	a.databases = services.NewDatabaseService(a.defaultDB, a.store.Databases(), a.resolver, cache)

	return a, nil
}

// deployDefault installs the functions into the default database once at
// startup. Failures are only logged and the endpoint counts as attempted, so
// only a forced deploy or a restart tries again.
func (a *app) deployDefault(ctx context.Context) {
	if a.defaultDB.DatabaseURL == "" {
		zap.S().Named("app").Warn("no database url for the default project, functions must be installed manually")
		return
	}
	if err := a.deployer.EnsureDeployed(ctx, a.defaultDB.SupabaseURL, a.defaultDB.DatabaseURL); err != nil {
		zap.S().Named("app").Warnw("failed to deploy functions to the default database", "error", err)
	}
}

func (a *app) Close() {
	a.sched.Close()
	if err := a.store.Close(); err != nil {
		zap.S().Named("app").Errorw("failed to close store", "error", err)
	}
}
