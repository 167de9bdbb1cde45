package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/pkg/supabase"
)

// RPCClient calls remote procedures of one tenant.
type RPCClient interface {
	RPC(ctx context.Context, fn string, params any, out any) error
	Endpoint() string
}

type ClientFactory func(endpoint, apiKey string) RPCClient

func SupabaseClientFactory(timeout time.Duration) ClientFactory {
	return func(endpoint, apiKey string) RPCClient {
		return supabase.NewClient(endpoint, apiKey, supabase.WithTimeout(timeout))
	}
}

type DatabaseGetter interface {
	Get(ctx context.Context, id string) (*models.Database, error)
}

type FunctionDeployer interface {
	EnsureDeployed(ctx context.Context, endpoint, databaseURL string) error
	Deploy(ctx context.Context, endpoint, databaseURL string) error
}

// Tenant is a resolved database together with a client bound to its API endpoint.
type Tenant struct {
	Database models.Database
	Client   RPCClient
}

// TenantResolver turns a database id into a ready-to-use client.
type TenantResolver struct {
	defaultDB models.Database
	store     DatabaseGetter
	deployer  FunctionDeployer
	newClient ClientFactory
	logger    *zap.SugaredLogger
}

func NewTenantResolver(defaultDB models.Database, store DatabaseGetter, deployer FunctionDeployer, newClient ClientFactory) *TenantResolver {
	return &TenantResolver{
		defaultDB: defaultDB,
		store:     store,
		deployer:  deployer,
		newClient: newClient,
		logger:    zap.S().Named("tenant_resolver"),
	}
}

// Lookup returns the database record for id. An empty id or "default" selects
// the database built from process configuration.
func (r *TenantResolver) Lookup(ctx context.Context, id string) (*models.Database, error) {
	if id == "" || id == models.DefaultDatabaseID {
		db := r.defaultDB
		return &db, nil
	}
	return r.store.Get(ctx, id)
}

// Resolve returns a client for the database id, deploying the server-side
// functions the first time its endpoint is seen. A failed deployment is logged
// and the client is still returned.
func (r *TenantResolver) Resolve(ctx context.Context, id string) (*Tenant, error) {
	db, err := r.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.deployer.EnsureDeployed(ctx, db.SupabaseURL, db.DatabaseURL); err != nil {
		r.logger.Warnw("function deployment failed, continuing without it", "database", db.ID, "endpoint", db.SupabaseURL, "error", err)
	}

	return &Tenant{
		Database: *db,
		Client:   r.newClient(db.SupabaseURL, db.APIKey()),
	}, nil
}

// Redeploy forces the deployment of the server-side functions for database id.
func (r *TenantResolver) Redeploy(ctx context.Context, id string) (*models.Database, error) {
	db, err := r.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.deployer.Deploy(ctx, db.SupabaseURL, db.DatabaseURL); err != nil {
		return db, err
	}
	return db, nil
}
