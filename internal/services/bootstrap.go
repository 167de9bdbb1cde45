package services

import (
	"context"
	_ "embed"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
	"github.com/querydesk/querydesk/pkg/postgres"
	"github.com/querydesk/querydesk/pkg/scheduler"
)

const forceKeyPrefix = "force:"

//go:embed sql/functions.sql
var functionsScript string

// FunctionsScript returns the embedded script installing the server-side query functions.
func FunctionsScript() string {
	return functionsScript
}

// ScriptRunner executes script against the Postgres database at databaseURL.
type ScriptRunner func(ctx context.Context, databaseURL, script string) error

func PostgresScriptRunner(timeout time.Duration) ScriptRunner {
	return func(ctx context.Context, databaseURL, script string) error {
		return postgres.Exec(ctx, databaseURL, script, timeout)
	}
}

// BootstrapCache remembers, for the lifetime of the process, which API endpoints
// already had a deployment attempt and how the last deployment ended.
type BootstrapCache struct {
	mu        sync.Mutex
	attempted map[string]struct{}
	statuses  map[string]models.DeploymentStatus
	group     singleflight.Group
}

func NewBootstrapCache() *BootstrapCache {
	return &BootstrapCache{
		attempted: make(map[string]struct{}),
		statuses:  make(map[string]models.DeploymentStatus),
	}
}

func (c *BootstrapCache) Attempted(endpoint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.attempted[endpoint]
	return ok
}

func (c *BootstrapCache) markAttempted(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempted[endpoint] = struct{}{}
}

func (c *BootstrapCache) setStatus(endpoint string, state models.DeploymentState, err error) {
	status := models.DeploymentStatus{
		Endpoint:  endpoint,
		State:     state,
		UpdatedAt: time.Now(),
	}
	if err != nil {
		status.Error = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[endpoint] = status
}

// Status returns the last deployment status of endpoint. Endpoints never
// deployed are reported as pending.
func (c *BootstrapCache) Status(endpoint string) models.DeploymentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.statuses[endpoint]; ok {
		return s
	}
	return models.DeploymentStatus{Endpoint: endpoint, State: models.DeploymentStatePending}
}

// Statuses returns every known deployment status ordered by endpoint.
func (c *BootstrapCache) Statuses() []models.DeploymentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.DeploymentStatus, 0, len(c.statuses))
	for _, s := range c.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// Deployer installs the server-side functions into tenant databases. The script
// runs on the scheduler's workers; concurrent deployments to the same endpoint
// share a single run.
type Deployer struct {
	cache  *BootstrapCache
	sched  *scheduler.Scheduler
	run    ScriptRunner
	script string
	logger *zap.SugaredLogger
}

type DeployerOption func(d *Deployer)

// WithScript replaces the embedded functions script.
func WithScript(script string) DeployerOption {
	return func(d *Deployer) {
		d.script = script
	}
}

func WithScriptRunner(run ScriptRunner) DeployerOption {
	return func(d *Deployer) {
		d.run = run
	}
}

func NewDeployer(cache *BootstrapCache, sched *scheduler.Scheduler, opts ...DeployerOption) *Deployer {
	d := &Deployer{
		cache:  cache,
		sched:  sched,
		run:    PostgresScriptRunner(10 * time.Second),
		script: functionsScript,
		logger: zap.S().Named("deployer"),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Deployer) Cache() *BootstrapCache {
	return d.cache
}

// EnsureDeployed deploys to endpoint unless a deployment was already attempted
// in this process. The endpoint counts as attempted whatever the outcome, so a
// failed deployment is not retried here; use Deploy to force it.
func (d *Deployer) EnsureDeployed(ctx context.Context, endpoint, databaseURL string) error {
	if d.cache.Attempted(endpoint) {
		return nil
	}

	_, err, _ := d.cache.group.Do(endpoint, func() (any, error) {
		if d.cache.Attempted(endpoint) {
			return nil, nil
		}
		defer d.cache.markAttempted(endpoint)
		return nil, d.deploy(ctx, endpoint, databaseURL)
	})
	return err
}

// Deploy runs the script against databaseURL regardless of earlier attempts.
// It does not join a first-use deployment still running for the endpoint;
// concurrent forced deployments of one endpoint share a single run.
func (d *Deployer) Deploy(ctx context.Context, endpoint, databaseURL string) error {
	_, err, _ := d.cache.group.Do(forceKeyPrefix+endpoint, func() (any, error) {
		defer d.cache.markAttempted(endpoint)
		return nil, d.deploy(ctx, endpoint, databaseURL)
	})
	return err
}

func (d *Deployer) deploy(ctx context.Context, endpoint, databaseURL string) error {
	if databaseURL == "" {
		err := srvErrors.NewBootstrapError(endpoint, errors.New("database url is not configured"))
		d.cache.setStatus(endpoint, models.DeploymentStateFailed, err)
		return err
	}

	d.cache.setStatus(endpoint, models.DeploymentStateRunning, nil)
	d.logger.Infow("deploying functions", "endpoint", endpoint)

	future := d.sched.AddWork(func(ctx context.Context) (any, error) {
		return nil, d.run(ctx, databaseURL, d.script)
	})

	var err error
	select {
	case result := <-future.C():
		err = result.Err
	case <-ctx.Done():
		future.Stop()
		err = ctx.Err()
	}

	if err != nil {
		bErr := srvErrors.NewBootstrapError(endpoint, err)
		d.cache.setStatus(endpoint, models.DeploymentStateFailed, bErr)
		d.logger.Warnw("failed to deploy functions", "endpoint", endpoint, "error", err)
		return bErr
	}

	d.cache.setStatus(endpoint, models.DeploymentStateDeployed, nil)
	d.logger.Infow("functions deployed", "endpoint", endpoint)
	return nil
}
