package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
	"github.com/querydesk/querydesk/pkg/postgres"
)

const connectivityTimeout = 30 * time.Second

type DatabaseStore interface {
	List(ctx context.Context) ([]models.Database, error)
	Get(ctx context.Context, id string) (*models.Database, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, d models.Database) (*models.Database, error)
}

// Pinger opens a connection to databaseURL and returns the server time.
type Pinger func(ctx context.Context, databaseURL string) (time.Time, error)

func PostgresPinger(timeout time.Duration) Pinger {
	return func(ctx context.Context, databaseURL string) (time.Time, error) {
		return postgres.Ping(ctx, databaseURL, timeout)
	}
}

// NewDatabase is the input of DatabaseService.Add.
type NewDatabase struct {
	Name           string `validate:"required"`
	SupabaseURL    string `validate:"required,url"`
	AnonKey        string `validate:"required"`
	DatabaseURL    string `validate:"required"`
	ServiceRoleKey string
	CreatedBy      string
}

type DatabaseService struct {
	defaultDB models.Database
	store     DatabaseStore
	resolver  *TenantResolver
	cache     *BootstrapCache
	ping      Pinger
	validate  *validator.Validate
	logger    *zap.SugaredLogger
}

type DatabaseServiceOption func(s *DatabaseService)

func WithPinger(p Pinger) DatabaseServiceOption {
	return func(s *DatabaseService) {
		s.ping = p
	}
}

func NewDatabaseService(defaultDB models.Database, st DatabaseStore, resolver *TenantResolver, cache *BootstrapCache, opts ...DatabaseServiceOption) *DatabaseService {
	s := &DatabaseService{
		defaultDB: defaultDB,
		store:     st,
		resolver:  resolver,
		cache:     cache,
		ping:      PostgresPinger(connectivityTimeout),
		validate:  validator.New(),
		logger:    zap.S().Named("database_service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns the default database followed by the stored ones, newest first.
func (s *DatabaseService) List(ctx context.Context) ([]models.Database, error) {
	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return append([]models.Database{s.defaultDB}, stored...), nil
}

// Test checks that databaseURL accepts connections.
func (s *DatabaseService) Test(ctx context.Context, databaseURL string) (time.Time, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return time.Time{}, srvErrors.NewValidationError("Database URL is required")
	}
	return s.ping(ctx, databaseURL)
}

// Add registers a new database. The name must be unique and the database must
// accept connections before anything is stored.
func (s *DatabaseService) Add(ctx context.Context, in NewDatabase) (*models.Database, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SupabaseURL = strings.TrimSpace(in.SupabaseURL)
	in.DatabaseURL = strings.TrimSpace(in.DatabaseURL)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.store.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, srvErrors.NewDuplicateResourceError("database", in.Name)
	}

	if _, err := s.ping(ctx, in.DatabaseURL); err != nil {
		return nil, err
	}

	testedAt := time.Now()
	db, err := s.store.Create(ctx, models.Database{
		Name:             in.Name,
		SupabaseURL:      in.SupabaseURL,
		AnonKey:          in.AnonKey,
		ServiceRoleKey:   in.ServiceRoleKey,
		DatabaseURL:      in.DatabaseURL,
		IsActive:         true,
		ConnectionStatus: models.ConnectionStatusConnected,
		LastTestedAt:     &testedAt,
		CreatedBy:        in.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("database added", "id", db.ID, "name", db.Name, "endpoint", db.SupabaseURL)
	return db, nil
}

// Deploy forces the deployment of the server-side functions to database id.
func (s *DatabaseService) Deploy(ctx context.Context, id string) (models.DeploymentStatus, error) {
	db, err := s.resolver.Redeploy(ctx, id)
	if db == nil {
		return models.DeploymentStatus{}, err
	}
	return s.cache.Status(db.SupabaseURL), err
}

// DeploymentStatus reports the last deployment of database id.
func (s *DatabaseService) DeploymentStatus(ctx context.Context, id string) (models.DeploymentStatus, error) {
	db, err := s.resolver.Lookup(ctx, id)
	if err != nil {
		return models.DeploymentStatus{}, err
	}
	return s.cache.Status(db.SupabaseURL), nil
}

func (s *DatabaseService) DeploymentStatuses() []models.DeploymentStatus {
	return s.cache.Statuses()
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return srvErrors.NewValidationError("%s", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "url" {
			return srvErrors.NewValidationError("%s must be a valid URL", fe.Field())
		}
	}
	return srvErrors.NewValidationError("All required fields must be provided")
}
