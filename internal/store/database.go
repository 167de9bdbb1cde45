package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

const databasesTable = "database_connections"

var databaseColumns = []string{
	"id",
	"connection_name",
	"supabase_url",
	"supabase_anon_key",
	"supabase_service_role_key",
	"database_url",
	"is_default",
	"is_active",
	"connection_status",
	"last_tested_at",
	"created_by",
	"created_at",
	"updated_at",
}

// DatabaseStore keeps tenant connection records.
type DatabaseStore struct {
	db QueryInterceptor
}

func NewDatabaseStore(db QueryInterceptor) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// List returns all stored tenants, newest first.
func (s *DatabaseStore) List(ctx context.Context) ([]models.Database, error) {
	query, args, err := psql.Select(databaseColumns...).
		From(databasesTable).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dbs := []models.Database{}
	for rows.Next() {
		d, err := scanDatabase(rows)
		if err != nil {
			return nil, err
		}
		dbs = append(dbs, *d)
	}
	return dbs, rows.Err()
}

func (s *DatabaseStore) Get(ctx context.Context, id string) (*models.Database, error) {
	query, args, err := psql.Select(databaseColumns...).
		From(databasesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	d, err := scanDatabase(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewDatabaseNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DatabaseStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	query, args, err := psql.Select("count(*)").
		From(databasesTable).
		Where(sq.Eq{"connection_name": name}).
		ToSql()
	if err != nil {
		return false, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new tenant and returns it with its generated id.
// A name already in use yields a DuplicateResourceError.
func (s *DatabaseStore) Create(ctx context.Context, d models.Database) (*models.Database, error) {
	exists, err := s.ExistsByName(ctx, d.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, srvErrors.NewDuplicateResourceError("database", d.Name)
	}

	if d.ConnectionStatus == "" {
		d.ConnectionStatus = models.ConnectionStatusDisconnected
	}
	d.ID = uuid.NewString()

	query, args, err := psql.Insert(databasesTable).
		Columns(
			"id",
			"connection_name",
			"supabase_url",
			"supabase_anon_key",
			"supabase_service_role_key",
			"database_url",
			"is_default",
			"is_active",
			"connection_status",
			"last_tested_at",
			"created_by",
		).
		Values(
			d.ID,
			d.Name,
			d.SupabaseURL,
			d.AnonKey,
			nullString(d.ServiceRoleKey),
			d.DatabaseURL,
			false,
			true,
			string(d.ConnectionStatus),
			nullTime(d.LastTestedAt),
			nullString(d.CreatedBy),
		).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, srvErrors.NewDuplicateResourceError("database", d.Name)
		}
		return nil, err
	}

	return s.Get(ctx, d.ID)
}

// UpdateStatus records the outcome of a connectivity test.
func (s *DatabaseStore) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus, testedAt time.Time) error {
	query, args, err := psql.Update(databasesTable).
		Set("connection_status", string(status)).
		Set("last_tested_at", testedAt).
		Set("updated_at", sq.Expr("current_timestamp")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return srvErrors.NewDatabaseNotFoundError(id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDatabase(row rowScanner) (*models.Database, error) {
	var (
		d              models.Database
		serviceRoleKey sql.NullString
		createdBy      sql.NullString
		status         sql.NullString
		isDefault      sql.NullBool
		isActive       sql.NullBool
		lastTestedAt   sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.SupabaseURL,
		&d.AnonKey,
		&serviceRoleKey,
		&d.DatabaseURL,
		&isDefault,
		&isActive,
		&status,
		&lastTestedAt,
		&createdBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.ServiceRoleKey = serviceRoleKey.String
	d.CreatedBy = createdBy.String
	d.IsDefault = isDefault.Bool
	// rows written before is_active existed count as active
	d.IsActive = !isActive.Valid || isActive.Bool
	d.ConnectionStatus = models.ConnectionStatus(status.String)
	if lastTestedAt.Valid {
		t := lastTestedAt.Time
		d.LastTestedAt = &t
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
