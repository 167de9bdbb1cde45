package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

const usersTable = "users"

var userColumns = []string{
	"id",
	"user_name",
	"user_password",
	"roles_and_rights",
	"first_name",
	"last_name",
	"contact",
	"is_enabled",
	"created_by",
	"created_at",
	"last_login",
}

type UserStore struct {
	db QueryInterceptor
}

func NewUserStore(db QueryInterceptor) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByUserName(ctx context.Context, name string) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"user_name": name}).
		ToSql()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewUserNotFoundError(name)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// HasRole reports whether at least one user with role exists.
func (s *UserStore) HasRole(ctx context.Context, role models.UserRole) (bool, error) {
	query, args, err := psql.Select("count(*)").
		From(usersTable).
		Where(sq.Eq{"roles_and_rights": string(role)}).
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

// Create inserts u and returns the stored row. u.PasswordHash must already be hashed.
func (s *UserStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	query, args, err := psql.Insert(usersTable).
		Columns("user_name", "user_password", "roles_and_rights", "first_name", "last_name", "contact", "is_enabled", "created_by").
		Values(u.UserName, u.PasswordHash, string(u.Role), nullString(u.FirstName), nullString(u.LastName), nullString(u.Contact), u.IsEnabled, nullString(u.CreatedBy)).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, srvErrors.NewDuplicateResourceError("user", u.UserName)
		}
		return nil, err
	}
	return s.GetByUserName(ctx, u.UserName)
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	query, args, err := psql.Update(usersTable).
		Set("last_login", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		role      string
		firstName sql.NullString
		lastName  sql.NullString
		contact   sql.NullString
		createdBy sql.NullString
		lastLogin sql.NullTime
	)

	err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.PasswordHash,
		&role,
		&firstName,
		&lastName,
		&contact,
		&u.IsEnabled,
		&createdBy,
		&u.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, err
	}

	u.Role = models.UserRole(role)
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Contact = contact.String
	u.CreatedBy = createdBy.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
