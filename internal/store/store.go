package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db        *sql.DB
	databases *DatabaseStore
	users     *UserStore
}

func NewStore(db *sql.DB) *Store {
	qi := newQueryInterceptor(db)
	return &Store{
		db:        db,
		databases: NewDatabaseStore(qi),
		users:     NewUserStore(qi),
	}
}

func (s *Store) Databases() *DatabaseStore {
	return s.databases
}

func (s *Store) Users() *UserStore {
	return s.users
}

func (s *Store) Close() error {
	return s.db.Close()
}
