package models

import "time"

// DefaultDatabaseID is the reserved id of the tenant built from process configuration.
const DefaultDatabaseID = "default"

type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// Database is one tenant: a Supabase project plus the Postgres connection string
// used to install its server-side functions.
type Database struct {
	ID               string
	Name             string
	SupabaseURL      string
	AnonKey          string
	ServiceRoleKey   string
	DatabaseURL      string
	IsDefault        bool
	IsActive         bool
	ConnectionStatus ConnectionStatus
	LastTestedAt     *time.Time
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// APIKey returns the service role key when present, the anon key otherwise.
func (d Database) APIKey() string {
	if d.ServiceRoleKey != "" {
		return d.ServiceRoleKey
	}
	return d.AnonKey
}

// NewDefaultDatabase builds the pseudo-record of the default tenant.
func NewDefaultDatabase(url, anonKey, serviceRoleKey, databaseURL string) Database {
	return Database{
		ID:               DefaultDatabaseID,
		Name:             "Default Database",
		SupabaseURL:      url,
		AnonKey:          anonKey,
		ServiceRoleKey:   serviceRoleKey,
		DatabaseURL:      databaseURL,
		IsDefault:        true,
		IsActive:         true,
		ConnectionStatus: ConnectionStatusConnected,
	}
}
