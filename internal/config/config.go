package config

import "time"

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration

type Configuration struct {
	Server    Server    `debugmap:"visible"`
	Supabase  Supabase  `debugmap:"sensitive"`
	Store     Store     `debugmap:"sensitive"`
	Auth      Auth      `debugmap:"sensitive"`
	Bootstrap Bootstrap `debugmap:"visible"`
	LogFormat string    `debugmap:"visible" default:"console"`
	LogLevel  string    `debugmap:"visible" default:"debug"`
}

type Server struct {
	HTTPPort      int    `debugmap:"visible" default:"8000"`
	ServerMode    string `debugmap:"visible" default:"dev"`
	StaticsFolder string `debugmap:"visible"`
	// DebugSQL echoes the compiled statement back in query responses.
	DebugSQL bool `debugmap:"visible" default:"false"`
}

// Supabase holds the credentials of the default tenant.
type Supabase struct {
	URL            string        `debugmap:"visible"`
	AnonKey        string        `debugmap:"sensitive"`
	ServiceRoleKey string        `debugmap:"sensitive"`
	DatabaseURL    string        `debugmap:"sensitive"`
	RPCTimeout     time.Duration `debugmap:"visible" default:"60s"`
}

// Store is where tenant records and users are kept.
type Store struct {
	Driver string `debugmap:"visible" default:"duckdb"`
	DSN    string `debugmap:"sensitive" default:"querydesk.duckdb"`
}

type Auth struct {
	Enabled   bool          `debugmap:"visible" default:"true"`
	JWTSecret string        `debugmap:"sensitive"`
	TokenTTL  time.Duration `debugmap:"visible" default:"24h"`
	// LoginRate is the number of login attempts allowed per second per client.
	LoginRate  float64 `debugmap:"visible" default:"1"`
	LoginBurst int     `debugmap:"visible" default:"5"`
}

type Bootstrap struct {
	// ScriptPath overrides the embedded functions script.
	ScriptPath     string        `debugmap:"visible"`
	ConnectTimeout time.Duration `debugmap:"visible" default:"10s"`
	NumWorkers     int           `debugmap:"visible" default:"2"`
}
