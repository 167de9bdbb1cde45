package cmd

import (
	"github.com/spf13/pflag"

	"github.com/querydesk/querydesk/internal/config"
)

func registerLogFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
}

func registerSupabaseFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.Supabase.URL, "supabase-url", cfg.Supabase.URL, "URL of the default Supabase project")
	fs.StringVar(&cfg.Supabase.AnonKey, "supabase-anon-key", cfg.Supabase.AnonKey, "Anon key of the default project")
	fs.StringVar(&cfg.Supabase.ServiceRoleKey, "supabase-service-role-key", cfg.Supabase.ServiceRoleKey, "Service role key of the default project, preferred over the anon key")
	fs.StringVar(&cfg.Supabase.DatabaseURL, "supabase-database-url", cfg.Supabase.DatabaseURL, "Postgres connection string of the default project, used to install the server-side functions")
	fs.DurationVar(&cfg.Supabase.RPCTimeout, "supabase-rpc-timeout", cfg.Supabase.RPCTimeout, "Timeout of one RPC call")
}

func registerStoreFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.Store.Driver, "store-driver", cfg.Store.Driver, "Metadata store driver: duckdb or pgx")
	fs.StringVar(&cfg.Store.DSN, "store-dsn", cfg.Store.DSN, "Metadata store data source name")
}

func registerBootstrapFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.Bootstrap.ScriptPath, "bootstrap-script", cfg.Bootstrap.ScriptPath, "Path of a functions script replacing the embedded one")
	fs.DurationVar(&cfg.Bootstrap.ConnectTimeout, "bootstrap-connect-timeout", cfg.Bootstrap.ConnectTimeout, "Timeout of the connection used to install the functions")
	fs.IntVar(&cfg.Bootstrap.NumWorkers, "num-workers", cfg.Bootstrap.NumWorkers, "Number of concurrent function deployments")
}

func registerServerFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "HTTP port")
	fs.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode: dev or prod")
	fs.StringVar(&cfg.Server.StaticsFolder, "server-statics-folder", cfg.Server.StaticsFolder, "Folder of the UI files, required in prod mode")
	fs.BoolVar(&cfg.Server.DebugSQL, "server-debug-sql", cfg.Server.DebugSQL, "Return the compiled SQL in query responses")
}

func registerAuthFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.BoolVar(&cfg.Auth.Enabled, "authentication-enabled", cfg.Auth.Enabled, "Require a session token on every API route but login")
	fs.StringVar(&cfg.Auth.JWTSecret, "authentication-jwt-secret", cfg.Auth.JWTSecret, "Secret signing the session tokens, random when empty")
	fs.DurationVar(&cfg.Auth.TokenTTL, "authentication-token-ttl", cfg.Auth.TokenTTL, "Lifetime of a session token")
	fs.Float64Var(&cfg.Auth.LoginRate, "authentication-login-rate", cfg.Auth.LoginRate, "Login attempts allowed per second per client, 0 disables the limit")
	fs.IntVar(&cfg.Auth.LoginBurst, "authentication-login-burst", cfg.Auth.LoginBurst, "Login attempts allowed in a burst")
}
