package cmd

import (
	"github.com/go-extras/cobraflags"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/querydesk/querydesk/internal/config"
)

const envPrefix = "QUERYDESK"

// NewRootCommand builds the querydesk command tree. Every flag can also be
// set from the environment, e.g. --server-http-port from
// QUERYDESK_SERVER_HTTP_PORT.
func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	root := &cobra.Command{
		Use:          "querydesk",
		Short:        "Visual query service for Supabase projects",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = cobrautil.CommandStack(
		cobrautil.SyncViperPreRunE(envPrefix),
		presetFlagsFromEnv,
	)

	root.AddCommand(
		NewRunCommand(cfg),
		NewQueryCommand(cfg),
		NewDatabasesCommand(cfg),
	)

	return root
}

func presetFlagsFromEnv(cmd *cobra.Command, _ []string) error {
	cobraflags.PresetRequiredFlags(envPrefix, make(map[*pflag.Flag]bool), cmd)
	return nil
}
