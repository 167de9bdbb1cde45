package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/config"
	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/pkg/postgres"
)

// NewDatabasesCommand groups the tenant maintenance commands.
func NewDatabasesCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "databases",
		Short: "Manage the registered databases",
	}

	cmd.AddCommand(
		newDatabasesListCommand(cfg),
		newDatabasesTestCommand(cfg),
		newDatabasesDeployCommand(cfg),
	)

	return cmd
}

func newDatabasesListCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the databases and their connection status",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateStore(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			dbs, err := a.databases.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tENDPOINT\tSTATUS")
			for _, db := range dbs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", db.ID, db.Name, db.SupabaseURL, statusText(db.ConnectionStatus))
			}
			return w.Flush()
		},
	}

	registerSupabaseFlags(cmd.Flags(), cfg)
	registerStoreFlags(cmd.Flags(), cfg)

	return cmd
}

func newDatabasesTestCommand(cfg *config.Configuration) *cobra.Command {
	timeout := 30 * time.Second

	cmd := &cobra.Command{
		Use:   "test DATABASE_URL",
		Short: "Check that a Postgres connection string accepts connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := postgres.Ping(cmd.Context(), args[0], timeout)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.RedString("✗"), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s connection successful, server time %s\n", color.GreenString("✓"), now.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "Connection timeout")

	return cmd
}

func newDatabasesDeployCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [DATABASE_ID]",
		Short: "Install the server-side functions into a database, the default one when no id is given",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Bootstrap.NumWorkers < 1 {
				return fmt.Errorf("invalid num-workers %d: must be at least 1", cfg.Bootstrap.NumWorkers)
			}
			return validateStore(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := models.DefaultDatabaseID
			if len(args) == 1 {
				id = args[0]
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.databases.Deploy(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.RedString("✗"), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s functions deployed to %s\n", color.GreenString("✓"), status.Endpoint)
			return nil
		},
	}

	registerSupabaseFlags(cmd.Flags(), cfg)
	registerStoreFlags(cmd.Flags(), cfg)
	registerBootstrapFlags(cmd.Flags(), cfg)

	return cmd
}

func statusText(s models.ConnectionStatus) string {
	switch s {
	case models.ConnectionStatusConnected:
		return color.GreenString(string(s))
	case models.ConnectionStatusError:
		return color.RedString(string(s))
	case "":
		return color.YellowString(string(models.ConnectionStatusDisconnected))
	default:
		return color.YellowString(string(s))
	}
}
