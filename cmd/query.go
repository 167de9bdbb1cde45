package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/querydesk/querydesk/internal/config"
	"github.com/querydesk/querydesk/internal/services"
	"github.com/querydesk/querydesk/pkg/filter"
	qb "github.com/querydesk/querydesk/pkg/querybuilder"
)

type queryOptions struct {
	Table      string
	Where      string
	Columns    []string
	DatabaseID string
	Output     string
	File       string
	ShowSQL    bool
}

// NewQueryCommand runs one query against a database without starting the
// server.
func NewQueryCommand(cfg *config.Configuration) *cobra.Command {
	opts := &queryOptions{Output: "json"}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filter against a table",
		Example: `  querydesk query --table orders --where "status = 'open' and amount > 100"
  querydesk query --table orders --select id --select customers.name --output xlsx --file orders.xlsx`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStore(cfg); err != nil {
				return err
			}
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.query()
			if err != nil {
				return err
			}

			flush, err := setupLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer flush()

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.query.Execute(cmd.Context(), opts.DatabaseID, q)
			if err != nil {
				return err
			}

			if opts.ShowSQL {
				fmt.Fprintln(cmd.ErrOrStderr(), color.CyanString(result.SQL))
			}

			switch opts.Output {
			case "xlsx":
				data, err := services.Workbook(result, q.Columns)
				if err != nil {
					return err
				}
				if err := os.WriteFile(opts.File, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d rows written to %s\n", color.GreenString("✓"), result.Count(), opts.File)
				return nil
			default:
				return writeJSON(cmd.OutOrStdout(), result.Rows)
			}
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.Table, "table", "", "Table to query")
	fs.StringVar(&opts.Where, "where", "", "Filter expression, e.g. \"status = 'open' and amount > 100\"")
	fs.StringArrayVar(&opts.Columns, "select", nil, "Column to return, as column or table.column; repeatable")
	fs.StringVar(&opts.DatabaseID, "database-id", "", "Database to query, the default one when empty")
	fs.StringVar(&opts.Output, "output", opts.Output, "Output format: json or xlsx")
	fs.StringVar(&opts.File, "file", "", "File written by the xlsx output")
	fs.BoolVar(&opts.ShowSQL, "show-sql", false, "Print the compiled statement on stderr")
	registerLogFlags(fs, cfg)
	registerSupabaseFlags(fs, cfg)
	registerStoreFlags(fs, cfg)
	registerBootstrapFlags(fs, cfg)

	return cmd
}

func (o *queryOptions) validate() error {
	if strings.TrimSpace(o.Table) == "" {
		return errors.New("table cannot be empty")
	}
	switch o.Output {
	case "json":
	case "xlsx":
		if o.File == "" {
			return errors.New("file must be set when output is xlsx")
		}
	default:
		return fmt.Errorf("invalid output %q: must be json or xlsx", o.Output)
	}
	return nil
}

// query builds the statement input from the flags.
func (o *queryOptions) query() (qb.Query, error) {
	where, err := filter.Parse([]byte(o.Where))
	if err != nil {
		return qb.Query{}, fmt.Errorf("invalid filter: %w", err)
	}

	q := qb.Query{Table: strings.TrimSpace(o.Table), Where: where}
	for _, c := range o.Columns {
		table, column, ok := strings.Cut(c, ".")
		if !ok {
			table, column = q.Table, c
		}
		q.Columns = append(q.Columns, qb.SelectedColumn{Table: table, Column: column})
	}
	return q, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
