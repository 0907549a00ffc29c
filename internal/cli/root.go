// Package cli wires the ipksa command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/ipksa-ingest/internal/app"
	"github.com/yungbote/ipksa-ingest/internal/config"
)

type rootOptions struct {
	configPath  string
	databaseURL string
	driver      string
	logMode     string
	logLevel    string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ipksa",
		Short: "Load the hadith corpus and temporal markers into the knowledge base",
		Long: `ipksa ingests the hadith JSON corpus and the temporal marker CSV into the
relational store, then reports load statistics and data-quality checks.

Examples:
  ipksa migrate
  ipksa load hadiths --source data/hadiths --batch-size 500
  ipksa load markers --source data/markers.csv --verify
  ipksa verify`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML config file (default $IPKSA_CONFIG)")
	pf.StringVar(&opts.databaseURL, "database-url", "", "database URL or sqlite path (default $DATABASE_URL)")
	pf.StringVar(&opts.driver, "driver", "", "database driver: postgres or sqlite (default $DATABASE_DRIVER)")
	pf.StringVar(&opts.logMode, "log-mode", "", "log encoding: dev or prod (default $LOG_MODE)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")

	cmd.AddCommand(newLoadCmd(opts), newVerifyCmd(opts), newMigrateCmd(opts))
	return cmd
}

// resolve builds the effective config: defaults, env, file, then any flag the
// user actually set.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := app.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("database-url") {
		cfg.Database.URL = o.databaseURL
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = o.driver
	}
	if flags.Changed("log-mode") {
		cfg.Log.Mode = o.logMode
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
