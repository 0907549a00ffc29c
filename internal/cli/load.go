package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/ipksa-ingest/internal/app"
	"github.com/yungbote/ipksa-ingest/internal/config"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/ingestion/stats"
)

type loadOptions struct {
	source    string
	batchSize int
	dryRun    bool
	verify    bool
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a source corpus into the store",
	}
	cmd.AddCommand(newLoadHadithsCmd(root), newLoadMarkersCmd(root))
	return cmd
}

func newLoadHadithsCmd(root *rootOptions) *cobra.Command {
	var opts loadOptions
	cmd := &cobra.Command{
		Use:   "hadiths",
		Short: "Load every JSON file under a directory tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg, &cfg.Load.HadithRoot)
			return runLoad(cmd, cfg, stats.KindHadith)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "root directory of the hadith JSON tree")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", config.DefaultBatchSize, "records per insert transaction")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and validate without writing")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "run verification checks after the load")
	return cmd
}

func newLoadMarkersCmd(root *rootOptions) *cobra.Command {
	var opts loadOptions
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Load the temporal marker CSV, parents before children",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg, &cfg.Load.MarkerCSV)
			return runLoad(cmd, cfg, stats.KindMarker)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "", "path of the marker CSV file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and validate without writing")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "run verification checks after the load")
	return cmd
}

func (o loadOptions) apply(cmd *cobra.Command, cfg *config.Config, source *string) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		*source = o.source
	}
	if flags.Changed("batch-size") {
		cfg.Load.BatchSize = o.batchSize
	}
	if flags.Changed("dry-run") {
		cfg.Load.DryRun = o.dryRun
	}
	if flags.Changed("verify") {
		cfg.Load.Verify = o.verify
	}
}

// runLoad prints the summary whatever the outcome. Only fatal errors are
// returned; the rest become a warning on stderr.
func runLoad(cmd *cobra.Command, cfg config.Config, kind stats.Kind) error {
	source := cfg.Load.HadithRoot
	if kind == stats.KindMarker {
		source = cfg.Load.MarkerCSV
	}
	if source == "" {
		return ingesterr.NewError(ingesterr.CodeConfig, "cli.load", "--source is required", nil)
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if !cfg.Load.DryRun {
		if err := a.Migrate(); err != nil {
			return err
		}
	}

	var st *stats.LoadStatistics
	switch kind {
	case stats.KindMarker:
		st, err = a.MarkerLoader().LoadFromCSV(ctx, source)
	default:
		st, err = a.HadithLoader().LoadFromDirectory(ctx, source)
	}
	if st != nil {
		fmt.Fprint(cmd.OutOrStdout(), st.Summary())
	}
	if err != nil {
		if ingesterr.Fatal(err) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	if cfg.Load.Verify && !cfg.Load.DryRun {
		return runVerify(cmd, a)
	}
	return nil
}
