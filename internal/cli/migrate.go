package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/ipksa-ingest/internal/app"
	"github.com/yungbote/ipksa-ingest/internal/data/db"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.resolve(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%d tables)\n", len(db.Models()))
			return nil
		},
	}
}
