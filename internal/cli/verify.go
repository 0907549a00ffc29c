package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/ipksa-ingest/internal/app"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/verify"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report counts, quality checks and samples for the loaded data",
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
			return runVerify(cmd, a)
		},
	}
}

func runVerify(cmd *cobra.Command, a *app.App) error {
	outcomes := a.Reporter().Run(cmd.Context())
	if err := verify.Render(cmd.OutOrStdout(), outcomes); err != nil {
		return err
	}
	if failed := verify.Failed(outcomes); len(failed) > 0 {
		return ingesterr.NewError(ingesterr.CodeStorage, "cli.verify",
			fmt.Sprintf("%d check(s) failed: %s", len(failed), strings.Join(failed, ", ")), nil)
	}
	return nil
}
