package cli

import (
	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch player data from the NBA stats API into the raw layer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			duck, err := a.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = duck.Close() }()

			return a.ingestService(duck).Run(ctx, a.cfg.Season)
		},
	}
}
