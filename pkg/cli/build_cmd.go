package cli

import (
	"github.com/spf13/cobra"

	"nbalake/internal/domain"
)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Materialize all models from the raw layer through the ranked leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			duck, err := a.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = duck.Close() }()

			runs, metaDB, err := a.openMetastore()
			if err != nil {
				return err
			}
			defer func() { _ = metaDB.Close() }()

			return a.buildOnce(ctx, duck, runs, domain.TriggerTypeManual)
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Ingest then build, end to end",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			duck, err := a.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = duck.Close() }()

			runs, metaDB, err := a.openMetastore()
			if err != nil {
				return err
			}
			defer func() { _ = metaDB.Close() }()

			if err := a.ingestService(duck).Run(ctx, a.cfg.Season); err != nil {
				return err
			}
			return a.buildOnce(ctx, duck, runs, domain.TriggerTypeManual)
		},
	}
}
