package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nbalake/internal/leaderboard"
	"nbalake/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the top scorers leaderboard as an HTML page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			duck, err := a.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = duck.Close() }()

			scorers, err := leaderboard.Query(ctx, duck, 0)
			if err != nil {
				return err
			}

			f, err := os.Create(outPath) //nolint:gosec // path is caller-controlled
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			defer func() { _ = f.Close() }()

			if err := report.Render(f, a.cfg.SeasonLabel, scorers); err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			a.logger.Info("report written", "path", outPath, "rows", len(scorers))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "leaderboard.html", "output file path")
	return cmd
}
