package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nbalake/internal/leaderboard"
)

func newTopCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the top scorers leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			duck, err := a.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = duck.Close() }()

			scorers, err := leaderboard.Query(ctx, duck, limit)
			if err != nil {
				return err
			}
			if len(scorers) == 0 {
				fmt.Println("No ranked rows. Run the build first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tPLAYER\tTEAM\tPPG\tGP\tSEASON")
			for _, ts := range scorers {
				team := "-"
				if ts.TeamName != nil {
					team = *ts.TeamName
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\t%s\n",
					ts.Rank, ts.FullName, team, ts.PointsPerGame, ts.GamesPlayed, ts.Season)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "limit output rows (0 shows all retained ranks)")
	return cmd
}
