package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nbalake/internal/domain"
	"nbalake/internal/sched"
)

func newScheduleCmd(a *app) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run ingest and build on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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

			job := func(jobCtx context.Context) error {
				if err := a.ingestService(duck).Run(jobCtx, a.cfg.Season); err != nil {
					return err
				}
				return a.buildOnce(jobCtx, duck, runs, domain.TriggerTypeScheduled)
			}

			scheduler := sched.New(job, a.logger)
			if err := scheduler.Start(cronSpec); err != nil {
				return err
			}
			defer scheduler.Stop()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "0 6 * * *", "cron expression for scheduled runs")
	return cmd
}
