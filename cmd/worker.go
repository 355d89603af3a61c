package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"stash-pricer/feature/builds"
	"stash-pricer/feature/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var withWatchdog bool

// workerCmd runs build workers without the HTTP server. Any number of these
// processes may share one database.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process queued builds",
	Long: `Starts builds.workers worker loops that claim queued builds, match every
slot against the store and record the results. Add --watchdog to also release
expired claims from this process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.restoreIndex(ctx)
		queue := builds.NewQueue(a.db)
		engine := matching.NewEngine(a.searcher(), a.log.Named("matching"))

		workers := max(a.cfg.Builds.Workers, 1)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < workers; i++ {
			w := builds.NewWorker(queue, engine, a.cfg.Builds, a.log.Named("worker").With(zap.Int("worker", i)))
			g.Go(func() error { return w.Run(gctx) })
		}
		if withWatchdog {
			g.Go(func() error {
				return builds.NewWatchdog(queue, a.cfg.Builds, a.log.Named("watchdog")).Run(gctx)
			})
		}

		a.log.Info("Workers started", zap.Int("workers", workers), zap.Bool("watchdog", withWatchdog))
		return g.Wait()
	},
}

func init() {
	workerCmd.Flags().BoolVar(&withWatchdog, "watchdog", false, "Also run the stale-claim watchdog")
	RootCmd.AddCommand(workerCmd)
}
