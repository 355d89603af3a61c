package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"stash-pricer/core/loader"
	"stash-pricer/core/server"
	"stash-pricer/feature/builds"
	"stash-pricer/feature/ingest"
	"stash-pricer/feature/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the stash pricer server",
	Long: `Starts the HTTP server and initializes all enabled features, then runs
the ingestion loop, the build workers and the watchdog until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		logg := a.log

		if err := a.migrate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.restoreIndex(ctx)

		var feed ingest.Feed
		if a.cfg.Ingest.Enabled {
			if feed, err = a.feed(ctx); err != nil {
				return err
			}
		}

		ingestSvc := ingest.NewService(a.pipeline(), a.store, feed, logg.Named("ingest"))
		matchSvc := matching.NewService(a.searcher(), a.builder, logg.Named("matching"))
		queue := builds.NewQueue(a.db)
		buildSvc := builds.NewService(queue, a.builder, logg.Named("builds"))

		srv := server.New(a.cfg.Server, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(ingest.NewFeature(ingestSvc))
		mgr.Register(matching.NewFeature(matchSvc))
		mgr.Register(builds.NewFeature(buildSvc))
		if err := mgr.LoadAll(srv); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			return srv.Listen(":" + a.cfg.Server.Port)
		})
		g.Go(func() error {
			<-gctx.Done()
			logg.Info("Shutting down server...")
			return srv.Shutdown()
		})

		if feed != nil {
			g.Go(func() error { return ingestSvc.Run(gctx) })
		} else {
			logg.Info("Ingestion loop disabled, accepting pushed pages only")
		}

		for i := 0; i < a.cfg.Builds.Workers; i++ {
			w := builds.NewWorker(queue, matchSvc.Engine(), a.cfg.Builds, logg.Named("worker").With(zap.Int("worker", i)))
			g.Go(func() error { return w.Run(gctx) })
		}
		g.Go(func() error {
			return builds.NewWatchdog(queue, a.cfg.Builds, logg.Named("watchdog")).Run(gctx)
		})

		return g.Wait()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
