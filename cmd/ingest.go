package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stash-pricer/feature/ingest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ingestOnce bool

// ingestCmd runs the ingestion loop without the HTTP server.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Poll the stash feed and apply pages to the store",
	Long: `Polls the configured feed source from the stored cursor and applies every
page until interrupted. With --once a single page is applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		feed, err := a.feed(ctx)
		if err != nil {
			return err
		}
		svc := ingest.NewService(a.pipeline(), a.store, feed, a.log.Named("ingest"))

		if !ingestOnce {
			return svc.Run(ctx)
		}

		advanced, err := svc.Once(ctx)
		if err != nil {
			return err
		}
		report, err := svc.Report(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}
		a.log.Info("Ingest pass finished",
			zap.Bool("advanced", advanced),
			zap.String("cursor", report.StoredCursor),
			zap.Int64("items", report.Items),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestOnce, "once", false, "Apply at most one page and exit")
	RootCmd.AddCommand(ingestCmd)
}
