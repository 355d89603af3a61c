package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"stash-pricer/core/reconcile"
	"stash-pricer/core/setindex"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	saveSnapshot bool
	fixDrift     bool
	jsonOutput   bool
)

// indexCmd is the parent command for set-index maintenance.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain the stat set-index and its snapshot",
}

// indexRebuildCmd rebuilds the set-index from the primary store.
var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the set-index from the primary store",
	Long: `Scans every stored mod into a fresh set-index. With --save the result is
written to index.snapshot_object so servers and workers can restore it at
startup instead of scanning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()

		idx := a.index
		if idx == nil {
			idx = setindex.New(a.store, a.cfg.Index.Threshold, a.log.Named("setindex"))
		}
		start := time.Now()
		if err := idx.Rebuild(ctx); err != nil {
			return err
		}
		a.log.Info("Set index rebuilt", zap.Duration("took", time.Since(start)))

		if !saveSnapshot {
			return nil
		}
		if a.cfg.Index.SnapshotObject == "" {
			return fmt.Errorf("index.snapshot_object is empty")
		}
		client, err := a.objects(ctx)
		if err != nil {
			return err
		}
		return idx.Save(ctx, client, a.cfg.Storage.Bucket, a.cfg.Index.SnapshotObject)
	},
}

// indexVerifyCmd compares the saved snapshot with the primary store.
var indexVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the saved snapshot against the primary store",
	Long: `Reports items the snapshot misses, items only the snapshot still lists and
items whose stats changed. With --fix a drifting snapshot is rebuilt and saved.

Examples:
  # Report only
  index verify

  # Rebuild and save when the snapshot drifted
  index verify --fix`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := cmd.Context()

		client, err := a.objects(ctx)
		if err != nil {
			return err
		}
		start := time.Now()
		report, err := reconcile.Compare(ctx,
			reconcile.PrimaryAdapter{Store: a.store},
			reconcile.SnapshotAdapter{Client: client, Bucket: a.cfg.Storage.Bucket, Object: a.cfg.Index.SnapshotObject},
		)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
		} else {
			fmt.Println("\n=== Set Index Snapshot ===")
			fmt.Printf("Total Items: %d\n", report.Summary.TotalItems)
			fmt.Printf("Missing In Snapshot: %d\n", report.Summary.MissingSnapshot)
			fmt.Printf("Orphaned: %d\n", report.Summary.Orphaned)
			fmt.Printf("Mismatch: %d\n", report.Summary.Mismatches)
			fmt.Printf("Execution Time: %s\n", time.Since(start))
		}

		if report.Clean() || !fixDrift {
			return nil
		}
		idx := setindex.New(a.store, a.cfg.Index.Threshold, a.log.Named("setindex"))
		if err := idx.Rebuild(ctx); err != nil {
			return err
		}
		if err := idx.Save(ctx, client, a.cfg.Storage.Bucket, a.cfg.Index.SnapshotObject); err != nil {
			return err
		}
		a.log.Info("Snapshot repaired", zap.Int("drifting_items", len(report.Results)))
		return nil
	},
}

func init() {
	indexRebuildCmd.Flags().BoolVar(&saveSnapshot, "save", false, "Save the rebuilt index as the snapshot")
	indexVerifyCmd.Flags().BoolVar(&fixDrift, "fix", false, "Rebuild and save the snapshot when it drifted")
	indexVerifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexVerifyCmd)
	RootCmd.AddCommand(indexCmd)
}
