package cmd

import (
	"errors"
	"fmt"
	"strings"

	"stash-pricer/core/config"
	"stash-pricer/core/items"
	"stash-pricer/core/stats"

	"github.com/spf13/cobra"
)

var resolveProvenance string

// resolveCmd normalizes affix text with the configured dataset. It needs no
// database, which makes it handy for checking a new dataset.
var resolveCmd = &cobra.Command{
	Use:   "resolve <affix text>...",
	Short: "Normalize affix text to stat ids and values",
	Example: `  stash-pricer resolve "+22 to Strength" "Adds 5 to 11 Physical Damage"
  stash-pricer resolve --provenance crafted "+20% increased Attack Speed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		normalizer, err := stats.FromConfig(cfg.Stats)
		if err != nil {
			return err
		}

		provenance := items.Provenance(strings.ToLower(resolveProvenance))
		failed := 0
		for _, text := range args {
			mod, err := normalizer.Resolve(text, provenance)
			switch {
			case errors.Is(err, stats.ErrNotFound):
				failed++
				fmt.Printf("%-40s -> not found\n", text)
			case err != nil:
				return err
			default:
				fmt.Printf("%-40s -> %s %s\n", text, mod.StatID, mod.Value)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d affixes did not resolve", failed, len(args))
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveProvenance, "provenance", string(items.ProvenanceExplicit), "Provenance of the affixes")
	RootCmd.AddCommand(resolveCmd)
}
