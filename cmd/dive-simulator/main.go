// Command dive-simulator writes a recording of synthetic dives that
// dc2uddf can replay with --recording.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrissnell/dc2uddf/internal/devices/simulator"
	"github.com/chrissnell/dc2uddf/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg    = simulator.DefaultConfig()
		start  string
		output string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:          "dive-simulator",
		Short:        "Generate a recording of synthetic dives",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := log.Init(debug); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				cfg.Start = t
			}
			if cfg.Dives <= 0 {
				return fmt.Errorf("--dives must be positive, got %d", cfg.Dives)
			}

			rec := simulator.Generate(cfg)
			if err := rec.Save(output); err != nil {
				return err
			}
			log.Infow("wrote recording", "path", output, "dives", len(rec.Dives), "seed", cfg.Seed)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.Dives, "dives", cfg.Dives, "Number of dives to generate")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed; the same seed always produces the same dives")
	cmd.Flags().StringVar(&start, "start", "", "Start of the first dive, RFC 3339 (default 2012-02-01T09:00:00Z)")
	cmd.Flags().StringVarP(&output, "output", "o", "dives.rec", "Recording file to write")
	cmd.Flags().BoolVar(&debug, "debug", false, "Turn on debugging output")
	return cmd
}
