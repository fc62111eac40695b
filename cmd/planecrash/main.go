package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/planecrash-geodata/internal/config"
	"github.com/couchcryptid/planecrash-geodata/internal/observability"
	"github.com/couchcryptid/planecrash-geodata/internal/store/csvdb"
)

var (
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "planecrash",
	Short: "Scrape, clean and geolocate the planecrashinfo.com accident database",
	Long: "Downloads accident records from planecrashinfo.com into yearly CSV snapshots, " +
		"builds a combined database, geocodes flight origins and destinations, " +
		"and exports or serves the result. HERE Maps helpers cover tiles, routing and isolines.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			c.DataDir = dir
		}
		cfg = c
		logger = observability.NewLogger(cfg)
		if metrics == nil {
			metrics = observability.NewMetrics()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "data directory (overrides DATA_DIR)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree; long-running commands stop when ctx is done.
func execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func dataStore() *csvdb.Store {
	return csvdb.New(cfg.DataDir, logger)
}

// yearRange returns the --from/--to years, falling back to FIRST_YEAR and
// LAST_YEAR.
func yearRange(cmd *cobra.Command) ([]int, error) {
	r := *cfg
	if from, _ := cmd.Flags().GetInt("from"); from != 0 {
		r.FirstYear = from
	}
	if to, _ := cmd.Flags().GetInt("to"); to != 0 {
		r.LastYear = to
	}
	if r.FirstYear > r.LastYear {
		return nil, fmt.Errorf("--from %d is after --to %d", r.FirstYear, r.LastYear)
	}
	return r.Years(), nil
}

func addYearFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", 0, "first year (default FIRST_YEAR)")
	cmd.Flags().Int("to", 0, "last year (default LAST_YEAR)")
}
