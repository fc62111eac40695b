package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/planecrashinfo"
	"github.com/couchcryptid/planecrash-geodata/internal/pipeline"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download yearly accident snapshots",
	Long:  "Scrapes every accident of each year into <data-dir>/<year>_original.csv. Years that already have a snapshot are skipped unless --force is set.",
	RunE:  runScrape,
}

func init() {
	addYearFlags(scrapeCmd)
	scrapeCmd.Flags().Bool("force", false, "re-scrape years that already have a snapshot")
	scrapeCmd.Flags().Bool("site-years", false, "scrape every year listed on database.htm instead of --from/--to")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	client := planecrashinfo.NewClient(cfg.PlaneCrashBaseURL, cfg.ScrapeTimeout, cfg.ScrapeConcurrency, logger, metrics)

	years, err := yearRange(cmd)
	if err != nil {
		return err
	}
	if siteYears, _ := cmd.Flags().GetBool("site-years"); siteYears {
		if years, err = client.Years(ctx); err != nil {
			return err
		}
	}

	force, _ := cmd.Flags().GetBool("force")
	d := pipeline.NewDownloader(client, dataStore(), logger, metrics, force)
	sum, err := d.DownloadYears(ctx, years)
	logger.Info("scrape finished",
		"written", len(sum.Written), "skipped", len(sum.Skipped), "missing", sum.Missing)
	return err
}
