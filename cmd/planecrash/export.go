package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/kml"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
	"github.com/couchcryptid/planecrash-geodata/internal/store/sqlite"
)

var exportKMLCmd = &cobra.Command{
	Use:   "export-kml",
	Short: "Write located places as KML",
	RunE:  runExportKML,
}

var exportSQLiteCmd = &cobra.Command{
	Use:   "export-sqlite",
	Short: "Load cleaned accidents and geolocations into SQLite",
	RunE:  runExportSQLite,
}

func init() {
	exportKMLCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	exportKMLCmd.Flags().String("title", "Plane crash places", "KML document name")
	exportSQLiteCmd.Flags().String("db", "", "database path (overrides SQLITE_PATH)")
	rootCmd.AddCommand(exportKMLCmd, exportSQLiteCmd)
}

func runExportKML(cmd *cobra.Command, _ []string) error {
	geolocs, err := dataStore().LoadGeolocations()
	if err != nil {
		return err
	}
	title, _ := cmd.Flags().GetString("title")
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		return kml.Export(cmd.OutOrStdout(), geolocs, title)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := kml.Export(f, geolocs, title); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("kml written", "path", out, "placemarks", geolocs.CountLocated())
	return nil
}

func runExportSQLite(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s := dataStore()
	raws, err := s.ReadDatabase()
	if err != nil {
		return err
	}
	geolocs, err := s.LoadGeolocations()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.SQLitePath
	}
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	accidents := domain.CleanAll(raws, logger)
	if err := db.ReplaceAccidents(ctx, accidents); err != nil {
		return err
	}
	if err := db.ReplaceGeolocations(ctx, geolocs); err != nil {
		return err
	}
	logger.Info("sqlite export complete", "path", path, "accidents", len(accidents), "places", len(geolocs))
	return nil
}
