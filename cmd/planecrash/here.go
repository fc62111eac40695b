package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/planecrash-geodata/internal/adapter/here"
	"github.com/couchcryptid/planecrash-geodata/internal/domain"
)

var hereCmd = &cobra.Command{
	Use:   "here",
	Short: "HERE Maps helpers: tiles, routing, isolines and geocoding",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.RequireHERE()
	},
}

var hereTilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Print the tile basemap, optionally for the tile covering --at",
	RunE:  runHERETiles,
}

var hereRouteCmd = &cobra.Command{
	Use:   "route",
	Short: "Print a route as GeoJSON",
	RunE:  runHERERoute,
}

var hereIsolineCmd = &cobra.Command{
	Use:   "isoline",
	Short: "Print the area reachable within --range meters as GeoJSON",
	RunE:  runHEREIsoline,
}

var hereGeocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Geocode an address",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHEREGeocode,
}

func init() {
	hereTilesCmd.Flags().StringToString("set", nil, "template overrides, e.g. --set scheme=normal.night,maptype=base")
	hereTilesCmd.Flags().String("at", "", "lat,lon to resolve into a concrete tile")
	hereTilesCmd.Flags().Uint32("zoom", 10, "zoom level for --at")
	hereTilesCmd.Flags().Bool("mask", true, "mask credentials in the output")

	hereRouteCmd.Flags().String("from", "", "start lat,lon")
	hereRouteCmd.Flags().String("to", "", "end lat,lon")
	hereRouteCmd.Flags().String("color", "blue", "path color")
	hereRouteCmd.Flags().StringToString("param", nil, "extra calculateroute parameters")
	_ = hereRouteCmd.MarkFlagRequired("from")
	_ = hereRouteCmd.MarkFlagRequired("to")

	hereIsolineCmd.Flags().String("center", "", "center lat,lon")
	hereIsolineCmd.Flags().Int("range", 1000, "range in meters")
	_ = hereIsolineCmd.MarkFlagRequired("center")

	hereCmd.AddCommand(hereTilesCmd, hereRouteCmd, hereIsolineCmd, hereGeocodeCmd)
	rootCmd.AddCommand(hereCmd)
}

func runHERETiles(cmd *cobra.Command, _ []string) error {
	overrides, _ := cmd.Flags().GetStringToString("set")
	if overrides == nil {
		overrides = map[string]string{}
	}
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		p, err := parseLatLon(at)
		if err != nil {
			return err
		}
		zoom, _ := cmd.Flags().GetUint32("zoom")
		x, y := domain.DegToTile(p.Lat, p.Lon, zoom)
		overrides["x"] = strconv.FormatUint(uint64(x), 10)
		overrides["y"] = strconv.FormatUint(uint64(y), 10)
		overrides["z"] = strconv.FormatUint(uint64(zoom), 10)
		nw := domain.TileToDeg(x, y, zoom)
		logger.Info("tile resolved", "x", x, "y", y, "z", zoom, "nw_lat", nw.Lat, "nw_lon", nw.Lon)
	}

	b, err := newHEREClient().Basemap(overrides)
	if err != nil {
		return err
	}
	if mask, _ := cmd.Flags().GetBool("mask"); mask {
		b.URL = here.MaskCredentials(b.URL)
	}
	return printJSON(cmd, b)
}

func runHERERoute(cmd *cobra.Command, _ []string) error {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	from, err := parseLatLon(fromStr)
	if err != nil {
		return err
	}
	to, err := parseLatLon(toStr)
	if err != nil {
		return err
	}
	params, _ := cmd.Flags().GetStringToString("param")
	color, _ := cmd.Flags().GetString("color")

	routes, err := newHEREClient().Route(cmd.Context(), from, to, params)
	if err != nil {
		return err
	}
	logger.Info("route calculated", "distance_m", routes[0].Distance(), "maneuvers", len(routes[0].Maneuvers()))
	return printJSON(cmd, here.RouteFeatures(routes[0], color))
}

func runHEREIsoline(cmd *cobra.Command, _ []string) error {
	centerStr, _ := cmd.Flags().GetString("center")
	center, err := parseLatLon(centerStr)
	if err != nil {
		return err
	}
	meters, _ := cmd.Flags().GetInt("range")

	layer := here.NewFeatureLayer()
	iso := newHEREClient().NewIsoline(center, layer, nil)
	if _, err := iso.Draw(cmd.Context(), meters); err != nil {
		return err
	}
	return printJSON(cmd, layer.Collection())
}

func runHEREGeocode(cmd *cobra.Command, args []string) error {
	address := strings.Join(args, " ")
	res, err := newHEREClient().Geocode(cmd.Context(), address)
	if err != nil {
		return err
	}
	if !res.Found() {
		return fmt.Errorf("no match for %q", address)
	}
	return printJSON(cmd, map[string]any{
		"query":        address,
		"lat":          res.Lat,
		"lon":          res.Lon,
		"display_name": res.DisplayName,
		"relevance":    res.Confidence,
	})
}

// parseLatLon parses "lat,lon".
func parseLatLon(s string) (domain.LatLon, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.LatLon{}, fmt.Errorf("invalid coordinate %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.LatLon{}, fmt.Errorf("invalid latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return domain.LatLon{}, fmt.Errorf("invalid longitude in %q", s)
	}
	return domain.LatLon{Lat: lat, Lon: lon}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
