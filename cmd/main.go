package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Zachdehooge/indymap/internal/area"
	"github.com/Zachdehooge/indymap/internal/config"
	"github.com/Zachdehooge/indymap/internal/fetcher"
	"github.com/Zachdehooge/indymap/internal/generator"
	"github.com/Zachdehooge/indymap/internal/geometry"
	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("invalid configuration: %w", err))
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "indymap",
		Short: "Fetch Indianapolis area boundaries and render them on a map",
		Long: `indymap downloads Indianapolis / Marion County area boundaries from
MapIt into per-area GeoJSON files, then composes them with a local
neighborhood shapefile into a static Leaflet map.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	addFetchCmd(rootCmd, cfg)
	addMapCmd(rootCmd, cfg)
	addListCmd(rootCmd, cfg)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// addFetchCmd adds 'fetch', which downloads every configured area.
func addFetchCmd(rootCmd *cobra.Command, cfg *config.Config) {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download area boundaries into GeoJSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := fetcher.New(fetcher.NewClient(cfg.BaseURL), cfg.GeoDataDir, newLogger())

			summary, err := f.FetchAreas(cmd.Context(), cfg.FetchIDs())
			if err != nil {
				return fmt.Errorf("failed to save areas: %w", err)
			}

			for _, failure := range summary.Failed {
				cmd.PrintErrln(fmt.Sprintf("Skipped area ID %d: %v", failure.ID, failure.Err))
			}
			cmd.Println(fmt.Sprintf("%d of %d GeoJSON files have been saved in the '%s' directory.",
				len(summary.Saved), len(summary.Saved)+len(summary.Failed), cfg.GeoDataDir))
			return nil
		},
	}

	rootCmd.AddCommand(fetchCmd)
}

// addMapCmd adds 'map', which composes the fetched files and the shapefile
// into the HTML map.
func addMapCmd(rootCmd *cobra.Command, cfg *config.Config) {
	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Generate the HTML map from fetched areas and the shapefile",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			doc, err := generator.NewComposer(cfg, logger).Compose()
			if err != nil {
				return fmt.Errorf("failed to compose map: %w", err)
			}

			if verbose {
				cmd.Println(fmt.Sprintf("Generating HTML to %s...", cfg.OutputPath))
			}
			if err := generator.WriteHTML(doc, cfg.OutputPath); err != nil {
				return fmt.Errorf("failed to generate HTML: %w", err)
			}

			cmd.Println(fmt.Sprintf("Map has been saved to %s", cfg.OutputPath))
			return nil
		},
	}

	rootCmd.AddCommand(mapCmd)
}

// addListCmd adds 'list', which prints the fetched areas without generating HTML.
func addListCmd(rootCmd *cobra.Command, cfg *config.Config) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List fetched areas with their label points",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := area.ReadAll(cfg.GeoDataDir, cfg.FetchIDs())
			if err != nil {
				return fmt.Errorf("failed to read areas: %w", err)
			}

			if len(records) == 0 {
				cmd.Println("No areas configured.")
				return nil
			}

			for _, r := range records {
				c := geometry.Centroid(r.Geometry)
				cmd.Println(fmt.Sprintf("%-8d %-32s %.5f, %.5f  %.2f km²",
					r.ID, r.Name, c.Lat, c.Lon, geometry.AreaKm2(r.Geometry)))
			}
			return nil
		},
	}

	rootCmd.AddCommand(listCmd)
}
