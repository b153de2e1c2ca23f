package config

import (
	"errors"
	"fmt"
)

// MapItURL is the public boundary API the areas are fetched from.
const MapItURL = "http://global.mapit.mysociety.org"

// BoundaryID is the Indianapolis / Marion County outline.
const BoundaryID = 967667

// AreaIDs lists the areas covered by (within) Indianapolis / Marion County.
var AreaIDs = []int{
	1359173, 1359118, 56944, 1359187, 1359119, 1359180, 1359169, 713147, 1359120, 56662,
	1359186, 1359133, 1359131, 1359116, 1359123, 1359125, 1359140, 1359127, 1359185, 1359128,
	1359172, 1359184, 1359129, 56666, 1359134, 1359138, 1001390, 1359162, 1359139, 1359130,
	828783, 1359143, 1359146, 1306360, 1359170, 1359179, 56663, 1359153, 1359160, 1359161,
	1359163, 1359165, 1359181, 1359171, 1359182, 1359183, 713148, 262829, 1359178, 1001475,
	1359166, 828782, 1359176, 1359167, 1001476, 1359168, 1359175, 1359174, 262832, 1359177, 56668,
}

// TileLayer describes the base map tiles.
type TileLayer struct {
	URL         string
	Attribution string
}

// Groups holds the display names of the four toggle groups.
type Groups struct {
	RemoteAreas  string
	LocalAreas   string
	RemoteLabels string
	LocalLabels  string
}

// Config holds all paths, ids and map settings for both stages.
type Config struct {
	BaseURL    string
	BoundaryID int
	AreaIDs    []int

	GeoDataDir     string
	ShapefilePath  string
	ShapefileField string
	OutputPath     string
	Title          string

	CenterLat float64
	CenterLon float64
	Zoom      int
	Tiles     TileLayer
	Groups    Groups
}

// Default returns the fixed configuration for the Indianapolis map.
func Default() *Config {
	ids := make([]int, len(AreaIDs))
	copy(ids, AreaIDs)

	return &Config{
		BaseURL:    MapItURL,
		BoundaryID: BoundaryID,
		AreaIDs:    ids,

		GeoDataDir:     "geojson_files",
		ShapefilePath:  "shapefiles/neighborhoods.shp",
		ShapefileField: "NAME",
		OutputPath:     "maps/indianapolis_map.html",
		Title:          "Indianapolis Areas",

		CenterLat: 39.7684,
		CenterLon: -86.1581,
		Zoom:      11,
		Tiles: TileLayer{
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		},
		Groups: Groups{
			RemoteAreas:  "MapIt Areas",
			LocalAreas:   "Shapefile Areas",
			RemoteLabels: "MapIt Labels",
			LocalLabels:  "Shapefile Labels",
		},
	}
}

// FetchIDs returns the ids the fetcher downloads: the city outline followed
// by every covered area.
func (c *Config) FetchIDs() []int {
	ids := make([]int, 0, len(c.AreaIDs)+1)
	if c.BoundaryID != 0 {
		ids = append(ids, c.BoundaryID)
	}
	return append(ids, c.AreaIDs...)
}

// Validate reports settings that would make either stage meaningless.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	if c.GeoDataDir == "" {
		return errors.New("geojson directory is required")
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	if c.CenterLat < -90 || c.CenterLat > 90 {
		return fmt.Errorf("invalid center latitude %f", c.CenterLat)
	}
	if c.CenterLon < -180 || c.CenterLon > 180 {
		return fmt.Errorf("invalid center longitude %f", c.CenterLon)
	}
	if c.Zoom < 0 || c.Zoom > 20 {
		return fmt.Errorf("invalid zoom %d", c.Zoom)
	}
	seen := make(map[int]bool, len(c.AreaIDs))
	for _, id := range c.AreaIDs {
		if seen[id] {
			return fmt.Errorf("duplicate area id %d", id)
		}
		seen[id] = true
	}
	return nil
}
