package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://global.mapit.mysociety.org", cfg.BaseURL)
	assert.Equal(t, 967667, cfg.BoundaryID)
	assert.Len(t, cfg.AreaIDs, 61)
	assert.Equal(t, "geojson_files", cfg.GeoDataDir)
	assert.Equal(t, "maps/indianapolis_map.html", cfg.OutputPath)
	assert.Equal(t, "NAME", cfg.ShapefileField)
	assert.Equal(t, 39.7684, cfg.CenterLat)
	assert.Equal(t, -86.1581, cfg.CenterLon)
	assert.Equal(t, 11, cfg.Zoom)
}

func TestDefault_CopiesAreaIDs(t *testing.T) {
	cfg := Default()
	cfg.AreaIDs[0] = 1

	assert.Equal(t, 1359173, AreaIDs[0])
}

func TestFetchIDs_BoundaryFirst(t *testing.T) {
	cfg := &Config{BoundaryID: 10, AreaIDs: []int{1, 2}}
	assert.Equal(t, []int{10, 1, 2}, cfg.FetchIDs())
}

func TestFetchIDs_NoBoundary(t *testing.T) {
	cfg := &Config{AreaIDs: []int{1, 2}}
	assert.Equal(t, []int{1, 2}, cfg.FetchIDs())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no base url", func(c *Config) { c.BaseURL = "" }, "base URL"},
		{"no dir", func(c *Config) { c.GeoDataDir = "" }, "geojson directory"},
		{"no output", func(c *Config) { c.OutputPath = "" }, "output path"},
		{"bad lat", func(c *Config) { c.CenterLat = 91 }, "latitude"},
		{"bad lon", func(c *Config) { c.CenterLon = -181 }, "longitude"},
		{"bad zoom", func(c *Config) { c.Zoom = 25 }, "zoom"},
		{"duplicate id", func(c *Config) { c.AreaIDs = []int{5, 6, 5} }, "duplicate area id 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
