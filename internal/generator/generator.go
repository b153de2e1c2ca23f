package generator

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Zachdehooge/indymap/internal/area"
	"github.com/Zachdehooge/indymap/internal/config"
	"github.com/Zachdehooge/indymap/internal/geometry"
	"github.com/Zachdehooge/indymap/internal/shapefile"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// clock stamps generated maps; tests swap it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Document is the layered map content rendered into the HTML page.
type Document struct {
	Title       string          `json:"title"`
	Center      geometry.LatLon `json:"center"`
	Zoom        int             `json:"zoom"`
	Tiles       Tiles           `json:"tiles"`
	Overlays    []Overlay       `json:"overlays"`
	Groups      []LayerGroup    `json:"groups"`
	GeneratedAt time.Time       `json:"-"`
}

// Tiles is the base tile layer.
type Tiles struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// Overlay is one polygon feature with a hover tooltip.
type Overlay struct {
	Name     string            `json:"name"`
	Tooltip  string            `json:"tooltip"`
	Geometry *geojson.Geometry `json:"geometry"`
}

// Label is a text marker placed at a polygon's centroid.
type Label struct {
	Text     string          `json:"text"`
	Location geometry.LatLon `json:"location"`
	Popup    string          `json:"popup,omitempty"`
}

// SubGroup is an independently toggleable child of a LayerGroup.
type SubGroup struct {
	Name     string    `json:"name"`
	Overlays []Overlay `json:"overlays"`
	Labels   []Label   `json:"labels"`
}

// LayerGroup is a parent toggle. Hidden groups start unchecked.
type LayerGroup struct {
	Name      string     `json:"name"`
	Show      bool       `json:"show"`
	SubGroups []SubGroup `json:"subGroups"`
}

// Group returns the layer group called name, or nil.
func (d *Document) Group(name string) *LayerGroup {
	for i := range d.Groups {
		if d.Groups[i].Name == name {
			return &d.Groups[i]
		}
	}
	return nil
}

// named is the common shape of fetched areas and shapefile rows.
type named struct {
	layer    string
	name     string
	geometry orb.Geometry
}

// Composer loads fetched areas and the shapefile and lays them out as a
// Document.
type Composer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewComposer creates a Composer for cfg.
func NewComposer(cfg *config.Config, logger *slog.Logger) *Composer {
	return &Composer{cfg: cfg, logger: logger}
}

// Compose reads every input file. Any missing or malformed file is an error.
func (c *Composer) Compose() (*Document, error) {
	var boundary *area.Record
	if c.cfg.BoundaryID != 0 {
		r, err := area.Read(c.cfg.GeoDataDir, c.cfg.BoundaryID)
		if err != nil {
			return nil, err
		}
		boundary = &r
	}

	areas, err := area.ReadAll(c.cfg.GeoDataDir, c.cfg.AreaIDs)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loaded area files", "count", len(areas), "dir", c.cfg.GeoDataDir)

	var rows []shapefile.Record
	if c.cfg.ShapefilePath != "" {
		rows, err = shapefile.Read(c.cfg.ShapefilePath, c.cfg.ShapefileField)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("loaded shapefile", "rows", len(rows), "path", c.cfg.ShapefilePath)
	}

	return Build(c.cfg, boundary, areas, rows), nil
}

// Build lays out already loaded inputs. The remote and local area groups
// are shown; their label groups start hidden. A nil rows slice means no
// shapefile was configured and the local groups are left out.
func Build(cfg *config.Config, boundary *area.Record, areas []area.Record, rows []shapefile.Record) *Document {
	doc := &Document{
		Title:  cfg.Title,
		Center: geometry.LatLon{Lat: cfg.CenterLat, Lon: cfg.CenterLon},
		Zoom:   cfg.Zoom,
		Tiles:  Tiles{URL: cfg.Tiles.URL, Attribution: cfg.Tiles.Attribution},
		// non-nil so the page always sees arrays
		Overlays:    []Overlay{},
		GeneratedAt: clock.Now(),
	}

	if boundary != nil {
		doc.Overlays = append(doc.Overlays, Overlay{
			Name:     boundary.Name,
			Tooltip:  boundary.Name,
			Geometry: geojson.NewGeometry(boundary.Geometry),
		})
	}

	remote := make([]named, 0, len(areas))
	for _, a := range areas {
		remote = append(remote, named{
			layer:    a.Name + " (" + strconv.Itoa(a.ID) + ")",
			name:     a.Name,
			geometry: a.Geometry,
		})
	}

	local := make([]named, 0, len(rows))
	for _, r := range rows {
		local = append(local, named{layer: r.Name, name: r.Name, geometry: r.Geometry})
	}

	doc.Groups = append(doc.Groups, areaGroup(cfg.Groups.RemoteAreas, remote))
	if rows != nil {
		doc.Groups = append(doc.Groups, areaGroup(cfg.Groups.LocalAreas, local))
	}
	doc.Groups = append(doc.Groups, labelGroup(cfg.Groups.RemoteLabels, remote))
	if rows != nil {
		doc.Groups = append(doc.Groups, labelGroup(cfg.Groups.LocalLabels, local))
	}

	return doc
}

func areaGroup(name string, items []named) LayerGroup {
	g := LayerGroup{Name: name, Show: true, SubGroups: make([]SubGroup, 0, len(items))}
	for _, it := range items {
		g.SubGroups = append(g.SubGroups, SubGroup{
			Name: it.layer,
			Overlays: []Overlay{{
				Name:     it.layer,
				Tooltip:  it.name,
				Geometry: geojson.NewGeometry(it.geometry),
			}},
			Labels: []Label{},
		})
	}
	return g
}

func labelGroup(name string, items []named) LayerGroup {
	g := LayerGroup{Name: name, SubGroups: make([]SubGroup, 0, len(items))}
	for _, it := range items {
		g.SubGroups = append(g.SubGroups, SubGroup{
			Name:     it.layer,
			Overlays: []Overlay{},
			Labels: []Label{{
				Text:     it.name,
				Location: geometry.Centroid(it.geometry),
				Popup:    fmt.Sprintf("%s: %.2f km²", it.name, geometry.AreaKm2(it.geometry)),
			}},
		})
	}
	return g
}
