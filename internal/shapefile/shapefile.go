// Package shapefile reads named polygons from an ESRI shapefile.
package shapefile

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// Record is one shapefile row: its name attribute and polygon geometry.
type Record struct {
	Name     string
	Geometry orb.Geometry
}

// Read loads every row of the shapefile at path, taking the row name from
// nameField. Coordinates must already be longitude/latitude.
func Read(path, nameField string) ([]Record, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer r.Close()

	if err := checkLonLat(r.BBox()); err != nil {
		return nil, fmt.Errorf("shapefile %s: %w", path, err)
	}

	col := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(f.String(), nameField) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("shapefile %s has no %s column", path, nameField)
	}

	records := []Record{}
	for r.Next() {
		n, s := r.Shape()
		g, err := toGeometry(s)
		if err != nil {
			return nil, fmt.Errorf("shapefile %s row %d: %w", path, n, err)
		}
		records = append(records, Record{
			Name:     strings.Trim(r.ReadAttribute(n, col), " \x00"),
			Geometry: g,
		})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile %s: %w", path, err)
	}

	return records, nil
}

func checkLonLat(b shp.Box) error {
	if b.MinX < -180 || b.MaxX > 180 || b.MinY < -90 || b.MaxY > 90 {
		return fmt.Errorf("bounding box (%f %f, %f %f) is not longitude/latitude", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	return nil
}

// toGeometry converts a shapefile polygon into an orb Polygon, or a
// MultiPolygon when it has more than one outer ring. Outer rings are
// clockwise in shapefiles; counter-clockwise rings are holes of the
// preceding outer ring.
func toGeometry(s shp.Shape) (orb.Geometry, error) {
	p, ok := s.(*shp.Polygon)
	if !ok {
		return nil, fmt.Errorf("unsupported shape type %T", s)
	}

	var polys orb.MultiPolygon
	for _, ring := range rings(p) {
		if len(polys) == 0 || ring.Orientation() == orb.CW {
			polys = append(polys, orb.Polygon{ring})
			continue
		}
		last := len(polys) - 1
		polys[last] = append(polys[last], ring)
	}

	switch len(polys) {
	case 0:
		return nil, fmt.Errorf("polygon has no rings")
	case 1:
		return polys[0], nil
	default:
		return polys, nil
	}
}

func rings(p *shp.Polygon) []orb.Ring {
	out := make([]orb.Ring, 0, len(p.Parts))
	for i, start := range p.Parts {
		end := int32(len(p.Points))
		if i+1 < len(p.Parts) {
			end = p.Parts[i+1]
		}
		ring := make(orb.Ring, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if len(ring) > 0 {
			out = append(out, ring)
		}
	}
	return out
}
