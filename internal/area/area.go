// Package area stores fetched boundary polygons as one GeoJSON file per area.
package area

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// NameProperty is the only feature property written to an area file.
const NameProperty = "name"

// Record is a named boundary polygon keyed by its MapIt area id.
type Record struct {
	ID       int
	Name     string
	Geometry orb.Geometry
}

// FileName returns the file name for an area, e.g. area_967667.geojson.
func FileName(id int) string {
	return fmt.Sprintf("area_%d.geojson", id)
}

// Path joins dir and the file name for id.
func Path(dir string, id int) string {
	return filepath.Join(dir, FileName(id))
}

// FeatureCollection wraps the record in a single-feature collection.
func (r Record) FeatureCollection() *geojson.FeatureCollection {
	f := geojson.NewFeature(r.Geometry)
	f.Properties[NameProperty] = r.Name
	return geojson.NewFeatureCollection().Append(f)
}

// Write saves the record to dir. The file is written to a temp path and
// renamed so readers never see a partial file.
func Write(dir string, r Record) (string, error) {
	if err := ValidGeometry(r.Geometry); err != nil {
		return "", fmt.Errorf("area %d: %w", r.ID, err)
	}

	data, err := r.FeatureCollection().MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal area %d: %w", r.ID, err)
	}

	path := Path(dir, r.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write tmp failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename failed: %w", err)
	}
	return path, nil
}

// Read loads the record for id from dir.
func Read(dir string, id int) (Record, error) {
	path := Path(dir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read area %d: %w", id, err)
	}

	r, err := Decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	r.ID = id
	return r, nil
}

// ReadAll loads every id in order and stops at the first failure.
func ReadAll(dir string, ids []int) ([]Record, error) {
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		r, err := Read(dir, id)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Decode parses a single-feature collection with a string name property.
func Decode(data []byte) (Record, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Record{}, fmt.Errorf("parse feature collection: %w", err)
	}
	if len(fc.Features) != 1 {
		return Record{}, fmt.Errorf("expected 1 feature, got %d", len(fc.Features))
	}

	f := fc.Features[0]
	name, ok := f.Properties[NameProperty].(string)
	if !ok || name == "" {
		return Record{}, errors.New("feature has no name property")
	}
	if err := ValidGeometry(f.Geometry); err != nil {
		return Record{}, err
	}

	return Record{Name: name, Geometry: f.Geometry}, nil
}

// ValidGeometry accepts only non-empty polygonal geometries.
func ValidGeometry(g orb.Geometry) error {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return errors.New("empty polygon")
		}
		return nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return errors.New("empty multipolygon")
		}
		for i, p := range v {
			if len(p) == 0 || len(p[0]) == 0 {
				return fmt.Errorf("empty polygon %d in multipolygon", i)
			}
		}
		return nil
	case nil:
		return errors.New("missing geometry")
	default:
		return fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}
