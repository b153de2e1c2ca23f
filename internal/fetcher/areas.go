package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zachdehooge/indymap/internal/area"
	"github.com/paulmach/orb"
)

// Source provides the two halves of an area record.
type Source interface {
	Geometry(ctx context.Context, id int) (orb.Geometry, error)
	Name(ctx context.Context, id int) (string, error)
}

// Failure records why an area was skipped.
type Failure struct {
	ID  int
	Err error
}

// Summary lists the outcome of a fetch run in id order.
type Summary struct {
	Saved  []int
	Failed []Failure
}

// Fetcher downloads areas one at a time and writes each to its own file.
type Fetcher struct {
	source Source
	dir    string
	logger *slog.Logger
}

// New creates a Fetcher writing into dir.
func New(source Source, dir string, logger *slog.Logger) *Fetcher {
	return &Fetcher{source: source, dir: dir, logger: logger}
}

// FetchAreas fetches geometry then name for every id and saves the merged
// record. An id whose geometry or name cannot be fetched is logged and
// skipped; nothing is written for it. Only local filesystem errors are
// returned.
func (f *Fetcher) FetchAreas(ctx context.Context, ids []int) (Summary, error) {
	var summary Summary
	if len(ids) == 0 {
		return summary, nil
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}

	for _, id := range ids {
		rec, err := f.fetchArea(ctx, id)
		if err != nil {
			summary.Failed = append(summary.Failed, Failure{ID: id, Err: err})
			continue
		}

		path, err := area.Write(f.dir, rec)
		if err != nil {
			return summary, err
		}
		f.logger.Info("saved area geojson", "area_id", id, "name", rec.Name, "path", path)
		summary.Saved = append(summary.Saved, id)
	}

	return summary, nil
}

func (f *Fetcher) fetchArea(ctx context.Context, id int) (area.Record, error) {
	f.logger.Debug("fetching area", "area_id", id)

	g, err := f.source.Geometry(ctx, id)
	if err != nil {
		f.logger.Warn("failed to fetch geojson data", "area_id", id, "error", err)
		return area.Record{}, fmt.Errorf("geometry: %w", err)
	}

	name, err := f.source.Name(ctx, id)
	if err != nil {
		f.logger.Warn("name not found", "area_id", id, "error", err)
		return area.Record{}, fmt.Errorf("name: %w", err)
	}

	return area.Record{ID: id, Name: name, Geometry: g}, nil
}
