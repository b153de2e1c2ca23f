package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Zachdehooge/indymap/internal/area"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mapit serves name and geometry responses keyed by request path. Paths
// without an entry return 404.
func mapit(t *testing.T, responses map[string]string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFetchAreas_SkipsGeometry404(t *testing.T) {
	srv, calls := mapit(t, map[string]string{
		"/area/1001":         `{"name":"Decatur Township"}`,
		"/area/1001.geojson": squareGeoJSON,
		"/area/2002":         `{"name":"Perry Township"}`,
	})
	dir := filepath.Join(t.TempDir(), "geojson_files")

	summary, err := New(NewClient(srv.URL), dir, testLogger()).FetchAreas(context.Background(), []int{1001, 2002})
	require.NoError(t, err)

	assert.Equal(t, []int{1001}, summary.Saved)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, 2002, summary.Failed[0].ID)
	assert.Equal(t, []string{"area_1001.geojson"}, listFiles(t, dir))
	// second id stops after the failed geometry call
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))

	r, err := area.Read(dir, 1001)
	require.NoError(t, err)
	assert.Equal(t, "Decatur Township", r.Name)
}

func TestFetchAreas_NameFailureDropsGeometry(t *testing.T) {
	srv, _ := mapit(t, map[string]string{
		"/area/3003.geojson": squareGeoJSON,
		"/area/4004.geojson": squareGeoJSON,
		"/area/4004":         `{"type":"O08"}`,
	})
	dir := t.TempDir()

	summary, err := New(NewClient(srv.URL), dir, testLogger()).FetchAreas(context.Background(), []int{3003, 4004})
	require.NoError(t, err)

	assert.Empty(t, summary.Saved)
	require.Len(t, summary.Failed, 2)
	assert.ErrorIs(t, summary.Failed[1].Err, ErrNameNotFound)
	assert.Empty(t, listFiles(t, dir))
}

func TestFetchAreas_EmptyIDs(t *testing.T) {
	srv, calls := mapit(t, nil)
	dir := filepath.Join(t.TempDir(), "geojson_files")

	summary, err := New(NewClient(srv.URL), dir, testLogger()).FetchAreas(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, summary.Saved)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchAreas_RoundTripGeometry(t *testing.T) {
	multi := `{"type":"MultiPolygon","coordinates":[` +
		`[[[-86.32,39.63],[-86.30,39.63],[-86.30,39.65],[-86.32,39.63]]],` +
		`[[[-86.25,39.70],[-86.2412345678,39.70],[-86.2412345678,39.7187654321],[-86.25,39.70]]]]}`
	srv, _ := mapit(t, map[string]string{
		"/area/5005":         `{"name":"Wayne Township"}`,
		"/area/5005.geojson": multi,
	})
	dir := t.TempDir()

	client := NewClient(srv.URL)
	_, err := New(client, dir, testLogger()).FetchAreas(context.Background(), []int{5005})
	require.NoError(t, err)

	want, err := client.Geometry(context.Background(), 5005)
	require.NoError(t, err)
	r, err := area.Read(dir, 5005)
	require.NoError(t, err)

	assertCoordsEqual(t, want.(orb.MultiPolygon), r.Geometry.(orb.MultiPolygon))
}

func assertCoordsEqual(t *testing.T, want, got orb.MultiPolygon) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Len(t, got[i], len(want[i]))
		for j := range want[i] {
			require.Len(t, got[i][j], len(want[i][j]))
			for k := range want[i][j] {
				assert.InDelta(t, want[i][j][k][0], got[i][j][k][0], 1e-9)
				assert.InDelta(t, want[i][j][k][1], got[i][j][k][1], 1e-9)
			}
		}
	}
}

type stubSource struct {
	names map[int]string
	err   error
}

func (s stubSource) Geometry(_ context.Context, id int) (orb.Geometry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, nil
}

func (s stubSource) Name(_ context.Context, id int) (string, error) {
	name, ok := s.names[id]
	if !ok {
		return "", ErrNameNotFound
	}
	return name, nil
}

func TestFetchAreas_OneFilePerSuccess(t *testing.T) {
	src := stubSource{names: map[int]string{1: "One", 2: "Two", 3: "Three"}}
	dir := t.TempDir()

	summary, err := New(src, dir, testLogger()).FetchAreas(context.Background(), []int{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, summary.Saved)
	assert.ElementsMatch(t, []string{"area_1.geojson", "area_2.geojson", "area_3.geojson"}, listFiles(t, dir))
	for id, name := range src.names {
		r, err := area.Read(dir, id)
		require.NoError(t, err)
		assert.Equal(t, name, r.Name, fmt.Sprintf("area %d", id))
	}
}

func TestFetchAreas_TransportErrorIsSkipped(t *testing.T) {
	src := stubSource{err: fmt.Errorf("HTTP GET failed: connection refused")}
	dir := t.TempDir()

	summary, err := New(src, dir, testLogger()).FetchAreas(context.Background(), []int{1})
	require.NoError(t, err)

	assert.Empty(t, summary.Saved)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed[0].Err.Error(), "connection refused")
}

func TestFetchAreas_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := New(stubSource{}, file, testLogger()).FetchAreas(context.Background(), []int{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output directory")
}
