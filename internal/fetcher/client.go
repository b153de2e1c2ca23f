package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Zachdehooge/indymap/internal/area"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNameNotFound is returned when an area's metadata has no name.
var ErrNameNotFound = errors.New("name not found")

// StatusError is returned for any non-200 response from MapIt.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned non-200 status: %d (%s)", e.StatusCode, e.URL)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client reads area metadata and geometry from a MapIt server.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	userAgent  string
}

// NewClient creates a MapIt client. The HTTP client has no timeout, so each
// request waits as long as the server does.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "indymap/1.0 (github.com/Zachdehooge/indymap)",
	}
}

// AreaURL is the metadata endpoint for id.
func (c *Client) AreaURL(id int) string {
	return fmt.Sprintf("%s/area/%d", c.baseURL, id)
}

// GeometryURL is the GeoJSON geometry endpoint for id.
func (c *Client) GeometryURL(id int) string {
	return c.AreaURL(id) + ".geojson"
}

// Name fetches the area's display name.
func (c *Client) Name(ctx context.Context, id int) (string, error) {
	body, err := c.get(ctx, c.AreaURL(id))
	if err != nil {
		return "", err
	}

	var details struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}
	if details.Name == "" {
		return "", ErrNameNotFound
	}
	return details.Name, nil
}

// Geometry fetches the area's boundary. MapIt serves a bare GeoJSON
// geometry object, not a feature.
func (c *Client) Geometry(ctx context.Context, id int) (orb.Geometry, error) {
	body, err := c.get(ctx, c.GeometryURL(id))
	if err != nil {
		return nil, err
	}

	g, err := geojson.UnmarshalGeometry(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	if err := area.ValidGeometry(g.Geometry()); err != nil {
		return nil, err
	}
	return g.Geometry(), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
