package compatdb

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DefaultDatasetURL is the published dataset artifact fetched by
// `webcompat dataset update`.
const DefaultDatasetURL = "https://data.webcompat.dev/capabilities/latest.json"

// Client fetches dataset snapshots over HTTP.
type Client struct {
	HTTPClient *http.Client
	URL        string
}

// NewClient creates a dataset client for the given URL (empty means
// DefaultDatasetURL).
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultDatasetURL
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		URL:        url,
	}
}

// Fetch downloads and validates one dataset snapshot.
func (c *Client) Fetch(ctx context.Context) (*Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset endpoint returned status: %s", resp.Status)
	}

	ds, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}
	return ds, nil
}
