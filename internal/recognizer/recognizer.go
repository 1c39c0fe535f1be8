// Package recognizer talks to the face recognition sidecar over HTTP. The
// sidecar owns the camera and the embedding model; this client only consumes
// its per-frame observations.
package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kozaktomas/punchclock/internal/liveness"
)

// Observation is one processed camera frame.
type Observation struct {
	// Faces is how many faces the sidecar detected in the frame.
	Faces int
	// Embedding is the face embedding when exactly one face was detected.
	Embedding []float32
	// Patch is the grayscale face crop used for motion analysis. May be
	// empty when the sidecar could not extract one.
	Patch liveness.Patch
}

// Client is an HTTP client for the recognition sidecar.
type Client struct {
	parsedURL *url.URL
	http      *http.Client
}

// New validates the sidecar base URL and returns a client.
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid recognizer url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("recognizer url %q must be http or https", baseURL)
	}
	return &Client{
		parsedURL: parsed,
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// observationResponse is the sidecar's frame payload.
type observationResponse struct {
	Faces     int       `json:"faces"`
	Embedding []float32 `json:"embedding,omitempty"`
	Patch     *struct {
		Width  int     `json:"width"`
		Height int     `json:"height"`
		Pixels []uint8 `json:"pixels"`
	} `json:"patch,omitempty"`
}

// Observe fetches the latest frame observation.
func (c *Client) Observe(ctx context.Context) (*Observation, error) {
	resp, err := doGetJSON[observationResponse](ctx, c, "api/v1/observe")
	if err != nil {
		return nil, err
	}

	obs := &Observation{
		Faces:     resp.Faces,
		Embedding: resp.Embedding,
	}
	if p := resp.Patch; p != nil {
		if p.Width <= 0 || p.Height <= 0 || len(p.Pixels) != p.Width*p.Height {
			return nil, fmt.Errorf("malformed patch: %dx%d with %d pixels", p.Width, p.Height, len(p.Pixels))
		}
		obs.Patch = liveness.Patch{Width: p.Width, Height: p.Height, Pix: p.Pixels}
	}
	return obs, nil
}

// Health checks that the sidecar is up and its model is loaded.
func (c *Client) Health(ctx context.Context) error {
	type healthResponse struct {
		Status string `json:"status"`
	}
	resp, err := doGetJSON[healthResponse](ctx, c, "api/v1/health")
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("recognizer unhealthy: %s", resp.Status)
	}
	return nil
}

// doGetJSON performs a GET request and unmarshals the JSON response into the
// result type. The endpoint is the path after the base URL.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	target := c.parsedURL.JoinPath(endpoint).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// readErrorBody reads a truncated response body for error messages.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(body) == 0 {
		return "<no body>"
	}
	return string(body)
}
