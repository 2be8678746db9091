package mediapipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the sidecar client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	MaxFaces   int
}

// DefaultConfig returns a Config with sensible defaults. MaxFaces must stay
// above 1 or crowded frames would never be seen.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:5001",
		Timeout:    5 * time.Second,
		RetryCount: 2,
		MaxFaces:   4,
	}
}

// Client is the HTTP client for the landmark sidecar
type Client struct {
	httpClient *http.Client
	config     Config
}

func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// FaceMesh calls POST /face-mesh
func (c *Client) FaceMesh(ctx context.Context, req FaceMeshRequest) (*FaceMeshResponse, error) {
	var resp FaceMeshResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/face-mesh", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pose calls POST /pose
func (c *Client) Pose(ctx context.Context, req PoseRequest) (*PoseResponse, error) {
	var resp PoseResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/pose", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health calls GET /health without retries.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSidecarUnavailable, err)
	}
	return &resp, nil
}

// Frames arrive several times per second, so retries back off from 100ms
// and never wait longer than a second.
const (
	baseBackoff = 100 * time.Millisecond
	maxBackoff  = time.Second
)

// calculateBackoff returns 100ms, 200ms, 400ms, ... capped at maxBackoff.
func calculateBackoff(attempt int) time.Duration {
	if attempt <= 1 {
		return baseBackoff
	}
	d := baseBackoff
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("mediapipe returned status %d: %s", e.code, e.body)
}

// isClientError reports a 4xx answer, which retrying cannot fix.
func isClientError(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code >= 400 && se.code < 500
}

func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(attempt)):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if isClientError(lastErr) || errors.Is(lastErr, ErrInvalidResponse) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrSidecarUnavailable, lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
