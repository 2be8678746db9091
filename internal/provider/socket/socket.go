// Package socket reaches a local landmark worker over a unix socket. Each
// call opens a connection, writes one msgpack request and decodes one
// msgpack response.
package socket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/provider"
)

const (
	OpFaceMesh = "face_mesh"
	OpPose     = "pose"
	OpPing     = "ping"

	providerName = "socket"
)

// ErrWorker wraps an error reported by the worker itself.
var ErrWorker = errors.New("landmark worker error")

// Request is sent to the worker. Data is row-major RGB, shape (H, W, 3).
type Request struct {
	Op       string `msgpack:"op"`
	Height   int    `msgpack:"h"`
	Width    int    `msgpack:"w"`
	Data     []byte `msgpack:"d"`
	MaxFaces int    `msgpack:"max_faces,omitempty"`
}

// Response is received from the worker.
type Response struct {
	Faces       [][]domain.Point `msgpack:"faces"`
	Pose        []domain.Point   `msgpack:"pose"`
	Error       string           `msgpack:"error"`
	InferenceMs float32          `msgpack:"inference_ms"`
}

// Client implements provider.Detector over the worker socket.
type Client struct {
	socketPath string
	timeout    time.Duration
	maxFaces   int
	metrics    *observe.Metrics
}

func NewClient(socketPath string, timeout time.Duration, metrics *observe.Metrics) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    timeout,
		maxFaces:   4,
		metrics:    metrics,
	}
}

func (c *Client) call(ctx context.Context, req Request) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to landmark worker: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	if err := msgpack.NewEncoder(conn).Encode(&req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := msgpack.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrWorker, resp.Error)
	}
	return &resp, nil
}

func (c *Client) record(ctx context.Context, kind string, err error) {
	if c.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordDetectorRequest(ctx, providerName, kind, status)
}

func frameRequest(op string, rgb *domain.Frame) (Request, error) {
	if rgb == nil || len(rgb.Data) == 0 || rgb.Channels != 3 {
		return Request{}, domain.ErrInvalidImage
	}
	return Request{Op: op, Height: rgb.Rows, Width: rgb.Cols, Data: rgb.Data}, nil
}

func (c *Client) DetectFaces(ctx context.Context, rgb *domain.Frame) ([]domain.FaceLandmarks, error) {
	req, err := frameRequest(OpFaceMesh, rgb)
	if err != nil {
		return nil, err
	}
	req.MaxFaces = c.maxFaces

	resp, err := c.call(ctx, req)
	c.record(ctx, OpFaceMesh, err)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]domain.FaceLandmarks, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, domain.FaceLandmarks(f))
	}
	return faces, nil
}

func (c *Client) DetectPose(ctx context.Context, rgb *domain.Frame) (domain.PoseLandmarks, error) {
	req, err := frameRequest(OpPose, rgb)
	if err != nil {
		return nil, err
	}

	resp, err := c.call(ctx, req)
	c.record(ctx, OpPose, err)
	if err != nil {
		return nil, fmt.Errorf("detect pose: %w", err)
	}
	if len(resp.Pose) == 0 {
		return nil, nil
	}
	return domain.PoseLandmarks(resp.Pose), nil
}

// HealthCheck sends a ping with no frame.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.call(ctx, Request{Op: OpPing}); err != nil {
		return fmt.Errorf("landmark worker health: %w", err)
	}
	return nil
}

var (
	_ provider.Detector      = (*Client)(nil)
	_ provider.HealthChecker = (*Client)(nil)
)
