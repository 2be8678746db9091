package mediapipe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryCount = 0
	return NewProvider(config, nil)
}

func TestProvider_DetectFaces(t *testing.T) {
	frame := domain.NewFrame(2, 3, 3)
	frame.Data[0] = 255

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req FaceMeshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		raw, err := base64.StdEncoding.DecodeString(req.Image)
		require.NoError(t, err)
		assert.Equal(t, frame.Data, raw)
		assert.Equal(t, 3, req.Width)
		assert.Equal(t, 2, req.Height)
		assert.Equal(t, 4, req.MaxFaces)

		face := make([]domain.Point, domain.RefinedMeshPoints)
		face[1] = domain.Point{X: 0.5, Y: 0.4, Z: -0.02}
		_ = json.NewEncoder(w).Encode(FaceMeshResponse{Faces: [][]domain.Point{face}})
	})

	faces, err := p.DetectFaces(context.Background(), frame)
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Len(t, faces[0], domain.RefinedMeshPoints)
	assert.Equal(t, domain.Point{X: 0.5, Y: 0.4, Z: -0.02}, faces[0][1])
}

func TestProvider_DetectPose(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantLen  int
	}{
		{"body found", `{"landmarks":[` + points(33) + `]}`, 33},
		{"nobody", `{"landmarks":null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/pose", r.URL.Path)
				_, _ = w.Write([]byte(tt.response))
			})

			pose, err := p.DetectPose(context.Background(), domain.NewFrame(1, 1, 3))
			require.NoError(t, err)
			if tt.wantLen == 0 {
				assert.Nil(t, pose)
				return
			}
			assert.Len(t, pose, tt.wantLen)
		})
	}
}

func points(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += `{"x":0.5,"y":0.5,"z":0}`
	}
	return out
}

func TestProvider_RejectsBadFrames(t *testing.T) {
	p := NewProvider(DefaultConfig(), nil)

	_, err := p.DetectFaces(context.Background(), &domain.Frame{})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	_, err = p.DetectPose(context.Background(), domain.NewFrame(1, 1, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"healthy", http.StatusOK, `{"status":"ok"}`, nil},
		{"degraded", http.StatusOK, `{"status":"loading"}`, ErrUnhealthy},
		{"down", http.StatusServiceUnavailable, ``, ErrSidecarUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := p.HealthCheck(context.Background())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
