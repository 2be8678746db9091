package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/poise/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/speech"
)

func setupSpeechApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := testLogger()
	h := NewSpeechHandler(speech.NewService(nil, speech.WithLogger(logger)), &recordingPublisher{}, logger)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	app.Post("/v1/speech/answers", h.SubmitAnswer)
	app.Post("/v1/speech/sessions/:session_id/analyze", h.Analyze)
	app.Get("/v1/speech/sessions/:session_id/report", h.Report)
	app.Delete("/v1/speech/sessions/:session_id", h.End)
	return app
}

func TestSpeechHandler_SubmitAnswer(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantClean  string
	}{
		{
			name:       "strips fillers",
			body:       `{"session_id":"s1","question_id":"q1","transcript":"um I led the uh migration"}`,
			wantStatus: 200,
			wantClean:  "I led the migration",
		},
		{
			name:       "missing question",
			body:       `{"session_id":"s1","transcript":"hello"}`,
			wantStatus: 422,
		},
		{
			name:       "malformed json",
			body:       `{"session_id":`,
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupSpeechApp(t)

			req := httptest.NewRequest("POST", "/v1/speech/answers", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == 200 {
				var answer domain.SpeechAnswer
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&answer))
				assert.Equal(t, tt.wantClean, answer.CleanTranscript)
				assert.Equal(t, 4, answer.WordCount)
			}
		})
	}
}

func TestSpeechHandler_SessionWithoutAudio(t *testing.T) {
	app := setupSpeechApp(t)

	req := httptest.NewRequest("POST", "/v1/speech/answers",
		bytes.NewBufferString(`{"session_id":"s1","question_id":"q1","transcript":"hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{"POST", "/v1/speech/sessions/s1/analyze", 422},
		{"POST", "/v1/speech/sessions/ghost/analyze", 404},
		{"GET", "/v1/speech/sessions/s1/report", 404},
		{"DELETE", "/v1/speech/sessions/s1", 204},
		{"DELETE", "/v1/speech/sessions/s1", 404},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, "%s %s", tt.method, tt.path)
	}
}
