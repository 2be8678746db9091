package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/ws"
)

// FrameAnalyzer is the per-session frame pipeline.
type FrameAnalyzer interface {
	ProcessFrame(ctx context.Context, sessionID string, frame *domain.Frame) domain.Envelope
	Summary(sessionID string) (domain.SessionSummary, error)
	DeleteSession(sessionID string)
}

// ReportService keeps the scored history of a session and builds its report.
type ReportService interface {
	Open(sessionID string)
	Observe(sessionID string, env domain.Envelope)
	Analyze(sessionID string) (domain.SessionReport, error)
	Finalize(ctx context.Context, sessionID string) (*domain.SessionReport, error)
	Get(ctx context.Context, sessionID string) (*domain.SessionReport, error)
}

// FrameDecoder turns transport payloads into frames.
type FrameDecoder interface {
	Decode(data []byte) (*domain.Frame, error)
	DecodeBase64(payload string) (*domain.Frame, error)
}

// Publisher fans session events out to monitors.
type Publisher interface {
	Publish(sessionID string, eventType ws.EventType, data interface{})
}

// SessionHandler serves the non-verbal analysis endpoints.
type SessionHandler struct {
	analyzer FrameAnalyzer
	reports  ReportService
	decoder  FrameDecoder
	monitor  Publisher
	logger   *slog.Logger
}

func NewSessionHandler(analyzer FrameAnalyzer, reports ReportService, decoder FrameDecoder, monitor Publisher, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		analyzer: analyzer,
		reports:  reports,
		decoder:  decoder,
		monitor:  monitor,
		logger:   logger,
	}
}

// handleFrame runs one decoded frame through the analyzer and records the
// outcome for the report and the monitors.
func (h *SessionHandler) handleFrame(ctx context.Context, sessionID string, frame *domain.Frame) domain.Envelope {
	env := h.analyzer.ProcessFrame(ctx, sessionID, frame)
	h.reports.Observe(sessionID, env)

	eventType := ws.EventFrameAnalyzed
	if env.Status == domain.StatusCancelled {
		eventType = ws.EventSessionCancelled
	}
	h.monitor.Publish(sessionID, eventType, env)
	return env
}

// sessionID copies the route param out of the request buffer, since the id
// outlives the request as a registry and report key.
func sessionID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(utils.CopyString(c.Params("session_id")))
	if id == "" {
		return "", domain.ErrValidationFailed.WithError(errors.New("session_id is required"))
	}
	return id, nil
}

// SubmitFrame POST /v1/sessions/:session_id/frames - analyze one uploaded image
func (h *SessionHandler) SubmitFrame(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.ErrInvalidImage.WithError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("read image: %w", err))
	}

	frame, err := h.decoder.Decode(data)
	if err != nil {
		return err
	}

	return c.JSON(h.handleFrame(c.UserContext(), id, frame))
}

// Summary GET /v1/sessions/:session_id/summary
func (h *SessionHandler) Summary(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	summary, err := h.analyzer.Summary(id)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// Analyze POST /v1/sessions/:session_id/analyze - report over the frames so far
func (h *SessionHandler) Analyze(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	report, err := h.reports.Analyze(id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// End DELETE /v1/sessions/:session_id - finalize the report and forget the session
func (h *SessionHandler) End(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	report, err := h.reports.Finalize(c.UserContext(), id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		h.analyzer.DeleteSession(id)
		return c.SendStatus(fiber.StatusNoContent)
	case err != nil:
		return domain.ErrInternal.WithError(err)
	}

	h.analyzer.DeleteSession(id)
	h.monitor.Publish(id, ws.EventReportFinalized, report)
	return c.JSON(report)
}

// Report GET /v1/reports/:session_id - persisted final report
func (h *SessionHandler) Report(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	report, err := h.reports.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
