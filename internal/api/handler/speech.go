package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/speech"
	"github.com/saturnino-fabrica-de-software/poise/internal/ws"
)

// SpeechService captures answers and scores their delivery.
type SpeechService interface {
	OpenStream(ctx context.Context, sessionID, questionID string) (*speech.Stream, error)
	SubmitAnswer(sessionID, questionID, raw string) (domain.SpeechAnswer, error)
	Analyze(ctx context.Context, sessionID string) (*domain.SpeechReport, error)
	Report(ctx context.Context, sessionID string) (*domain.SpeechReport, error)
	Forget(sessionID string) bool
}

type SpeechHandler struct {
	service SpeechService
	monitor Publisher
	logger  *slog.Logger
}

func NewSpeechHandler(service SpeechService, monitor Publisher, logger *slog.Logger) *SpeechHandler {
	return &SpeechHandler{
		service: service,
		monitor: monitor,
		logger:  logger,
	}
}

// SubmitAnswerRequest carries the transcript of one answered question.
type SubmitAnswerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Transcript string `json:"transcript"`
}

// SubmitAnswer POST /v1/speech/answers
func (h *SpeechHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	answer, err := h.service.SubmitAnswer(req.SessionID, req.QuestionID, req.Transcript)
	if err != nil {
		return err
	}
	return c.JSON(answer)
}

// Analyze POST /v1/speech/sessions/:session_id/analyze
func (h *SpeechHandler) Analyze(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	report, err := h.service.Analyze(c.UserContext(), id)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return domain.ErrInternal.WithError(err)
	}
	return c.JSON(report)
}

// Report GET /v1/speech/sessions/:session_id/report
func (h *SpeechHandler) Report(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	report, err := h.service.Report(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// End DELETE /v1/speech/sessions/:session_id
func (h *SpeechHandler) End(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if !h.service.Forget(id) {
		return domain.ErrSpeechSessionNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Voice GET /v1/ws/voice/:session_id/:question_id - binary PCM16 chunks in,
// partial and final transcripts out.
func (h *SpeechHandler) Voice() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		id := strings.TrimSpace(c.Params("session_id"))
		questionID := strings.TrimSpace(c.Params("question_id"))
		if id == "" || questionID == "" {
			_ = c.Close()
			return
		}

		stream, err := h.service.OpenStream(context.Background(), id, questionID)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": fiber.Map{
				"code":    domain.ErrSpeechUnavailable.Code,
				"message": domain.ErrSpeechUnavailable.Message,
			}})
			_ = c.Close()
			return
		}

		written := make(chan struct{})
		go func() {
			defer close(written)
			for ev := range stream.Events() {
				if ev.Final != nil {
					h.monitor.Publish(id, ws.EventSpeechFinal, fiber.Map{
						"question_id": questionID,
						"text":        *ev.Final,
					})
				}
				if err := c.WriteJSON(ev); err != nil {
					h.logger.Debug("voice write failed", "session_id", id, "error", err)
					continue
				}
			}
		}()

		for {
			mt, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			if err := stream.Write(msg); err != nil {
				h.logger.Warn("voice chunk rejected", "session_id", id, "error", err)
				break
			}
		}

		if err := stream.Close(); err != nil {
			h.logger.Warn("voice stream close failed", "session_id", id, "error", err)
		}
		<-written
	})
}
