package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
)

// FrameError is sent in place of an envelope when a payload cannot be decoded.
type FrameError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Video GET /v1/ws/video/:session_id - one base64 frame in, one envelope out.
// Connecting starts a fresh report history for the session.
func (h *SessionHandler) Video() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		id := c.Params("session_id")
		if id == "" {
			_ = c.Close()
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		h.reports.Open(id)
		h.logger.Info("video stream connected", "session_id", id)
		defer h.logger.Info("video stream disconnected", "session_id", id)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			frame, err := h.decoder.DecodeBase64(string(msg))
			if err != nil {
				h.logger.Debug("frame decode failed", "session_id", id, "error", err)
				if err := c.WriteJSON(FrameError{Status: "error", Message: domain.ReasonFrameDecodeFailure}); err != nil {
					return
				}
				continue
			}

			if err := c.WriteJSON(h.handleFrame(ctx, id, frame)); err != nil {
				return
			}
		}
	})
}
