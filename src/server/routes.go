package server

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/webchat/relay/src/service"
	"github.com/webchat/relay/src/types"
)

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/ws/info", s.handleInfo)
	s.app.Post("/internal/publish", s.handlePublish)
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket":   true,
		"endpoint":    s.cfg.WSPath,
		"connections": s.hub.ConnectionCount(),
		"rooms":       len(s.hub.Rooms()),
	})
}

// handlePublish is the hand-off point for the external CRUD layer: after it
// durably writes a message it posts the persisted record here for fan-out.
// Relay success is decoupled from persistence success, so delivery failures
// never surface as an error to the original write.
func (s *Server) handlePublish(c fiber.Ctx) error {
	var ev types.MessageEvent
	if err := json.Unmarshal(c.Body(), &ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed message event",
		})
	}

	report, err := s.svc.Publish(ev)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRoom) || errors.Is(err, service.ErrInvalidEvent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "publish failed",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(report)
}
