package server

import (
	"errors"

	"cardadvisor/app/service/conversation"
	"cardadvisor/app/service/session"
	"cardadvisor/app/service/viewsync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type viewResponse struct {
	SessionID string                 `json:"session_id"`
	Turns     []conversation.Turn    `json:"turns"`
	View      conversation.ViewState `json:"view"`
	Intents   []viewsync.Intent      `json:"intents,omitempty"`
}

type submitRequest struct {
	Text string `json:"text"`
}

type scrollRequest struct {
	Pane   string  `json:"pane"`
	Offset float64 `json:"offset"`
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	engine := s.sessionSvc.Create()

	return c.Status(fiber.StatusCreated).JSON(viewOf(engine, nil))
}

func (s *Server) handleView(c *fiber.Ctx) error {
	engine, err := s.engineFromParams(c)
	if err != nil {
		return err
	}

	return c.JSON(viewOf(engine, nil))
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	engine, err := s.engineFromParams(c)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := engine.Submit(c.Context(), req.Text)
	if errors.Is(err, conversation.ErrBusy) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return err
	}

	if result == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.JSON(viewOf(engine, result.Intents))
}

func (s *Server) handleScroll(c *fiber.Ctx) error {
	engine, err := s.engineFromParams(c)
	if err != nil {
		return err
	}

	var req scrollRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	pane := viewsync.Pane(req.Pane)
	if pane != viewsync.PaneHistory && pane != viewsync.PaneRecommendations {
		return fiber.NewError(fiber.StatusBadRequest, "unknown pane")
	}

	engine.ObserveScroll(pane, req.Offset)

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) engineFromParams(c *fiber.Ctx) (*session.Engine, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	engine, ok := s.sessionSvc.Get(id)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	return engine, nil
}

func viewOf(engine *session.Engine, intents []viewsync.Intent) viewResponse {
	snapshot := engine.Snapshot()

	return viewResponse{
		SessionID: engine.ID.String(),
		Turns:     snapshot.Turns,
		View:      snapshot.View,
		Intents:   intents,
	}
}
