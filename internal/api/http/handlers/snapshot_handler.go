package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-dashboard/internal/service"
)

// SnapshotHandler lets an operator force a snapshot reload.
type SnapshotHandler struct {
	service *service.DashboardService
}

// NewSnapshotHandler constructs handler.
func NewSnapshotHandler(dashboard *service.DashboardService) *SnapshotHandler {
	return &SnapshotHandler{service: dashboard}
}

// Refresh POST /snapshot/refresh.
func (h *SnapshotHandler) Refresh(c *fiber.Ctx) error {
	if err := h.service.Refresh(c.UserContext()); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "refreshed"}})
}
