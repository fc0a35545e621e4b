package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-dashboard/internal/api/dto"
	"github.com/spec-kit/queue-dashboard/internal/export"
	"github.com/spec-kit/queue-dashboard/internal/service"
	"github.com/spec-kit/queue-dashboard/internal/view"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

// QueuesHandler serves the queue table and queue details.
type QueuesHandler struct {
	service *service.DashboardService
}

// NewQueuesHandler constructs handler.
func NewQueuesHandler(dashboard *service.DashboardService) *QueuesHandler {
	return &QueuesHandler{service: dashboard}
}

// List GET /queues.
func (h *QueuesHandler) List(c *fiber.Ctx) error {
	q, err := parseTableQuery(c, view.QueueColumns, view.DefaultQueueSort())
	if err != nil {
		return err
	}
	res, err := h.service.QueueTable(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTableResponse(res, view.QueueColumns.Keys()))
}

// Get GET /queues/:id.
func (h *QueuesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.QueueDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Export GET /queues/export.xlsx.
func (h *QueuesHandler) Export(c *fiber.Ctx) error {
	sort, err := parseSort(c, view.QueueColumns, view.DefaultQueueSort())
	if err != nil {
		return err
	}
	rows, err := h.service.QueueRows(c.UserContext(), sort)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteQueues(&buf, rows); err != nil {
		return apperrors.NewInternalError(err)
	}
	return sendWorkbook(c, "queues", buf.Bytes())
}

func sendWorkbook(c *fiber.Ctx, name string, data []byte) error {
	fileName := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(data)
}
