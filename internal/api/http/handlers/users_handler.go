package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-dashboard/internal/api/dto"
	"github.com/spec-kit/queue-dashboard/internal/export"
	"github.com/spec-kit/queue-dashboard/internal/service"
	"github.com/spec-kit/queue-dashboard/internal/view"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

// UsersHandler serves the aggregated user table and user details.
type UsersHandler struct {
	service *service.DashboardService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(dashboard *service.DashboardService) *UsersHandler {
	return &UsersHandler{service: dashboard}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	q, err := parseTableQuery(c, view.UserColumns, view.DefaultUserSort())
	if err != nil {
		return err
	}
	res, err := h.service.UserTable(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTableResponse(res, view.UserColumns.Keys()))
}

// Get GET /users/:id. A known user with no tickets still gets an empty list.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.UserDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Export GET /users/export.xlsx.
func (h *UsersHandler) Export(c *fiber.Ctx) error {
	sort, err := parseSort(c, view.UserColumns, view.DefaultUserSort())
	if err != nil {
		return err
	}
	rows, err := h.service.UserRows(c.UserContext(), sort)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteUsers(&buf, rows); err != nil {
		return apperrors.NewInternalError(err)
	}
	return sendWorkbook(c, "users", buf.Bytes())
}
