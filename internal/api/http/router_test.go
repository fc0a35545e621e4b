package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/queue-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/config"
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/events"
	"github.com/spec-kit/queue-dashboard/internal/observability"
	"github.com/spec-kit/queue-dashboard/internal/persistence"
	"github.com/spec-kit/queue-dashboard/internal/repository"
	"github.com/spec-kit/queue-dashboard/internal/service"
)

type testEnv struct {
	app      *fiber.App
	source   *repository.StaticQueueSource
	operator string
	viewer   string
}

func fixture() []domain.Queue {
	carol := domain.User{UserID: "u1", DisplayName: "Carol", Email: "carol@example.edu"}
	alice := domain.User{UserID: "u2", DisplayName: "alice", Email: "alice@example.edu"}
	bob := domain.User{UserID: "u3", DisplayName: "Bob", Email: "bob@example.edu"}
	return []domain.Queue{
		{ID: "q1", Title: "Office hours B", EndTime: domain.ParseTimestamp("2024-03-02T10:00:00Z"), Tickets: []domain.Ticket{
			{ID: "t1", User: carol, Description: "Recursion", Status: domain.TicketStatusComplete},
			{ID: "t2", User: alice, Description: "?", Status: domain.TicketStatusMissing},
		}},
		{ID: "q2", Title: "Office hours A", EndTime: domain.ParseTimestamp("2024-03-01T10:00:00Z"), Tickets: []domain.Ticket{
			{ID: "t3", User: carol},
			{ID: "t4", User: bob},
		}},
		{ID: "q3", Title: "Office hours C", Tickets: []domain.Ticket{
			{ID: "t5", User: carol},
			{ID: "t6", User: bob},
		}},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	source := &repository.StaticQueueSource{Queues: fixture()}
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewSnapshotNotifier(dispatcher, logger, metrics).RegisterHandlers()

	dashboard := service.NewDashboardService(config.ViewConfig{DefaultPageSize: 2, MaxPageSize: 50, Collation: "en"}, service.DashboardDependencies{
		Source:     source,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		OperatorEmail:         "ops@example.edu",
		OperatorPasswordHash:  hash,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	var pg *persistence.Postgres
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("queue-dashboard", "test", source, map[string]handlers.Pinger{"postgres": pg}),
		Auth:           handlers.NewAuthHandler(authService),
		Queues:         handlers.NewQueuesHandler(dashboard),
		Users:          handlers.NewUsersHandler(dashboard),
		Snapshot:       handlers.NewSnapshotHandler(dashboard),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), false),
		Metrics:        metrics,
	})

	viewer, _, err := authService.TokenManager().GenerateToken("guest", auth.RoleViewer)
	require.NoError(t, err)

	env := &testEnv{app: app, source: source, viewer: viewer}
	env.operator = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, fiber.MethodPost, "/auth/login", "", `{"email":"ops@example.edu","password":"s3cret"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (e *testEnv) do(t *testing.T, method, target, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

type tableBody struct {
	Data []map[string]any `json:"data"`
	Meta struct {
		Page       int  `json:"page"`
		PageSize   int  `json:"page_size"`
		TotalPages int  `json:"total_pages"`
		TotalItems int  `json:"total_items"`
		HasPrev    bool `json:"has_prev"`
		HasNext    bool `json:"has_next"`
		Sort       struct {
			Key       string   `json:"key"`
			Direction string   `json:"direction"`
			Available []string `json:"available"`
		} `json:"sort"`
	} `json:"meta"`
}

func (e *testEnv) table(t *testing.T, target string) tableBody {
	t.Helper()
	status, body := e.do(t, fiber.MethodGet, target, e.viewer, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var out tableBody
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func column(rows []map[string]any, key string) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r[key]
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodGet, "/health/live", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"alive"`)

	status, body = env.do(t, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"postgres":"disabled"`)

	env.source.Err = errors.New("fixture missing")
	status, body = env.do(t, fiber.MethodGet, "/health/ready", "", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "DEPENDENCY_UNAVAILABLE")
}

func TestQueuesTable(t *testing.T) {
	env := newTestEnv(t)

	out := env.table(t, "/queues")
	assert.Equal(t, []any{"q1", "q2"}, column(out.Data, "id"))
	assert.Equal(t, 2, out.Meta.TotalPages)
	assert.Equal(t, 3, out.Meta.TotalItems)
	assert.False(t, out.Meta.HasPrev)
	assert.True(t, out.Meta.HasNext)
	assert.Equal(t, []string{"name", "endedAt", "tickets"}, out.Meta.Sort.Available)

	out = env.table(t, "/queues?sort=name&page_size=10")
	assert.Equal(t, []any{"q2", "q1", "q3"}, column(out.Data, "id"))
	assert.Equal(t, "ascending", out.Meta.Sort.Direction)

	out = env.table(t, "/queues?sort=endedAt&direction=desc&page=99&page_size=2")
	assert.Equal(t, 2, out.Meta.Page, "clamped")
	assert.Equal(t, []any{"q2"}, column(out.Data, "id"))

	out = env.table(t, "/queues?sort=tickets&direction=descending&page_size=10")
	assert.Equal(t, []any{"q1", "q2", "q3"}, column(out.Data, "id"), "ties keep input order")
}

func TestToggleRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	out := env.table(t, "/users?toggle=DisplayName")
	assert.Equal(t, "DisplayName", out.Meta.Sort.Key)
	assert.Equal(t, "descending", out.Meta.Sort.Direction, "default sort is DisplayName ascending")

	next := "/users?page_size=10&sort=" + out.Meta.Sort.Key + "&direction=" + out.Meta.Sort.Direction + "&toggle=tickets"
	out = env.table(t, next)
	assert.Equal(t, "Tickets", out.Meta.Sort.Key)
	assert.Equal(t, "ascending", out.Meta.Sort.Direction)
	assert.Equal(t, []any{"u2", "u3", "u1"}, column(out.Data, "user_id"))
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, column(out.Data, "ticket_count"))
}

func TestTableQueryValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/queues?sort=colour", "/users?direction=sideways", "/users?toggle=age"} {
		status, body := env.do(t, fiber.MethodGet, target, env.viewer, "")
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.Contains(t, string(body), "VALIDATION_FAILED")
	}

	out := env.table(t, "/queues?page=abc&page_size=-4")
	assert.Equal(t, 1, out.Meta.Page)
	assert.Equal(t, 2, out.Meta.PageSize)
}

func TestDetails(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, fiber.MethodGet, "/queues/q1", env.viewer, "")
	require.Equal(t, fiber.StatusOK, status)
	var queue struct {
		Data struct {
			Queue struct {
				TicketCount int `json:"ticket_count"`
			} `json:"queue"`
			Tickets []struct {
				ID          string `json:"id"`
				Description string `json:"description"`
				StatusLabel string `json:"status_label"`
			} `json:"tickets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &queue))
	assert.Equal(t, 2, queue.Data.Queue.TicketCount)
	require.Len(t, queue.Data.Tickets, 2)
	assert.Equal(t, "No description", queue.Data.Tickets[1].Description)
	assert.Equal(t, "Missing", queue.Data.Tickets[1].StatusLabel)

	status, body = env.do(t, fiber.MethodGet, "/users/u3", env.viewer, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"t4"`)
	assert.Contains(t, string(body), `"t6"`)

	status, body = env.do(t, fiber.MethodGet, "/users/nobody", env.viewer, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, fiber.MethodGet, "/queues", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, fiber.MethodPost, "/auth/login", "", `{"email":"ops@example.edu","password":"nope"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = env.do(t, fiber.MethodPost, "/auth/login", "", `{"email":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = env.do(t, fiber.MethodGet, "/users/export.xlsx", env.viewer, "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(fiber.MethodGet, "/users/export.xlsx?sort=Tickets&direction=desc", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+env.operator)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "users_")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus every user, unpaginated")
	assert.Equal(t, "u1", rows[1][0])

	status, _ := env.do(t, fiber.MethodGet, "/queues/export.xlsx", env.operator, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRefreshAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, fiber.MethodPost, "/snapshot/refresh", env.operator, "")
	assert.Equal(t, fiber.StatusAccepted, status)

	env.source.Err = errors.New("offline")
	status, body := env.do(t, fiber.MethodPost, "/snapshot/refresh", env.operator, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), "SOURCE_UNAVAILABLE")

	status, body = env.do(t, fiber.MethodGet, "/metrics", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `queue_dashboard_snapshot_refresh_total{result="ok"} 1`)
	assert.Contains(t, string(body), `queue_dashboard_snapshot_refresh_total{result="error"} 1`)
	assert.Contains(t, string(body), "queue_dashboard_http_requests_total")
}
