package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/queue-dashboard/internal/auth"
	"github.com/spec-kit/queue-dashboard/internal/config"
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/events"
	"github.com/spec-kit/queue-dashboard/internal/observability"
	"github.com/spec-kit/queue-dashboard/internal/repository"
	"github.com/spec-kit/queue-dashboard/internal/table"
	"github.com/spec-kit/queue-dashboard/internal/view"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

func ts(s string) domain.Timestamp {
	return domain.ParseTimestamp(s)
}

func fixtureQueues() []domain.Queue {
	carol := domain.User{UserID: "u1", DisplayName: "Carol", Email: "carol@example.edu"}
	alice := domain.User{UserID: "u2", DisplayName: "alice", Email: "alice@example.edu"}
	bob := domain.User{UserID: "u3", DisplayName: "Bob", Email: "bob@example.edu"}
	return []domain.Queue{
		{ID: "q1", Title: "Office hours B", EndTime: ts("2024-03-02T10:00:00Z"), Tickets: []domain.Ticket{
			{ID: "t1", User: carol, Status: domain.TicketStatusComplete},
			{ID: "t2", User: alice},
			{ID: "t3", User: domain.User{DisplayName: "ghost"}},
		}},
		{ID: "q2", Title: "Office hours A", EndTime: ts("2024-03-01T10:00:00Z"), Tickets: []domain.Ticket{
			{ID: "t4", User: carol},
			{ID: "t5", User: bob},
		}},
		{ID: "q3", Title: "Office hours C", Tickets: []domain.Ticket{
			{ID: "t6", User: carol},
			{ID: "t7", User: bob},
		}},
	}
}

type invalidatingSource struct {
	repository.StaticQueueSource
	invalidated int
}

func (s *invalidatingSource) Invalidate(ctx context.Context) error {
	s.invalidated++
	return nil
}

func newService(t *testing.T, src repository.QueueSource, dispatcher events.Dispatcher) *DashboardService {
	t.Helper()
	return NewDashboardService(config.ViewConfig{DefaultPageSize: 2, MaxPageSize: 5, Collation: "en"}, DashboardDependencies{
		Source:     src,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
}

func queueIDs(rows []view.QueueRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func userIDs(rows []view.UserRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids
}

func TestQueueTable(t *testing.T) {
	svc := newService(t, &repository.StaticQueueSource{Queues: fixtureQueues()}, nil)
	ctx := context.Background()

	res, err := svc.QueueTable(ctx, TableQuery{Sort: view.DefaultQueueSort()})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, queueIDs(res.Page.Items), "default page size")
	assert.Equal(t, 2, res.Page.TotalPages)

	res, err = svc.QueueTable(ctx, TableQuery{
		Sort: table.SortState{Key: view.QueueSortEndedAt, Direction: table.Ascending},
		Page: table.PageState{Current: 9, Size: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Page.Page, "clamped to last page")
	assert.Equal(t, []string{"q3"}, queueIDs(res.Page.Items), "missing end time sorts last")
}

func TestQueueTableCapsPageSize(t *testing.T) {
	svc := newService(t, &repository.StaticQueueSource{Queues: fixtureQueues()}, nil)

	res, err := svc.QueueTable(context.Background(), TableQuery{Page: table.PageState{Current: 1, Size: 500}})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Page.PageSize)
	assert.Len(t, res.Page.Items, 3)
}

func TestUserTableDropsUnattributedTickets(t *testing.T) {
	svc := newService(t, &repository.StaticQueueSource{Queues: fixtureQueues()}, nil)

	rows, err := svc.UserRows(context.Background(), table.SortState{Key: view.UserSortTickets, Direction: table.Descending})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3", "u2"}, userIDs(rows))
	assert.Equal(t, 3, rows[0].TicketCount)

	res, err := svc.UserTable(context.Background(), TableQuery{Sort: view.DefaultUserSort(), Page: table.PageState{Current: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.TotalItems)
	assert.Equal(t, []string{"u2", "u3"}, userIDs(res.Page.Items), "alice, Bob, Carol")
}

func TestDetails(t *testing.T) {
	svc := newService(t, &repository.StaticQueueSource{Queues: fixtureQueues()}, nil)
	ctx := context.Background()

	q, err := svc.QueueDetail(ctx, "q1")
	require.NoError(t, err)
	assert.Len(t, q.Tickets, 2, "ticket without a user is dropped")

	u, err := svc.UserDetail(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, 2, u.User.TicketCount)
	require.Len(t, u.Tickets, 2)
	assert.Equal(t, "t5", u.Tickets[0].ID)

	_, err = svc.QueueDetail(ctx, "nope")
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
	_, err = svc.UserDetail(ctx, "nope")
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSourceFailureIsUnavailable(t *testing.T) {
	svc := newService(t, &repository.StaticQueueSource{Err: errors.New("disk gone")}, nil)

	_, err := svc.QueueTable(context.Background(), TableQuery{})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "SOURCE_UNAVAILABLE", de.Code)
	assert.Equal(t, http.StatusServiceUnavailable, de.HTTPStatus)
}

func TestRefreshPublishesEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewSnapshotNotifier(dispatcher, zap.New(core), observability.NewMetrics()).RegisterHandlers()

	src := &invalidatingSource{StaticQueueSource: repository.StaticQueueSource{Queues: fixtureQueues()}}
	svc := newService(t, src, dispatcher)

	var got []events.Event
	dispatcher.Subscribe(events.EventSnapshotRefreshed, func(ctx context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, src.invalidated)
	require.Len(t, got, 1)
	payload := got[0].Payload.(events.SnapshotRefreshedPayload)
	assert.Equal(t, 3, payload.Queues)
	assert.Equal(t, 6, payload.Tickets)
	assert.Equal(t, 3, payload.Users)
	assert.Equal(t, 1, payload.Issues)
	assert.Equal(t, 1, logs.FilterMessage("SnapshotRefreshed").Len())

	src.Err = errors.New("offline")
	assert.Error(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("SnapshotFailed").Len())
}

func TestNewDashboardServiceDefaults(t *testing.T) {
	svc := NewDashboardService(config.ViewConfig{Collation: "klingon"}, DashboardDependencies{
		Source: &repository.StaticQueueSource{},
	})
	assert.Equal(t, table.CollationEnglish, svc.Collation())
	assert.Equal(t, table.DefaultPageSize, svc.DefaultPageSize())

	res, err := svc.UserTable(context.Background(), TableQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.TotalPages)
	assert.Empty(t, res.Page.Items)
}

func TestAuthServiceLogin(t *testing.T) {
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "secret",
		AccessTokenTTLMinutes: 10,
		OperatorEmail:         "Ops@Example.edu",
		OperatorPasswordHash:  hash,
	})
	ctx := context.Background()

	token, exp, err := svc.Login(ctx, " ops@example.edu ", "s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), exp, 5*time.Second)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.edu", claims.Subject)
	assert.Equal(t, auth.RoleOperator, claims.Role)

	for _, tc := range []struct{ email, password string }{
		{"ops@example.edu", "wrong"},
		{"someone@example.edu", "s3cret"},
	} {
		_, _, err := svc.Login(ctx, tc.email, tc.password)
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	}

	unconfigured := NewAuthService(config.AuthConfig{JWTSecret: "secret"})
	_, _, err = unconfigured.Login(ctx, "", "")
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
}
