package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

func ticket(id, userID, name string) domain.Ticket {
	return domain.Ticket{ID: id, User: domain.User{UserID: userID, DisplayName: name}}
}

func userIDs(users []domain.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.UserID)
	}
	return out
}

func TestAggregateTwoQueues(t *testing.T) {
	queues := []domain.Queue{
		{ID: "q1", Tickets: []domain.Ticket{ticket("t1", "u1", ""), ticket("t2", "u2", "")}},
		{ID: "q2", Tickets: []domain.Ticket{ticket("t3", "u1", "")}},
	}

	idx := Aggregate(queues)

	assert.Equal(t, []string{"u1", "u2"}, userIDs(idx.Users))
	assert.Equal(t, map[string]int{"u1": 2, "u2": 1}, idx.TicketCounts)
}

func TestAggregateFirstSeenRepresentativeWins(t *testing.T) {
	queues := []domain.Queue{
		{ID: "q1", Tickets: []domain.Ticket{ticket("t1", "u7", "Ada")}},
		{ID: "q2", Tickets: []domain.Ticket{ticket("t2", "u7", "Ada Lovelace"), ticket("t3", "u7", "A. L.")}},
	}

	idx := Aggregate(queues)

	require.Len(t, idx.Users, 1)
	assert.Equal(t, "Ada", idx.Users[0].DisplayName)
	u, ok := idx.User("u7")
	require.True(t, ok)
	assert.Equal(t, "Ada", u.DisplayName)
	assert.Equal(t, 3, idx.Count("u7"))
}

func TestAggregateDedupAndCountInvariants(t *testing.T) {
	queues := []domain.Queue{
		{ID: "a", Tickets: []domain.Ticket{ticket("1", "x", ""), ticket("2", "y", ""), ticket("3", "x", ""), ticket("4", "z", "")}},
		{ID: "b"},
		{ID: "c", Tickets: []domain.Ticket{ticket("5", "z", ""), ticket("6", "w", ""), ticket("7", "x", "")}},
	}

	idx := Aggregate(queues)

	distinct := map[string]struct{}{}
	perUser := map[string]int{}
	for _, q := range queues {
		for _, tk := range q.Tickets {
			distinct[tk.User.UserID] = struct{}{}
			perUser[tk.User.UserID]++
		}
	}
	assert.Equal(t, len(distinct), idx.Len())
	for _, u := range idx.Users {
		assert.Equal(t, perUser[u.UserID], idx.Count(u.UserID), u.UserID)
	}
	assert.Equal(t, []string{"x", "y", "z", "w"}, userIDs(idx.Users))
}

func TestAggregateEmpty(t *testing.T) {
	idx := Aggregate(nil)
	assert.NotNil(t, idx.Users)
	assert.Empty(t, idx.Users)
	assert.Equal(t, 0, idx.Count("anyone"))
	_, ok := idx.User("anyone")
	assert.False(t, ok)
}

func TestTicketsForUser(t *testing.T) {
	queues := []domain.Queue{
		{ID: "q1", Tickets: []domain.Ticket{ticket("t1", "u1", ""), ticket("t2", "u2", "")}},
		{ID: "q2", Tickets: []domain.Ticket{ticket("t3", "u1", ""), ticket("t4", "u1", "")}},
	}

	got := TicketsForUser(queues, "u1")
	ids := make([]string, 0, len(got))
	for _, tk := range got {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"t1", "t3", "t4"}, ids)

	none := TicketsForUser(queues, "nobody")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestQueueByIDAndTickets(t *testing.T) {
	queues := []domain.Queue{
		{ID: "q1", Title: "first", Tickets: []domain.Ticket{ticket("t1", "u1", "")}},
		{ID: "q1", Title: "duplicate"},
	}

	q, ok := QueueByID(queues, "q1")
	require.True(t, ok)
	assert.Equal(t, "first", q.Title)

	tickets := QueueTickets(q)
	tickets[0].ID = "changed"
	assert.Equal(t, "t1", queues[0].Tickets[0].ID)

	_, ok = QueueByID(queues, "missing")
	assert.False(t, ok)
}
