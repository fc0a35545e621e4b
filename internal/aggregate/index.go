// Package aggregate derives the per-user registry from a queue snapshot.
package aggregate

import "github.com/spec-kit/queue-dashboard/internal/domain"

// Index is the deduplicated user registry of a snapshot.
// Users holds one representative per UserID in first-seen order; the
// representative is the User value of the first ticket that referenced it.
type Index struct {
	Users        []domain.User
	TicketCounts map[string]int
	position     map[string]int
}

// Aggregate walks queues in order, and tickets within each queue in order,
// exactly once.
func Aggregate(queues []domain.Queue) Index {
	idx := Index{
		Users:        []domain.User{},
		TicketCounts: map[string]int{},
		position:     map[string]int{},
	}
	for _, q := range queues {
		for _, t := range q.Tickets {
			id := t.User.UserID
			if _, seen := idx.position[id]; seen {
				idx.TicketCounts[id]++
				continue
			}
			idx.position[id] = len(idx.Users)
			idx.Users = append(idx.Users, t.User)
			idx.TicketCounts[id] = 1
		}
	}
	return idx
}

// Count returns the number of tickets for userID, 0 when unknown.
func (ix Index) Count(userID string) int {
	return ix.TicketCounts[userID]
}

// User returns the representative for userID.
func (ix Index) User(userID string) (domain.User, bool) {
	pos, ok := ix.position[userID]
	if !ok {
		return domain.User{}, false
	}
	return ix.Users[pos], true
}

// Len returns the number of distinct users.
func (ix Index) Len() int {
	return len(ix.Users)
}

// TicketsForUser returns every ticket raised by userID across all queues in
// traversal order. The result is empty, not nil, when there are none.
func TicketsForUser(queues []domain.Queue, userID string) []domain.Ticket {
	tickets := []domain.Ticket{}
	for _, q := range queues {
		for _, t := range q.Tickets {
			if t.User.UserID == userID {
				tickets = append(tickets, t)
			}
		}
	}
	return tickets
}

// QueueByID returns the first queue with the given id.
func QueueByID(queues []domain.Queue, id string) (domain.Queue, bool) {
	for _, q := range queues {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Queue{}, false
}

// QueueTickets returns a copy of the queue's tickets in their stored order.
func QueueTickets(q domain.Queue) []domain.Ticket {
	tickets := make([]domain.Ticket, len(q.Tickets))
	copy(tickets, q.Tickets)
	return tickets
}
