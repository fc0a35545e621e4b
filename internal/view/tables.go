// Package view assembles sorted, paginated tables and detail listings from a
// queue snapshot. Every call recomputes from its arguments; nothing is cached.
package view

import (
	"github.com/spec-kit/queue-dashboard/internal/aggregate"
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/table"
)

// Options tunes how tables are computed.
type Options struct {
	Collation table.Collation
}

// Result is a computed table page together with the sort that produced it.
type Result[T any] struct {
	Page table.Page[T]
	Sort table.SortState
}

// DefaultQueueSort keeps queues in snapshot order.
func DefaultQueueSort() table.SortState {
	return table.SortState{Key: table.SortNone, Direction: table.Ascending}
}

// DefaultUserSort orders users by display name.
func DefaultUserSort() table.SortState {
	return table.SortState{Key: UserSortDisplayName, Direction: table.Ascending}
}

// QueueRows flattens queues into sorted table rows.
func QueueRows(queues []domain.Queue, sort table.SortState, opts Options) []QueueRow {
	rows := make([]QueueRow, 0, len(queues))
	for _, q := range queues {
		rows = append(rows, queueRow(q))
	}
	return table.SortBy(rows, QueueColumns, sort, opts.Collation)
}

// QueueTable returns one page of the queue table.
func QueueTable(queues []domain.Queue, sort table.SortState, page table.PageState, opts Options) Result[QueueRow] {
	rows := QueueRows(queues, sort, opts)
	return Result[QueueRow]{
		Page: table.Paginate(rows, page.Size, page.Current),
		Sort: sort,
	}
}

// UserRows aggregates users across queues and sorts them. Before sorting,
// users are in first-seen order.
func UserRows(queues []domain.Queue, sort table.SortState, opts Options) []UserRow {
	idx := aggregate.Aggregate(queues)
	rows := make([]UserRow, 0, idx.Len())
	for _, u := range idx.Users {
		rows = append(rows, UserRow{
			UserID:      u.UserID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			TicketCount: idx.Count(u.UserID),
		})
	}
	return table.SortBy(rows, UserColumns, sort, opts.Collation)
}

// UserTable returns one page of the aggregated user table.
func UserTable(queues []domain.Queue, sort table.SortState, page table.PageState, opts Options) Result[UserRow] {
	rows := UserRows(queues, sort, opts)
	return Result[UserRow]{
		Page: table.Paginate(rows, page.Size, page.Current),
		Sort: sort,
	}
}

// QueueDetail is a queue with its full ticket list.
type QueueDetail struct {
	Queue   QueueRow    `json:"queue"`
	Tickets []TicketRow `json:"tickets"`
}

// UserDetail is a user with every ticket they raised.
type UserDetail struct {
	User    UserRow     `json:"user"`
	Tickets []TicketRow `json:"tickets"`
}

// FindQueue returns the detail view for the queue with id.
func FindQueue(queues []domain.Queue, id string) (QueueDetail, bool) {
	q, ok := aggregate.QueueByID(queues, id)
	if !ok {
		return QueueDetail{}, false
	}
	return QueueDetail{Queue: queueRow(q), Tickets: ticketRows(aggregate.QueueTickets(q))}, true
}

// FindUser returns the detail view for userID. Unknown users report false.
func FindUser(queues []domain.Queue, userID string) (UserDetail, bool) {
	idx := aggregate.Aggregate(queues)
	u, ok := idx.User(userID)
	if !ok {
		return UserDetail{}, false
	}
	return UserDetail{
		User: UserRow{
			UserID:      u.UserID,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			TicketCount: idx.Count(u.UserID),
		},
		Tickets: ticketRows(aggregate.TicketsForUser(queues, userID)),
	}, true
}
