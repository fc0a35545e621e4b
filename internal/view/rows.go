package view

import (
	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/table"
)

// Sort keys exposed by the queue table.
const (
	QueueSortName    table.SortKey = "name"
	QueueSortEndedAt table.SortKey = "endedAt"
	QueueSortTickets table.SortKey = "tickets"
)

// Sort keys exposed by the user table.
const (
	UserSortDisplayName table.SortKey = "DisplayName"
	UserSortEmail       table.SortKey = "Email"
	UserSortTickets     table.SortKey = "Tickets"
)

// QueueRow is one line of the queue table.
type QueueRow struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	EndTime     domain.Timestamp `json:"end_time"`
	TicketCount int              `json:"ticket_count"`
}

// UserRow is one line of the aggregated user table.
type UserRow struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	TicketCount int    `json:"ticket_count"`
}

// TicketRow is one ticket in a detail listing.
type TicketRow struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	StatusLabel string              `json:"status_label"`
	CreatedAt   domain.Timestamp    `json:"created_at"`
	User        domain.User         `json:"user"`
}

// QueueColumns are the sortable queue columns.
var QueueColumns = table.NewColumnSet(
	table.StringColumn(QueueSortName, func(r QueueRow) string { return r.Title }),
	table.TimeColumn(QueueSortEndedAt, func(r QueueRow) domain.Timestamp { return r.EndTime }),
	table.IntColumn(QueueSortTickets, func(r QueueRow) int { return r.TicketCount }),
)

// UserColumns are the sortable user columns.
var UserColumns = table.NewColumnSet(
	table.StringColumn(UserSortDisplayName, func(r UserRow) string { return r.DisplayName }),
	table.StringColumn(UserSortEmail, func(r UserRow) string { return r.Email }),
	table.IntColumn(UserSortTickets, func(r UserRow) int { return r.TicketCount }),
)

func queueRow(q domain.Queue) QueueRow {
	return QueueRow{ID: q.ID, Title: q.Title, EndTime: q.EndTime, TicketCount: q.TicketCount()}
}

func ticketRows(tickets []domain.Ticket) []TicketRow {
	rows := make([]TicketRow, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, TicketRow{
			ID:          t.ID,
			Description: DescriptionOrPlaceholder(t.Description),
			Status:      t.Status,
			StatusLabel: StatusLabel(t.Status),
			CreatedAt:   t.CreatedAt,
			User:        t.User,
		})
	}
	return rows
}

// NoDescription replaces descriptions too short to be meaningful.
const NoDescription = "No description"

// DescriptionOrPlaceholder returns d, or NoDescription when d has at most one
// character.
func DescriptionOrPlaceholder(d string) string {
	if len([]rune(d)) > 1 {
		return d
	}
	return NoDescription
}

// StatusLabel is the display label for a ticket status.
func StatusLabel(s domain.TicketStatus) string {
	if s.IsComplete() {
		return "Complete"
	}
	return "Missing"
}
