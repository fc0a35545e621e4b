package domain

// TicketStatus enumerates ticket completion states.
type TicketStatus string

const (
	TicketStatusMissing  TicketStatus = "MISSING"
	TicketStatusComplete TicketStatus = "COMPLETE"
)

// IsComplete reports whether the ticket counts as complete. Every status other
// than MISSING is treated as complete.
func (s TicketStatus) IsComplete() bool {
	return s != TicketStatusMissing
}

// Ticket is a single support request inside a queue.
type Ticket struct {
	ID          string       `json:"id" validate:"required"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedAt   Timestamp    `json:"createdAt"`
	User        User         `json:"user" validate:"-"`
}
