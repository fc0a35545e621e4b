package domain

import "encoding/json"

// Queue is a support session holding an ordered list of tickets.
type Queue struct {
	ID      string    `json:"id" validate:"required"`
	Title   string    `json:"title"`
	EndTime Timestamp `json:"endTime"`
	Tickets []Ticket  `json:"tickets"`
}

// TicketCount returns the number of tickets in the queue.
func (q Queue) TicketCount() int {
	return len(q.Tickets)
}

// UnmarshalJSON also accepts the legacy "courseID" and "queue_id" identifiers.
func (q *Queue) UnmarshalJSON(data []byte) error {
	type plain Queue
	var raw struct {
		plain
		CourseID string `json:"courseID"`
		QueueID  string `json:"queue_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = Queue(raw.plain)
	if q.ID == "" {
		q.ID = raw.CourseID
	}
	if q.ID == "" {
		q.ID = raw.QueueID
	}
	return nil
}
