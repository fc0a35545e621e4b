package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use; it only caches struct metadata.
var validate = validator.New()

// Issue describes a problem found while sanitizing a snapshot.
type Issue struct {
	QueueID  string `json:"queue_id"`
	TicketID string `json:"ticket_id,omitempty"`
	Field    string `json:"field"`
	Rule     string `json:"rule"`
	Dropped  bool   `json:"dropped"`
}

// Sanitize validates a snapshot before it reaches the aggregation index.
// Tickets without a user identity are dropped because they cannot be
// attributed to anyone; every other problem is reported and the record kept.
// The input is not modified.
func Sanitize(queues []Queue) ([]Queue, []Issue) {
	var issues []Issue
	out := make([]Queue, 0, len(queues))
	for _, q := range queues {
		issues = append(issues, fieldIssues(validate.Struct(q), q.ID, "")...)

		clean := q
		clean.Tickets = make([]Ticket, 0, len(q.Tickets))
		for _, t := range q.Tickets {
			issues = append(issues, fieldIssues(validate.Struct(t), q.ID, t.ID)...)

			userIssues := fieldIssues(validate.Struct(t.User), q.ID, t.ID)
			drop := false
			for i := range userIssues {
				userIssues[i].Field = "user." + userIssues[i].Field
				if userIssues[i].Field == "user.UserID" {
					drop = true
				}
			}
			if drop {
				for i := range userIssues {
					userIssues[i].Dropped = true
				}
			}
			issues = append(issues, userIssues...)
			if !drop {
				clean.Tickets = append(clean.Tickets, t)
			}
		}
		out = append(out, clean)
	}
	return out, issues
}

func fieldIssues(err error, queueID, ticketID string) []Issue {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{QueueID: queueID, TicketID: ticketID, Rule: err.Error()}}
	}
	issues := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			QueueID:  queueID,
			TicketID: ticketID,
			Field:    fe.Field(),
			Rule:     fe.Tag(),
		})
	}
	return issues
}
