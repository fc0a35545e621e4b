package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

// Querier is the subset of pgxpool.Pool used by the postgres source.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresQueueSource struct {
	db Querier
}

// NewPostgresQueueSource loads snapshots from the queues, tickets and users tables.
func NewPostgresQueueSource(db Querier) QueueSource {
	return &postgresQueueSource{db: db}
}

type ticketRecord struct {
	QueueID string
	Ticket  domain.Ticket
}

func (s *postgresQueueSource) Snapshot(ctx context.Context) ([]domain.Queue, error) {
	queues, err := s.loadQueues(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.loadTickets(ctx)
	if err != nil {
		return nil, err
	}
	return assembleQueues(queues, tickets), nil
}

func (s *postgresQueueSource) loadQueues(ctx context.Context) ([]domain.Queue, error) {
	const query = `
        SELECT id, title, end_time
        FROM queues
        ORDER BY position, id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query queues: %w", err)
	}
	defer rows.Close()

	queues := []domain.Queue{}
	for rows.Next() {
		var (
			q       domain.Queue
			endTime *time.Time
		)
		if err := rows.Scan(&q.ID, &q.Title, &endTime); err != nil {
			return nil, fmt.Errorf("scan queue: %w", err)
		}
		q.EndTime = timestampFrom(endTime)
		queues = append(queues, q)
	}
	return queues, rows.Err()
}

func (s *postgresQueueSource) loadTickets(ctx context.Context) ([]ticketRecord, error) {
	const query = `
        SELECT t.queue_id, t.id, t.description, t.status, t.created_at,
               u.user_id, u.display_name, u.email
        FROM tickets t
        JOIN users u ON u.user_id = t.user_id
        ORDER BY t.queue_id, t.position, t.id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var records []ticketRecord
	for rows.Next() {
		var (
			rec       ticketRecord
			createdAt *time.Time
		)
		if err := rows.Scan(
			&rec.QueueID,
			&rec.Ticket.ID,
			&rec.Ticket.Description,
			&rec.Ticket.Status,
			&createdAt,
			&rec.Ticket.User.UserID,
			&rec.Ticket.User.DisplayName,
			&rec.Ticket.User.Email,
		); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		rec.Ticket.CreatedAt = timestampFrom(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// assembleQueues attaches tickets to their queues keeping both orders intact.
// Tickets referencing an unknown queue are ignored.
func assembleQueues(queues []domain.Queue, tickets []ticketRecord) []domain.Queue {
	byID := make(map[string]int, len(queues))
	for i, q := range queues {
		byID[q.ID] = i
	}
	for _, rec := range tickets {
		i, ok := byID[rec.QueueID]
		if !ok {
			continue
		}
		queues[i].Tickets = append(queues[i].Tickets, rec.Ticket)
	}
	for i := range queues {
		if queues[i].Tickets == nil {
			queues[i].Tickets = []domain.Ticket{}
		}
	}
	return queues
}

func timestampFrom(t *time.Time) domain.Timestamp {
	if t == nil {
		return domain.Timestamp{}
	}
	return domain.NewTimestamp(*t)
}
