package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

// QueueSource yields the current snapshot of queues. Every call returns a
// freshly decoded slice the caller may keep.
type QueueSource interface {
	Snapshot(ctx context.Context) ([]domain.Queue, error)
}

type fileQueueSource struct {
	path string
}

// NewFileQueueSource reads snapshots from a JSON file on every call.
func NewFileQueueSource(path string) QueueSource {
	return &fileQueueSource{path: path}
}

func (s *fileQueueSource) Snapshot(ctx context.Context) ([]domain.Queue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return DecodeSnapshot(data)
}

// DecodeSnapshot accepts either a bare array of queues or an object with a
// "queues" array.
func DecodeSnapshot(data []byte) ([]domain.Queue, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []domain.Queue{}, nil
	}

	var queues []domain.Queue
	if data[0] == '{' {
		var wrapped struct {
			Queues []domain.Queue `json:"queues"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		queues = wrapped.Queues
	} else if err := json.Unmarshal(data, &queues); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if queues == nil {
		queues = []domain.Queue{}
	}
	return queues, nil
}

// StaticQueueSource serves a fixed snapshot; each call returns a deep copy.
type StaticQueueSource struct {
	Queues []domain.Queue
	Err    error
}

func (s *StaticQueueSource) Snapshot(ctx context.Context) ([]domain.Queue, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.Queue, len(s.Queues))
	for i, q := range s.Queues {
		q.Tickets = append([]domain.Ticket(nil), q.Tickets...)
		out[i] = q
	}
	return out, nil
}
