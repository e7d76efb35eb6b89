package memory

import (
	"context"
	"sync"

	"animal-tracker/internal/domain/animals"
)

// Queue es la cola de mutaciones en memoria, FIFO estricto.
type Queue struct {
	mu      sync.Mutex
	entries []animals.QueueEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(ctx context.Context, action animals.Action, rec animals.Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, animals.QueueEntry{Action: action, Data: rec.Clone()})
	return nil
}

func (q *Queue) DrainAll(ctx context.Context) ([]animals.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]animals.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out, nil
}

func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = nil
	return nil
}
