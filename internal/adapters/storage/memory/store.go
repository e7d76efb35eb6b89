package memory

import (
	"context"
	"sync"

	"animal-tracker/internal/domain/animals"
)

// RecordStore guarda el set local de registros en memoria. Para dev y tests;
// no sobrevive reinicios, cosa que los adapters file/sqlite sí garantizan.
type RecordStore struct {
	mu   sync.RWMutex
	recs []animals.Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

func (s *RecordStore) LoadAll(ctx context.Context) ([]animals.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]animals.Record, len(s.recs))
	for i, r := range s.recs {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *RecordStore) SaveAll(ctx context.Context, recs []animals.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]animals.Record, len(recs))
	for i, r := range recs {
		copied[i] = r.Clone()
	}
	s.recs = copied
	return nil
}
