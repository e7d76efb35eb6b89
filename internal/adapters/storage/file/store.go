package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"animal-tracker/internal/domain/animals"
)

// RecordStore persiste el set local como un array JSON en disco.
// El archivo se reemplaza entero en cada SaveAll (write temp + rename),
// así una caída en el medio deja el set anterior intacto.
type RecordStore struct {
	mu   sync.Mutex
	path string
}

func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

func (s *RecordStore) LoadAll(ctx context.Context) ([]animals.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []animals.Record
	if err := loadJSON(s.path, &recs); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return recs, nil
}

func (s *RecordStore) SaveAll(ctx context.Context, recs []animals.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recs == nil {
		recs = []animals.Record{}
	}
	if err := saveJSON(s.path, recs); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// Queue persiste la cola de mutaciones como array JSON de {action, data}.
// Archivo ausente o vacío es cola vacía, no error.
type Queue struct {
	mu   sync.Mutex
	path string
}

func NewQueue(path string) *Queue {
	return &Queue{path: path}
}

func (q *Queue) Enqueue(ctx context.Context, action animals.Action, rec animals.Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var entries []animals.QueueEntry
	if err := loadJSON(q.path, &entries); err != nil {
		return fmt.Errorf("load queue: %w", err)
	}
	entries = append(entries, animals.QueueEntry{Action: action, Data: rec})
	if err := saveJSON(q.path, entries); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}

func (q *Queue) DrainAll(ctx context.Context) ([]animals.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var entries []animals.QueueEntry
	if err := loadJSON(q.path, &entries); err != nil {
		return nil, fmt.Errorf("load queue: %w", err)
	}
	return entries, nil
}

func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := saveJSON(q.path, []animals.QueueEntry{}); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

func loadJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

// saveJSON escribe a un archivo temporal en el mismo directorio y renombra:
// rename es atómico dentro del mismo filesystem.
func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
