package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"animal-tracker/internal/domain/animals"

	_ "modernc.org/sqlite"
)

// Adapter sqlite para el store local y la cola: la opción durable para el
// cliente de campo. Los registros se guardan como documentos JSON (el modelo
// ya tolera campos desconocidos) con el uuid como clave.

const schema = `
CREATE TABLE IF NOT EXISTS animals (
	uuid TEXT PRIMARY KEY,
	doc  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sync_queue (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	doc    TEXT NOT NULL
);
`

// Open abre (o crea) la base local y asegura el esquema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// un solo writer: sqlite serializa igual, y así evitamos SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) LoadAll(ctx context.Context) ([]animals.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM animals ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var out []animals.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec animals.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveAll reemplaza la colección completa en una transacción: o entra el set
// nuevo entero o queda el anterior.
func (s *RecordStore) SaveAll(ctx context.Context, recs []animals.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM animals`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, rec := range recs {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.UUID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO animals (uuid, doc) VALUES (?, ?)`, rec.UUID, string(doc)); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.UUID, err)
		}
	}

	return tx.Commit()
}

type Queue struct {
	db *sql.DB
}

func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

func (q *Queue) Enqueue(ctx context.Context, action animals.Action, rec animals.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode queue entry: %w", err)
	}
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO sync_queue (action, doc) VALUES (?, ?)`, string(action), string(doc)); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

func (q *Queue) DrainAll(ctx context.Context) ([]animals.QueueEntry, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT action, doc FROM sync_queue ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("drain queue: %w", err)
	}
	defer rows.Close()

	var out []animals.QueueEntry
	for rows.Next() {
		var action, doc string
		if err := rows.Scan(&action, &doc); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		var rec animals.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode queue entry: %w", err)
		}
		out = append(out, animals.QueueEntry{Action: animals.Action(action), Data: rec})
	}
	return out, rows.Err()
}

func (q *Queue) Clear(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM sync_queue`); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}
