package memory

import (
	"context"
	"fmt"
	"sync"

	"animal-tracker/internal/domain/animals"
)

// Gateway simula el row-store remoto en memoria (tabla animals por uuid).
// Sirve para correr el stack entero sin DB_DSN.
type Gateway struct {
	mu     sync.RWMutex
	byUUID map[string]animals.Record
}

func NewGateway() *Gateway {
	return &Gateway{byUUID: map[string]animals.Record{}}
}

func (g *Gateway) FetchAll(ctx context.Context, ownerID string) ([]animals.Record, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]animals.Record, 0)
	for _, rec := range g.byUUID {
		if rec.OwnerID == ownerID {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (g *Gateway) InsertBatch(ctx context.Context, recs []animals.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// all-or-nothing: validar todo el lote antes de escribir nada
	for _, rec := range recs {
		if rec.UUID == "" {
			return fmt.Errorf("%w: record without uuid", animals.ErrRemoteRejected)
		}
		if _, exists := g.byUUID[rec.UUID]; exists {
			return fmt.Errorf("%w: duplicate uuid %s", animals.ErrRemoteRejected, rec.UUID)
		}
	}
	for _, rec := range recs {
		g.byUUID[rec.UUID] = stripLocalFields(rec)
	}
	return nil
}

func (g *Gateway) UpdateOne(ctx context.Context, uuid string, rec animals.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byUUID[uuid]; !exists {
		return fmt.Errorf("%w: unknown uuid %s", animals.ErrRemoteRejected, uuid)
	}
	rec.UUID = uuid
	g.byUUID[uuid] = stripLocalFields(rec)
	return nil
}

func (g *Gateway) Upsert(ctx context.Context, rec animals.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rec.UUID == "" {
		return fmt.Errorf("%w: record without uuid", animals.ErrRemoteRejected)
	}
	g.byUUID[rec.UUID] = stripLocalFields(rec)
	return nil
}

// stripLocalFields: sync_status es estado del cliente, el remoto no lo guarda.
func stripLocalFields(rec animals.Record) animals.Record {
	out := rec.Clone()
	out.SyncStatus = animals.StatusSynced
	return out
}
