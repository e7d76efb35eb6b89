package animals

import (
	"context"
	"errors"
)

var (
	// ErrRemoteUnavailable: red caída, timeout, HTTP 5xx. Siempre recuperable
	// reintentando en el próximo pase de sincronización.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteRejected: el remoto rechazó la escritura (constraint, validación).
	// La entrada queda en cola y se reintenta hasta que alguien intervenga.
	ErrRemoteRejected = errors.New("remote store rejected write")
)

// LocalStore es la persistencia local del set completo de registros.
// SaveAll reemplaza la colección entera de forma atómica; LoadAll sobre un
// backing vacío o inexistente devuelve lista vacía, nunca error.
type LocalStore interface {
	LoadAll(ctx context.Context) ([]Record, error)
	SaveAll(ctx context.Context, recs []Record) error
}

// MutationQueue es el log durable de mutaciones locales pendientes.
// DrainAll lee sin limpiar; Clear se invoca solo después de aplicar
// con éxito todas las entradas del último DrainAll.
type MutationQueue interface {
	Enqueue(ctx context.Context, action Action, rec Record) error
	DrainAll(ctx context.Context) ([]QueueEntry, error)
	Clear(ctx context.Context) error
}

// RemoteGateway es el único componente que hace I/O de red.
// Sin retries ni backoff acá: la política de reintento vive en la cola.
type RemoteGateway interface {
	FetchAll(ctx context.Context, ownerID string) ([]Record, error)
	InsertBatch(ctx context.Context, recs []Record) error
	UpdateOne(ctx context.Context, uuid string, rec Record) error
	Upsert(ctx context.Context, rec Record) error
}
