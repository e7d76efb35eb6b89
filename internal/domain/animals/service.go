package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"animal-tracker/internal/platform/logger"
	"animal-tracker/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Synchronizer es el núcleo offline-first: escribe siempre en el store local,
// encola la mutación, y reconcilia con el remoto cuando hay conectividad
// usando last-write-wins por last_modified.
//
// Un solo mutex protege el par store local + cola: todas las operaciones son
// read-modify-write sobre la colección completa, así que sin esto dos
// mutaciones concurrentes se pisarían a nivel colección.
type Synchronizer struct {
	store   LocalStore
	queue   MutationQueue
	remote  RemoteGateway
	log     logger.Logger
	metrics *metrics.Metrics

	mu  sync.Mutex
	now func() time.Time
}

func NewSynchronizer(store LocalStore, queue MutationQueue, remote RemoteGateway, log logger.Logger, m *metrics.Metrics) *Synchronizer {
	if log == nil {
		log = logger.New(logger.Options{})
	}
	return &Synchronizer{
		store:   store,
		queue:   queue,
		remote:  remote,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Create registra un animal nuevo de forma local e inmediata: asigna UUID si
// falta, estampa owner, sync_status y last_modified, persiste el set completo
// y encola la mutación. Nunca toca la red.
//
// Un fallo de persistencia local sí se propaga: la durabilidad de la escritura
// offline es justamente la garantía que el caller vino a buscar.
func (s *Synchronizer) Create(ctx context.Context, ownerID string, rec Record) (Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Record{}, ErrInvalidInput
	}

	if strings.TrimSpace(rec.UUID) == "" {
		rec.UUID = uuid.NewString()
	}
	rec.OwnerID = ownerID
	rec.SyncStatus = StatusPendingCreate
	rec.LastModified = s.now().UTC().Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadAll(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load local records: %w", err)
	}
	current = append(current, rec)
	if err := s.store.SaveAll(ctx, current); err != nil {
		return Record{}, fmt.Errorf("save local records: %w", err)
	}
	if err := s.queue.Enqueue(ctx, ActionCreate, rec); err != nil {
		return Record{}, fmt.Errorf("enqueue create: %w", err)
	}

	return rec, nil
}

// Update modifica un animal existente por UUID. Si el UUID no está en el set
// local lo agrega igual (tolera divergencia entre cola y store). Nunca toca
// la red.
func (s *Synchronizer) Update(ctx context.Context, id string, rec Record) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrInvalidInput
	}

	rec.UUID = id
	rec.SyncStatus = StatusPendingUpdate
	// precisión de nanosegundos: dos mutaciones en el mismo segundo igual
	// quedan ordenadas por recencia en el merge
	rec.LastModified = s.now().UTC().Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadAll(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("load local records: %w", err)
	}

	replaced := false
	for i := range current {
		if current[i].UUID == id {
			if rec.OwnerID == "" {
				rec.OwnerID = current[i].OwnerID
			}
			current[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		current = append(current, rec)
	}

	if err := s.store.SaveAll(ctx, current); err != nil {
		return Record{}, fmt.Errorf("save local records: %w", err)
	}
	if err := s.queue.Enqueue(ctx, ActionUpdate, rec); err != nil {
		return Record{}, fmt.Errorf("enqueue update: %w", err)
	}

	return rec, nil
}

// Synchronize ejecuta el protocolo completo:
//  1. drena la cola de mutaciones contra el remoto (salvo remoteOnly)
//  2. trae el snapshot remoto del owner
//  3. mergea con el set local por last-write-wins
//  4. persiste el resultado y lo devuelve
//
// Cada paso degrada en vez de abortar: sin red, el resultado es el set local.
// Nunca devuelve error por fallas remotas.
func (s *Synchronizer) Synchronize(ctx context.Context, ownerID string, remoteOnly bool) ([]Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}

	s.metrics.SyncPass()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !remoteOnly {
		if err := s.processQueue(ctx); err != nil {
			// la cola queda intacta y se reintenta en el próximo pase;
			// el fetch remoto se intenta igual
			s.metrics.QueueDrainFailed()
			s.log.Warn("queue drain failed, keeping queue for retry", map[string]any{"error": err.Error()})
		}
	}

	remote, err := s.remote.FetchAll(ctx, ownerID)
	if err != nil {
		s.metrics.SyncDegraded()
		s.log.Warn("remote fetch failed, serving local data", map[string]any{"error": err.Error()})
		remote = nil
	}

	local, err := s.store.LoadAll(ctx)
	if err != nil {
		s.log.Error("local load failed during sync", map[string]any{"error": err.Error()})
		local = nil
	}

	merged := s.merge(local, remote)

	if err := s.store.SaveAll(ctx, merged); err != nil {
		// devolver el resultado correcto en memoria pesa más que esta
		// escritura secundaria
		s.log.Error("persisting merged records failed", map[string]any{"error": err.Error()})
	}

	return merged, nil
}

// Pending informa cuántas mutaciones esperan en la cola.
func (s *Synchronizer) Pending(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.queue.DrainAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// processQueue aplica las mutaciones pendientes: todos los creates en un solo
// batch, cada update por separado. Clear recién cuando todo el batch entró
// (at-least-once, sin ack parcial). Caller sostiene el mutex.
func (s *Synchronizer) processQueue(ctx context.Context) error {
	entries, err := s.queue.DrainAll(ctx)
	if err != nil {
		return fmt.Errorf("drain queue: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	var creates []Record
	var updates []Record
	for _, e := range entries {
		switch e.Action {
		case ActionCreate:
			creates = append(creates, e.Data)
		case ActionUpdate:
			updates = append(updates, e.Data)
		default:
			s.log.Warn("unknown queue action skipped", map[string]any{"action": string(e.Action), "uuid": e.Data.UUID})
		}
	}

	if len(creates) > 0 {
		if err := s.remote.InsertBatch(ctx, creates); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
	}
	for _, rec := range updates {
		if err := s.remote.UpdateOne(ctx, rec.UUID, rec); err != nil {
			return fmt.Errorf("update %s: %w", rec.UUID, err)
		}
	}

	if err := s.queue.Clear(ctx); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	s.metrics.QueueApplied(len(entries))

	s.markSynced(ctx, entries)
	return nil
}

// markSynced limpia sync_status de los registros cuya mutación ya entró al
// remoto. Best-effort: si falla, el próximo merge lo deja consistente igual.
func (s *Synchronizer) markSynced(ctx context.Context, drained []QueueEntry) {
	applied := make(map[string]struct{}, len(drained))
	for _, e := range drained {
		applied[e.Data.UUID] = struct{}{}
	}

	current, err := s.store.LoadAll(ctx)
	if err != nil {
		s.log.Warn("could not reload local records to clear sync status", map[string]any{"error": err.Error()})
		return
	}

	changed := false
	for i := range current {
		if _, ok := applied[current[i].UUID]; ok && current[i].SyncStatus != StatusSynced {
			current[i].SyncStatus = StatusSynced
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := s.store.SaveAll(ctx, current); err != nil {
		s.log.Warn("could not persist cleared sync status", map[string]any{"error": err.Error()})
	}
}

// merge arma el resultado por UUID, sembrado con el set local. Un registro
// remoto entra si su clave no existe localmente, o reemplaza completo al
// local si su last_modified es posterior. Sin merge a nivel de campos:
// gana un registro entero, tal cual.
func (s *Synchronizer) merge(local, remote []Record) []Record {
	byID := make(map[string]Record, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	for _, rec := range local {
		if _, seen := byID[rec.UUID]; !seen {
			order = append(order, rec.UUID)
		}
		byID[rec.UUID] = rec.Clone()
	}

	for _, rec := range remote {
		existing, ok := byID[rec.UUID]
		if !ok {
			byID[rec.UUID] = rec.Clone()
			order = append(order, rec.UUID)
			continue
		}
		if rec.ModifiedTime().After(existing.ModifiedTime()) {
			byID[rec.UUID] = rec.Clone()
			s.metrics.ConflictResolved()
		}
	}

	out := make([]Record, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
