package animals

import (
	"context"
	"strings"
	"time"

	"animal-tracker/internal/platform/dates"
)

// RecordFromRow convierte una fila cruda (header -> texto de celda) en un
// Record. Las columnas vienen del registro veterinario web o de un archivo
// subido: kupeno (caravana), irki (raza), Sperma (toro), tarih (fecha de
// inseminación, a veces relativa tipo "(N gun once)"), Gebe_mi (fecha de
// confirmación de gebelik), Not. La búsqueda ignora mayúsculas porque los
// archivos llegan con headers normalizados a minúsculas.
func RecordFromRow(row map[string]string, now time.Time) Record {
	cell := cellLookup(row)

	rec := Record{
		FarmTag:  cell("kupeno"),
		StateTag: cell("belgeno"),
		Breed:    cell("irki"),
		Note:     cell("not"),
	}
	rec.PregnancyConfirmed = dates.ParseFlexible(cell("gebe_mi"), now)

	bull := cell("sperma")
	if d := dates.ParseFlexible(cell("tarih"), now); d != nil || bull != "" {
		rec.Inseminations = append(rec.Inseminations, Insemination{
			Date: d,
			Bull: bull,
		})
	}

	return rec
}

func cellLookup(row map[string]string) func(key string) string {
	lowered := make(map[string]string, len(row))
	for k, v := range row {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return func(key string) string {
		return strings.TrimSpace(lowered[key])
	}
}

// Import crea un registro por cada fila scrapeada, pasando por el camino
// offline-first normal (store local + cola). Devuelve cuántos entraron.
// Una fila sin ningún identificador se saltea en vez de cortar el lote.
func (s *Synchronizer) Import(ctx context.Context, ownerID string, rows []map[string]string) (int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, ErrInvalidInput
	}

	imported := 0
	for _, row := range rows {
		rec := RecordFromRow(row, s.now())
		if rec.FarmTag == "" && rec.StateTag == "" && rec.CollarNo == "" {
			s.log.Warn("skipping scraped row without identifiers", map[string]any{"row": row})
			continue
		}
		if _, err := s.Create(ctx, ownerID, rec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
