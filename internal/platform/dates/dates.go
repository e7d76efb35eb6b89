package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Los registros llegan de fuentes distintas (scraper, archivos, remoto) y cada
// una escribe fechas a su manera. Acá centralizamos el parseo tolerante.

var relativeDaysRe = regexp.MustCompile(`\((\d+)\s*gun\s*once\)`)

// ParseFlexible intenta interpretar una fecha en los formatos que aparecen
// en los datos reales:
//   - "(N gun once)": N días antes de `now` (formato relativo del registro web)
//   - "DD.MM.YYYY" (con o sin hora después de un espacio)
//   - "YYYY-MM-DD"
//   - RFC 3339
//
// Devuelve nil si no se pudo interpretar; el caller decide qué hacer con eso.
func ParseFlexible(s string, now time.Time) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := relativeDaysRe.FindStringSubmatch(s); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			t := now.AddDate(0, 0, -days)
			return &t
		}
	}

	if t, err := time.Parse("02.01.2006", strings.SplitN(s, " ", 2)[0]); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}

	return nil
}

// ParseTimestamp interpreta un timestamp ISO-8601 (con o sin zona horaria).
// Si no se puede parsear devuelve el instante cero, que en el merge
// last-write-wins equivale a "lo más viejo posible".
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// isoformat() de otros clientes puede venir sin zona
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
