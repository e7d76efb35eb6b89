package animals

import (
	"fmt"
	"sort"
	"time"
)

const (
	// GestationPeriodDays es la gestación bovina estándar.
	GestationPeriodDays = 285

	// calvingGapDays: un hueco mayor a ~6 meses entre inseminaciones
	// consecutivas indica que hubo un parto en el medio.
	calvingGapDays = 180
)

const (
	ClassCow    = "İnek" // vaca: ya parió al menos una vez
	ClassHeifer = "Düve" // vaquillona: sin partos registrados
)

// Textos de estado de gestación que consume la UI. En turco porque así los
// muestra la app del cliente.
const (
	statusUnknownDate = "Tohumlama Tarihi Bilinmiyor"
	statusBirthPassed = "Doğum Gerçekleşti/Geçti"
	statusConfirmed   = "Gebelik Onaylandı"
	statusWaiting     = "Tohumlandı, Gebelik Bekleniyor"
)

// EstimateClass deduce İnek/Düve a partir del historial de inseminaciones:
// si entre dos inseminaciones consecutivas hay más de 180 días, asumimos que
// el animal parió y fue inseminado de nuevo, o sea que es vaca.
func EstimateClass(inseminationDates []time.Time) string {
	if len(inseminationDates) <= 1 {
		return ClassHeifer
	}

	sorted := make([]time.Time, len(inseminationDates))
	copy(sorted, inseminationDates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	for i := 0; i < len(sorted)-1; i++ {
		gap := sorted[i+1].Sub(sorted[i]).Hours() / 24
		if gap > calvingGapDays {
			return ClassCow
		}
	}
	return ClassHeifer
}

// PregnancyStatusText arma el texto de estado según cuánto falta para la
// fecha esperada de parto. Lejos del parto, una fecha de confirmación ya
// pasada distingue "confirmada" de "esperando confirmación".
func PregnancyStatusText(expectedBirth, confirmed *time.Time, now time.Time) string {
	if expectedBirth == nil {
		return statusUnknownDate
	}

	daysLeft := int(expectedBirth.Sub(now).Hours() / 24)
	switch {
	case daysLeft < 0:
		return statusBirthPassed
	case daysLeft <= 20:
		return fmt.Sprintf("Doğuma SON 20 GÜN! (%d gün kaldı)", daysLeft)
	case daysLeft <= 60:
		return fmt.Sprintf("Doğuma SON 2 AY! (%d gün kaldı)", daysLeft)
	case confirmed != nil && !confirmed.After(now):
		return statusConfirmed
	default:
		return statusWaiting
	}
}

// Enrich calcula los campos derivados (clase, fecha esperada de parto, texto
// de gestación) sobre copias de los registros. Lo invocan los consumidores
// del Synchronizer, nunca el Synchronizer mismo: el motor de sync no opina
// sobre semántica de dominio.
func Enrich(recs []Record, now time.Time) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		enriched := rec.Clone()

		var insemDates []time.Time
		for _, ins := range enriched.Inseminations {
			if ins.Date != nil {
				insemDates = append(insemDates, *ins.Date)
			}
		}
		enriched.Class = EstimateClass(insemDates)

		if last := enriched.LastInsemination(); last != nil {
			expected := last.AddDate(0, 0, GestationPeriodDays)
			enriched.ExpectedBirth = &expected
		} else {
			enriched.ExpectedBirth = nil
		}
		enriched.PregnancyText = PregnancyStatusText(enriched.ExpectedBirth, enriched.PregnancyConfirmed, now)

		out = append(out, enriched)
	}
	return out
}

// IsPregnant: hay fecha esperada de parto y todavía no pasó.
func IsPregnant(rec Record, now time.Time) bool {
	return rec.ExpectedBirth != nil && !rec.ExpectedBirth.Before(now)
}
