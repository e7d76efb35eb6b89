package statistics

import (
	"sort"
	"time"

	"animal-tracker/internal/domain/animals"
)

// Funciones puras sobre registros ya sincronizados y enriquecidos.
// Este paquete consume al Synchronizer, nunca al revés.

type BullStat struct {
	Bull    string  `json:"sperma"`
	Total   int     `json:"toplam"`
	Success int     `json:"basarili"`
	Rate    float64 `json:"oran"` // porcentaje 0-100
}

type HerdStats struct {
	Total    int        `json:"toplam_hayvan_sayisi"`
	Cows     int        `json:"inek_sayisi"`
	Heifers  int        `json:"duve_sayisi"`
	Pregnant int        `json:"gebe_sayisi"`
	Bulls    []BullStat `json:"boga_basari_oranlari"`
}

type AnimalStats struct {
	InseminationCount int    `json:"toplam_tohumlama_sayisi"`
	ClassEstimate     string `json:"sinif_tahmini"`
	DisplayName       string `json:"gosterim_adi"`
}

// Herd calcula las métricas generales del rodeo: totales por clase, preñadas
// y tasa de éxito por toro (ordenada de mejor a peor).
func Herd(recs []animals.Record, now time.Time) HerdStats {
	stats := HerdStats{Total: len(recs), Bulls: []BullStat{}}

	byBull := map[string]*BullStat{}
	for _, rec := range recs {
		switch rec.Class {
		case animals.ClassCow:
			stats.Cows++
		case animals.ClassHeifer:
			stats.Heifers++
		}

		pregnant := animals.IsPregnant(rec, now)
		if pregnant {
			stats.Pregnant++
		}

		// el éxito del toro se mide sobre la última inseminación de cada
		// animal; el análisis por historial completo queda para después
		bull := lastBull(rec)
		if bull == "" {
			continue
		}
		bs, ok := byBull[bull]
		if !ok {
			bs = &BullStat{Bull: bull}
			byBull[bull] = bs
		}
		bs.Total++
		if pregnant {
			bs.Success++
		}
	}

	for _, bs := range byBull {
		if bs.Total > 0 {
			bs.Rate = float64(bs.Success) / float64(bs.Total) * 100
		}
		stats.Bulls = append(stats.Bulls, *bs)
	}
	sort.Slice(stats.Bulls, func(i, j int) bool {
		if stats.Bulls[i].Rate != stats.Bulls[j].Rate {
			return stats.Bulls[i].Rate > stats.Bulls[j].Rate
		}
		return stats.Bulls[i].Bull < stats.Bulls[j].Bull
	})

	return stats
}

// ForAnimal devuelve las métricas de un animal puntual por UUID.
func ForAnimal(uuid string, recs []animals.Record) (AnimalStats, bool) {
	for _, rec := range recs {
		if rec.UUID == uuid {
			return AnimalStats{
				InseminationCount: len(rec.Inseminations),
				ClassEstimate:     rec.Class,
				DisplayName:       rec.DisplayName(),
			}, true
		}
	}
	return AnimalStats{}, false
}

func lastBull(rec animals.Record) string {
	var bull string
	var lastDate *time.Time
	for i := range rec.Inseminations {
		ins := rec.Inseminations[i]
		if ins.Date == nil {
			if bull == "" {
				bull = ins.Bull
			}
			continue
		}
		if lastDate == nil || ins.Date.After(*lastDate) {
			lastDate = ins.Date
			bull = ins.Bull
		}
	}
	return bull
}
