package statistics

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"animal-tracker/internal/domain/animals"
	"animal-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RecordSource es lo único que este módulo necesita del Synchronizer.
type RecordSource interface {
	Synchronize(ctx context.Context, ownerID string, remoteOnly bool) ([]animals.Record, error)
}

func RegisterRoutes(r chi.Router, src RecordSource) {
	r.Get("/statistics", herdStatsHandler(src))
	r.Get("/animals/{animalUUID}/statistics", animalStatsHandler(src))
}

func herdStatsHandler(src RecordSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recs, err := src.Synchronize(r.Context(), claims.UserID, false)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		writeJSON(w, http.StatusOK, Herd(animals.Enrich(recs, now), now))
	}
}

func animalStatsHandler(src RecordSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recs, err := src.Synchronize(r.Context(), claims.UserID, false)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		animalUUID := chi.URLParam(r, "animalUUID")
		stats, found := ForAnimal(animalUUID, animals.Enrich(recs, time.Now()))
		if !found {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (animals/statistics); extraer un helper compartido recién cuando se repita más.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
