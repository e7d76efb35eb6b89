package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"animal-tracker/internal/middleware"
	"animal-tracker/internal/ports/scrape"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Synchronizer, rows scrape.RowSource, files scrape.FileParser) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc))
		ar.Patch("/{animalUUID}", updateAnimalHandler(svc))
	})

	r.Post("/sync", syncHandler(svc))
	r.Post("/import", importHandler(svc, rows, files))
}

// El wire format es el Record mismo (tags turcos + Extra pasante), así que
// los handlers decodifican directo al modelo. Los campos reservados que el
// cliente mande se pisan en el service, no hace falta filtrarlos acá.

func createAnimalHandler(svc *Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		created, err := svc.Create(r.Context(), claims.UserID, rec)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func updateAnimalHandler(svc *Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalUUID := chi.URLParam(r, "animalUUID")

		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if rec.OwnerID == "" {
			rec.OwnerID = claims.UserID
		}

		updated, err := svc.Update(r.Context(), animalUUID, rec)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func listAnimalsHandler(svc *Synchronizer) http.HandlerFunc {
	// GET /animals corre un pase de sincronización completo y devuelve el
	// set mergeado y enriquecido; offline degrada a datos locales.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		remoteOnly := r.URL.Query().Get("remote_only") == "true"

		recs, err := svc.Synchronize(r.Context(), claims.UserID, remoteOnly)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, Enrich(recs, time.Now()))
	}
}

type syncResponse struct {
	Records int `json:"records"`
	Pending int `json:"pending"`
}

func syncHandler(svc *Synchronizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		recs, err := svc.Synchronize(r.Context(), claims.UserID, false)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		pending, err := svc.Pending(r.Context())
		if err != nil {
			pending = -1 // cola ilegible; el count es informativo, no corta
		}

		writeJSON(w, http.StatusOK, syncResponse{Records: len(recs), Pending: pending})
	}
}

type importRequest struct {
	URL string `json:"url"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// importHandler acepta dos formas: un body JSON {url} que se scrapea, o un
// multipart con campo `file` (csv/json) que se parsea localmente. Ambas
// terminan en el mismo pipeline de ingesta.
func importHandler(svc *Synchronizer, rows scrape.RowSource, files scrape.FileParser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var fetched []map[string]string

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if files == nil {
				http.Error(w, "file import not configured", http.StatusNotImplemented)
				return
			}
			f, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file field required", http.StatusBadRequest)
				return
			}
			defer f.Close()

			fetched, err = files.ParseRows(header.Filename, f)
			if err != nil {
				http.Error(w, "parse failed: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else {
			if rows == nil {
				http.Error(w, "import not configured", http.StatusNotImplemented)
				return
			}
			var req importRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
				http.Error(w, "url required", http.StatusBadRequest)
				return
			}

			var err error
			fetched, err = rows.Fetch(r.Context(), req.URL)
			if err != nil {
				// fallo del colaborador externo: se reporta, no se reintenta
				http.Error(w, "fetch failed: "+err.Error(), http.StatusBadGateway)
				return
			}
		}

		n, err := svc.Import(r.Context(), claims.UserID, fetched)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, importResponse{Imported: n})
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo
// (animals/statistics); extraer un helper compartido recién cuando se repita más.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
