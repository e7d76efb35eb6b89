package router

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"

	"animal-tracker/internal/adapters/fileload"
	scrapeadapter "animal-tracker/internal/adapters/scrape"
	mem "animal-tracker/internal/adapters/storage/memory"
	pg "animal-tracker/internal/adapters/storage/postgres"

	"animal-tracker/internal/adapters/storage/file"
	sqlitestore "animal-tracker/internal/adapters/storage/sqlite"
	"animal-tracker/internal/domain/animals"
	"animal-tracker/internal/domain/statistics"
	"animal-tracker/internal/middleware"
	"animal-tracker/internal/platform/httpclient"
	"animal-tracker/internal/platform/logger"
	"animal-tracker/internal/platform/metrics"
	"animal-tracker/internal/ports/auth"
	"animal-tracker/internal/ports/scrape"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev con X-Debug-User-ID)

	// Opcional: si viene, el gateway remoto usa Postgres. Si no, se intenta
	// DB_DSN por env y como último recurso un remoto in-memory (dev).
	DB *sql.DB

	// Overrides opcionales de persistencia local (tests); si faltan se
	// resuelven por env: LOCAL_STORE=file|sqlite|memory + DATA_DIR.
	Store animals.LocalStore
	Queue animals.MutationQueue

	Scraper    scrape.RowSource
	FileParser scrape.FileParser
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	store, queue := opts.Store, opts.Queue
	if store == nil || queue == nil {
		store, queue = localPersistenceFromEnv(log)
	}

	var remote animals.RemoteGateway
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err != nil {
				log.Warn("could not open remote store, falling back to in-memory", map[string]any{"error": err.Error()})
			} else {
				db = opened
			}
		}
	}
	if db != nil {
		remote = pg.NewGateway(db)
	} else {
		remote = mem.NewGateway()
	}

	scraper := opts.Scraper
	if scraper == nil {
		scraper = scrapeadapter.NewTableScraper(httpclient.DefaultTimeout)
	}
	files := opts.FileParser
	if files == nil {
		files = fileload.NewParser()
	}

	svc := animals.NewSynchronizer(store, queue, remote, log, m)

	animals.RegisterRoutes(r, svc, scraper, files)
	statistics.RegisterRoutes(r, svc)

	return r
}

// localPersistenceFromEnv arma store+cola según LOCAL_STORE:
// file (default), sqlite, o memory. Cualquier problema degrada a memory
// con un warning: mejor un dev levantado que un arranque caído.
func localPersistenceFromEnv(log logger.Logger) (animals.LocalStore, animals.MutationQueue) {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	switch os.Getenv("LOCAL_STORE") {
	case "memory":
		return mem.NewRecordStore(), mem.NewQueue()
	case "sqlite":
		db, err := sqlitestore.Open(filepath.Join(dataDir, "animal_tracker.db"))
		if err != nil {
			log.Warn("could not open sqlite store, using in-memory", map[string]any{"error": err.Error()})
			return mem.NewRecordStore(), mem.NewQueue()
		}
		return sqlitestore.NewRecordStore(db), sqlitestore.NewQueue(db)
	default:
		return file.NewRecordStore(filepath.Join(dataDir, "animal_records.json")),
			file.NewQueue(filepath.Join(dataDir, "sync_queue.json"))
	}
}
