package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"animal-tracker/internal/adapters/auth/gotrue"
	"animal-tracker/internal/ports/auth"
	"animal-tracker/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// sin AUTH_BASE_URL corre en modo dev (X-Debug-User-ID)
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_BASE_URL"); baseURL != "" {
		client, err := gotrue.NewClient(gotrue.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Fatalf("auth client: %v", err)
		}
		verifier = gotrue.NewVerifier(client)
	}

	r := router.NewRouter(router.Options{AuthVerifier: verifier})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // /sync puede esperar al remoto
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
