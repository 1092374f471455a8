package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/nishajha1234/mgnrega-backend/config"
	"github.com/nishajha1234/mgnrega-backend/datagov"
	"github.com/nishajha1234/mgnrega-backend/handlers"
	"github.com/nishajha1234/mgnrega-backend/middleware"
	"github.com/nishajha1234/mgnrega-backend/service"
	"github.com/nishajha1234/mgnrega-backend/store"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if settings.DataGovAPIKey == "" {
		log.Printf("Warning: DATA_GOV_API_KEY is not set; remote fetches will fail")
	}

	log.Printf("Opening record store at %s", settings.DBPath)
	st, err := store.Open(settings.DBPath)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer st.Close()

	client := datagov.NewClient(settings.DataGovBaseURL, settings.DataGovAPIKey)
	svc := service.New(st, client, settings.StateName)

	r := mux.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: settings.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"Origin",
			"X-Requested-With",
		},
		MaxAge: 86400,
	})

	r.Use(corsHandler.Handler)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(gorillahandlers.CompressHandler)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "MGNREGA backend is running (real live data)",
		})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	handlers.New(svc).Register(api)
	log.Println("Routes registered successfully")

	srv := &http.Server{
		Handler:           r,
		Addr:              ":" + settings.Port,
		WriteTimeout:      30 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server running on port %s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
}
