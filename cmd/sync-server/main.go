package main

import (
	"log"
	"net/http"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/gate"
	"meal-planner/internal/metrics"
	"meal-planner/internal/server"
	"meal-planner/internal/store"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	documentStore := store.New(db.SQL, cfg.DocumentKey)
	metricsStore := metrics.NewStore(db.SQL)
	documentGate := gate.New(documentStore)

	srv := server.New(documentGate, metricsStore, cfg.AuthSecret)

	log.Printf("Sync server listening on %s (document key %q)", cfg.ListenAddr, cfg.DocumentKey)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
