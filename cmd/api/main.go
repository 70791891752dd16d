package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ctmes/ProfTwo/internal/analyze"
	"github.com/ctmes/ProfTwo/internal/config"
	database "github.com/ctmes/ProfTwo/internal/db"
	"github.com/ctmes/ProfTwo/internal/enhance"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/pipeline"
	"github.com/ctmes/ProfTwo/internal/storage"

	// Use an alias to prevent naming collisions with the 'server' variable
	apiserver "github.com/ctmes/ProfTwo/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ProfTwo API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()
	// Seed the initial admin so registration has a caller on a fresh DB
	database.SeedAdminUser(db.DB, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)

	// 4. Storage, library, event bus
	store := storage.New(cfg)
	lib := library.New(db.DB)
	bus := events.NewBus()

	// 5. Processing pipeline with the real AI clients
	pipeline.RegisterMetrics()
	proc := pipeline.NewProcessor(cfg, lib, store, enhance.New(cfg), analyze.New(cfg), bus)

	// 6. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := apiserver.New(cfg, db, store, lib, proc, bus)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)

	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
