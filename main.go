package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dojang-data/kick.report/internal/api"
	"github.com/dojang-data/kick.report/internal/config"
	"github.com/dojang-data/kick.report/internal/monitor"
	"github.com/dojang-data/kick.report/internal/storage/sqlite"
	"github.com/dojang-data/kick.report/internal/units"
	"github.com/dojang-data/kick.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "kick_sessions.db", "SQLite database path")
	configPath = flag.String("config", "", "Tuning config JSON (engine defaults when empty)")
	unitsFlag  = flag.String("units", units.MPS, "Display units for speed fields")
	debug      = flag.Bool("debug", false, "Mount /debug chart endpoints")
)

func main() {
	flag.Parse()

	log.Printf("kick.report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*unitsFlag) {
		log.Fatalf("Invalid units %q: must be one of %s", *unitsFlag, units.GetValidUnitsString())
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		log.Printf("Loaded tuning config from %s", *configPath)
	}

	db, err := sqlite.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(db, cfg, *unitsFlag).ServeMux()
	if *debug {
		monitor.NewWebServer(db).RegisterRoutes(mux)
		log.Print("Debug chart endpoints mounted under /debug/charts/")
	}

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		log.Printf("Listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}
