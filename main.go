// Command curvetraced is the trend-line detection service: it persists
// detection runs in SQLite and serves the HTTP API, with optional admin
// debug routes for live SQL and database backups.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/terrane-data/curvetrace/internal/api"
	"github.com/terrane-data/curvetrace/internal/config"
	"github.com/terrane-data/curvetrace/internal/store"
	"github.com/terrane-data/curvetrace/internal/units"
	"github.com/terrane-data/curvetrace/internal/version"
)

var (
	listen       = flag.String("listen", "", "HTTP listen address (overrides config)")
	dbFile       = flag.String("db", "", "Path to the SQLite database file (overrides config)")
	configPath   = flag.String("config", "", "Path to a JSON service config (default: built-in defaults)")
	defaultUnits = flag.String("units", units.M, "Default length units for API responses")
	enableAdmin  = flag.Bool("admin", false, "Mount admin debug routes regardless of config")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

// Main
func main() {
	// The migrate subcommand manages the schema without starting the
	// daemon; it takes its own flags after the action words.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrate(os.Args[2:])
		return
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("curvetraced %s\n", version.String())
		return
	}

	if !units.IsValid(*defaultUnits) {
		log.Fatalf("Invalid units %q (valid: %s)", *defaultUnits, units.GetValidUnitsString())
	}

	cfg := loadServiceConfig(*configPath)
	addr := cfg.GetListenAddr()
	if *listen != "" {
		addr = *listen
	}
	dbPath := cfg.GetDatabasePath()
	if *dbFile != "" {
		dbPath = *dbFile
	}

	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Database ready at %s", dbPath)

	// Create a wait group for the HTTP server routine
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the API handlers
		srv := api.NewServer(db, *defaultUnits, cfg.GetRequestTimeout())
		mux.Handle("/api/", srv.ServeMux())

		// mount the admin debugging routes (SQL console, db backup)
		if *enableAdmin || cfg.GetEnableAdmin() {
			db.AttachAdminRoutes(mux)
			log.Println("Admin debug routes enabled on /debug/")
		}

		server := &http.Server{
			Addr:    addr,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("Starting HTTP server on %s", addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// loadServiceConfig reads the config file at path, or the shipped
// defaults when no path is given. A missing defaults file is fine; an
// explicitly named file that fails to load is fatal.
func loadServiceConfig(path string) *config.ServiceConfig {
	if path == "" {
		if cfg, err := config.LoadConfig(config.DefaultConfigPath); err == nil {
			return cfg
		}
		return config.EmptyServiceConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", path, err)
	}
	return cfg
}

// runMigrate dispatches `curvetraced migrate <command> [options]`. Action
// words come first and the -db flag follows them, so the action list is
// split off before flag parsing.
func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dbPath := fs.String("db", "curvetrace.db", "Path to database file")

	words, flags := splitMigrateArgs(args)
	if err := fs.Parse(flags); err != nil {
		log.Fatalf("Failed to parse migrate flags: %v", err)
	}

	store.RunMigrateCommand(words, *dbPath)
}

// splitMigrateArgs separates leading action words from the trailing flags.
func splitMigrateArgs(args []string) (words, flags []string) {
	i := 0
	for i < len(args) && !strings.HasPrefix(args[i], "-") {
		i++
	}
	return args[:i], args[i:]
}
