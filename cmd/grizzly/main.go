// Command grizzly is a thin CLI around Database: it wires flags to a
// Config and drives snapshot save/load and the refresh scheduler's
// status server. It is explicitly not the SQL REPL/engine that sits on
// top of Grizzly's storage core — that remains out of scope here,
// analogous to how admin/cmd/admin stays a tool around the indexer
// rather than a query surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/malbeclabs/grizzly/pkg/database"
	"github.com/malbeclabs/grizzly/pkg/logger"
	"github.com/malbeclabs/grizzly/pkg/server"
)

// Set by LDFLAGS.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort: a missing .env file is normal outside local dev.
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	dbNameFlag := flag.String("name", "grizzly", "database name (or set GRIZZLY_DB_NAME env var)")
	stateDirFlag := flag.String("state-dir", "", "directory for snapshot/delta state (or set GRIZZLY_STATE_DIR env var)")
	loadFlag := flag.Bool("load", false, "load state-dir's snapshot/delta chain into the database before serving")
	saveFlag := flag.Bool("save", false, "save the database's current tables to state-dir and exit")
	serveFlag := flag.Bool("serve", false, "start the health/readiness/metrics server")
	listenAddrFlag := flag.String("listen-addr", "0.0.0.0:8090", "status server listen address (or set GRIZZLY_LISTEN_ADDR env var)")
	flag.Parse()

	if env := os.Getenv("GRIZZLY_DB_NAME"); env != "" {
		*dbNameFlag = env
	}
	if env := os.Getenv("GRIZZLY_STATE_DIR"); env != "" {
		*stateDirFlag = env
	}
	if env := os.Getenv("GRIZZLY_LISTEN_ADDR"); env != "" {
		*listenAddrFlag = env
	}

	log := logger.New(*verboseFlag)
	db := database.New(*dbNameFlag, log)

	if *loadFlag {
		if *stateDirFlag == "" {
			return fmt.Errorf("--state-dir is required for --load")
		}
		if err := db.LoadIncrementalState(*stateDirFlag); err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		log.Info("grizzly: loaded state", "dir", *stateDirFlag, "tables", len(db.ListTables()))
	}

	if *saveFlag {
		if *stateDirFlag == "" {
			return fmt.Errorf("--state-dir is required for --save")
		}
		if err := db.SaveIncrementalState(*stateDirFlag); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		log.Info("grizzly: saved state", "dir", *stateDirFlag)
		return nil
	}

	if *serveFlag {
		return serve(log, db, *listenAddrFlag)
	}

	return nil
}

func serve(log *slog.Logger, db *database.Database, listenAddr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv, err := server.New(server.Config{
		Logger:     log,
		ListenAddr: listenAddr,
		Database:   db,
		VersionInfo: server.VersionInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
