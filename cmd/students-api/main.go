// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Build the student store (memory or sqlite) and load the seed list
//  4. Register all HTTP routes behind the request-id and logging middleware
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/student-roster/internal/config"
	"github.com/aanand-mishra/student-roster/internal/http/handlers/home"
	"github.com/aanand-mishra/student-roster/internal/http/handlers/student"
	"github.com/aanand-mishra/student-roster/internal/http/middleware"
	"github.com/aanand-mishra/student-roster/internal/storage"
	"github.com/aanand-mishra/student-roster/internal/storage/memory"
	"github.com/aanand-mishra/student-roster/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env, os.Stdout)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the program only sees the storage.Storage interface.
	store, closeStore, err := newStore(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	seeded, err := seed(store, cfg.Seed)
	if err != nil {
		log.Error("failed to seed storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("backend", cfg.Storage.Backend),
		slog.Int("seeded", seeded))

	// ── 4. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: newRouter(log, store),

		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// newStore builds the backend named in cfg.Storage.Backend. The returned
// func releases its resources and is always safe to call.
func newStore(cfg *config.Config) (storage.Storage, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.BackendMemory, "":
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// seed adds each configured student through the normal store path, so the
// seed list gets ids 1..n and the same validation as API requests.
// A store that already holds students (a reopened sqlite file) is left
// alone. Returns how many students were added.
func seed(store storage.Storage, students []config.SeedStudent) (int, error) {
	existing, err := store.ListStudents()
	if err != nil {
		return 0, fmt.Errorf("seed: list: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, s := range students {
		if _, err := store.AddStudent(s.NewStudent()); err != nil {
			return i, fmt.Errorf("seed entry %d: %w", i, err)
		}
	}
	return len(students), nil
}

// newRouter wires every route behind the shared middleware.
// Outermost first: RequestID → Logger → JSONErrors → mux.
func newRouter(log *slog.Logger, store storage.Storage) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", home.Handler())
	student.Register(router, log, store)

	return middleware.RequestID(middleware.Logger(log)(middleware.JSONErrors(router)))
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
