// Command opsd runs the diving-club operations service: it wires the
// domain services onto either Postgres or in-memory storage and exposes
// the ambient health/metrics HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	app "github.com/divingclub/opscore/internal/app"
	"github.com/divingclub/opscore/internal/app/httpapi"
	"github.com/divingclub/opscore/internal/app/storage/postgres"
	"github.com/divingclub/opscore/internal/platform/database"
	"github.com/divingclub/opscore/internal/platform/migrations"
	"github.com/divingclub/opscore/internal/runtime"
	"github.com/divingclub/opscore/pkg/config"
	"github.com/divingclub/opscore/pkg/logger"
	"github.com/divingclub/opscore/pkg/version"
)

func main() {
	dsnFlag := flag.String("dsn", "", "PostgreSQL DSN (overrides the configuration file and DATABASE_URL)")
	runMigrations := flag.Bool("migrate", true, "apply embedded database migrations on startup (ignored for in-memory)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	log.WithField("env", runtime.Env()).Info("opsd starting " + version.FullVersion())

	rootCtx := context.Background()
	dsnVal := resolveDSN(*dsnFlag, cfg.Database.URL)

	stores := app.Stores{}

	if dsnVal != "" {
		conn, err := database.Open(rootCtx, dsnVal)
		if err != nil {
			log.WithError(err).Fatal("connect to postgres")
		}
		if *runMigrations && cfg.Database.MigrateOnStart {
			if err := migrations.Apply(rootCtx, conn); err != nil {
				log.WithError(err).Fatal("apply migrations")
			}
		}
		store := postgres.New(conn)
		stores = app.Stores{
			Persons:        store,
			Groups:         store,
			Sessions:       store,
			Outings:        store,
			Questionnaires: store,
			EmailJobs:      store,
			Competency:     store,
			Palanquees:     store,
			LevelTemplates: store,
			DiveDirectors:  store,
		}
		defer conn.Close()
	} else {
		log.Warn("no database configured; running with in-memory storage")
	}

	application, err := app.New(stores, log, app.WithBaseURL(cfg.MagicLink.BaseURL))
	if err != nil {
		log.WithError(err).Fatal("initialise application")
	}

	if err := application.Start(rootCtx); err != nil {
		log.WithError(err).Fatal("start application")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: httpapi.NewRouter(),
	}

	go func() {
		log.WithField("addr", addr).Info("opsd listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("stop application")
	}
}

// resolveDSN prefers an explicit flag, then the configuration file/env
// value decoded by pkg/config, in that order.
func resolveDSN(flagDSN, configuredDSN string) string {
	if trimmed := strings.TrimSpace(flagDSN); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(configuredDSN)
}
