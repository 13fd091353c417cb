package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/terrain3d/backend/internal/cache"
	"github.com/terrain3d/backend/internal/config"
	"github.com/terrain3d/backend/internal/database"
	"github.com/terrain3d/backend/internal/elevation"
	"github.com/terrain3d/backend/internal/influx"
	"github.com/terrain3d/backend/internal/logging"
	"github.com/terrain3d/backend/internal/monitor"
	intOtel "github.com/terrain3d/backend/internal/otel"
	"github.com/terrain3d/backend/internal/pipeline"
	"github.com/terrain3d/backend/internal/server"
)

const serviceName = "terrain3d"

func main() {
	configDir := flag.String("config", ".", "directory containing terrain3d.cfg.json")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	sessionStart := time.Now()

	if err := config.Load(configDir); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, serviceName, sessionStart),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := logging.Setup(serviceName, logFile)

	otelProvider, err := setupOtel(log, logsDir, sessionStart)
	if err != nil {
		return fmt.Errorf("setting up otel: %w", err)
	}

	db := setupDatabase(log)
	flux := setupInflux(log, logsDir, sessionStart)

	terrains := cache.NewTerrainCache(viper.GetInt("cache.capacity"))
	acquirer := elevation.NewAcquirer(
		elevation.NewClient(log.With().Str("component", "elevation").Logger()),
		log.With().Str("component", "elevation").Logger(),
	)

	svc, err := pipeline.NewService(pipeline.Dependencies{
		Source: acquirer,
		Cache:  terrains,
		DB:     db,
		Influx: flux,
		Logger: log.With().Str("component", "pipeline").Logger(),
	})
	if err != nil {
		return fmt.Errorf("creating pipeline service: %w", err)
	}

	mon := monitor.NewService(monitor.Dependencies{
		Influx:   flux,
		Cache:    terrains,
		Logger:   log.With().Str("component", "monitor").Logger(),
		Interval: 30 * time.Second,
	})
	mon.Start()

	app := server.New(&server.Dependencies{
		Pipeline: svc,
		Cache:    terrains,
		DB:       db,
		Influx:   flux,
		Logger:   log.With().Str("component", "server").Logger(),
	})

	addr := viper.GetString("server.host") + ":" + viper.GetString("server.port")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server listening")
		errCh <- app.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	mon.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
	if otelProvider != nil {
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down otel provider")
		}
	}
	if db != nil && db.ShouldSaveLocal {
		db.SqliteFilePath = filepath.Join(logsDir, "terrain3d.db")
		if err := db.DumpMemoryToDisk(); err != nil {
			log.Error().Err(err).Msg("Error dumping in-memory DB to disk")
		}
	}
	if flux != nil && flux.Client != nil {
		flux.Client.Close()
	}

	log.Info().Msg("Shutdown complete")
	return nil
}

// setupOtel registers the global meter provider when enabled.
func setupOtel(log zerolog.Logger, logsDir string, sessionStart time.Time) (*intOtel.Provider, error) {
	if !viper.GetBool("otel.enabled") {
		return nil, nil
	}

	metricFile, err := os.OpenFile(
		filepath.Join(logsDir, fmt.Sprintf("%s_metrics_%s.json", serviceName, sessionStart.Format("2006-01-02_15-04-05"))),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening metric file: %w", err)
	}

	provider, err := intOtel.New(intOtel.Config{
		Enabled:      true,
		ServiceName:  serviceName,
		Interval:     time.Duration(viper.GetInt("otel.intervalSec")) * time.Second,
		MetricWriter: metricFile,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Msg("OTel meter provider initialized")
	return provider, nil
}

// setupDatabase connects the history store. A dead database is logged
// and tolerated: generation still works, history is skipped.
func setupDatabase(log zerolog.Logger) *database.Manager {
	db := database.NewManager(log.With().Str("component", "database").Logger())
	if err := db.Connect(); err != nil {
		log.Warn().Err(err).Msg("Database unavailable, generation history disabled")
		return db
	}
	if err := db.Setup(); err != nil {
		log.Warn().Err(err).Msg("Database migration failed, generation history disabled")
	}
	return db
}

// setupInflux connects the metrics sink, falling back to the gzip
// backup file writer when the server is unreachable.
func setupInflux(log zerolog.Logger, logsDir string, sessionStart time.Time) *influx.Manager {
	backupPath := filepath.Join(logsDir,
		fmt.Sprintf("%s_influx_backup_%s.gz", serviceName, sessionStart.Format("2006-01-02_15-04-05")))

	flux := influx.NewManager(log.With().Str("component", "influx").Logger(), backupPath)
	if err := flux.Connect(); err != nil {
		log.Warn().Err(err).Msg("InfluxDB disabled")
		return nil
	}
	return flux
}
