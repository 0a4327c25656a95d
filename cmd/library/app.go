package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/oteladapters"
	"github.com/AntonStoeckl/library-circulation-go/librarystore/sqlengine"
	"github.com/AntonStoeckl/library-circulation-go/reports"
	"github.com/AntonStoeckl/library-circulation-go/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/shell/connpool"
)

var version = "dev"

// settings are the values of the persistent command line flags.
type settings struct {
	configFile string
	envFiles   []string
	dbPath     string
	reportDir  string
}

// app holds everything a command needs, opened once per command invocation.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	logFile   *os.File
	providers *config.ObservabilityProviders
	pool      *connpool.Pool
	store     sqlengine.Store
	desk      *circulation.Desk
	reports   *reports.Generator
}

func openApp(ctx context.Context, s settings) (*app, error) {
	cfg, err := config.Load(s.configFile, s.envFiles...)
	if err != nil {
		return nil, err
	}

	if s.dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite3
		cfg.Database.Path = s.dbPath
	}

	a := &app{cfg: cfg}

	if err = a.openLog(); err != nil {
		return nil, err
	}

	if a.providers, err = config.NewObservabilityProviders(ctx, cfg.Telemetry, version); err != nil {
		a.close()
		return nil, fmt.Errorf("telemetry setup failed: %w", err)
	}

	if a.pool, err = connpool.Open(ctx, cfg.Database, connpool.WithLogger(a.logger)); err != nil {
		a.close()
		return nil, err
	}

	if err = a.pool.EnsureSchema(ctx); err != nil {
		a.close()
		return nil, err
	}

	storeOptions := []sqlengine.Option{sqlengine.WithLogger(a.logger)}
	deskOptions := []circulation.Option{circulation.WithLogger(a.logger)}

	if a.providers != nil {
		name := cfg.Telemetry.ServiceName
		metricsCollector := oteladapters.NewMetricsCollector(otel.Meter(name))
		tracingCollector := oteladapters.NewTracingCollector(otel.Tracer(name))
		contextualLogger := oteladapters.NewSlogBridgeLogger(name)

		storeOptions = append(storeOptions,
			sqlengine.WithMetrics(metricsCollector),
			sqlengine.WithTracing(tracingCollector),
			sqlengine.WithContextualLogger(contextualLogger),
		)
		deskOptions = append(deskOptions,
			circulation.WithMetrics(metricsCollector),
			circulation.WithTracing(tracingCollector),
			circulation.WithContextualLogger(contextualLogger),
		)
	}

	if a.store, err = a.pool.NewStore(storeOptions...); err != nil {
		a.close()
		return nil, err
	}

	if a.desk, err = circulation.NewDesk(a.store, deskOptions...); err != nil {
		a.close()
		return nil, err
	}

	generatorOptions := []reports.GeneratorOption{reports.WithLogger(a.logger)}
	if s.reportDir != "" {
		generatorOptions = append(generatorOptions, reports.WithOutputDir(s.reportDir))
	}
	a.reports = reports.NewGenerator(a.store, generatorOptions...)

	return a, nil
}

// openLog writes JSON records at the configured level to the log file.
func (a *app) openLog() error {
	level, err := a.cfg.Log.SlogLevel()
	if err != nil {
		return err
	}

	a.logFile, err = os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", a.cfg.Log.File, err)
	}

	a.logger = slog.New(slog.NewJSONHandler(a.logFile, &slog.HandlerOptions{Level: level}))

	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}

	if err := a.providers.Shutdown(); err != nil && a.logger != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err.Error())
	}

	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// fail logs err to the log file and returns it marked as already shown to the user.
func (a *app) fail(msg string, err error) error {
	a.logger.Error(msg, "error", err.Error())

	return reportedError{err: err}
}

// reportedError wraps an error that was already printed on the console.
type reportedError struct {
	err error
}

func (e reportedError) Error() string {
	return e.err.Error()
}

func (e reportedError) Unwrap() error {
	return e.err
}

func isReported(err error) bool {
	var reported reportedError

	return errors.As(err, &reported)
}
