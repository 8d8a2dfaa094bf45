package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/api"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/catalog"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/config"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/detector"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/events"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/logging"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/monitor"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/session"
)

const (
	shutdownGrace  = 10 * time.Second
	connectTimeout = 5 * time.Second
)

// #region main
func main() {
	configPath := flag.String("config", envOr("PHYSIO_CONFIG", ""), "path to YAML config")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openCatalog(ctx, cfg.Catalog, logging.Component(logger, "catalog"))
	if err != nil {
		return err
	}
	defer store.Close()

	pool, err := detector.NewPool(cfg.Detector.PoolSize, detectorFactory(cfg.Detector, logger), logging.Component(logger, "detector"))
	if err != nil {
		return fmt.Errorf("start detector pool: %w", err)
	}
	defer pool.Close()

	mon := monitor.New(pool, cfg.Detector.HealthInterval, logger)
	if err := mon.Start(); err != nil {
		return fmt.Errorf("start health monitor: %w", err)
	}
	defer mon.Stop()

	publisher := openPublisher(cfg.Events, logger)
	defer publisher.Close()

	side, err := exercise.ParseSide(cfg.Session.DefaultSide, exercise.Left)
	if err != nil {
		return err
	}
	srv := api.NewServer(api.Deps{
		Analyzer: session.NewAnalyzer(pool, session.Config{GateUnknownExercises: cfg.Session.GateUnknownExercises}),
		Plans:    store,
		Events:   publisher,
		Health:   mon,
		Logger:   logger,
	}, api.Options{
		DefaultSide:   side,
		DetectTimeout: cfg.Detector.Timeout,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           http.TimeoutHandler(srv.Handler(), cfg.Server.RequestTimeout, `{"detail":"request timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("physio coach listening",
			"addr", cfg.Server.Addr,
			"detector", cfg.Detector.Mode,
			"pool_size", pool.Size(),
			"catalog", cfg.Catalog.Driver,
		)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// #endregion run

// #region wiring
func openCatalog(ctx context.Context, cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Store, error) {
	store, err := catalog.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	n, err := store.Seed(ctx, catalog.Builtin())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog ready", "driver", cfg.Driver, "seeded_exercises", n)

	if cfg.ImportPath != "" {
		res, err := store.ImportXLSX(ctx, catalog.DefaultImportConfig(cfg.ImportPath))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("import plans: %w", err)
		}
		for _, e := range res.Errors {
			logger.Warn("plan import row skipped", "detail", e)
		}
		logger.Info("plans imported", "path", cfg.ImportPath, "rows", res.Rows, "plans", res.Plans, "inserted", res.Inserted)
	}
	return store, nil
}

func detectorFactory(cfg config.DetectorConfig, logger *slog.Logger) detector.Factory {
	if cfg.Mode == "subprocess" {
		pc := detector.ProcessConfig{Command: cfg.Command[0], Args: cfg.Command[1:]}
		return func() (detector.Backend, error) {
			d, err := detector.StartProcessDetector(pc, logging.Component(logger, "pose-worker"))
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	return func() (detector.Backend, error) {
		d, err := detector.NewGRPCDetector(cfg.Addr)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// openPublisher connects to the broker when one is configured. A broker that
// is down at startup is retried in the background by the client.
func openPublisher(cfg config.EventsConfig, logger *slog.Logger) events.Publisher {
	if cfg.Broker == "" {
		return events.Nop{}
	}
	p := events.NewMQTTPublisher(events.MQTTConfig{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Topic:    cfg.Topic,
		QoS:      cfg.QoS,
	}, logger)
	if err := p.Connect(connectTimeout); err != nil {
		logger.Warn("mqtt not connected at startup", "error", err)
	}
	return p
}

// #endregion wiring

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
