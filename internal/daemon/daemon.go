package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/inertia-app/inertia/internal/api"
	"github.com/inertia-app/inertia/internal/app/momentum"
	"github.com/inertia-app/inertia/internal/health"
	_ "github.com/inertia-app/inertia/internal/infra/metrics" // Register Prometheus metrics
	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// Daemon is the Inertia runtime. It wires the store, the momentum
// engine, and the HTTP server together.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Writer *momentum.Writer
	Gaps   *momentum.GapDetector
	Server *api.Server
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	configureLogging(cfg.Logging)

	dir := cfg.Storage.Dir
	if dir == "" {
		dir = inertiaHome()
	}
	db, err := sqlite.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	writer := momentum.NewWriter(db, momentum.WriterOptions{
		QualifyingMinutes:    cfg.Engine.QualifyingExerciseMinutes,
		DefaultTargetMinutes: cfg.Engine.DefaultTargetMinutes,
	})
	gaps := momentum.NewGapDetector(db)

	srv := api.NewServer(db, writer, gaps)
	srv.SetHealth(health.NewChecker(db, dir))
	if cfg.API.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Writer: writer,
		Gaps:   gaps,
		Server: srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	log.WithField("addr", addr).Info("inertia serving")
	if d.Config.API.Prometheus {
		log.WithField("url", fmt.Sprintf("http://%s/metrics", addr)).Info("metrics enabled")
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

func configureLogging(cfg LoggingConfig) {
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
