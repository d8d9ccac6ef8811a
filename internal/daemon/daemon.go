package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"scriptqueue/internal/config"
	"scriptqueue/internal/dashboard"
	"scriptqueue/internal/deadline"
	"scriptqueue/internal/identity"
	"scriptqueue/internal/logging"
	"scriptqueue/internal/notifications"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/watch"
)

// Daemon wires the store, identity service, dashboard snapshot, deadline
// scanner, and HTTP API together and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	broker   *watch.Broker
	identity *identity.Service
	snapshot *dashboard.Store
	notifier notifications.Service
	scanner  *deadline.Notifier
	cron     *cron.Cron
	server   *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The queue store is
// opened here; Close releases it.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}

	broker := watch.NewBroker()
	store.SetNotifier(broker)

	ident := identity.NewService(store.DB(), cfg)
	notifier := notifications.NewService(cfg)

	snapshot, err := dashboard.New(context.Background(), store, broker, logging.NewComponentLogger(logger, "dashboard"))
	if err != nil {
		broker.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build dashboard snapshot: %w", err)
	}

	scanner := deadline.NewNotifier(store, notifier,
		logging.NewComponentLogger(logger, "deadline"), cfg.Deadlines.NearDueDays)

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		broker:   broker,
		identity: ident,
		snapshot: snapshot,
		notifier: notifier,
		scanner:  scanner,
		cron:     cron.New(),
		lockPath: cfg.LockFilePath(),
		lock:     flock.New(cfg.LockFilePath()),
	}
	d.server = newAPIServer(cfg, d, logging.NewComponentLogger(logger, "api-server"))
	return d, nil
}

// Start acquires the instance lock, runs an initial deadline scan, and
// launches the scan schedule and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another scriptqueue daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.scanner.Scan(runCtx); err != nil {
		d.logger.Warn("initial deadline scan failed", logging.Error(err))
	}

	schedule := fmt.Sprintf("@every %dm", d.cfg.Deadlines.ScanIntervalMinutes)
	if _, err := d.cron.AddFunc(schedule, func() {
		if err := d.scanner.Scan(runCtx); err != nil {
			d.logger.Warn("deadline scan failed", logging.Error(err))
			if nerr := d.notifier.NotifyError(runCtx, err, "deadline scan"); nerr != nil {
				d.logger.Debug("error notification failed", logging.Error(nerr))
			}
		}
	}); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("schedule deadline scan: %w", err)
	}
	d.cron.Start()

	if err := d.server.start(runCtx); err != nil {
		d.cron.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("scriptqueue daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop halts background work and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	<-d.cron.Stop().Done()
	d.server.stop()
	d.snapshot.Close()
	d.broker.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("scriptqueue daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	QueueDBPath  string
	LockFilePath string
	APIAddr      string
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		APIAddr:      d.server.addr(),
	}
}

// Addr reports the API listen address once Start has succeeded.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Store exposes the queue store for in-process callers like the CLI.
func (d *Daemon) Store() *queue.Store {
	return d.store
}
