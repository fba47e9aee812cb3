package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"inkwell/internal/boot"
	"inkwell/internal/config"
	"inkwell/internal/logging"
)

// ErrAlreadyRunning is returned when another inkwelld holds the lock.
var ErrAlreadyRunning = errors.New("another inkwelld instance is already running")

// Daemon enforces single-instance execution and serves a booted server.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lockPath string
	pidPath  string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	PIDPath  string
}

// New constructs a daemon for cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		pidPath:  cfg.PIDPath(),
		lock:     flock.New(lockPath),
	}, nil
}

// Acquire takes the instance lock and writes the pid file.
func (d *Daemon) Acquire() error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("ensure data directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	if err := writePIDFile(d.pidPath); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("write pid file: %w", err)
	}
	d.running.Store(true)
	d.logger.Info("instance lock acquired",
		logging.String(logging.FieldEventType, "daemon_lock_acquired"),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Serve serves ready until ctx is cancelled, then closes it.
func (d *Daemon) Serve(ctx context.Context, ready *boot.ReadyServer) error {
	if !d.running.Load() {
		return errors.New("daemon lock not held")
	}
	if ready == nil {
		return errors.New("daemon requires a booted server")
	}
	defer ready.Close()
	return ready.ListenAndServe(ctx)
}

// Release removes the pid file and drops the lock.
func (d *Daemon) Release() {
	if !d.running.Load() {
		return
	}
	if err := os.Remove(d.pidPath); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove pid file", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("instance lock released", logging.String(logging.FieldEventType, "daemon_lock_released"))
}

// Status reports this daemon's state.
func (d *Daemon) Status() Status {
	status := Status{Running: d.running.Load(), LockPath: d.lockPath, PIDPath: d.pidPath}
	if status.Running {
		status.PID = os.Getpid()
	}
	return status
}

// Probe inspects the lock and pid file of the daemon configured by cfg
// without taking ownership.
func Probe(cfg *config.Config) Status {
	status := Status{LockPath: cfg.LockPath(), PIDPath: cfg.PIDPath()}
	if _, err := os.Stat(status.LockPath); err != nil {
		return status
	}
	probe := flock.New(status.LockPath)
	ok, err := probe.TryLock()
	if err != nil {
		return status
	}
	if ok {
		_ = probe.Unlock()
		return status
	}
	status.Running = true
	if pid, err := readPIDFile(status.PIDPath); err == nil {
		status.PID = pid
	}
	return status
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
