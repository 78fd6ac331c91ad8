package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"podpress/internal/assembly"
	"podpress/internal/command"
	"podpress/internal/config"
	"podpress/internal/intents"
	"podpress/internal/logging"
	"podpress/internal/notifications"
	"podpress/internal/prefs"
	"podpress/internal/producer"
	"podpress/internal/publish"
	"podpress/internal/retake"
	"podpress/internal/studio"
)

// Daemon coordinates the production session and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    prefs.Store
	producer *producer.Producer
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Session      producer.Snapshot
	Usage        *studio.UsageSnapshot
	PrefsDBPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store prefs.Store, p *producer.Producer, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || p == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, producer, and logger")
	}
	if notifier == nil {
		notifier = notifications.NewNop()
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		producer: p,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock and marks the daemon ready.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podpress daemon instance is already running")
	}

	d.running.Store(true)
	d.logger.Info("podpress daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels any session watch and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.producer.Cancel(context.Background())
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("podpress daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if closer, ok := d.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// StartSession begins a production session for a new source file.
func (d *Daemon) StartSession(filename, templateID, voiceID string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.New("source filename is required")
	}
	return d.producer.StartSession(filename, templateID, voiceID), nil
}

// TranscriptReady runs intent detection for the session source.
func (d *Daemon) TranscriptReady(ctx context.Context) {
	d.producer.TranscriptReady(ctx)
}

// Intents returns the current intent classification.
func (d *Daemon) Intents() intents.View {
	return d.producer.Intents()
}

// ConfirmIntent records the user's answer for one category.
func (d *Daemon) ConfirmIntent(category intents.Category, answer intents.Answer) {
	d.producer.ConfirmIntent(category, answer)
}

// ScanRetakes runs the retake scan for the session source.
func (d *Daemon) ScanRetakes(ctx context.Context) (retake.Result, error) {
	return d.producer.ScanRetakes(ctx)
}

// FinishRetakeReview closes the scan review with the confirmed cuts.
func (d *Daemon) FinishRetakeReview(cutsMS [][2]int64) {
	d.producer.FinishRetakeReview(cutsMS)
}

// PrepareCommands returns prepared spoken command contexts.
func (d *Daemon) PrepareCommands(ctx context.Context) ([]studio.CommandContext, error) {
	return d.producer.PrepareCommands(ctx)
}

// ExecuteCommand resolves one spoken command.
func (d *Daemon) ExecuteCommand(ctx context.Context, params command.ExecuteParams) error {
	return d.producer.ExecuteCommand(ctx, params)
}

// SetMetadata records the episode metadata and publish decision.
func (d *Daemon) SetMetadata(ctx context.Context, meta assembly.Metadata, durationSeconds float64, decision publish.Decision) error {
	return d.producer.SetMetadata(ctx, meta, durationSeconds, decision)
}

// SetPendingArtwork records an artwork upload to resolve at submission time.
func (d *Daemon) SetPendingArtwork(uploadID string) error {
	return d.producer.SetPendingArtwork(uploadID)
}

// Produce submits the assembly job for the current session.
func (d *Daemon) Produce(ctx context.Context) (producer.Snapshot, error) {
	if err := d.producer.Produce(ctx); err != nil {
		return producer.Snapshot{}, err
	}
	return d.producer.Status(), nil
}

// Cancel stops watching the current session locally.
func (d *Daemon) Cancel(ctx context.Context) {
	d.producer.Cancel(ctx)
}

// PublishManually publishes the completed episode with the given decision.
func (d *Daemon) PublishManually(ctx context.Context, decision publish.Decision) (publish.Result, error) {
	return d.producer.PublishManually(ctx, decision)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Session:      d.producer.Status(),
		PrefsDBPath:  prefs.DBPath(d.cfg),
		LockFilePath: d.lockPath,
	}
	if usage, ok := d.producer.Usage(); ok {
		status.Usage = &usage
	}
	return status
}
