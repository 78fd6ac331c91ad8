package daemonrun

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"podpress/internal/config"
	"podpress/internal/daemon"
	"podpress/internal/ipc"
	"podpress/internal/logging"
	"podpress/internal/notifications"
	"podpress/internal/prefs"
	"podpress/internal/producer"
	"podpress/internal/studio"
)

// Options configures daemon process runtime behavior.
type Options struct {
	SocketPath string
	LogLevel   string
}

// Run starts the podpress daemon runtime loop and blocks until shutdown.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, "podpressd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := prefs.Open(cfg)
	if err != nil {
		logger.Error("open preference store", logging.Error(err))
		return err
	}
	defer store.Close()

	clientOpts := []studio.Option{}
	if cfg.Studio.RequestTimeout > 0 {
		clientOpts = append(clientOpts, studio.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Studio.RequestTimeout) * time.Second,
		}))
	}
	backend, err := studio.New(cfg.Studio.BaseURL, cfg.Studio.APIToken, clientOpts...)
	if err != nil {
		logger.Error("init studio client", logging.Error(err))
		return err
	}

	notifier := notifications.NewService(cfg)
	p := producer.New(cfg, backend, store, notifier, producer.Ports{}, logger)

	d, err := daemon.New(cfg, store, p, notifier, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := strings.TrimSpace(opts.SocketPath)
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that no other podpress daemon is running"),
		)
	}

	<-signalCtx.Done()
	logger.Info("podpress daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
