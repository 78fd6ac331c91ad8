package daemon_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"podpress/internal/config"
	"podpress/internal/daemon"
	"podpress/internal/logging"
	"podpress/internal/prefs"
	"podpress/internal/producer"
	"podpress/internal/studio"
)

type stubStudio struct{}

func (stubStudio) GetIntentHints(context.Context, string) (*studio.IntentHints, error) {
	return &studio.IntentHints{}, nil
}
func (stubStudio) ScanRetakes(context.Context, studio.ScanRequest) (*studio.ScanResponse, error) {
	return &studio.ScanResponse{}, nil
}
func (stubStudio) PrepareCommands(context.Context, studio.PrepareRequest) (*studio.PrepareResponse, error) {
	return &studio.PrepareResponse{}, nil
}
func (stubStudio) ExecuteCommand(context.Context, studio.ExecuteRequest) (*studio.ExecutionResult, error) {
	return &studio.ExecutionResult{}, nil
}
func (stubStudio) Synthesize(context.Context, studio.SynthesizeRequest) (*studio.SynthesizeResponse, error) {
	return &studio.SynthesizeResponse{}, nil
}
func (stubStudio) SubmitAssembly(context.Context, studio.SubmitRequest) (*studio.SubmitResponse, error) {
	return &studio.SubmitResponse{JobID: "j1"}, nil
}
func (stubStudio) GetJobStatus(context.Context, string) (*studio.JobStatusResponse, error) {
	return &studio.JobStatusResponse{Status: studio.JobProcessing}, nil
}
func (stubStudio) Publish(context.Context, studio.PublishRequest) (*studio.PublishResponse, error) {
	return &studio.PublishResponse{}, nil
}
func (stubStudio) GetPublishStatus(context.Context, string) (*studio.PublishStatusResponse, error) {
	return &studio.PublishStatusResponse{}, nil
}
func (stubStudio) Precheck(context.Context, studio.PrecheckRequest) (*studio.PrecheckResult, error) {
	return &studio.PrecheckResult{Allowed: true}, nil
}
func (stubStudio) GetUsage(context.Context) (*studio.UsageSnapshot, error) {
	return &studio.UsageSnapshot{}, nil
}
func (stubStudio) ResolveCoverArt(context.Context, string) (*studio.CoverArtResponse, error) {
	return &studio.CoverArtResponse{}, nil
}

var _ studio.API = stubStudio{}

func newTestDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := prefs.NewMemoryStore()
	p := producer.New(cfg, stubStudio{}, store, nil, producer.Ports{}, logging.NewNop())
	d, err := daemon.New(cfg, store, p, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Studio.APIToken = "test-token"
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = filepath.Join(cfg.Paths.StateDir, "logs")
	return &cfg
}

func TestSingleInstanceLock(t *testing.T) {
	cfg := testConfig(t)
	first := newTestDaemon(t, cfg)
	second := newTestDaemon(t, cfg)

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("second instance must be rejected while the lock is held")
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start after release: %v", err)
	}
}

func TestStatusReportsSessionAndPaths(t *testing.T) {
	cfg := testConfig(t)
	d := newTestDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	requestID, err := d.StartSession("ep1.mp3", "t1", "")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running")
	}
	if status.Session.RequestID != requestID || status.Session.Filename != "ep1.mp3" {
		t.Fatalf("unexpected session: %+v", status.Session)
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("unexpected lock path: %q", status.LockFilePath)
	}
	if status.PrefsDBPath != prefs.DBPath(cfg) {
		t.Fatalf("unexpected prefs path: %q", status.PrefsDBPath)
	}
}

func TestStartSessionRequiresFilename(t *testing.T) {
	d := newTestDaemon(t, testConfig(t))
	if _, err := d.StartSession("  ", "t1", ""); err == nil {
		t.Fatal("expected error for blank filename")
	}
}

func TestOperationsDelegateSessionErrors(t *testing.T) {
	d := newTestDaemon(t, testConfig(t))
	if _, err := d.ScanRetakes(context.Background()); !errors.Is(err, producer.ErrNoSession) {
		t.Fatalf("expected no-session error, got %v", err)
	}
}

func TestNotificationWithoutTopic(t *testing.T) {
	d := newTestDaemon(t, testConfig(t))
	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent || message == "" {
		t.Fatalf("expected not-sent with explanation, got sent=%v message=%q", sent, message)
	}
}
