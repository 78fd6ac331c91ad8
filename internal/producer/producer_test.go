package producer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podpress/internal/assembly"
	"podpress/internal/config"
	"podpress/internal/intents"
	"podpress/internal/logging"
	"podpress/internal/prefs"
	"podpress/internal/producer"
	"podpress/internal/publish"
	"podpress/internal/studio"
)

// fakeStudio scripts the whole backend surface for session tests.
type fakeStudio struct {
	mu sync.Mutex

	hints *studio.IntentHints

	statusQueue []*studio.JobStatusResponse
	statusCalls int

	prepareCalls int
	publishCalls int
	published    chan struct{}
}

func newFakeStudio() *fakeStudio {
	return &fakeStudio{
		hints:     &studio.IntentHints{},
		published: make(chan struct{}, 4),
	}
}

func (f *fakeStudio) GetIntentHints(context.Context, string) (*studio.IntentHints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hints, nil
}

func (f *fakeStudio) ScanRetakes(context.Context, studio.ScanRequest) (*studio.ScanResponse, error) {
	return &studio.ScanResponse{}, nil
}

func (f *fakeStudio) PrepareCommands(context.Context, studio.PrepareRequest) (*studio.PrepareResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepareCalls++
	return &studio.PrepareResponse{Contexts: []studio.CommandContext{{CommandID: "c1", EndS: 3}}}, nil
}

func (f *fakeStudio) ExecuteCommand(_ context.Context, req studio.ExecuteRequest) (*studio.ExecutionResult, error) {
	return &studio.ExecutionResult{CommandID: req.CommandID, AudioURL: "tts/done.mp3"}, nil
}

func (f *fakeStudio) Synthesize(context.Context, studio.SynthesizeRequest) (*studio.SynthesizeResponse, error) {
	return &studio.SynthesizeResponse{Filename: "tts/synth.mp3"}, nil
}

func (f *fakeStudio) SubmitAssembly(context.Context, studio.SubmitRequest) (*studio.SubmitResponse, error) {
	return &studio.SubmitResponse{JobID: "j1", EpisodeID: "e1"}, nil
}

func (f *fakeStudio) GetJobStatus(context.Context, string) (*studio.JobStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index := f.statusCalls
	if index >= len(f.statusQueue) {
		index = len(f.statusQueue) - 1
	}
	f.statusCalls++
	return f.statusQueue[index], nil
}

func (f *fakeStudio) Publish(context.Context, studio.PublishRequest) (*studio.PublishResponse, error) {
	f.mu.Lock()
	f.publishCalls++
	f.mu.Unlock()
	f.published <- struct{}{}
	return &studio.PublishResponse{}, nil
}

func (f *fakeStudio) GetPublishStatus(context.Context, string) (*studio.PublishStatusResponse, error) {
	return &studio.PublishStatusResponse{}, nil
}

func (f *fakeStudio) Precheck(context.Context, studio.PrecheckRequest) (*studio.PrecheckResult, error) {
	return &studio.PrecheckResult{Allowed: true, MinutesRemaining: 120}, nil
}

func (f *fakeStudio) GetUsage(context.Context) (*studio.UsageSnapshot, error) {
	return &studio.UsageSnapshot{EpisodesRemaining: 5, MaxEpisodes: 10, MinutesRemaining: 120, CreditsBalance: 1000}, nil
}

func (f *fakeStudio) ResolveCoverArt(context.Context, string) (*studio.CoverArtResponse, error) {
	return &studio.CoverArtResponse{URL: "https://cdn/art.png"}, nil
}

var _ studio.API = (*fakeStudio)(nil)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Studio.APIToken = "test-token"
	cfg.Assembly.PollIntervalSeconds = 1
	cfg.Assembly.PollTimeoutSeconds = 10
	cfg.Detection.RetryDelayMS = 1
	return &cfg
}

func TestFullSessionAssemblesAndAutoPublishes(t *testing.T) {
	backend := newFakeStudio()
	backend.hints = &studio.IntentHints{CommandCount: 1}
	backend.statusQueue = []*studio.JobStatusResponse{
		{Status: studio.JobProcessing},
		{Status: studio.JobProcessed, Episode: &studio.Episode{ID: "e1", Title: "Episode One"}},
	}
	store := prefs.NewMemoryStore()
	p := producer.New(testConfig(), backend, store, nil, producer.Ports{}, logging.NewNop())

	ctx := context.Background()
	requestID := p.StartSession("ep1.mp3", "t1", "")
	if requestID == "" {
		t.Fatal("expected a request id")
	}
	p.TranscriptReady(ctx)

	view := p.Intents()
	if !view.Ready {
		t.Fatal("intent detection must be ready")
	}
	if view.Retake.Answer != intents.AnswerNo || view.Command.Count != 1 {
		t.Fatalf("unexpected intents: %+v", view)
	}

	if err := p.SetMetadata(ctx, assembly.Metadata{Title: "Episode One", TagsText: "a, b\nc"}, 60, publish.Decision{Mode: publish.ModeNow}); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	if _, ok, _ := store.Get(ctx, prefs.DraftKey("ep1.mp3")); !ok {
		t.Fatal("draft recovery state must be persisted at metadata entry")
	}

	if err := p.Produce(ctx); err != nil {
		t.Fatalf("produce: %v", err)
	}

	select {
	case <-backend.published:
	case <-time.After(10 * time.Second):
		t.Fatal("auto-publish never fired")
	}

	// Let the settlement bookkeeping finish.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if snapshot := p.Status(); snapshot.Completed && snapshot.EpisodeID == "e1" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never completed: %+v", p.Status())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, ok, _ := store.Get(ctx, prefs.DraftKey("ep1.mp3")); ok {
		t.Fatal("draft recovery state must be cleared on completion")
	}
	backend.mu.Lock()
	publishCalls := backend.publishCalls
	backend.mu.Unlock()
	if publishCalls != 1 {
		t.Fatalf("expected exactly 1 publish call, got %d", publishCalls)
	}
}

func TestProduceBlocksBeforeMetadataPrecheck(t *testing.T) {
	backend := newFakeStudio()
	p := producer.New(testConfig(), backend, prefs.NewMemoryStore(), nil, producer.Ports{}, logging.NewNop())

	p.StartSession("ep1.mp3", "t1", "")
	err := p.Produce(context.Background())
	if !errors.Is(err, assembly.ErrPrecheckPending) {
		t.Fatalf("expected precheck-pending, got %v", err)
	}
}

func TestCancelStopsWatchingWithoutPublishing(t *testing.T) {
	backend := newFakeStudio()
	backend.statusQueue = []*studio.JobStatusResponse{{Status: studio.JobProcessing}}
	p := producer.New(testConfig(), backend, prefs.NewMemoryStore(), nil, producer.Ports{}, logging.NewNop())

	ctx := context.Background()
	p.StartSession("ep1.mp3", "t1", "")
	p.TranscriptReady(ctx)
	if err := p.SetMetadata(ctx, assembly.Metadata{Title: "Episode One"}, 60, publish.Decision{Mode: publish.ModeNow}); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	if err := p.Produce(ctx); err != nil {
		t.Fatalf("produce: %v", err)
	}

	p.Cancel(ctx)
	if snapshot := p.Status(); snapshot.State != assembly.StateIdle {
		t.Fatalf("expected idle after cancel, got %q", snapshot.State)
	}
	select {
	case <-backend.published:
		t.Fatal("cancelled session must not publish")
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestOperationsWithoutSessionFail(t *testing.T) {
	backend := newFakeStudio()
	p := producer.New(testConfig(), backend, prefs.NewMemoryStore(), nil, producer.Ports{}, logging.NewNop())

	if _, err := p.ScanRetakes(context.Background()); !errors.Is(err, producer.ErrNoSession) {
		t.Fatalf("expected no-session error, got %v", err)
	}
	if _, err := p.PrepareCommands(context.Background()); !errors.Is(err, producer.ErrNoSession) {
		t.Fatalf("expected no-session error, got %v", err)
	}
}
