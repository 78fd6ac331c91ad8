package assembly_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"podpress/internal/assembly"
	"podpress/internal/logging"
	"podpress/internal/prefs"
	"podpress/internal/studio"
)

type scriptedStatusAPI struct {
	mu        sync.Mutex
	responses []statusResponse
	calls     int
}

type statusResponse struct {
	resp *studio.JobStatusResponse
	err  error
}

func (s *scriptedStatusAPI) GetJobStatus(context.Context, string) (*studio.JobStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.calls
	if index >= len(s.responses) {
		index = len(s.responses) - 1
	}
	s.calls++
	resp := s.responses[index]
	return resp.resp, resp.err
}

func (s *scriptedStatusAPI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func processing() statusResponse {
	return statusResponse{resp: &studio.JobStatusResponse{Status: studio.JobProcessing}}
}

func processed(episodeID string) statusResponse {
	return statusResponse{resp: &studio.JobStatusResponse{
		Status:  studio.JobProcessed,
		Episode: &studio.Episode{ID: episodeID, Title: "Episode One"},
	}}
}

func fastSettings() assembly.PollSettings {
	return assembly.PollSettings{
		Interval:        2 * time.Millisecond,
		Timeout:         time.Second,
		StaleRetryDelay: time.Millisecond,
	}
}

func waitSettled(t *testing.T, ch <-chan assembly.Settlement) assembly.Settlement {
	t.Helper()
	select {
	case settlement := <-ch:
		return settlement
	case <-time.After(2 * time.Second):
		t.Fatal("poller never settled")
		return assembly.Settlement{}
	}
}

func TestPollerSettlesOnMatchingCompletion(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{
		processing(), processing(), processing(), processed("e1"),
	}}
	store := prefs.NewMemoryStore()
	_ = store.Set(context.Background(), prefs.DraftKey("ep1.mp3"), "{}")
	poller := assembly.NewPoller(api, store, fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", ExpectedEpisodeID: "e1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	settlement := waitSettled(t, settled)
	if settlement.State != assembly.StateProcessed {
		t.Fatalf("expected processed, got %q (%s)", settlement.State, settlement.Message)
	}
	if settlement.Episode == nil || settlement.Episode.ID != "e1" {
		t.Fatalf("unexpected episode: %+v", settlement.Episode)
	}
	if _, ok, _ := store.Get(context.Background(), prefs.DraftKey("ep1.mp3")); ok {
		t.Fatal("draft recovery state must be cleared on completion")
	}
	if api.callCount() < 4 {
		t.Fatalf("expected at least 4 polls, got %d", api.callCount())
	}
}

func TestPollerDoesNotSettleOnEpisodeIDMismatch(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{
		processed("stale"), processed("stale"), processed("e1"),
	}}
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", ExpectedEpisodeID: "e1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	settlement := waitSettled(t, settled)
	if settlement.State != assembly.StateProcessed {
		t.Fatalf("expected processed, got %q", settlement.State)
	}
	if settlement.Episode.ID != "e1" {
		t.Fatalf("settled on the stale episode: %q", settlement.Episode.ID)
	}
	if api.callCount() < 3 {
		t.Fatalf("mismatch must re-poll, got %d calls", api.callCount())
	}
}

func TestPollerTimesOutAtTheCeiling(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{processing()}}
	settings := fastSettings()
	settings.Timeout = 20 * time.Millisecond
	settings.SlowNotice = true
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), settings, logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	settlement := waitSettled(t, settled)
	if settlement.State != assembly.StateTimedOut {
		t.Fatalf("expected timeout, got %q", settlement.State)
	}
	if !settlement.SlowNotice {
		t.Fatal("configured slow notice must be carried on the settlement")
	}
}

func TestPollerRetriesTransientFailuresSilently(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{
		{err: &studio.APIError{Code: studio.CodeServiceUnavailable, StatusCode: 503}},
		{err: &studio.APIError{Code: studio.CodeServiceUnavailable, StatusCode: 503}},
		processed("e1"),
	}}
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", ExpectedEpisodeID: "e1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	settlement := waitSettled(t, settled)
	if settlement.State != assembly.StateProcessed {
		t.Fatalf("transient failures must not settle the poller, got %q", settlement.State)
	}
}

func TestPollerFailsOnExplicitJobError(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{
		{resp: &studio.JobStatusResponse{Status: studio.JobError, Error: "render failed"}},
	}}
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	settlement := waitSettled(t, settled)
	if settlement.State != assembly.StateFailed || settlement.Message != "render failed" {
		t.Fatalf("unexpected settlement: %+v", settlement)
	}
}

func TestTrackingANewJobTearsDownThePreviousLoop(t *testing.T) {
	slow := &scriptedStatusAPI{responses: []statusResponse{processing()}}
	poller := assembly.NewPoller(slow, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	firstSettled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { firstSettled <- s })

	secondSettled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j2", ExpectedEpisodeID: "e2", SourceFilename: "ep2.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { secondSettled <- s })

	slow.mu.Lock()
	slow.responses = []statusResponse{processed("e2")}
	slow.calls = 0
	slow.mu.Unlock()

	settlement := waitSettled(t, secondSettled)
	if settlement.State != assembly.StateProcessed {
		t.Fatalf("expected second job to settle, got %q", settlement.State)
	}
	select {
	case s := <-firstSettled:
		t.Fatalf("replaced loop must never settle, got %+v", s)
	case <-time.After(20 * time.Millisecond):
	}
}

type contextCapturingAPI struct {
	mu   sync.Mutex
	last context.Context
	resp statusResponse
}

func (c *contextCapturingAPI) GetJobStatus(ctx context.Context, _ string) (*studio.JobStatusResponse, error) {
	c.mu.Lock()
	c.last = ctx
	c.mu.Unlock()
	return c.resp.resp, c.resp.err
}

func (c *contextCapturingAPI) lastContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func TestSettlingReleasesThePollContext(t *testing.T) {
	api := &contextCapturingAPI{resp: processed("e1")}
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", ExpectedEpisodeID: "e1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	waitSettled(t, settled)

	deadline := time.Now().Add(time.Second)
	for {
		if ctx := api.lastContext(); ctx != nil && ctx.Err() != nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("poll context still live after settling")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClearStopsPollingWithoutSettling(t *testing.T) {
	api := &scriptedStatusAPI{responses: []statusResponse{processing()}}
	poller := assembly.NewPoller(api, prefs.NewMemoryStore(), fastSettings(), logging.NewNop())

	settled := make(chan assembly.Settlement, 1)
	poller.Track(context.Background(), assembly.Job{
		ID: "j1", SourceFilename: "ep1.mp3", StartedAt: time.Now(),
	}, func(s assembly.Settlement) { settled <- s })

	time.Sleep(10 * time.Millisecond)
	poller.Clear()
	stopped := api.callCount()
	time.Sleep(20 * time.Millisecond)

	if got := api.callCount(); got > stopped+1 {
		t.Fatalf("polling continued after clear: %d -> %d", stopped, got)
	}
	select {
	case s := <-settled:
		t.Fatalf("clear must not settle, got %+v", s)
	default:
	}
	if state, _ := poller.Status(); state != assembly.StateIdle {
		t.Fatalf("expected idle after clear, got %q", state)
	}
}
