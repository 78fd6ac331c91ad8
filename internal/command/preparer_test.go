package command_test

import (
	"context"
	"errors"
	"testing"

	"podpress/internal/command"
	"podpress/internal/config"
	"podpress/internal/logging"
	"podpress/internal/studio"
)

type fakeCommandAPI struct {
	prepareCalls int
	prepareResp  *studio.PrepareResponse
	prepareErr   error

	executeResp *studio.ExecutionResult
	executeErr  error
	executeReq  *studio.ExecuteRequest

	synthCalls int
	synthResp  *studio.SynthesizeResponse
	synthErr   error
	synthReq   *studio.SynthesizeRequest
}

func (f *fakeCommandAPI) PrepareCommands(context.Context, studio.PrepareRequest) (*studio.PrepareResponse, error) {
	f.prepareCalls++
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	return f.prepareResp, nil
}

func (f *fakeCommandAPI) ExecuteCommand(_ context.Context, req studio.ExecuteRequest) (*studio.ExecutionResult, error) {
	f.executeReq = &req
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return f.executeResp, nil
}

func (f *fakeCommandAPI) Synthesize(_ context.Context, req studio.SynthesizeRequest) (*studio.SynthesizeResponse, error) {
	f.synthCalls++
	f.synthReq = &req
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return f.synthResp, nil
}

func testVoice() config.Voice {
	return config.Voice{Provider: "eleven", DefaultVoice: "narrator", SpeakingRate: 1.0}
}

func TestPrepareReusesMatchingPrefetch(t *testing.T) {
	api := &fakeCommandAPI{prepareResp: &studio.PrepareResponse{
		Contexts: []studio.CommandContext{{CommandID: "c1"}},
	}}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	preparer.SetSource("ep1.mp3")
	preparer.Prefetch(context.Background(), "t1", "")
	if api.prepareCalls != 1 {
		t.Fatalf("expected 1 prefetch call, got %d", api.prepareCalls)
	}

	contexts, err := preparer.Prepare(context.Background(), "ep1.mp3", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.prepareCalls != 1 {
		t.Fatalf("matching prefetch must be reused, got %d calls", api.prepareCalls)
	}
	if len(contexts) != 1 || contexts[0].CommandID != "c1" {
		t.Fatalf("unexpected contexts: %+v", contexts)
	}
}

func TestSourceChangeInvalidatesPrefetch(t *testing.T) {
	api := &fakeCommandAPI{prepareResp: &studio.PrepareResponse{
		Contexts: []studio.CommandContext{{CommandID: "c1"}},
	}}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	preparer.SetSource("ep1.mp3")
	preparer.Prefetch(context.Background(), "t1", "")
	preparer.SetSource("ep2.mp3")

	if _, err := preparer.Prepare(context.Background(), "ep2.mp3", "t1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.prepareCalls != 2 {
		t.Fatalf("stale prefetch must not be reused, got %d calls", api.prepareCalls)
	}
}

func TestPrefetchFailureFallsBackToFreshPrepare(t *testing.T) {
	api := &fakeCommandAPI{prepareErr: errors.New("offline")}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	preparer.SetSource("ep1.mp3")
	preparer.Prefetch(context.Background(), "t1", "")

	api.prepareErr = nil
	api.prepareResp = &studio.PrepareResponse{Commands: []studio.CommandContext{{CommandID: "c2"}}}
	contexts, err := preparer.Prepare(context.Background(), "ep1.mp3", "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contexts) != 1 || contexts[0].CommandID != "c2" {
		t.Fatalf("unexpected contexts: %+v", contexts)
	}
	if api.prepareCalls != 2 {
		t.Fatalf("expected a fresh prepare after failed prefetch, got %d calls", api.prepareCalls)
	}
}

func TestExecuteEnrichesMissingAudio(t *testing.T) {
	api := &fakeCommandAPI{
		executeResp: &studio.ExecutionResult{CommandID: "c1", ResponseText: "coming right up"},
		synthResp:   &studio.SynthesizeResponse{Filename: "tts/c1.mp3"},
	}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	result, err := preparer.Execute(context.Background(), command.ExecuteParams{
		Filename: "ep1.mp3",
		Context:  studio.CommandContext{CommandID: "c1", StartS: 12.5, EndS: 14.0, VoiceID: "host"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AudioURL != "tts/c1.mp3" {
		t.Fatalf("expected enriched audio, got %q", result.AudioURL)
	}
	if api.synthReq.VoiceID != "host" {
		t.Fatalf("template default voice must win, got %q", api.synthReq.VoiceID)
	}
	if api.executeReq.StartS == nil || *api.executeReq.StartS != 12.5 {
		t.Fatalf("unexpected start offset: %v", api.executeReq.StartS)
	}
}

func TestExecuteToleratesSynthesisFailure(t *testing.T) {
	api := &fakeCommandAPI{
		executeResp: &studio.ExecutionResult{CommandID: "c1", ResponseText: "coming right up"},
		synthErr:    errors.New("tts unavailable"),
	}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	result, err := preparer.Execute(context.Background(), command.ExecuteParams{
		Filename: "ep1.mp3",
		Context:  studio.CommandContext{CommandID: "c1", EndS: 14.0},
	})
	if err != nil {
		t.Fatalf("enrichment failure must not fail execution: %v", err)
	}
	if result.AudioURL != "" {
		t.Fatalf("expected no audio, got %q", result.AudioURL)
	}
	if result.CommandID != "c1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExecuteSkipsSynthesisWhenAudioPresent(t *testing.T) {
	api := &fakeCommandAPI{
		executeResp: &studio.ExecutionResult{CommandID: "c1", ResponseText: "ok", AudioURL: "tts/ready.mp3"},
	}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	if _, err := preparer.Execute(context.Background(), command.ExecuteParams{
		Filename: "ep1.mp3",
		Context:  studio.CommandContext{CommandID: "c1", EndS: 3},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.synthCalls != 0 {
		t.Fatalf("synthesis must be skipped, got %d calls", api.synthCalls)
	}
}

func TestVoiceResolutionFallsBackToOverrideThenDefault(t *testing.T) {
	api := &fakeCommandAPI{
		executeResp: &studio.ExecutionResult{CommandID: "c1", ResponseText: "ok"},
		synthResp:   &studio.SynthesizeResponse{Filename: "tts/c1.mp3"},
	}
	preparer := command.NewPreparer(api, testVoice(), logging.NewNop())

	if _, err := preparer.Execute(context.Background(), command.ExecuteParams{
		Filename:      "ep1.mp3",
		Context:       studio.CommandContext{CommandID: "c1", EndS: 3},
		VoiceOverride: "guest",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.synthReq.VoiceID != "guest" {
		t.Fatalf("expected override voice, got %q", api.synthReq.VoiceID)
	}

	if _, err := preparer.Execute(context.Background(), command.ExecuteParams{
		Filename: "ep1.mp3",
		Context:  studio.CommandContext{CommandID: "c1", EndS: 3},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.synthReq.VoiceID != "narrator" {
		t.Fatalf("expected configured default voice, got %q", api.synthReq.VoiceID)
	}
}
