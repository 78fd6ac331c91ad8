package command

import (
	"context"
	"log/slog"
	"sync"

	"podpress/internal/config"
	"podpress/internal/logging"
	"podpress/internal/studio"
)

// API is the backend surface the preparer needs.
type API interface {
	PrepareCommands(ctx context.Context, req studio.PrepareRequest) (*studio.PrepareResponse, error)
	ExecuteCommand(ctx context.Context, req studio.ExecuteRequest) (*studio.ExecutionResult, error)
	Synthesize(ctx context.Context, req studio.SynthesizeRequest) (*studio.SynthesizeResponse, error)
}

// Preparer runs the spoken-command pipeline. Preparation is expensive, so it
// can be prefetched speculatively once the transcript and intent hints are in;
// the prefetch is keyed by source filename and a filename change invalidates
// it, including results still in flight.
type Preparer struct {
	api    API
	voice  config.Voice
	logger *slog.Logger

	mu       sync.Mutex
	source   string
	cached   []studio.CommandContext
	cachedOK bool
}

// NewPreparer constructs a preparer with the given voice defaults.
func NewPreparer(api API, voice config.Voice, logger *slog.Logger) *Preparer {
	return &Preparer{
		api:    api,
		voice:  voice,
		logger: logging.NewComponentLogger(logger, "command-preparer"),
	}
}

// SetSource records the current source file. Changing it drops any cached or
// in-flight prefetch for the previous file.
func (p *Preparer) SetSource(filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if filename == p.source {
		return
	}
	p.source = filename
	p.cached = nil
	p.cachedOK = false
}

// Prefetch prepares command contexts ahead of the user's confirmation. The
// result is only cached when the source file is still the one the fetch
// started for. Failures are silent; the on-demand path will prepare fresh.
func (p *Preparer) Prefetch(ctx context.Context, templateID, voiceID string) {
	p.mu.Lock()
	filename := p.source
	p.mu.Unlock()
	if filename == "" {
		return
	}

	contexts, err := p.prepare(ctx, filename, templateID, voiceID)
	if err != nil {
		p.logger.Debug("speculative prepare failed",
			logging.Error(err),
			logging.String(logging.FieldFilename, filename),
		)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source != filename {
		return
	}
	p.cached = contexts
	p.cachedOK = true
	p.logger.Debug("command contexts prefetched",
		logging.String(logging.FieldFilename, filename),
		logging.Int("contexts", len(contexts)),
	)
}

// Prepare returns command contexts for the file, reusing a prefetched result
// when its filename matches.
func (p *Preparer) Prepare(ctx context.Context, filename, templateID, voiceID string) ([]studio.CommandContext, error) {
	p.mu.Lock()
	if p.cachedOK && p.source == filename {
		cached := p.cached
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()
	return p.prepare(ctx, filename, templateID, voiceID)
}

func (p *Preparer) prepare(ctx context.Context, filename, templateID, voiceID string) ([]studio.CommandContext, error) {
	resp, err := p.api.PrepareCommands(ctx, studio.PrepareRequest{
		Filename:   filename,
		TemplateID: templateID,
		VoiceID:    voiceID,
	})
	if err != nil {
		return nil, err
	}
	return resp.All(), nil
}

// ExecuteParams selects one prepared context and the user's edits to it.
type ExecuteParams struct {
	Filename      string
	Context       studio.CommandContext
	OverrideText  string
	Regenerate    bool
	TemplateID    string
	VoiceOverride string
}

// Execute resolves one spoken command into a concrete edit. When the backend
// returns no synthesized audio the result is enriched with a speech call; an
// enrichment failure is tolerated and the backend synthesizes on assembly
// instead.
func (p *Preparer) Execute(ctx context.Context, params ExecuteParams) (studio.ExecutionResult, error) {
	start := params.Context.StartS
	result, err := p.api.ExecuteCommand(ctx, studio.ExecuteRequest{
		Filename:     params.Filename,
		EndS:         params.Context.EndS,
		StartS:       &start,
		CommandID:    params.Context.CommandID,
		OverrideText: params.OverrideText,
		Regenerate:   params.Regenerate,
		VoiceID:      params.VoiceOverride,
		TemplateID:   params.TemplateID,
	})
	if err != nil {
		return studio.ExecutionResult{}, err
	}

	if result.AudioURL == "" && result.ResponseText != "" {
		voice := p.resolveVoice(params.Context.VoiceID, params.VoiceOverride)
		synth, synthErr := p.api.Synthesize(ctx, studio.SynthesizeRequest{
			Text:          result.ResponseText,
			VoiceID:       voice,
			Category:      "command",
			Provider:      p.voice.Provider,
			SpeakingRate:  p.voice.SpeakingRate,
			ConfirmCharge: true,
		})
		if synthErr != nil {
			p.logger.Warn("response audio synthesis failed, deferring to assembly",
				logging.Error(synthErr),
				logging.String("command_id", result.CommandID),
			)
		} else {
			result.AudioURL = synth.Filename
		}
	}
	return *result, nil
}

// resolveVoice prefers the template's default voice, then the explicit
// override, then the configured fallback.
func (p *Preparer) resolveVoice(templateDefault, override string) string {
	if templateDefault != "" {
		return templateDefault
	}
	if override != "" {
		return override
	}
	return p.voice.DefaultVoice
}
