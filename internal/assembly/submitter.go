package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podpress/internal/logging"
	"podpress/internal/publish"
	"podpress/internal/quota"
	"podpress/internal/studio"
)

// Draft is everything gathered for one assembly attempt.
type Draft struct {
	SourceFilename   string
	TemplateID       string
	OutputName       string
	DurationSeconds  float64
	TTSValues        map[string]string
	Metadata         Metadata
	RetakeCutsMS     [][2]int64
	Intents          studio.SubmitIntents
	UseAdvancedAudio bool
	Publish          publish.Decision
	// PendingArtworkID names artwork still processing server-side; it is
	// resolved inline during submission.
	PendingArtworkID string
}

// Job tracks one submitted assembly job.
type Job struct {
	ID                string
	ExpectedEpisodeID string
	SourceFilename    string
	StartedAt         time.Time
}

// SubmitAPI is the backend surface the submitter needs.
type SubmitAPI interface {
	SubmitAssembly(ctx context.Context, req studio.SubmitRequest) (*studio.SubmitResponse, error)
	ResolveCoverArt(ctx context.Context, artworkID string) (*studio.CoverArtResponse, error)
}

// Ports are the UI collaborators the submitter signals instead of rendering
// anything itself.
type Ports struct {
	// PromptPurchase presents a credit purchase offer for the shortfall.
	PromptPurchase func(quota.Shortfall)
	// NavigateBilling sends the user to the billing page.
	NavigateBilling func()
}

// Submitter runs the pre-submission guard chain and starts the assembly job.
// Guards are evaluated in a fixed order and the first failure wins; error
// messages are never combined.
type Submitter struct {
	api            SubmitAPI
	guard          *quota.Guard
	ports          Ports
	scheduleMargin time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// Option adjusts submitter construction.
type Option func(*Submitter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) { s.now = now }
}

// NewSubmitter constructs a submitter.
func NewSubmitter(api SubmitAPI, guard *quota.Guard, scheduleMargin time.Duration, ports Ports, logger *slog.Logger, opts ...Option) *Submitter {
	s := &Submitter{
		api:            api,
		guard:          guard,
		ports:          ports,
		scheduleMargin: scheduleMargin,
		logger:         logging.NewComponentLogger(logger, "assembly-submitter"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the draft against the guard chain and submits the job.
// precheck is the settled minutes-quota verdict for this attempt; nil means
// it is still in flight.
func (s *Submitter) Submit(ctx context.Context, draft Draft, precheck *studio.PrecheckResult) (*Job, error) {
	if precheck == nil {
		return nil, ErrPrecheckPending
	}

	if shortfall, blocked := s.guard.CreditShortfall(draft.DurationSeconds); blocked {
		if s.ports.PromptPurchase != nil {
			s.ports.PromptPurchase(shortfall)
		}
		return nil, &CreditError{Shortfall: shortfall}
	}

	if !precheck.Allowed {
		return nil, &MinutesError{
			MinutesRequired:  precheck.MinutesRequired,
			MinutesRemaining: precheck.MinutesRemaining,
			RenewsAt:         precheck.RenewsAt,
		}
	}

	if snapshot, ok := s.guard.Snapshot(); ok && snapshot.MaxEpisodes > 0 && snapshot.EpisodesRemaining <= 0 {
		if s.ports.NavigateBilling != nil {
			s.ports.NavigateBilling()
		}
		return nil, &QuotaError{Message: "episode limit reached for this plan"}
	}

	if strings.TrimSpace(draft.SourceFilename) == "" {
		return nil, &ValidationError{Field: "source", Message: "no audio file selected"}
	}
	if strings.TrimSpace(draft.TemplateID) == "" {
		return nil, &ValidationError{Field: "template", Message: "no template selected"}
	}
	if strings.TrimSpace(draft.Metadata.Title) == "" {
		return nil, &ValidationError{Field: "title", Message: "episode title is required"}
	}

	details := sanitize(draft.Metadata)
	if details.Season == "" {
		details.Season = "1"
	}

	if draft.Publish.Mode == publish.ModeSchedule {
		earliest := s.now().Add(s.scheduleMargin)
		if draft.Publish.ScheduledAt.Before(earliest) {
			return nil, &ValidationError{
				Field:   "schedule",
				Message: fmt.Sprintf("publish time must be at least %s from now", s.scheduleMargin),
			}
		}
	}

	if draft.PendingArtworkID != "" {
		art, err := s.api.ResolveCoverArt(ctx, draft.PendingArtworkID)
		if err != nil {
			return nil, &CoverArtError{Err: err}
		}
		details.CoverArtURL = art.URL
	}

	outputName := strings.TrimSpace(draft.OutputName)
	if outputName == "" {
		outputName = defaultOutputName(details.Title)
	}

	startedAt := s.now()
	resp, err := s.api.SubmitAssembly(ctx, studio.SubmitRequest{
		TemplateID:       draft.TemplateID,
		SourceFilename:   draft.SourceFilename,
		OutputName:       outputName,
		TTSValues:        draft.TTSValues,
		EpisodeDetails:   details,
		RetakeCutsMS:     draft.RetakeCutsMS,
		Intents:          draft.Intents,
		UseAdvancedAudio: draft.UseAdvancedAudio,
	})
	if err != nil {
		return nil, s.classifySubmitError(err)
	}

	s.logger.Info("assembly job submitted",
		logging.String(logging.FieldJobID, resp.JobID),
		logging.String(logging.FieldFilename, draft.SourceFilename),
	)
	return &Job{
		ID:                resp.JobID,
		ExpectedEpisodeID: resp.EpisodeID,
		SourceFilename:    draft.SourceFilename,
		StartedAt:         startedAt,
	}, nil
}

func (s *Submitter) classifySubmitError(err error) error {
	var apiErr *studio.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case studio.CodeInsufficientMinutes:
			// The server's view of remaining minutes has moved; refresh the
			// snapshot in the background while the dialog is up.
			s.guard.Invalidate()
			go func() {
				if refreshErr := s.guard.Refresh(context.Background()); refreshErr != nil {
					s.logger.Debug("usage refresh failed", logging.Error(refreshErr))
				}
			}()
			return &MinutesError{
				MinutesRequired:  apiErr.MinutesRequired,
				MinutesRemaining: apiErr.MinutesRemaining,
				RenewsAt:         apiErr.RenewsAt,
			}
		case studio.CodeQuotaExceeded:
			if s.ports.NavigateBilling != nil {
				s.ports.NavigateBilling()
			}
			return &QuotaError{Message: apiErr.Message}
		}
	}
	return fmt.Errorf("submit assembly: %w", err)
}
