package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"podpress/internal/logging"
	"podpress/internal/prefs"
	"podpress/internal/studio"
)

// lastAutoPublishedKey stores the episode id of the most recent automatic
// publish. It survives restarts, so a completion event re-evaluated in a
// later session cannot fire a second publish for the same episode.
const lastAutoPublishedKey = "publish:last_auto_episode"

// API is the backend surface the orchestrator needs.
type API interface {
	Publish(ctx context.Context, req studio.PublishRequest) (*studio.PublishResponse, error)
	GetPublishStatus(ctx context.Context, episodeID string) (*studio.PublishStatusResponse, error)
}

// Result reports what a publish attempt did. Warning carries non-fatal
// follow-up information, such as a downstream delivery error.
type Result struct {
	Performed bool
	Message   string
	Warning   string
}

// Orchestrator owns the publish call for completed episodes. Manual and
// automatic entry points share one execution path; the automatic path adds
// two independent idempotency guards that must both be clear before the call
// starts: a one-way idle-to-firing transition covering the in-flight window,
// and the durable last-auto-published episode id covering repeat evaluations.
type Orchestrator struct {
	api    API
	store  prefs.Store
	margin time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	firing bool
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator constructs an orchestrator.
func NewOrchestrator(api API, store prefs.Store, scheduleMargin time.Duration, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		api:    api,
		store:  store,
		margin: scheduleMargin,
		logger: logging.NewComponentLogger(logger, "publish"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Manual publishes on explicit user action, in any mode.
func (o *Orchestrator) Manual(ctx context.Context, episodeID string, decision Decision) (Result, error) {
	if decision.Mode == ModeSchedule {
		if decision.ScheduledAt.Before(o.now().Add(o.margin)) {
			return Result{}, fmt.Errorf("publish time must be at least %s from now", o.margin)
		}
	}
	return o.run(ctx, episodeID, decision)
}

// Auto fires once assembly settles as processed, if publishing is still
// pending for the session. It is safe to call repeatedly for the same
// completion event; at most one publish happens per episode id.
func (o *Orchestrator) Auto(ctx context.Context, episodeID string, decision Decision, pending bool) (Result, error) {
	if !pending || episodeID == "" {
		return Result{}, nil
	}
	if decision.Mode == ModeDraft {
		return Result{Message: "episode saved as draft"}, nil
	}

	last, _, err := o.store.Get(ctx, lastAutoPublishedKey)
	if err != nil {
		return Result{}, fmt.Errorf("read publish history: %w", err)
	}
	if last == episodeID {
		return Result{}, nil
	}

	if !o.beginFiring() {
		return Result{}, nil
	}
	defer o.endFiring()

	// The schedule is captured now; later edits to the chosen time must not
	// produce a second, different call for the same completion event.
	if decision.Mode == ModeSchedule {
		if decision.ScheduledAt.Before(o.now().Add(o.margin)) {
			o.logger.Warn("scheduled time too soon at fire time, skipping automatic publish",
				logging.String(logging.FieldEpisode, episodeID),
			)
			return Result{Warning: "the scheduled publish time has passed; publish manually when ready"}, nil
		}
	}

	result, err := o.run(ctx, episodeID, decision)
	if err != nil {
		return result, err
	}
	if setErr := o.store.Set(ctx, lastAutoPublishedKey, episodeID); setErr != nil {
		o.logger.Warn("failed to record published episode",
			logging.Error(setErr),
			logging.String(logging.FieldEpisode, episodeID),
		)
	}
	return result, nil
}

// beginFiring performs the one permitted idle-to-firing transition. It fails
// when a publish call is already in flight.
func (o *Orchestrator) beginFiring() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.firing {
		return false
	}
	o.firing = true
	return true
}

func (o *Orchestrator) endFiring() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.firing = false
}

func (o *Orchestrator) run(ctx context.Context, episodeID string, decision Decision) (Result, error) {
	req := studio.PublishRequest{
		EpisodeID:    episodeID,
		PublishState: publishState(decision.Mode),
		Visibility:   decision.Visibility,
	}
	if decision.Mode == ModeSchedule {
		req.PublishAt = decision.ScheduledAt.UTC().Format(time.RFC3339)
		req.PublishAtLocal = decision.ScheduledAt.Format("2006-01-02T15:04:05")
	}

	resp, err := o.api.Publish(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("publish episode: %w", err)
	}

	result := Result{Performed: true, Message: resp.Message}
	o.logger.Info("episode published",
		logging.String(logging.FieldEpisode, episodeID),
		logging.String("publish_state", req.PublishState),
	)

	status, statusErr := o.api.GetPublishStatus(ctx, episodeID)
	if statusErr != nil {
		o.logger.Warn("publish status check failed", logging.Error(statusErr))
		return result, nil
	}
	if status.LastError != "" {
		result.Warning = status.LastError
	}
	return result, nil
}

func publishState(mode Mode) string {
	switch mode {
	case ModeNow:
		return "published"
	case ModeSchedule:
		return "scheduled"
	default:
		return "draft"
	}
}
