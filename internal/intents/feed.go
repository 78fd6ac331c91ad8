package intents

import (
	"context"
	"log/slog"
	"time"

	"podpress/internal/logging"
	"podpress/internal/retry"
	"podpress/internal/studio"
)

// HintsAPI is the backend surface the feed needs.
type HintsAPI interface {
	GetIntentHints(ctx context.Context, sourceFilename string) (*studio.IntentHints, error)
}

// Feed converts the transcript-ready signal into intent classifications.
type Feed struct {
	api    HintsAPI
	policy retry.Policy
	logger *slog.Logger
}

// NewFeed constructs a detection feed with the given retry budget.
func NewFeed(api HintsAPI, maxAttempts int, delay time.Duration, logger *slog.Logger) *Feed {
	return &Feed{
		api: api,
		policy: retry.Policy{
			MaxAttempts: maxAttempts,
			Interval:    delay,
			Retryable: func(err error) bool {
				return studio.IsNotReady(err) || studio.IsConflict(err)
			},
		},
		logger: logging.NewComponentLogger(logger, "intent-feed"),
	}
}

// Detect fetches intent hints for the uploaded source and installs them into
// the set. Detection never blocks the pipeline: when the backend keeps
// reporting not-ready past the budget, or fails outright, the set is marked
// ready with null classifications and the user is asked directly.
func (f *Feed) Detect(ctx context.Context, sourceFilename string, set *Set) {
	generation := set.Generation()

	var hints *studio.IntentHints
	err := f.policy.Do(ctx, func(ctx context.Context) error {
		fetched, fetchErr := f.api.GetIntentHints(ctx, sourceFilename)
		if fetchErr != nil {
			return fetchErr
		}
		hints = fetched
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		f.logger.Warn("intent detection degraded to manual questioning",
			logging.Error(err),
			logging.String(logging.FieldFilename, sourceFilename),
			logging.String(logging.FieldEventType, "intent_detection_degraded"),
		)
		set.MarkReadyDegraded(generation)
		return
	}

	if !set.ApplyHints(generation, hints) {
		f.logger.Debug("discarded stale intent hints",
			logging.String(logging.FieldFilename, sourceFilename),
		)
		return
	}
	f.logger.Info("intent hints applied",
		logging.String(logging.FieldFilename, sourceFilename),
		logging.Int("retake_count", hints.RetakeCount),
		logging.Int("command_count", hints.CommandCount),
		logging.Int("sound_effect_count", hints.SoundEffectCount),
	)
}
