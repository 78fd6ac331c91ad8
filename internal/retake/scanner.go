package retake

import (
	"context"
	"log/slog"
	"time"

	"podpress/internal/intents"
	"podpress/internal/logging"
	"podpress/internal/retry"
	"podpress/internal/studio"
)

// Outcome classifies how a scan round finished.
type Outcome string

const (
	// OutcomeFound means candidates were produced and need review.
	OutcomeFound Outcome = "found"
	// OutcomeNotFound means the user declared retakes but none were found.
	// The caller offers a retry or a skip.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeClear means nothing was found and nothing was declared, so the
	// session proceeds without a review step.
	OutcomeClear Outcome = "clear"
)

// Result is the settled verdict of one scan.
type Result struct {
	Outcome    Outcome
	Candidates []studio.RetakeCandidate
}

// ScanAPI is the backend surface the scanner needs.
type ScanAPI interface {
	ScanRetakes(ctx context.Context, req studio.ScanRequest) (*studio.ScanResponse, error)
}

// Scanner locates retake markers in an uploaded source file. The backend
// answers not-ready while its own transcription is in flight, so the scanner
// retries on a fixed budget before treating the scan as empty.
type Scanner struct {
	api    ScanAPI
	policy retry.Policy
	logger *slog.Logger
}

// NewScanner constructs a scanner with the given retry budget.
func NewScanner(api ScanAPI, maxAttempts int, delay time.Duration, logger *slog.Logger) *Scanner {
	return &Scanner{
		api: api,
		policy: retry.Policy{
			MaxAttempts: maxAttempts,
			Interval:    delay,
			// Still-processing and transient infrastructure failures share
			// one retry path; the backend does not distinguish them.
			Retryable: func(err error) bool {
				return studio.IsNotReady(err) || studio.IsTransient(err)
			},
		},
		logger: logging.NewComponentLogger(logger, "retake-scanner"),
	}
}

// Scan polls the backend for retake candidates. Exhausting the retry budget
// is not an error: it settles the same way as an empty scan, and the declared
// intent decides whether that is surfaced as "not found" or passed silently.
func (s *Scanner) Scan(ctx context.Context, filename string, declared intents.Answer) (Result, error) {
	var resp *studio.ScanResponse
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		scanned, scanErr := s.api.ScanRetakes(ctx, studio.ScanRequest{
			Filename: filename,
			Intents:  studio.ScanIntents{Retake: string(declared)},
		})
		if scanErr != nil {
			return scanErr
		}
		resp = scanned
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if !retry.Exhausted(err) {
			return Result{}, err
		}
		s.logger.Warn("retake scan gave up waiting for the backend",
			logging.Error(err),
			logging.String(logging.FieldFilename, filename),
		)
		resp = &studio.ScanResponse{}
	}

	if len(resp.Contexts) > 0 {
		s.logger.Info("retake candidates found",
			logging.String(logging.FieldFilename, filename),
			logging.Int("candidates", len(resp.Contexts)),
		)
		return Result{Outcome: OutcomeFound, Candidates: resp.Contexts}, nil
	}
	if declared == intents.AnswerYes {
		return Result{Outcome: OutcomeNotFound}, nil
	}
	return Result{Outcome: OutcomeClear}, nil
}
