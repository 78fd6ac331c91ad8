package quota

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"podpress/internal/logging"
	"podpress/internal/studio"
)

// API is the backend surface the guard needs.
type API interface {
	GetUsage(ctx context.Context) (*studio.UsageSnapshot, error)
	Precheck(ctx context.Context, req studio.PrecheckRequest) (*studio.PrecheckResult, error)
}

// Shortfall quantifies a credit deficit for a purchase prompt.
type Shortfall struct {
	RequiredCredits  float64
	AvailableCredits float64
}

// Guard keeps a cached usage snapshot and estimates credit cost. The snapshot
// is advisory: the server re-validates on submission. Updates carry the
// generation observed when the refresh began, so two refreshes resolving in
// reverse order cannot let the earlier one overwrite the later.
type Guard struct {
	api           API
	perSecondRate float64
	logger        *slog.Logger

	mu         sync.Mutex
	generation uint64
	snapshot   *studio.UsageSnapshot
}

// NewGuard constructs a guard with the configured credit rate.
func NewGuard(api API, perSecondRate float64, logger *slog.Logger) *Guard {
	return &Guard{
		api:           api,
		perSecondRate: perSecondRate,
		logger:        logging.NewComponentLogger(logger, "quota-guard"),
	}
}

// Invalidate drops the cached snapshot and returns the new generation token.
// Call it when the account state is known to have changed.
func (g *Guard) Invalidate() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.snapshot = nil
	return g.generation
}

// Refresh fetches the usage snapshot. A result that raced with a later
// Invalidate is discarded.
func (g *Guard) Refresh(ctx context.Context) error {
	g.mu.Lock()
	generation := g.generation
	g.mu.Unlock()

	snapshot, err := g.api.GetUsage(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation {
		g.logger.Debug("discarded stale usage snapshot")
		return nil
	}
	g.snapshot = snapshot
	return nil
}

// Snapshot returns a copy of the cached usage snapshot and whether one is
// loaded.
func (g *Guard) Snapshot() (studio.UsageSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot == nil {
		return studio.UsageSnapshot{}, false
	}
	return *g.snapshot, true
}

// Precheck asks the server whether the attempt fits the minutes quota. A
// structured payment-required error is returned as a denied result rather
// than an error.
func (g *Guard) Precheck(ctx context.Context, templateID, sourceFilename string) (*studio.PrecheckResult, error) {
	result, err := g.api.Precheck(ctx, studio.PrecheckRequest{
		TemplateID:     templateID,
		SourceFilename: sourceFilename,
	})
	if err != nil {
		var apiErr *studio.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == studio.CodePaymentRequired || apiErr.Code == studio.CodeInsufficientMinutes) {
			return &studio.PrecheckResult{
				Allowed:          false,
				MinutesRequired:  apiErr.MinutesRequired,
				MinutesRemaining: apiErr.MinutesRemaining,
				RenewsAt:         apiErr.RenewsAt,
			}, nil
		}
		return nil, err
	}
	return result, nil
}

// EstimateCredits converts the source duration into an advisory credit cost.
func (g *Guard) EstimateCredits(durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return durationSeconds * g.perSecondRate
}

// CreditShortfall reports whether the estimated cost exceeds the cached
// balance, with the numbers a purchase prompt needs. Without a snapshot there
// is nothing to compare against and no shortfall is reported.
func (g *Guard) CreditShortfall(durationSeconds float64) (Shortfall, bool) {
	snapshot, ok := g.Snapshot()
	if !ok {
		return Shortfall{}, false
	}
	required := g.EstimateCredits(durationSeconds)
	if required <= snapshot.CreditsBalance {
		return Shortfall{}, false
	}
	return Shortfall{
		RequiredCredits:  required,
		AvailableCredits: snapshot.CreditsBalance,
	}, true
}
