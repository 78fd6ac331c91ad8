package assembly

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"podpress/internal/config"
	"podpress/internal/logging"
	"podpress/internal/prefs"
	"podpress/internal/retry"
	"podpress/internal/studio"
)

// State is the poller's view of the assembly job.
type State string

const (
	StateIdle      State = "idle"
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateProcessed State = "processed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Settlement is the terminal verdict delivered once polling stops.
type Settlement struct {
	State      State
	Episode    *studio.Episode
	Message    string
	SlowNotice bool
}

// PollSettings controls polling cadence and the timeout ceiling.
type PollSettings struct {
	Interval        time.Duration
	Timeout         time.Duration
	StaleRetryDelay time.Duration
	SlowNotice      bool
}

// SettingsFromConfig converts the configured assembly section.
func SettingsFromConfig(cfg config.Assembly) PollSettings {
	return PollSettings{
		Interval:        time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Timeout:         time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		StaleRetryDelay: time.Duration(cfg.StaleRetryDelayMS) * time.Millisecond,
		SlowNotice:      cfg.SlowNotice,
	}
}

// PollAPI is the backend surface the poller needs.
type PollAPI interface {
	GetJobStatus(ctx context.Context, jobID string) (*studio.JobStatusResponse, error)
}

// Poller watches one assembly job until it settles. At most one polling loop
// runs at a time; tracking a new job, or clearing, tears down the previous
// loop before anything else happens.
type Poller struct {
	api      PollAPI
	store    prefs.Store
	settings PollSettings
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	jobID  string
	state  State
	note   string
}

// NewPoller constructs a poller. The prefs store is used to clear the
// draft-recovery record once the job completes.
func NewPoller(api PollAPI, store prefs.Store, settings PollSettings, logger *slog.Logger) *Poller {
	return &Poller{
		api:      api,
		store:    store,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "job-poller"),
		state:    StateIdle,
	}
}

// Track starts polling the job, replacing any previous loop.
func (p *Poller) Track(ctx context.Context, job Job, onSettle func(Settlement)) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.jobID = job.ID
	p.state = StateSubmitted
	p.note = ""
	p.mu.Unlock()

	go p.run(loopCtx, job, onSettle)
}

// Clear tears down the current loop without settling. The backend job keeps
// running; only the local watch stops.
func (p *Poller) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.jobID = ""
	p.state = StateIdle
	p.note = ""
}

// Status reports the current state and the human-readable retry note.
func (p *Poller) Status() (State, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.note
}

func (p *Poller) run(ctx context.Context, job Job, onSettle func(Settlement)) {
	deadline := job.StartedAt.Add(p.settings.Timeout)
	timeout := time.NewTimer(time.Until(deadline))
	defer timeout.Stop()
	ticker := time.NewTicker(p.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timeout.C:
			p.settle(ctx, job, Settlement{
				State:      StateTimedOut,
				Message:    "assembly is taking longer than expected; it may still finish",
				SlowNotice: p.settings.SlowNotice,
			}, onSettle)
			return
		case <-ticker.C:
		}
		if !time.Now().Before(deadline) {
			p.settle(ctx, job, Settlement{
				State:      StateTimedOut,
				Message:    "assembly is taking longer than expected; it may still finish",
				SlowNotice: p.settings.SlowNotice,
			}, onSettle)
			return
		}

		resp, err := p.api.GetJobStatus(ctx, job.ID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if studio.IsTransient(err) {
				p.setNote(StatePolling, "connection hiccup, retrying")
				continue
			}
			p.settle(ctx, job, Settlement{State: StateFailed, Message: err.Error()}, onSettle)
			return
		}

		switch resp.Status {
		case studio.JobProcessed:
			if stale(job, resp) {
				// A result for a different episode means we raced a stale or
				// duplicate record. Do not settle; back off briefly and poll
				// again until the expected episode shows up.
				p.logger.Debug("episode id mismatch on completion, re-polling",
					logging.String(logging.FieldJobID, job.ID),
				)
				p.setNote(StatePolling, "finalizing")
				if sleepErr := retry.Sleep(ctx, p.settings.StaleRetryDelay); sleepErr != nil {
					return
				}
				continue
			}
			p.settle(ctx, job, Settlement{State: StateProcessed, Episode: resp.Episode}, onSettle)
			return
		case studio.JobError:
			p.settle(ctx, job, Settlement{State: StateFailed, Message: resp.Error}, onSettle)
			return
		default:
			p.setNote(StatePolling, "")
		}
	}
}

func stale(job Job, resp *studio.JobStatusResponse) bool {
	if job.ExpectedEpisodeID == "" {
		return false
	}
	return resp.Episode == nil || resp.Episode.ID != job.ExpectedEpisodeID
}

func (p *Poller) setNote(state State, note string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.note = note
}

func (p *Poller) settle(ctx context.Context, job Job, settlement Settlement, onSettle func(Settlement)) {
	p.mu.Lock()
	if p.jobID != job.ID {
		// Track or Clear already superseded this loop; its verdict is void.
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.cancel = nil
	p.state = settlement.State
	p.note = settlement.Message
	p.mu.Unlock()
	if cancel != nil {
		// The draft cleanup below still runs on the derived context, so
		// release it on the way out.
		defer cancel()
	}

	if settlement.State == StateProcessed && p.store != nil {
		if err := p.store.Clear(ctx, prefs.DraftKey(job.SourceFilename)); err != nil {
			p.logger.Warn("failed to clear draft recovery state",
				logging.Error(err),
				logging.String(logging.FieldFilename, job.SourceFilename),
			)
		}
	}
	if onSettle != nil {
		onSettle(settlement)
	}
}
