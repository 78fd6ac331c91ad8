package producer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"podpress/internal/assembly"
	"podpress/internal/command"
	"podpress/internal/config"
	"podpress/internal/intents"
	"podpress/internal/logging"
	"podpress/internal/notifications"
	"podpress/internal/prefs"
	"podpress/internal/publish"
	"podpress/internal/quota"
	"podpress/internal/retake"
	"podpress/internal/studio"
)

// Ports are the UI collaborators injected into the session. All of them are
// optional.
type Ports struct {
	// PromptPurchase presents a credit purchase offer.
	PromptPurchase func(quota.Shortfall)
	// NavigateBilling sends the user to the billing page.
	NavigateBilling func()
	// DeliverCommandResult presents an executed command for review. Results
	// arriving during a retake scan review are held until it closes.
	DeliverCommandResult func(studio.ExecutionResult)
}

// Snapshot is a read-only view of the current session for status surfaces.
type Snapshot struct {
	RequestID   string
	Filename    string
	Title       string
	State       assembly.State
	Note        string
	JobID       string
	EpisodeID   string
	Completed   bool
	LastError   string
	LastWarning string
}

type session struct {
	requestID      string
	draft          assembly.Draft
	precheck       *studio.PrecheckResult
	job            *assembly.Job
	publishPending bool
	completed      bool
	episode        *studio.Episode
	lastError      string
	lastWarning    string
}

// draftRecord is the recovery payload persisted at metadata entry and
// cleared once assembly completes.
type draftRecord struct {
	Title       string `json:"title"`
	TemplateID  string `json:"templateId"`
	PublishMode string `json:"publishMode"`
	SavedAt     string `json:"savedAt"`
}

// Producer owns one production session at a time.
type Producer struct {
	cfg      *config.Config
	api      studio.API
	store    prefs.Store
	notifier notifications.Service
	ports    Ports
	logger   *slog.Logger

	set       *intents.Set
	feed      *intents.Feed
	scanner   *retake.Scanner
	gate      *retake.ReviewGate
	preparer  *command.Preparer
	guard     *quota.Guard
	submitter *assembly.Submitter
	poller    *assembly.Poller
	publisher *publish.Orchestrator

	mu      sync.Mutex
	session *session
}

// New wires a producer from its collaborators.
func New(cfg *config.Config, api studio.API, store prefs.Store, notifier notifications.Service, ports Ports, logger *slog.Logger) *Producer {
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	margin := time.Duration(cfg.Assembly.ScheduleMarginMinutes) * time.Minute

	p := &Producer{
		cfg:      cfg,
		api:      api,
		store:    store,
		notifier: notifier,
		ports:    ports,
		logger:   logging.NewComponentLogger(logger, "producer"),
		set:      intents.NewSet(),
	}
	p.feed = intents.NewFeed(api,
		cfg.Detection.MaxAttempts,
		time.Duration(cfg.Detection.RetryDelayMS)*time.Millisecond,
		logger)
	p.scanner = retake.NewScanner(api,
		cfg.Retake.MaxAttempts,
		time.Duration(cfg.Retake.RetryDelaySeconds)*time.Second,
		logger)
	p.gate = retake.NewReviewGate(func(result studio.ExecutionResult) {
		p.set.AddCommandOverride(result)
		if ports.DeliverCommandResult != nil {
			ports.DeliverCommandResult(result)
		}
	})
	p.preparer = command.NewPreparer(api, cfg.Voice, logger)
	p.guard = quota.NewGuard(api, cfg.Credits.PerSecondRate, logger)
	p.submitter = assembly.NewSubmitter(api, p.guard, margin, assembly.Ports{
		PromptPurchase:  ports.PromptPurchase,
		NavigateBilling: ports.NavigateBilling,
	}, logger)
	p.poller = assembly.NewPoller(api, store, assembly.SettingsFromConfig(cfg.Assembly), logger)
	p.publisher = publish.NewOrchestrator(api, store, margin, logger)
	return p
}

// StartSession begins a session for a new source file. Any previous session
// state, including an active polling loop, is discarded.
func (p *Producer) StartSession(filename, templateID, voiceID string) string {
	p.poller.Clear()
	p.set.ResetForSource(filename)
	p.preparer.SetSource(filename)
	p.guard.Invalidate()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = &session{
		requestID: uuid.NewString(),
		draft: assembly.Draft{
			SourceFilename: filename,
			TemplateID:     templateID,
		},
	}
	p.session.draft.TTSValues = map[string]string{}
	p.logger.Info("session started",
		logging.String(logging.FieldRequestID, p.session.requestID),
		logging.String(logging.FieldFilename, filename),
	)
	return p.session.requestID
}

// TranscriptReady runs intent detection and, when spoken commands are hinted,
// starts the speculative command prefetch. The usage snapshot refresh also
// starts here so the credit estimate has numbers by submission time.
func (p *Producer) TranscriptReady(ctx context.Context) {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return
	}

	go func() {
		if err := p.guard.Refresh(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("usage refresh failed", logging.Error(err))
		}
	}()

	p.feed.Detect(ctx, current.draft.SourceFilename, p.set)

	view := p.set.Snapshot()
	if view.Command.Count > 0 {
		go p.preparer.Prefetch(ctx, current.draft.TemplateID, "")
	}
}

// Intents exposes the current classification for the question flow.
func (p *Producer) Intents() intents.View {
	return p.set.Snapshot()
}

// ConfirmIntent records the user's answer for one category.
func (p *Producer) ConfirmIntent(category intents.Category, answer intents.Answer) {
	p.set.Confirm(category, answer)
}

// ScanRetakes runs the retake scan for the session source. A found result
// opens the scan review, which holds back concurrent command results until
// FinishRetakeReview is called.
func (p *Producer) ScanRetakes(ctx context.Context) (retake.Result, error) {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return retake.Result{}, ErrNoSession
	}

	declared := p.set.Snapshot().Retake.Answer
	result, err := p.scanner.Scan(ctx, current.draft.SourceFilename, declared)
	if err != nil {
		return retake.Result{}, err
	}
	if result.Outcome == retake.OutcomeFound {
		p.gate.BeginScanReview()
	}
	return result, nil
}

// FinishRetakeReview closes the scan review, recording the confirmed cuts
// (nil on cancel), and releases any queued command results.
func (p *Producer) FinishRetakeReview(cutsMS [][2]int64) {
	p.mu.Lock()
	if p.session != nil && cutsMS != nil {
		p.session.draft.RetakeCutsMS = cutsMS
	}
	p.mu.Unlock()
	p.gate.EndScanReview()
}

// PrepareCommands returns the prepared command contexts, reusing the
// speculative prefetch when it matches the session source.
func (p *Producer) PrepareCommands(ctx context.Context) ([]studio.CommandContext, error) {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return nil, ErrNoSession
	}
	return p.preparer.Prepare(ctx, current.draft.SourceFilename, current.draft.TemplateID, "")
}

// ExecuteCommand resolves one command and routes the result through the
// review gate.
func (p *Producer) ExecuteCommand(ctx context.Context, params command.ExecuteParams) error {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return ErrNoSession
	}
	params.Filename = current.draft.SourceFilename
	if params.TemplateID == "" {
		params.TemplateID = current.draft.TemplateID
	}

	result, err := p.preparer.Execute(ctx, params)
	if err != nil {
		return err
	}
	p.gate.Offer(result)
	return nil
}

// SetMetadata records episode metadata and the publish decision, persists the
// draft-recovery record, and starts the minutes precheck for this attempt.
func (p *Producer) SetMetadata(ctx context.Context, meta assembly.Metadata, durationSeconds float64, decision publish.Decision) error {
	p.mu.Lock()
	current := p.session
	if current == nil {
		p.mu.Unlock()
		return ErrNoSession
	}
	current.draft.Metadata = meta
	current.draft.DurationSeconds = durationSeconds
	current.draft.Publish = decision
	current.precheck = nil
	filename := current.draft.SourceFilename
	templateID := current.draft.TemplateID
	p.mu.Unlock()

	record, err := json.Marshal(draftRecord{
		Title:       meta.Title,
		TemplateID:  templateID,
		PublishMode: string(decision.Mode),
		SavedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err == nil {
		if setErr := p.store.Set(ctx, prefs.DraftKey(filename), string(record)); setErr != nil {
			p.logger.Warn("failed to persist draft recovery state", logging.Error(setErr))
		}
	}

	precheck, err := p.guard.Precheck(ctx, templateID, filename)
	if err != nil {
		return err
	}
	p.mu.Lock()
	if p.session == current {
		current.precheck = precheck
	}
	p.mu.Unlock()
	return nil
}

// SetPendingArtwork records an artwork upload still processing on the backend.
// It is resolved into a final URL at submission time.
func (p *Producer) SetPendingArtwork(uploadID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ErrNoSession
	}
	p.session.draft.PendingArtworkID = uploadID
	return nil
}

// Produce runs the guard chain and submits the assembly job. On success the
// poller starts and publishing is armed for the settlement.
func (p *Producer) Produce(ctx context.Context) error {
	p.mu.Lock()
	current := p.session
	p.mu.Unlock()
	if current == nil {
		return ErrNoSession
	}

	p.mu.Lock()
	current.requestID = uuid.NewString()
	current.completed = false
	current.episode = nil
	current.lastError = ""
	current.lastWarning = ""
	draft := current.draft
	draft.Intents = p.set.Snapshot().SubmitIntents()
	precheck := current.precheck
	p.mu.Unlock()

	job, err := p.submitter.Submit(ctx, draft, precheck)
	if err != nil {
		p.recordError(current, err.Error())
		return err
	}

	p.mu.Lock()
	current.job = job
	current.publishPending = true
	p.mu.Unlock()

	if notifyErr := p.notifier.NotifyProductionStarted(ctx, draft.Metadata.Title); notifyErr != nil {
		p.logger.Debug("notification failed", logging.Error(notifyErr))
	}

	p.poller.Track(ctx, *job, func(settlement assembly.Settlement) {
		p.onSettled(current, draft, settlement)
	})
	return nil
}

func (p *Producer) onSettled(current *session, draft assembly.Draft, settlement assembly.Settlement) {
	ctx := context.Background()
	title := draft.Metadata.Title

	switch settlement.State {
	case assembly.StateProcessed:
		p.mu.Lock()
		current.completed = true
		current.episode = settlement.Episode
		pending := current.publishPending
		decision := draft.Publish
		p.mu.Unlock()

		if err := p.notifier.NotifyProductionCompleted(ctx, title); err != nil {
			p.logger.Debug("notification failed", logging.Error(err))
		}

		episodeID := ""
		if settlement.Episode != nil {
			episodeID = settlement.Episode.ID
		}
		result, err := p.publisher.Auto(ctx, episodeID, decision, pending)
		p.mu.Lock()
		current.publishPending = false
		if err != nil {
			current.lastError = err.Error()
		}
		if result.Warning != "" {
			current.lastWarning = result.Warning
		}
		p.mu.Unlock()
		if err != nil {
			p.logger.Error("automatic publish failed", logging.Error(err),
				logging.String(logging.FieldEpisode, episodeID))
			if notifyErr := p.notifier.NotifyError(ctx, err, "publish"); notifyErr != nil {
				p.logger.Debug("notification failed", logging.Error(notifyErr))
			}
			return
		}
		if result.Performed {
			if notifyErr := p.notifier.NotifyPublished(ctx, title); notifyErr != nil {
				p.logger.Debug("notification failed", logging.Error(notifyErr))
			}
		}
		if result.Warning != "" {
			if notifyErr := p.notifier.NotifyPublishWarning(ctx, title, result.Warning); notifyErr != nil {
				p.logger.Debug("notification failed", logging.Error(notifyErr))
			}
		}

	case assembly.StateFailed:
		p.recordError(current, settlement.Message)
		if err := p.notifier.NotifyProductionFailed(ctx, title, settlement.Message); err != nil {
			p.logger.Debug("notification failed", logging.Error(err))
		}

	case assembly.StateTimedOut:
		p.mu.Lock()
		current.lastWarning = settlement.Message
		p.mu.Unlock()
		if settlement.SlowNotice {
			if err := p.notifier.NotifyTakingAWhile(ctx, title); err != nil {
				p.logger.Debug("notification failed", logging.Error(err))
			}
		}
	}
}

// Cancel stops the local watch for the current session. The backend job is
// deliberately left running; the user is told it may still complete.
func (p *Producer) Cancel(ctx context.Context) {
	p.poller.Clear()

	p.mu.Lock()
	var title string
	if p.session != nil {
		title = p.session.draft.Metadata.Title
		p.session.job = nil
		p.session.publishPending = false
	}
	p.mu.Unlock()

	p.logger.Info("production cancelled locally; the server may still finish the job")
	if err := p.notifier.NotifyCancelled(ctx, title); err != nil {
		p.logger.Debug("notification failed", logging.Error(err))
	}
}

// PublishManually publishes the completed episode with the given decision.
func (p *Producer) PublishManually(ctx context.Context, decision publish.Decision) (publish.Result, error) {
	p.mu.Lock()
	current := p.session
	var episodeID, title string
	if current != nil && current.episode != nil {
		episodeID = current.episode.ID
		title = current.draft.Metadata.Title
	}
	p.mu.Unlock()
	if episodeID == "" {
		return publish.Result{}, ErrNotCompleted
	}

	result, err := p.publisher.Manual(ctx, episodeID, decision)
	if err != nil {
		return result, err
	}
	if result.Warning != "" {
		if notifyErr := p.notifier.NotifyPublishWarning(ctx, title, result.Warning); notifyErr != nil {
			p.logger.Debug("notification failed", logging.Error(notifyErr))
		}
	}
	return result, nil
}

// Usage returns the cached usage snapshot, when one has been fetched.
func (p *Producer) Usage() (studio.UsageSnapshot, bool) {
	return p.guard.Snapshot()
}

// Status reports the session state for the CLI and IPC surfaces.
func (p *Producer) Status() Snapshot {
	state, note := p.poller.Status()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return Snapshot{State: state, Note: note}
	}
	snapshot := Snapshot{
		RequestID:   p.session.requestID,
		Filename:    p.session.draft.SourceFilename,
		Title:       p.session.draft.Metadata.Title,
		State:       state,
		Note:        note,
		Completed:   p.session.completed,
		LastError:   p.session.lastError,
		LastWarning: p.session.lastWarning,
	}
	if p.session.job != nil {
		snapshot.JobID = p.session.job.ID
	}
	if p.session.episode != nil {
		snapshot.EpisodeID = p.session.episode.ID
	}
	return snapshot
}

func (p *Producer) recordError(current *session, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current.lastError = message
}
