package studio

// IntentHints carries per-category occurrence counts derived from the
// transcript. A count of zero is a confirmed absence; the categories are
// still presented to the user when counts are positive.
type IntentHints struct {
	RetakeCount      int `json:"retakeCount"`
	CommandCount     int `json:"commandCount"`
	SoundEffectCount int `json:"soundEffectCount"`
}

// RetakeCandidate is a snippet the scan flagged as a possible retake cut.
type RetakeCandidate struct {
	ID           string `json:"id"`
	ContextAudio string `json:"contextAudio"`
	TimestampMS  int64  `json:"timestampMs"`
}

// ScanRequest asks the backend to locate retake markers in an upload.
type ScanRequest struct {
	Filename string      `json:"filename"`
	Intents  ScanIntents `json:"intents"`
}

// ScanIntents carries the declared retake intent alongside a scan request.
type ScanIntents struct {
	Retake string `json:"retake"`
}

// ScanResponse lists retake candidates found in the upload.
type ScanResponse struct {
	Contexts []RetakeCandidate `json:"contexts"`
}

// CommandContext is a prepared spoken-command edit region.
type CommandContext struct {
	CommandID    string  `json:"commandId"`
	StartS       float64 `json:"startS"`
	EndS         float64 `json:"endS"`
	ResponseText string  `json:"responseText"`
	AudioURL     string  `json:"audioUrl,omitempty"`
	VoiceID      string  `json:"voiceId,omitempty"`
}

// PrepareRequest asks the backend to locate spoken commands in an upload.
type PrepareRequest struct {
	Filename   string `json:"filename"`
	TemplateID string `json:"templateId,omitempty"`
	VoiceID    string `json:"voiceId,omitempty"`
}

// PrepareResponse lists prepared command contexts. Older backend revisions
// used the "commands" key; both are accepted.
type PrepareResponse struct {
	Contexts []CommandContext `json:"contexts"`
	Commands []CommandContext `json:"commands"`
}

// All returns the prepared contexts regardless of the response key used.
func (r *PrepareResponse) All() []CommandContext {
	if len(r.Contexts) > 0 {
		return r.Contexts
	}
	return r.Commands
}

// ExecuteRequest resolves one spoken command into a concrete edit.
type ExecuteRequest struct {
	Filename     string   `json:"filename"`
	EndS         float64  `json:"endS"`
	StartS       *float64 `json:"startS,omitempty"`
	CommandID    string   `json:"commandId,omitempty"`
	OverrideText string   `json:"overrideText,omitempty"`
	Regenerate   bool     `json:"regenerate,omitempty"`
	VoiceID      string   `json:"voiceId,omitempty"`
	TemplateID   string   `json:"templateId,omitempty"`
}

// ExecutionResult is the resolved edit for one spoken command.
type ExecutionResult struct {
	CommandID    string  `json:"commandId"`
	StartS       float64 `json:"startS"`
	EndS         float64 `json:"endS"`
	ResponseText string  `json:"responseText"`
	AudioURL     string  `json:"audioUrl,omitempty"`
}

// SynthesizeRequest renders response text into audio.
type SynthesizeRequest struct {
	Text          string  `json:"text"`
	VoiceID       string  `json:"voiceId"`
	Category      string  `json:"category"`
	Provider      string  `json:"provider"`
	SpeakingRate  float64 `json:"speakingRate"`
	ConfirmCharge bool    `json:"confirmCharge"`
}

// SynthesizeResponse names the rendered audio file.
type SynthesizeResponse struct {
	Filename string `json:"filename"`
}

// EpisodeDetails carries the sanitized episode metadata for assembly.
type EpisodeDetails struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Season      string   `json:"season"`
	Episode     string   `json:"episode,omitempty"`
	Tags        []string `json:"tags"`
	CoverArtURL string   `json:"coverArtUrl,omitempty"`
}

// SubmitRequest starts a backend assembly job.
type SubmitRequest struct {
	TemplateID       string            `json:"templateId"`
	SourceFilename   string            `json:"sourceFilename"`
	OutputName       string            `json:"outputName"`
	TTSValues        map[string]string `json:"ttsValues,omitempty"`
	EpisodeDetails   EpisodeDetails    `json:"episodeDetails"`
	RetakeCutsMS     [][2]int64        `json:"retakeCutsMs,omitempty"`
	Intents          SubmitIntents     `json:"intents"`
	UseAdvancedAudio bool              `json:"useAdvancedAudio"`
}

// SubmitIntents carries the confirmed intent answers with the submission.
type SubmitIntents struct {
	Retake      string `json:"retake"`
	Command     string `json:"command"`
	SoundEffect string `json:"soundEffect"`
}

// SubmitResponse identifies the created assembly job.
type SubmitResponse struct {
	JobID     string `json:"jobId"`
	EpisodeID string `json:"episodeId,omitempty"`
}

// Job status values reported by the backend.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobProcessed  = "processed"
	JobError      = "error"
)

// Episode is the assembled episode returned on job completion.
type Episode struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	AudioURL  string  `json:"audioUrl,omitempty"`
	DurationS float64 `json:"durationS,omitempty"`
}

// JobStatusResponse reports the current assembly job state.
type JobStatusResponse struct {
	Status  string   `json:"status"`
	Episode *Episode `json:"episode,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// PublishRequest publishes or schedules a completed episode.
type PublishRequest struct {
	EpisodeID      string `json:"episodeId"`
	PublishState   string `json:"publishState"`
	Visibility     string `json:"visibility,omitempty"`
	PublishAt      string `json:"publishAt,omitempty"`
	PublishAtLocal string `json:"publishAtLocal,omitempty"`
}

// PublishResponse acknowledges a publish call.
type PublishResponse struct {
	Message string `json:"message,omitempty"`
}

// PublishStatusResponse reports downstream delivery state after publishing.
type PublishStatusResponse struct {
	LastError string `json:"lastError,omitempty"`
}

// PrecheckRequest estimates quota cost for an assembly attempt.
type PrecheckRequest struct {
	TemplateID     string `json:"templateId"`
	SourceFilename string `json:"sourceFilename"`
}

// PrecheckResult is the server's minutes-quota verdict for one attempt.
type PrecheckResult struct {
	Allowed          bool    `json:"allowed"`
	MinutesRequired  float64 `json:"minutesRequired"`
	MinutesRemaining float64 `json:"minutesRemaining"`
	RenewsAt         string  `json:"renewsAt,omitempty"`
}

// UsageSnapshot is the account-level usage view. It is advisory; the server
// re-validates on submission.
type UsageSnapshot struct {
	EpisodesRemaining int     `json:"episodesRemaining"`
	MaxEpisodes       int     `json:"maxEpisodes"`
	MinutesRemaining  float64 `json:"minutesRemaining"`
	CreditsBalance    float64 `json:"creditsBalance"`
}

// CoverArtResponse reports the final artwork URL once processing finishes.
type CoverArtResponse struct {
	URL string `json:"url"`
}
