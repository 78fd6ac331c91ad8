package ipc

import "podpress/internal/api"

// StartRequest asks the daemon to begin accepting production work.
type StartRequest struct{}

// StartResponse reports the outcome of a start request.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}

// StopRequest asks the daemon to stop.
type StopRequest struct{}

// StopResponse reports the outcome of a stop request.
type StopResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message,omitempty"`
}

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse carries daemon runtime information.
type StatusResponse struct {
	Running     bool            `json:"running"`
	PID         int             `json:"pid"`
	Session     api.SessionView `json:"session"`
	Usage       *api.UsageView  `json:"usage,omitempty"`
	PrefsDBPath string          `json:"prefsDbPath"`
	LockPath    string          `json:"lockPath"`
	SocketPath  string          `json:"socketPath"`
}

// StartSessionRequest begins a production session for an uploaded recording.
type StartSessionRequest struct {
	Filename   string `json:"filename"`
	TemplateID string `json:"templateId"`
	VoiceID    string `json:"voiceId,omitempty"`
}

// StartSessionResponse reports the new session identity.
type StartSessionResponse struct {
	RequestID string `json:"requestId"`
}

// DetectIntentsRequest runs intent detection for the session transcript.
type DetectIntentsRequest struct{}

// DetectIntentsResponse carries the resulting classification.
type DetectIntentsResponse struct {
	Intents api.IntentView `json:"intents"`
}

// ConfirmIntentRequest records the user's answer for one category.
type ConfirmIntentRequest struct {
	Category string `json:"category"`
	Answer   string `json:"answer"`
}

// ConfirmIntentResponse carries the updated classification.
type ConfirmIntentResponse struct {
	Intents api.IntentView `json:"intents"`
}

// ScanRetakesRequest runs the retake scan for the session source.
type ScanRetakesRequest struct{}

// ScanRetakesResponse reports the scan outcome and any candidates.
type ScanRetakesResponse struct {
	Outcome    string                `json:"outcome"`
	Candidates []api.RetakeCandidate `json:"candidates,omitempty"`
}

// FinishRetakeReviewRequest closes the retake review. Cuts are ignored when
// Confirmed is false.
type FinishRetakeReviewRequest struct {
	Confirmed bool       `json:"confirmed"`
	CutsMS    [][2]int64 `json:"cutsMs,omitempty"`
}

// FinishRetakeReviewResponse acknowledges the review close.
type FinishRetakeReviewResponse struct{}

// PrepareCommandsRequest prepares spoken command contexts for review.
type PrepareCommandsRequest struct{}

// PrepareCommandsResponse carries the prepared commands.
type PrepareCommandsResponse struct {
	Commands []api.CommandView `json:"commands"`
}

// ExecuteCommandRequest resolves one spoken command into a concrete edit.
type ExecuteCommandRequest struct {
	CommandID    string  `json:"commandId"`
	StartS       float64 `json:"startS"`
	EndS         float64 `json:"endS"`
	OverrideText string  `json:"overrideText,omitempty"`
	Regenerate   bool    `json:"regenerate,omitempty"`
	VoiceID      string  `json:"voiceId,omitempty"`
}

// ExecuteCommandResponse acknowledges the execution.
type ExecuteCommandResponse struct{}

// SetMetadataRequest records episode metadata and the publish decision.
type SetMetadataRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Season           string   `json:"season,omitempty"`
	Episode          string   `json:"episode,omitempty"`
	Tags             string   `json:"tags,omitempty"`
	TagList          []string `json:"tagList,omitempty"`
	CoverArtURL      string   `json:"coverArtUrl,omitempty"`
	PendingArtworkID string   `json:"pendingArtworkId,omitempty"`
	DurationSeconds  float64  `json:"durationSeconds"`
	PublishMode      string   `json:"publishMode"`
	Visibility       string   `json:"visibility,omitempty"`
	PublishAt        string   `json:"publishAt,omitempty"`
}

// SetMetadataResponse acknowledges the metadata update.
type SetMetadataResponse struct{}

// ProduceRequest submits the assembly job for the current session.
type ProduceRequest struct{}

// ProduceResponse reports the submitted job.
type ProduceResponse struct {
	JobID   string          `json:"jobId"`
	Session api.SessionView `json:"session"`
}

// PublishRequest publishes the completed episode manually.
type PublishRequest struct {
	Mode       string `json:"mode"`
	Visibility string `json:"visibility,omitempty"`
	PublishAt  string `json:"publishAt,omitempty"`
}

// PublishResponse reports the publish outcome.
type PublishResponse struct {
	Result api.PublishView `json:"result"`
}

// CancelRequest stops watching the current session locally.
type CancelRequest struct{}

// CancelResponse acknowledges the cancellation.
type CancelResponse struct{}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
