package api

// IntentAnswer is the transport form of a per-category classification.
type IntentAnswer struct {
	Answer string `json:"answer"`
	Count  int    `json:"count"`
}

// IntentView summarizes detection state for the pre-production questions.
type IntentView struct {
	Filename    string       `json:"filename"`
	Ready       bool         `json:"ready"`
	Retake      IntentAnswer `json:"retake"`
	Command     IntentAnswer `json:"command"`
	SoundEffect IntentAnswer `json:"soundEffect"`
}

// RetakeCandidate describes one retake marker found by the scan.
type RetakeCandidate struct {
	ID           string `json:"id"`
	ContextAudio string `json:"contextAudio"`
	TimestampMS  int64  `json:"timestampMs"`
}

// CommandView describes one prepared spoken command.
type CommandView struct {
	CommandID    string  `json:"commandId"`
	StartS       float64 `json:"startS"`
	EndS         float64 `json:"endS"`
	ResponseText string  `json:"responseText"`
	AudioURL     string  `json:"audioUrl,omitempty"`
	VoiceID      string  `json:"voiceId,omitempty"`
}

// SessionView describes the current production session for status surfaces.
type SessionView struct {
	RequestID   string `json:"requestId"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	State       string `json:"state"`
	Note        string `json:"note,omitempty"`
	JobID       string `json:"jobId,omitempty"`
	EpisodeID   string `json:"episodeId,omitempty"`
	Completed   bool   `json:"completed"`
	LastError   string `json:"lastError,omitempty"`
	LastWarning string `json:"lastWarning,omitempty"`
}

// UsageView describes the cached account usage snapshot.
type UsageView struct {
	EpisodesRemaining int     `json:"episodesRemaining"`
	MaxEpisodes       int     `json:"maxEpisodes"`
	MinutesRemaining  float64 `json:"minutesRemaining"`
	CreditsBalance    float64 `json:"creditsBalance"`
}

// PublishView reports the outcome of a publish attempt.
type PublishView struct {
	Performed bool   `json:"performed"`
	Message   string `json:"message,omitempty"`
	Warning   string `json:"warning,omitempty"`
}
