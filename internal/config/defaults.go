package config

const (
	defaultStateDir              = "~/.local/share/podpress"
	defaultLogDir                = "~/.local/share/podpress/logs"
	defaultStudioBaseURL         = "https://api.podpress.app/v1"
	defaultStudioRequestTimeout  = 30
	defaultVoiceProvider         = "standard"
	defaultSpeakingRate          = 1.0
	defaultCreditsPerSecond      = 0.4
	defaultDetectionMaxAttempts  = 5
	defaultDetectionRetryDelayMS = 750
	defaultRetakeMaxAttempts     = 20
	defaultRetakeRetryDelay      = 1
	defaultPollIntervalSeconds   = 5
	defaultPollTimeoutSeconds    = 300
	defaultStaleRetryDelayMS     = 750
	defaultScheduleMarginMinutes = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Studio: Studio{
			BaseURL:        defaultStudioBaseURL,
			RequestTimeout: defaultStudioRequestTimeout,
		},
		Voice: Voice{
			Provider:     defaultVoiceProvider,
			SpeakingRate: defaultSpeakingRate,
		},
		Credits: Credits{
			PerSecondRate: defaultCreditsPerSecond,
		},
		Detection: Detection{
			MaxAttempts:  defaultDetectionMaxAttempts,
			RetryDelayMS: defaultDetectionRetryDelayMS,
		},
		Retake: Retake{
			MaxAttempts:       defaultRetakeMaxAttempts,
			RetryDelaySeconds: defaultRetakeRetryDelay,
		},
		Assembly: Assembly{
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			PollTimeoutSeconds:    defaultPollTimeoutSeconds,
			StaleRetryDelayMS:     defaultStaleRetryDelayMS,
			ScheduleMarginMinutes: defaultScheduleMarginMinutes,
			SlowNotice:            true,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Production:     true,
			Publish:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
