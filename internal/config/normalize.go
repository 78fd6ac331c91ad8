package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStudio()
	c.normalizeVoice()
	c.normalizeBudgets()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStudio() {
	c.Studio.BaseURL = strings.TrimRight(strings.TrimSpace(c.Studio.BaseURL), "/")
	if c.Studio.BaseURL == "" {
		c.Studio.BaseURL = defaultStudioBaseURL
	}
	c.Studio.APIToken = strings.TrimSpace(c.Studio.APIToken)
	if c.Studio.APIToken == "" {
		if value, ok := os.LookupEnv("PODPRESS_API_TOKEN"); ok {
			c.Studio.APIToken = strings.TrimSpace(value)
		}
	}
	if c.Studio.RequestTimeout <= 0 {
		c.Studio.RequestTimeout = defaultStudioRequestTimeout
	}
}

func (c *Config) normalizeVoice() {
	c.Voice.Provider = strings.ToLower(strings.TrimSpace(c.Voice.Provider))
	if c.Voice.Provider == "" {
		c.Voice.Provider = defaultVoiceProvider
	}
	c.Voice.DefaultVoice = strings.TrimSpace(c.Voice.DefaultVoice)
	if c.Voice.SpeakingRate <= 0 {
		c.Voice.SpeakingRate = defaultSpeakingRate
	}
}

func (c *Config) normalizeBudgets() {
	if c.Credits.PerSecondRate <= 0 {
		c.Credits.PerSecondRate = defaultCreditsPerSecond
	}
	if c.Detection.MaxAttempts <= 0 {
		c.Detection.MaxAttempts = defaultDetectionMaxAttempts
	}
	if c.Detection.RetryDelayMS <= 0 {
		c.Detection.RetryDelayMS = defaultDetectionRetryDelayMS
	}
	if c.Retake.MaxAttempts <= 0 {
		c.Retake.MaxAttempts = defaultRetakeMaxAttempts
	}
	if c.Retake.RetryDelaySeconds <= 0 {
		c.Retake.RetryDelaySeconds = defaultRetakeRetryDelay
	}
	if c.Assembly.PollIntervalSeconds <= 0 {
		c.Assembly.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Assembly.PollTimeoutSeconds <= 0 {
		c.Assembly.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Assembly.StaleRetryDelayMS <= 0 {
		c.Assembly.StaleRetryDelayMS = defaultStaleRetryDelayMS
	}
	if c.Assembly.ScheduleMarginMinutes <= 0 {
		c.Assembly.ScheduleMarginMinutes = defaultScheduleMarginMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
