package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStudio(); err != nil {
		return err
	}
	if err := c.validateBudgets(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStudio() error {
	if strings.TrimSpace(c.Studio.APIToken) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/podpress/config.toml"
		}
		return fmt.Errorf("studio.api_token is required. Set PODPRESS_API_TOKEN env var or edit %s (create with 'podpress config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Studio.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("studio.base_url %q is not a valid URL", c.Studio.BaseURL)
	}
	return nil
}

func (c *Config) validateBudgets() error {
	if err := ensurePositiveMap(map[string]int{
		"studio.request_timeout":          c.Studio.RequestTimeout,
		"detection.max_attempts":          c.Detection.MaxAttempts,
		"detection.retry_delay_ms":        c.Detection.RetryDelayMS,
		"retake.max_attempts":             c.Retake.MaxAttempts,
		"retake.retry_delay_seconds":      c.Retake.RetryDelaySeconds,
		"assembly.poll_interval_seconds":  c.Assembly.PollIntervalSeconds,
		"assembly.poll_timeout_seconds":   c.Assembly.PollTimeoutSeconds,
		"assembly.stale_retry_delay_ms":   c.Assembly.StaleRetryDelayMS,
		"assembly.schedule_margin_minute": c.Assembly.ScheduleMarginMinutes,
	}); err != nil {
		return err
	}
	if c.Assembly.PollTimeoutSeconds <= c.Assembly.PollIntervalSeconds {
		return errors.New("assembly.poll_timeout_seconds must be greater than assembly.poll_interval_seconds")
	}
	if c.Credits.PerSecondRate <= 0 {
		return errors.New("credits.per_second_rate must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
