package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podpress/internal/config"
)

const userAgent = "Podpress-Go/0.1.0"

// Service defines the notification surface exposed to the producer.
type Service interface {
	NotifyProductionStarted(ctx context.Context, title string) error
	NotifyProductionCompleted(ctx context.Context, title string) error
	NotifyProductionFailed(ctx context.Context, title, reason string) error
	NotifyTakingAWhile(ctx context.Context, title string) error
	NotifyCancelled(ctx context.Context, title string) error
	NotifyPublished(ctx context.Context, title string) error
	NotifyPublishWarning(ctx context.Context, title, warning string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		production: cfg.Notifications.Production,
		publish:    cfg.Notifications.Publish,
		errors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	production bool
	publish    bool
	errors     bool
}

func (n *ntfyService) NotifyProductionStarted(ctx context.Context, title string) error {
	if !n.production {
		return nil
	}
	data := payload{
		title:   "Podpress - Production Started",
		message: fmt.Sprintf("Assembling episode: %s", strings.TrimSpace(title)),
		tags:    []string{"podpress", "production", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProductionCompleted(ctx context.Context, title string) error {
	if !n.production {
		return nil
	}
	data := payload{
		title:    "Podpress - Episode Ready",
		message:  fmt.Sprintf("Episode assembled: %s", strings.TrimSpace(title)),
		tags:     []string{"podpress", "production", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyProductionFailed(ctx context.Context, title, reason string) error {
	if !n.production {
		return nil
	}
	message := fmt.Sprintf("Assembly failed: %s", strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Podpress - Production Failed",
		message:  message,
		tags:     []string{"podpress", "production", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTakingAWhile(ctx context.Context, title string) error {
	if !n.production {
		return nil
	}
	data := payload{
		title:   "Podpress - Still Working",
		message: fmt.Sprintf("Assembly is taking longer than expected: %s\nIt may still finish on its own", strings.TrimSpace(title)),
		tags:    []string{"podpress", "production", "slow"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCancelled(ctx context.Context, title string) error {
	if !n.production {
		return nil
	}
	data := payload{
		title:   "Podpress - Cancelled",
		message: fmt.Sprintf("Production cancelled: %s\nServer-side work already started may still complete", strings.TrimSpace(title)),
		tags:    []string{"podpress", "production", "cancelled"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublished(ctx context.Context, title string) error {
	if !n.publish {
		return nil
	}
	data := payload{
		title:   "Podpress - Published",
		message: fmt.Sprintf("Episode published: %s", strings.TrimSpace(title)),
		tags:    []string{"podpress", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishWarning(ctx context.Context, title, warning string) error {
	if !n.publish {
		return nil
	}
	data := payload{
		title:   "Podpress - Publish Warning",
		message: fmt.Sprintf("Published with a warning: %s\n%s", strings.TrimSpace(title), strings.TrimSpace(warning)),
		tags:    []string{"podpress", "publish", "warning"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Podpress - Error",
		message:  builder.String(),
		tags:     []string{"podpress", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Podpress - Test",
		message:  "Notification system test",
		tags:     []string{"podpress", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

// NewNop returns a Service that drops every notification.
func NewNop() Service { return noopService{} }

func (noopService) NotifyProductionStarted(context.Context, string) error        { return nil }
func (noopService) NotifyProductionCompleted(context.Context, string) error      { return nil }
func (noopService) NotifyProductionFailed(context.Context, string, string) error { return nil }
func (noopService) NotifyTakingAWhile(context.Context, string) error             { return nil }
func (noopService) NotifyCancelled(context.Context, string) error                { return nil }
func (noopService) NotifyPublished(context.Context, string) error                { return nil }
func (noopService) NotifyPublishWarning(context.Context, string, string) error   { return nil }
func (noopService) NotifyError(context.Context, error, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
