package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"podpress/internal/config"
	"podpress/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyProductionCompleted(context.Background(), "Episode One"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "production started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyProductionStarted(context.Background(), "Episode One")
			},
			expectTitle:   "Podpress - Production Started",
			expectMessage: "Assembling episode: Episode One",
			expectTags:    "podpress,production,started",
		},
		{
			name: "production completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyProductionCompleted(context.Background(), "Episode One")
			},
			expectTitle:    "Podpress - Episode Ready",
			expectMessage:  "Episode assembled: Episode One",
			expectTags:     "podpress,production,completed",
			expectPriority: "high",
		},
		{
			name: "production failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyProductionFailed(context.Background(), "Episode One", "render failed")
			},
			expectTitle:    "Podpress - Production Failed",
			expectMessage:  "Assembly failed: Episode One\nrender failed",
			expectTags:     "podpress,production,failed",
			expectPriority: "high",
		},
		{
			name: "cancelled",
			notify: func(svc notifications.Service) error {
				return svc.NotifyCancelled(context.Background(), "Episode One")
			},
			expectTitle:   "Podpress - Cancelled",
			expectMessage: "Production cancelled: Episode One\nServer-side work already started may still complete",
			expectTags:    "podpress,production,cancelled",
		},
		{
			name: "publish warning",
			notify: func(svc notifications.Service) error {
				return svc.NotifyPublishWarning(context.Background(), "Episode One", "feed host rejected the item")
			},
			expectTitle:   "Podpress - Publish Warning",
			expectMessage: "Published with a warning: Episode One\nfeed host rejected the item",
			expectTags:    "podpress,publish,warning",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("token expired"), "submission")
			},
			expectTitle:    "Podpress - Error",
			expectMessage:  "Error with submission: token expired",
			expectTags:     "podpress,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.Production = true
			cfg.Notifications.Publish = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Production = false
	cfg.Notifications.Publish = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyProductionStarted(context.Background(), "Episode One"); err != nil {
		t.Fatalf("disabled production notification errored: %v", err)
	}
	if err := svc.NotifyPublished(context.Background(), "Episode One"); err != nil {
		t.Fatalf("disabled publish notification errored: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("x"), "poll"); err != nil {
		t.Fatalf("disabled error notification errored: %v", err)
	}
}
