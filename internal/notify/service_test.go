package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kamishibai/internal/config"
	"kamishibai/internal/notify"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notify.NewService(config.Notifications{})
	if err := svc.NotifyRunStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	tests := []struct {
		name           string
		send           func(svc notify.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run started",
			send: func(svc notify.Service) error {
				return svc.NotifyRunStarted(context.Background(), 4)
			},
			expectTitle:   "Kamishibai - Run Started",
			expectMessage: "Started publish run with 4 candidate recordings",
			expectTags:    "kamishibai,run,started",
		},
		{
			name: "item published",
			send: func(svc notify.Service) error {
				return svc.NotifyItemPublished(context.Background(), "昔話【桃太郎】", "2025-12-27T09:00:00+09:00")
			},
			expectTitle:   "Kamishibai - Published",
			expectMessage: "Scheduled: 昔話【桃太郎】\nPublish at: 2025-12-27T09:00:00+09:00",
			expectTags:    "kamishibai,publish,completed",
		},
		{
			name: "run completed clean",
			send: func(svc notify.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 2, 0, 90*time.Second)
			},
			expectTitle:   "Kamishibai - Run Complete",
			expectMessage: "Run complete: 2 recordings published in 1m30s",
			expectTags:    "kamishibai,run,completed",
		},
		{
			name: "run completed with failures",
			send: func(svc notify.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 1, 2, 10*time.Second)
			},
			expectTitle:   "Kamishibai - Run Complete (with errors)",
			expectMessage: "Run complete: 1 published, 2 failed in 10s",
			expectTags:    "kamishibai,run,completed",
		},
		{
			name: "error",
			send: func(svc notify.Service) error {
				return svc.NotifyError(context.Background(), errors.New("upload rejected"), "publish")
			},
			expectTitle:    "Kamishibai - Error",
			expectMessage:  "Error with publish: upload rejected",
			expectTags:     "kamishibai,error,alert",
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

			svc := notify.NewService(config.Notifications{
				NtfyTopic:      server.URL,
				RequestTimeout: 5,
			})
			if err := tc.send(svc); err != nil {
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

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := notify.NewService(config.Notifications{NtfyTopic: server.URL})
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
