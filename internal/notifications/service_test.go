package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"showrunner/internal/config"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""

	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("service = %T, want noop", service)
	}
	if err := service.Publish(context.Background(), EventTest, nil); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}

func TestPublishSendsNtfyRequest(t *testing.T) {
	var (
		gotTitle    string
		gotTags     string
		gotPriority string
		gotBody     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	service := NewService(&cfg)
	err := service.Publish(context.Background(), EventGenerationFailed, Payload{
		"shotID": int64(7),
		"engine": "framepack",
		"error":  "CUDA out of memory",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotTitle != "Showrunner - Shot Failed" {
		t.Fatalf("title = %q", gotTitle)
	}
	if gotPriority != "high" {
		t.Fatalf("priority = %q, want high", gotPriority)
	}
	if !strings.Contains(gotTags, "failed") {
		t.Fatalf("tags = %q", gotTags)
	}
	if !strings.Contains(gotBody, "CUDA out of memory") || !strings.Contains(gotBody, "#7") {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestPublishSurfacesRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	service := NewService(&cfg)
	if err := service.Publish(context.Background(), EventTest, nil); err == nil {
		t.Fatal("rejected notification must return an error")
	}
}

func TestFormatMessageCoversEveryEvent(t *testing.T) {
	events := []Event{
		EventRoutingFallback,
		EventGateWait,
		EventGenerationCompleted,
		EventGenerationFailed,
		EventOrphanRecovered,
		EventEngineBlacklisted,
		EventStuckCleared,
		EventError,
		EventTest,
	}
	for _, event := range events {
		msg := formatMessage(event, Payload{})
		if msg.title == "" || msg.body == "" {
			t.Fatalf("event %s produced empty message: %+v", event, msg)
		}
	}
}
