package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"showrunner/internal/config"
)

const userAgent = "Showrunner-Go/0.1.0"

// Event enumerates the orchestration milestones pushed to the sink.
type Event string

const (
	EventRoutingFallback     Event = "routing_fallback"
	EventGateWait            Event = "gate_wait"
	EventGenerationCompleted Event = "generation_completed"
	EventGenerationFailed    Event = "generation_failed"
	EventOrphanRecovered     Event = "orphan_recovered"
	EventEngineBlacklisted   Event = "engine_blacklisted"
	EventStuckCleared        Event = "stuck_cleared"
	EventError               Event = "error"
	EventTest                Event = "test"
)

// Payload carries event-specific fields used to format the message.
type Payload map[string]any

// Service is the fire-and-forget notification surface. Errors are returned
// for logging only; callers must never block core work on them.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

type ntfyService struct {
	endpoint string
	client   *http.Client
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg := formatMessage(event, payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}

func formatMessage(event Event, payload Payload) message {
	switch event {
	case EventRoutingFallback:
		return message{
			title: "Showrunner - Forced Fallback",
			body: fmt.Sprintf("Shot #%v routed to fallback engine %v despite blacklist",
				payload["shotID"], payload["engine"]),
			tags:     []string{"showrunner", "routing", "fallback"},
			priority: "high",
		}
	case EventGateWait:
		return message{
			title: "Showrunner - Accelerator Wait",
			body: fmt.Sprintf("%v has waited %v for the accelerator gate",
				payload["waiter"], payload["waited"]),
			tags:     []string{"showrunner", "gate", "wait"},
			priority: "high",
		}
	case EventGenerationCompleted:
		return message{
			title: "Showrunner - Shot Complete",
			body: fmt.Sprintf("Shot #%v rendered by %v in %v",
				payload["shotID"], payload["engine"], payload["duration"]),
			tags: []string{"showrunner", "generation", "completed"},
		}
	case EventGenerationFailed:
		return message{
			title: "Showrunner - Shot Failed",
			body: fmt.Sprintf("Shot #%v failed on %v: %v",
				payload["shotID"], payload["engine"], payload["error"]),
			tags:     []string{"showrunner", "generation", "failed"},
			priority: "high",
		}
	case EventOrphanRecovered:
		return message{
			title: "Showrunner - Orphan Recovered",
			body: fmt.Sprintf("Re-associated artifact %v with shot #%v",
				payload["artifact"], payload["shotID"]),
			tags: []string{"showrunner", "recovery"},
		}
	case EventEngineBlacklisted:
		return message{
			title: "Showrunner - Engine Blacklisted",
			body: fmt.Sprintf("Engine %v blacklisted for character %v: %v",
				payload["engine"], payload["characterID"], payload["reason"]),
			tags: []string{"showrunner", "review", "blacklist"},
		}
	case EventStuckCleared:
		return message{
			title: "Showrunner - Stuck Generations Cleared",
			body:  fmt.Sprintf("Force-failed %v stalled shot(s)", payload["count"]),
			tags:  []string{"showrunner", "recovery", "stuck"},
		}
	case EventError:
		return message{
			title:    "Showrunner - Error",
			body:     fmt.Sprintf("%v: %v", payload["context"], payload["error"]),
			tags:     []string{"showrunner", "error"},
			priority: "high",
		}
	case EventTest:
		return message{
			title: "Showrunner - Test",
			body:  "Notifications are configured correctly",
			tags:  []string{"showrunner", "test"},
		}
	default:
		return message{
			title: "Showrunner",
			body:  string(event),
			tags:  []string{"showrunner"},
		}
	}
}
