package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytharvest/internal/config"
)

const userAgent = "ytharvest/0.1.0"

// Event names a pipeline milestone.
type Event string

const (
	EventDiscoveryCompleted  Event = "discovery_completed"
	EventEnrichmentCompleted Event = "enrichment_completed"
	EventRunFailed           Event = "run_failed"
	EventTest                Event = "test"
)

// Payload carries event details. Keys are event specific.
type Payload map[string]any

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("unsupported notification event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventDiscoveryCompleted:
		return message{
			title: "ytharvest - Discovery Complete",
			body: fmt.Sprintf("Found %d of %d channels in %d searches (band %s)",
				intValue(payload, "channels"), intValue(payload, "target"),
				intValue(payload, "attempts"), stringValue(payload, "band")),
			tags: []string{"ytharvest", "discovery", "completed"},
		}, true
	case EventEnrichmentCompleted:
		body := fmt.Sprintf("Wrote %d rows: %d with video, %d without",
			intValue(payload, "rows"), intValue(payload, "resolved"), intValue(payload, "unresolved"))
		if output := stringValue(payload, "output"); output != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, output)
		}
		return message{
			title: "ytharvest - Enrichment Complete",
			body:  body,
			tags:  []string{"ytharvest", "enrichment", "completed"},
		}, true
	case EventRunFailed:
		var builder strings.Builder
		builder.WriteString("Run failed")
		if stage := stringValue(payload, "stage"); stage != "" {
			builder.WriteString(" during ")
			builder.WriteString(stage)
		}
		builder.WriteString(": ")
		if errText := stringValue(payload, "error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "ytharvest - Error",
			body:     builder.String(),
			tags:     []string{"ytharvest", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "ytharvest - Test",
			body:     "Notification system test",
			tags:     []string{"ytharvest", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
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

func stringValue(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func intValue(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
