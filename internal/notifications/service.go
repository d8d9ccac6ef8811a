package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scriptqueue/internal/config"
	"scriptqueue/internal/queue"
)

const userAgent = "ScriptQueue-Go/0.1.0"

// Service defines the notification surface exposed to daemon components.
type Service interface {
	NotifyDeadline(ctx context.Context, item queue.Item, classification string) error
	NotifyCompleted(ctx context.Context, item queue.Item, worker string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		deadlines:   cfg.Notifications.Deadlines,
		completions: cfg.Notifications.Completions,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	deadlines   bool
	completions bool
	errors      bool
}

func (n *ntfyService) NotifyDeadline(ctx context.Context, item queue.Item, classification string) error {
	if !n.deadlines {
		return nil
	}
	var message string
	switch classification {
	case "overdue":
		message = fmt.Sprintf("Deadline passed: %s", item.Title)
	case "due-today":
		message = fmt.Sprintf("Due today: %s", item.Title)
	default:
		message = fmt.Sprintf("Due soon: %s", item.Title)
	}
	if item.Deadline != nil {
		message = fmt.Sprintf("%s (deadline %s)", message, item.Deadline.Format("2006-01-02"))
	}
	data := payload{
		title:   "ScriptQueue - Deadline",
		message: message,
		tags:    []string{"scriptqueue", "deadline", classification},
	}
	if classification == "overdue" {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCompleted(ctx context.Context, item queue.Item, worker string) error {
	if !n.completions {
		return nil
	}
	worker = strings.TrimSpace(worker)
	if worker == "" {
		worker = item.ClaimedBy
	}
	data := payload{
		title:   "ScriptQueue - Job Complete",
		message: fmt.Sprintf("%s completed %q ($%.2f)", worker, item.Title, item.Price),
		tags:    []string{"scriptqueue", "job", "completed"},
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
		builder.WriteString(" in ")
		builder.WriteString(contextLabel)
	}
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(err.Error())
	}
	data := payload{
		title:    "ScriptQueue - Error",
		message:  builder.String(),
		tags:     []string{"scriptqueue", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ScriptQueue - Test",
		message:  "Notification system test",
		tags:     []string{"scriptqueue", "test"},
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

func (noopService) NotifyDeadline(context.Context, queue.Item, string) error { return nil }
func (noopService) NotifyCompleted(context.Context, queue.Item, string) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
