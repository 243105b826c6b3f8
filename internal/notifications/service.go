package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"photovault/internal/config"
)

const userAgent = "PhotoVault/0.1.0"

// Service defines the notification surface exposed to backup components.
type Service interface {
	NotifyRunStarted(ctx context.Context, scope string) error
	NotifyRunCompleted(ctx context.Context, downloaded, skipped, errored int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error, contextLabel string) error
	NotifyTakeoutCompleted(ctx context.Context, processed, duplicates, errored int) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

// NewNoop returns a notification service that discards every event.
func NewNoop() Service {
	return noopService{}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = "entire library"
	}
	data := payload{
		title:   "PhotoVault - Backup Started",
		message: fmt.Sprintf("Backing up %s", scope),
		tags:    []string{"photovault", "backup", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, downloaded, skipped, errored int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if errored == 0 {
		title = "PhotoVault - Backup Complete"
		message = fmt.Sprintf("Backup complete: %d downloaded, %d already backed up in %s", downloaded, skipped, durationText)
	} else {
		title = "PhotoVault - Backup Complete (with errors)"
		message = fmt.Sprintf("Backup complete: %d downloaded, %d already backed up, %d failed in %s", downloaded, skipped, errored, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"photovault", "backup", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Backup failed")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "PhotoVault - Backup Failed",
		message:  builder.String(),
		tags:     []string{"photovault", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTakeoutCompleted(ctx context.Context, processed, duplicates, errored int) error {
	var title string
	var message string
	if errored == 0 {
		title = "PhotoVault - Takeout Import Complete"
		message = fmt.Sprintf("Takeout import complete: %d files imported, %d duplicates skipped", processed, duplicates)
	} else {
		title = "PhotoVault - Takeout Import Complete (with errors)"
		message = fmt.Sprintf("Takeout import complete: %d imported, %d duplicates, %d failed", processed, duplicates, errored)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"photovault", "takeout", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "PhotoVault - Test",
		message:  "Notification system test",
		tags:     []string{"photovault", "test"},
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

func (noopService) NotifyRunStarted(context.Context, string) error { return nil }

func (noopService) NotifyRunCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}

func (noopService) NotifyRunFailed(context.Context, error, string) error { return nil }

func (noopService) NotifyTakeoutCompleted(context.Context, int, int, int) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
