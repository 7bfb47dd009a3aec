// Package notify delivers weekly reports and health alerts to Discord
// webhooks. Delivery is best effort: callers log failures and move on, the
// pipeline never depends on a webhook being reachable.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fxmonitor/internal/config"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Discord embed colors per severity.
const (
	colorBlue   = 3447003
	colorYellow = 16776960
	colorRed    = 15158332
)

// Notifier is the alert sink consumed by the monitor.
type Notifier interface {
	SendAlert(ctx context.Context, title, message string, severity Severity) error
	SendReport(ctx context.Context, content string) error
}

// Discord posts embeds to two webhooks: one for weekly sentiment reports and
// one for operational health alerts. Either URL may be empty, in which case
// the corresponding send is a logged no-op.
type Discord struct {
	ReportURL string
	HealthURL string

	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewDiscord(cfg config.NotifyConfig, logger *zap.Logger) *Discord {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Discord{
		ReportURL:  cfg.WebhookURL,
		HealthURL:  cfg.HealthWebhookURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

// SendAlert posts a health alert embed colored by severity.
func (d *Discord) SendAlert(ctx context.Context, title, message string, severity Severity) error {
	if d.HealthURL == "" {
		d.Logger.Warn("health webhook not configured, alert dropped", zap.String("title", title))
		return nil
	}

	color := colorBlue
	switch severity {
	case SeverityWarning:
		color = colorYellow
	case SeverityCritical:
		color = colorRed
	}

	payload := webhookPayload{
		Embeds: []embed{{
			Title:       fmt.Sprintf("%s: %s", severity, title),
			Description: message,
			Color:       color,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return d.post(ctx, d.HealthURL, payload)
}

// SendReport posts the weekly sentiment report as plain content.
func (d *Discord) SendReport(ctx context.Context, content string) error {
	if d.ReportURL == "" {
		d.Logger.Warn("report webhook not configured, report dropped")
		return nil
	}
	return d.post(ctx, d.ReportURL, webhookPayload{Content: content})
}

func (d *Discord) post(ctx context.Context, url string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned http %d", resp.StatusCode)
	}
	return nil
}
