package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

const alertKeyPrefix = "alert:report:"

// AlertPublisher streams high-risk reports to subscribers
type AlertPublisher interface {
	PublishHighRisk(ctx context.Context, report *models.AnalysisReport) error
}

// AlertDeduper claims a key for a period; false means it was already claimed
type AlertDeduper interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// AlertConfig controls when and where alerts go
type AlertConfig struct {
	WebhookURL string
	Threshold  int
	Cooldown   time.Duration
	Timeout    time.Duration
}

// AlertNotifier sends high-risk reports to a chat webhook and the event
// stream. It implements Notifier.
type AlertNotifier struct {
	cfg       AlertConfig
	client    *http.Client
	deduper   AlertDeduper
	publisher AlertPublisher
	logger    *logger.Logger
}

var _ Notifier = (*AlertNotifier)(nil)

// NewAlertNotifier creates a notifier. deduper and publisher are optional.
func NewAlertNotifier(cfg AlertConfig, deduper AlertDeduper, publisher AlertPublisher, log *logger.Logger) *AlertNotifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = MaliciousThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &AlertNotifier{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		deduper:   deduper,
		publisher: publisher,
		logger:    log.WithComponent("alert-notifier"),
	}
}

// Notify alerts on reports at or above the threshold. Repeats of the same
// report inside the cooldown are dropped.
func (n *AlertNotifier) Notify(ctx context.Context, report *models.AnalysisReport) error {
	if report == nil || report.RiskScore < n.cfg.Threshold {
		return nil
	}
	if n.cfg.WebhookURL == "" && n.publisher == nil {
		return nil
	}

	if n.deduper != nil && n.cfg.Cooldown > 0 {
		claimed, err := n.deduper.SetNX(ctx, alertKeyPrefix+report.ID.String(), "1", n.cfg.Cooldown)
		if err != nil {
			n.logger.Warn().Err(err).Msg("alert cooldown check failed, sending anyway")
		} else if !claimed {
			n.logger.Debug().Str("report_id", report.ID.String()).Msg("alert suppressed by cooldown")
			return nil
		}
	}

	var errs []error
	if n.publisher != nil {
		if err := n.publisher.PublishHighRisk(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("publish alert event: %w", err))
		}
	}
	if n.cfg.WebhookURL != "" {
		if err := n.postWebhook(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("post alert webhook: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	n.logger.Info().
		Str("report_id", report.ID.String()).
		Str("input", report.Input).
		Int("risk_score", report.RiskScore).
		Msg("high risk alert sent")
	return nil
}

// chat webhook payload, compatible with Slack incoming webhooks
type webhookMessage struct {
	Text   string         `json:"text"`
	Blocks []webhookBlock `json:"blocks"`
}

type webhookBlock struct {
	Type     string        `json:"type"`
	Text     *webhookText  `json:"text,omitempty"`
	Elements []webhookText `json:"elements,omitempty"`
}

type webhookText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newWebhookMessage(report *models.AnalysisReport) webhookMessage {
	engine := report.Metadata.Engine
	if engine == "" {
		engine = "ThreatAnalyzer"
	}
	return webhookMessage{
		Text: "*High Risk Threat Detected*",
		Blocks: []webhookBlock{
			{
				Type: "section",
				Text: &webhookText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*Target:* `%s`\n*Verdict:* %s\n*Score:* %d/100",
						report.Input, report.RiskLevel, report.RiskScore),
				},
			},
			{
				Type: "section",
				Text: &webhookText{Type: "mrkdwn", Text: "> " + report.Summary},
			},
			{
				Type: "context",
				Elements: []webhookText{
					{Type: "mrkdwn", Text: fmt.Sprintf("Powered by %s | ID: %s", engine, report.ID)},
				},
			},
		},
	}
}

func (n *AlertNotifier) postWebhook(ctx context.Context, report *models.AnalysisReport) error {
	body, err := json.Marshal(newWebhookMessage(report))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
