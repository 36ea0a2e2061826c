package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"tcgindex/internal/config"
)

// Embed colors.
const (
	colorGreen = 5763719
	colorRed   = 15548997
)

const footerText = "TCG Market Indexes"

// Notifier sends operational notifications to a Discord webhook. A
// missing webhook URL disables it; delivery failures are logged and
// swallowed so a notification never fails a batch run.
type Notifier struct {
	webhookURL string
	http       *resty.Client
	logger     *slog.Logger
}

// New builds a notifier from configuration.
func New(cfg config.DiscordConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		webhookURL: cfg.WebhookURL,
		http:       resty.New().SetTimeout(cfg.Timeout),
		logger:     logger,
	}
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Timestamp   string      `json:"timestamp"`
	Footer      embedFooter `json:"footer"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// Success sends a green embed.
func (n *Notifier) Success(ctx context.Context, title, description string) {
	n.send(ctx, title, description, colorGreen)
}

// Failure sends a red embed.
func (n *Notifier) Failure(ctx context.Context, title, description string) {
	n.send(ctx, title, description, colorRed)
}

func (n *Notifier) send(ctx context.Context, title, description string, color int) {
	if n.webhookURL == "" {
		return
	}
	payload := webhookPayload{Embeds: []embed{{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      embedFooter{Text: footerText},
	}}}

	resp, err := n.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.webhookURL)
	if err != nil {
		n.logger.WarnContext(ctx, "discord notification failed", "error", err)
		return
	}
	if resp.IsError() {
		n.logger.WarnContext(ctx, "discord notification rejected", "status", resp.StatusCode())
	}
}
