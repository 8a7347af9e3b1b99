// Package notify delivers breakout alerts to webhook and Telegram channels.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"options-dashboard/internal/config"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/pkg/utils"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	SendBreakouts(ctx context.Context, rows []models.BreakoutRow) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const NotificationBreakout NotificationType = "breakout"

const sendTimeout = 10 * time.Second

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []NotificationChannel
	mu       sync.RWMutex
}

// NewMultiNotifier creates a MultiNotifier with the configured channels.
func NewMultiNotifier(cfg config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{}
	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookNotifier(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramNotifier(cfg.Telegram))
	}
	return mn
}

// New returns a MultiNotifier when notifications are enabled, a NoOpNotifier otherwise.
func New(cfg config.NotificationConfig) Notifier {
	if !cfg.Enabled {
		return NewNoOpNotifier()
	}
	return NewMultiNotifier(cfg)
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Send sends a notification to all enabled channels. Every channel is
// attempted; failures are joined into one error.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	logger := logging.FromContext(ctx)
	var errs []string
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			logger.Debug().Err(err).Str("channel", ch.Name()).Msg("Notification channel failed")
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendBreakouts sends one alert listing rows. Empty rows send nothing.
func (mn *MultiNotifier) SendBreakouts(ctx context.Context, rows []models.BreakoutRow) error {
	if len(rows) == 0 {
		return nil
	}
	return mn.Send(ctx, BreakoutNotification(rows))
}

// BreakoutNotification formats rows as an alert.
func BreakoutNotification(rows []models.BreakoutRow) Notification {
	title := fmt.Sprintf("📈 %d new breakout", len(rows))
	if len(rows) != 1 {
		title += "s"
	}

	var sb strings.Builder
	symbols := make([]string, 0, len(rows))
	for i, r := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s @ %s: %s", r.Symbol, utils.FormatIndianCurrency(r.Price), r.Signal)
		symbols = append(symbols, r.Symbol)
	}

	return Notification{
		Type:    NotificationBreakout,
		Title:   title,
		Message: sb.String(),
		Data: map[string]interface{}{
			"symbols": symbols,
			"rows":    rows,
		},
	}
}

// WebhookNotifier sends notifications via HTTP webhook.
type WebhookNotifier struct {
	url     string
	enabled bool
	client  *resty.Client
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: resty.New().
			SetTimeout(sendTimeout).
			SetHeader("User-Agent", "OptionsDashboard/1.0"),
	}
}

// Name returns the name of the notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// IsEnabled returns whether the notifier is enabled.
func (w *WebhookNotifier) IsEnabled() bool {
	return w.enabled
}

// Send posts the notification as JSON.
func (w *WebhookNotifier) Send(ctx context.Context, n Notification) error {
	if !w.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"data":      n.Data,
		"timestamp": n.Timestamp.Format(time.RFC3339),
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// TelegramNotifier sends notifications via Telegram bot.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	baseURL  string
	client   *resty.Client
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != "",
		baseURL:  "https://api.telegram.org",
		client:   resty.New().SetTimeout(sendTimeout),
	}
}

// Name returns the name of the notifier.
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

// Send sends a notification via the sendMessage API in HTML parse mode.
func (t *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	if !t.enabled {
		return nil
	}

	text := fmt.Sprintf("<b>%s</b>\n\n%s", escapeHTML(n.Title), escapeHTML(n.Message))

	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken))
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode())
	}
	return nil
}

// escapeHTML escapes HTML special characters for Telegram.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// NoOpNotifier discards every notification.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) Send(ctx context.Context, notif Notification) error {
	return nil
}

func (n *NoOpNotifier) SendBreakouts(ctx context.Context, rows []models.BreakoutRow) error {
	return nil
}
