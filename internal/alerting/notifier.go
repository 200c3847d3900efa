package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"politrades/internal/format"
	"politrades/internal/logging"
	"politrades/internal/models"
)

// Notification wraps an alert with delivery context.
type Notification struct {
	Alert    Alert
	Language models.Language
	Now      time.Time
	Channels []string
}

// Notifier delivers notifications to one channel.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier builds a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.Component(logger, "alert_log")}
}

// Notify logs the trade at info level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	t := note.Alert.Trade
	n.logger.Info().
		Str("trade_id", t.ID).
		Str("politician", t.Politician.Name).
		Str("ticker", t.Ticker).
		Str("type", string(t.Type)).
		Str("amount", format.AmountRange(t.Amount, note.Language)).
		Str("reason", string(note.Alert.Reason)).
		Msg("trade alert")
	return nil
}

// TelegramNotifier pushes notifications through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier builds a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logging.Component(logger, "alert_telegram"),
	}
}

// Notify calls sendMessage with the rendered text.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Str("trade_id", note.Alert.Trade.ID).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("alert sent (telegram)")
	return nil
}

// RenderMessage formats a notification as plain text.
func RenderMessage(note Notification) string {
	t := note.Alert.Trade
	lang := note.Language

	var b strings.Builder
	b.WriteString("[Politrades Alert]\n")
	fmt.Fprintf(&b, "%s (%s) %s %s\n", t.Politician.Name, format.PartyTag(t.Politician), strings.ToUpper(string(t.Type)), t.Ticker)
	if t.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", t.Company)
	}
	fmt.Fprintf(&b, "Amount: %s\n", format.AmountRange(t.Amount, lang))
	fmt.Fprintf(&b, "Filed: %s (%s after the trade)\n", t.FilingDate.Format("2006-01-02"), format.FilingLag(t.FilingLag(), lang))
	if !note.Now.IsZero() {
		fmt.Fprintf(&b, "Disclosed %s\n", format.Relative(t.FilingDate, note.Now))
	}
	fmt.Fprintf(&b, "Return since filing: %s\n", format.Percent(t.ReturnSinceFiling))
	fmt.Fprintf(&b, "Matched: followed %s, threshold %s\n", note.Alert.Reason, format.Threshold(note.Alert.Threshold))
	if t.SourceURL != "" {
		b.WriteString(t.SourceURL)
		b.WriteString("\n")
	}
	return b.String()
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

// Notify calls each notifier in order, continuing past failures.
func (f Fanout) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Fanout(nil)
)
