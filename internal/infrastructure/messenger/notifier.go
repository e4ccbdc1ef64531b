package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sngm3741/affiliate-intake/api/internal/intake/application"
	"github.com/sngm3741/affiliate-intake/api/internal/intake/domain"
)

// Notifier はメッセンジャーゲートウェイ経由で新規応募を Discord / Slack へ通知する。
type Notifier struct {
	logger             *log.Logger
	httpClient         *http.Client
	endpoint           string
	discordDestination string
	slackDestination   string
	retryDelay         time.Duration
}

// Config defines dependencies required by Notifier.
type Config struct {
	Logger             *log.Logger
	HTTPClient         *http.Client
	Endpoint           string
	DiscordDestination string
	SlackDestination   string
	RetryDelay         time.Duration
}

// New returns nil when no endpoint or destination is configured.
func New(cfg Config) *Notifier {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	discord := strings.TrimSpace(cfg.DiscordDestination)
	slack := strings.TrimSpace(cfg.SlackDestination)
	if endpoint == "" || (discord == "" && slack == "") {
		return nil
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Notifier{
		logger:             cfg.Logger,
		httpClient:         client,
		endpoint:           endpoint,
		discordDestination: discord,
		slackDestination:   slack,
		retryDelay:         delay,
	}
}

var _ application.Notifier = (*Notifier)(nil)

// NotifyApplication は Discord を優先し、失敗した場合のみ Slack へフォールバックする。
func (n *Notifier) NotifyApplication(ctx context.Context, submissionID string, app domain.Application) {
	if n == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	identifier := strings.TrimSpace(submissionID)
	if identifier == "" {
		identifier = strings.TrimSpace(app.Email)
	}
	if identifier == "" {
		identifier = "admin"
	}

	if n.discordDestination != "" {
		err := n.sendWithRetry(ctx, n.discordDestination, identifier, buildDiscordMessage(submissionID, app), 3)
		if err == nil {
			return
		}
		n.logf("Discord通知の送信に失敗: %v", err)
	}

	if n.slackDestination != "" {
		if err := n.sendWithRetry(ctx, n.slackDestination, identifier, buildSlackMessage(submissionID, app), 1); err != nil {
			n.logf("Slack通知の送信に失敗: %v", err)
		}
	}
}

func (n *Notifier) logf(format string, args ...any) {
	if n.logger != nil {
		n.logger.Printf(format, args...)
	}
}

func buildDiscordMessage(submissionID string, app domain.Application) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("**%s** から新しいアフィリエイト応募があります。\n", displayName(app)))
	builder.WriteString(fmt.Sprintf("- Email: %s\n", app.Email))
	if app.Telegram != "" {
		builder.WriteString(fmt.Sprintf("- Telegram: %s\n", app.Telegram))
	}
	if link := app.PlatformLink(); link != "" {
		platform := app.SocialPlatform
		if platform == "" {
			platform = "x"
		}
		builder.WriteString(fmt.Sprintf("- %s: %s\n", platform, link))
	}
	builder.WriteString(fmt.Sprintf("- 地域: %s / %s\n", fallback(app.Country, "-"), fallback(app.Region, "-")))
	if app.PreferredContactMethod != "" {
		builder.WriteString(fmt.Sprintf("- 連絡方法: %s\n", app.PreferredContactMethod))
	}
	if submissionID != "" {
		builder.WriteString(fmt.Sprintf("- ID: `%s`\n", submissionID))
	}
	return builder.String()
}

func buildSlackMessage(submissionID string, app domain.Application) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(":incoming_envelope: %s さんから新しいアフィリエイト応募があります。\n", displayName(app)))
	builder.WriteString(fmt.Sprintf("Email: %s\n", app.Email))
	builder.WriteString(fmt.Sprintf("地域: %s / %s\n", fallback(app.Country, "-"), fallback(app.Region, "-")))
	if link := app.PlatformLink(); link != "" {
		builder.WriteString(fmt.Sprintf("リンク: %s\n", link))
	}
	if submissionID != "" {
		builder.WriteString(fmt.Sprintf("ID: %s\n", submissionID))
	}
	return builder.String()
}

func displayName(app domain.Application) string {
	if name := strings.TrimSpace(app.Name); name != "" {
		return name
	}
	if email := strings.TrimSpace(app.Email); email != "" {
		return email
	}
	return "匿名の応募者"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func (n *Notifier) sendWithRetry(ctx context.Context, destination, userID, text string, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = n.send(ctx, destination, userID, text)
		if lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(n.retryDelay):
			}
		}
	}
	return lastErr
}

func (n *Notifier) send(ctx context.Context, destination, userID, bodyText string) error {
	payload := map[string]any{
		"userId":      userID,
		"text":        bodyText,
		"destination": destination,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("メッセンジャー送信用ペイロードの作成に失敗: %w", err)
	}

	timeout := n.httpClient.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctxWithTimeout, http.MethodPost, n.endpoint+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("メッセンジャー送信リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("メッセンジャー送信リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("メッセンジャー送信でエラーが発生: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}

	return nil
}
