// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// telegramAPIBase is the bot API root. Tests point it at a local server.
var telegramAPIBase = "https://api.telegram.org"

// Sender delivers one scored idea to a notification channel.
type Sender interface {
	Send(ctx context.Context, idea types.ScoredIdea) error
}

// TelegramSender posts Markdown messages through the Telegram bot API.
type TelegramSender struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ Sender = (*TelegramSender)(nil)

// NewTelegramSender registers the bot token and target chat.
func NewTelegramSender(botToken, chatID string) *TelegramSender {
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the formatted idea message to the configured chat.
func (t *TelegramSender) Send(ctx context.Context, idea types.ScoredIdea) error {
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram sender misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.botToken)
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", FormatMessage(idea))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

// FormatMessage renders one idea as a Telegram Markdown message.
func FormatMessage(idea types.ScoredIdea) string {
	a := idea.Analysis

	hashtags := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		hashtags = append(hashtags, "#"+strings.ReplaceAll(tag, " ", "_"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *New Promising Idea!*\n\n")
	fmt.Fprintf(&b, "*%s*\n\n", idea.Idea.Primary.Raw.Title)
	fmt.Fprintf(&b, "%s\n\n", a.Summary)
	fmt.Fprintf(&b, "📊 *Score:* %.0f/100\n", a.Score*100)
	fmt.Fprintf(&b, "🔍 *Difficulty:* %s\n", a.Difficulty)
	fmt.Fprintf(&b, "💼 *Market potential:* %s\n\n", a.MarketPotential)
	if a.Insight != "" {
		fmt.Fprintf(&b, "💡 *Insight:* %s\n\n", a.Insight)
	}
	fmt.Fprintf(&b, "🔗 [Source](%s)", idea.Idea.Primary.Raw.URL)
	if len(hashtags) > 0 {
		fmt.Fprintf(&b, "\n\n%s", strings.Join(hashtags, " "))
	}
	return b.String()
}
