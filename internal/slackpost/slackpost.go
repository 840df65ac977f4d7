// Package slackpost posts standup notes to Slack, through an incoming
// webhook or as a bot.
package slackpost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/Tiliavir/synthetic/internal/config"
)

// ErrNotConfigured is returned when neither a webhook nor a token is set.
var ErrNotConfigured = errors.New("slack is not configured: set slack.webhook_url or slack.token and slack.channel")

// Poster sends text messages to one Slack destination.
type Poster struct {
	webhookURL string
	channel    string
	httpClient *http.Client
	api        *slack.Client
}

// Option adjusts a Poster.
type Option func(*Poster, *[]slack.Option)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Poster, opts *[]slack.Option) {
		p.httpClient = c
		*opts = append(*opts, slack.OptionHTTPClient(c))
	}
}

// WithAPIURL points the bot client at another Web API root.
func WithAPIURL(u string) Option {
	return func(_ *Poster, opts *[]slack.Option) {
		*opts = append(*opts, slack.OptionAPIURL(u))
	}
}

// New builds a Poster from the config. A webhook wins over a bot token.
func New(cfg config.SlackConfig, options ...Option) (*Poster, error) {
	p := &Poster{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	var slackOpts []slack.Option
	for _, o := range options {
		o(p, &slackOpts)
	}

	switch {
	case cfg.WebhookURL != "":
	case cfg.Token != "" && cfg.Channel != "":
		p.api = slack.New(cfg.Token, slackOpts...)
	default:
		return nil, ErrNotConfigured
	}
	return p, nil
}

// Post sends text.
func (p *Poster) Post(ctx context.Context, text string) error {
	if p.webhookURL != "" {
		if err := slack.PostWebhookCustomHTTPContext(ctx, p.webhookURL, p.httpClient, &slack.WebhookMessage{Text: text}); err != nil {
			return fmt.Errorf("posting to slack webhook: %w", err)
		}
		return nil
	}
	if _, _, err := p.api.PostMessageContext(ctx, p.channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("posting to slack channel %s: %w", p.channel, err)
	}
	return nil
}

// StandupMessage formats a day's standup summary for Slack.
func StandupMessage(day time.Time, summary string) string {
	return fmt.Sprintf("*Standup %s*\n%s", day.Format("Mon 2 Jan 2006"), summary)
}
