package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

// SlackNotifier posts check-run summaries to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	if channel == "" {
		channel = "#general"
	}
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// Notify posts the message to the configured channel.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(message, false),
	)
	if err != nil {
		return fmt.Errorf("slack notification failed: %w", err)
	}
	return nil
}

// FromConfig builds the configured notifier, or nil when notifications are
// disabled. The bot token comes from SLACK_BOT_USER_TOKEN, never the config
// file.
func FromConfig() (Notifier, error) {
	if !viper.GetBool("notifications.slack.enabled") {
		return nil, nil
	}
	token := os.Getenv("SLACK_BOT_USER_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("slack notifications enabled but SLACK_BOT_USER_TOKEN is not set")
	}
	return NewSlackNotifier(token, viper.GetString("notifications.slack.channel")), nil
}
