package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// SlackAPI is the slice of the Slack Web API client the notifier needs.
// Satisfied by *slack.Client.
type SlackAPI interface {
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier implements Notifier over the Slack Web API. Sends are rate
// limited to stay under the platform's ~1 message/second/channel ceiling.
type SlackNotifier struct {
	client  SlackAPI
	limiter *rate.Limiter
}

// NewSlackNotifier creates a notifier for the given bot token.
func NewSlackNotifier(botToken string) *SlackNotifier {
	return NewSlackNotifierWithClient(slack.New(botToken))
}

// NewSlackNotifierWithClient wraps an existing client. Used by tests.
func NewSlackNotifierWithClient(client SlackAPI) *SlackNotifier {
	return &SlackNotifier{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// PostEphemeral implements Notifier.
func (n *SlackNotifier) PostEphemeral(ctx context.Context, channel, user, text string, blocks ...slack.Block) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	_, err := n.client.PostEphemeralContext(ctx, channel, user, opts...)
	if err != nil {
		return fmt.Errorf("post ephemeral message: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("user", user).
		Msg("Posted ephemeral message")
	return nil
}

// PostMessage implements Notifier.
func (n *SlackNotifier) PostMessage(ctx context.Context, channel, text string, blocks ...slack.Block) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	_, _, err := n.client.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}
