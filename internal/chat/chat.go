// Package chat is the boundary to the chat platform. All pipeline feedback
// goes through the ephemeral form so only the requesting operator sees it.
package chat

import (
	"context"

	"github.com/slack-go/slack"
)

// Interactive element ids reported back by button clicks.
const (
	ActionCreateTask = "create_task_action"
	ActionLoadMore   = "load_more_action"
)

// Notifier delivers messages to the chat platform.
type Notifier interface {
	// PostEphemeral sends a message visible only to one operator in a channel.
	PostEphemeral(ctx context.Context, channel, user, text string, blocks ...slack.Block) error
	// PostMessage broadcasts to a channel.
	PostMessage(ctx context.Context, channel, text string, blocks ...slack.Block) error
}
