package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/reviewtriage/internal/queue"
)

// ReviewCard renders a batch of negative reviews as an interactive card:
// one section per review with a "Create Task" button carrying the review as
// its value, and a trailing "Load More" action.
func ReviewCard(reviews []queue.QueuedReview) []slack.Block {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Negative reviews", false, false)),
	}

	for _, review := range reviews {
		value, err := json.Marshal(review)
		if err != nil {
			// A review that round-tripped through the queue always marshals.
			continue
		}

		text := fmt.Sprintf("*%s* _(%.0f%% negative)_\n%s",
			review.Body.Username,
			review.Sentiment.Scores.Negative*100,
			review.Body.Text)

		blocks = append(blocks,
			slack.NewDividerBlock(),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
				nil,
				slack.NewAccessory(
					slack.NewButtonBlockElement(ActionCreateTask, string(value),
						slack.NewTextBlockObject(slack.PlainTextType, "Create Task", false, false)))),
			slack.NewContextBlock("",
				slack.NewTextBlockObject(slack.MarkdownType, "review id: "+review.Body.ID, false, false)))
	}

	blocks = append(blocks,
		slack.NewDividerBlock(),
		slack.NewActionBlock("review_card_actions",
			slack.NewButtonBlockElement(ActionLoadMore, "load_more",
				slack.NewTextBlockObject(slack.PlainTextType, "Load More", false, false))))

	return blocks
}

// TaskConfirmation carries the fields shown after a task was created.
type TaskConfirmation struct {
	Title     string
	Permalink string
	Workspace string
	Project   string
	Section   string
	CreatedAt time.Time
	Notes     string
}

// TaskConfirmationCard renders the operator-only confirmation message.
func TaskConfirmationCard(tc TaskConfirmation) []slack.Block {
	title := tc.Title
	if tc.Permalink != "" {
		title = fmt.Sprintf("<%s|%s>", tc.Permalink, tc.Title)
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Workspace*\n"+tc.Workspace, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Project*\n"+tc.Project, false, false),
	}
	if tc.Section != "" {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType, "*Section*\n"+tc.Section, false, false))
	}
	if !tc.CreatedAt.IsZero() {
		fields = append(fields,
			slack.NewTextBlockObject(slack.MarkdownType,
				"*Created*\n"+tc.CreatedAt.Format(time.RFC1123), false, false))
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, ":white_check_mark: Task created: "+title, false, false),
			nil, nil),
		slack.NewSectionBlock(nil, fields, nil),
	}
	if tc.Notes != "" {
		blocks = append(blocks,
			slack.NewContextBlock("",
				slack.NewTextBlockObject(slack.MarkdownType, tc.Notes, false, false)))
	}
	return blocks
}
