package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewtriage/internal/classify"
	"github.com/reviewtriage/internal/queue"
)

func sampleReviews() []queue.QueuedReview {
	return []queue.QueuedReview{
		{
			Sentiment: classify.Verdict{
				Label:  classify.SentimentNegative,
				Scores: classify.Scores{Negative: 0.93},
			},
			Body: queue.FeedItem{ID: "r1", Text: "app crashes constantly", Username: "alex"},
		},
		{
			Sentiment: classify.Verdict{
				Label:  classify.SentimentNegative,
				Scores: classify.Scores{Negative: 0.71},
			},
			Body: queue.FeedItem{ID: "r2", Text: "support never answered", Username: "sam"},
		},
	}
}

func TestReviewCardStructure(t *testing.T) {
	blocks := ReviewCard(sampleReviews())

	// Header, then per review: divider + section + context, then the
	// trailing divider + load-more action block.
	require.Len(t, blocks, 1+2*3+2)

	_, ok := blocks[0].(*slack.HeaderBlock)
	assert.True(t, ok, "card starts with a header")

	last, ok := blocks[len(blocks)-1].(*slack.ActionBlock)
	require.True(t, ok, "card ends with the action block")
	require.Len(t, last.Elements.ElementSet, 1)
	button, ok := last.Elements.ElementSet[0].(*slack.ButtonBlockElement)
	require.True(t, ok)
	assert.Equal(t, ActionLoadMore, button.ActionID)
}

func TestReviewCardButtonCarriesReview(t *testing.T) {
	reviews := sampleReviews()
	blocks := ReviewCard(reviews)

	section, ok := blocks[2].(*slack.SectionBlock)
	require.True(t, ok, "first review section")
	require.NotNil(t, section.Accessory)
	require.NotNil(t, section.Accessory.ButtonElement)

	button := section.Accessory.ButtonElement
	assert.Equal(t, ActionCreateTask, button.ActionID)

	var roundTripped queue.QueuedReview
	require.NoError(t, json.Unmarshal([]byte(button.Value), &roundTripped))
	assert.Equal(t, reviews[0], roundTripped)
}

func TestReviewCardText(t *testing.T) {
	blocks := ReviewCard(sampleReviews())

	section := blocks[2].(*slack.SectionBlock)
	assert.Contains(t, section.Text.Text, "*alex*")
	assert.Contains(t, section.Text.Text, "93% negative")
	assert.Contains(t, section.Text.Text, "app crashes constantly")
}

func TestTaskConfirmationCard(t *testing.T) {
	blocks := TaskConfirmationCard(TaskConfirmation{
		Title:     "app crashes constantly",
		Permalink: "https://tracker.example/t/1",
		Workspace: "Support",
		Project:   "Review Triage",
		Section:   "Untriaged",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Notes:     "Reported by alex",
	})

	require.NotEmpty(t, blocks)

	first, ok := blocks[0].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "Task created")
	assert.Contains(t, first.Text.Text, "<https://tracker.example/t/1|app crashes constantly>")

	fields, ok := blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Len(t, fields.Fields, 4)
}

func TestTaskConfirmationCardWithoutPermalink(t *testing.T) {
	blocks := TaskConfirmationCard(TaskConfirmation{Title: "plain title"})

	first := blocks[0].(*slack.SectionBlock)
	assert.Contains(t, first.Text.Text, "plain title")
	assert.NotContains(t, first.Text.Text, "<|")
}
