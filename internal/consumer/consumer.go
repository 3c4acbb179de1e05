// Package consumer drains the durable review queue on operator demand and
// presents the results as an interactive card.
package consumer

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/chat"
	"github.com/reviewtriage/internal/classify"
	"github.com/reviewtriage/internal/queue"
)

// Operator-visible responses. Wording is part of the bot's contract with
// its users; tests pin these strings.
const (
	msgNoReviews         = "There are no new reviews."
	msgNoNegativeReviews = "There are no new negative reviews."
	msgReceiveFailed     = "There was an error fetching reviews."
	msgDeleteFailed      = "Some reviews could not be removed from the queue and may reappear."
)

// Consumer fetches queued reviews and presents them to one operator.
type Consumer struct {
	queue    queue.ReviewQueue
	notifier chat.Notifier
}

// New creates a Consumer.
func New(reviewQueue queue.ReviewQueue, notifier chat.Notifier) *Consumer {
	return &Consumer{queue: reviewQueue, notifier: notifier}
}

// FetchAndPresent drains one batch from the queue, deduplicates by review
// id, filters to negative verdicts, and posts the result as an ephemeral
// card to the requesting operator.
//
// Every received message is deleted after the presentation attempt,
// whatever its outcome. Presentation is deliberately not transactional with
// deletion: a delete failure leaves the message re-deliverable after its
// visibility lease expires, which is accepted over re-queueing failed
// batches and risking poison-message loops.
func (c *Consumer) FetchAndPresent(ctx context.Context, channel, user string) error {
	messages, err := c.queue.Receive(ctx)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Queue receive failed")
		c.notify(ctx, channel, user, msgReceiveFailed)
		return err
	}

	if len(messages) == 0 {
		log.Debug().Str("channel", channel).Msg("No queued reviews")
		c.notify(ctx, channel, user, msgNoReviews)
		return nil
	}

	reviews := parseAndDedupe(messages)
	negatives := filterNegative(reviews)

	if len(negatives) == 0 {
		c.notify(ctx, channel, user, msgNoNegativeReviews)
	} else {
		err := c.notifier.PostEphemeral(ctx, channel, user,
			"New negative reviews", chat.ReviewCard(negatives)...)
		if err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to present review card")
		}
	}

	c.deleteAll(ctx, channel, user, messages)
	return nil
}

// parseAndDedupe decodes message bodies and keeps the first occurrence of
// each review id, preserving arrival order. Malformed bodies are skipped
// for presentation; their messages are still deleted by the caller so a
// poison message cannot wedge the queue.
func parseAndDedupe(messages []queue.Message) []queue.QueuedReview {
	seen := make(map[string]bool, len(messages))
	reviews := make([]queue.QueuedReview, 0, len(messages))
	for _, m := range messages {
		review, err := queue.ParseQueuedReview(m.Body)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping malformed queue message")
			continue
		}
		if seen[review.Body.ID] {
			continue
		}
		seen[review.Body.ID] = true
		reviews = append(reviews, review)
	}
	return reviews
}

func filterNegative(reviews []queue.QueuedReview) []queue.QueuedReview {
	negatives := make([]queue.QueuedReview, 0, len(reviews))
	for _, r := range reviews {
		if r.Sentiment.Label == classify.SentimentNegative {
			negatives = append(negatives, r)
		}
	}
	return negatives
}

// deleteAll attempts to delete every received message. Each deletion is
// independent: one failure is reported and logged but never blocks the
// rest.
func (c *Consumer) deleteAll(ctx context.Context, channel, user string, messages []queue.Message) {
	failed := 0
	for _, m := range messages {
		if err := c.queue.Delete(ctx, m.ReceiptHandle); err != nil {
			failed++
			log.Error().Err(err).Msg("Failed to delete queue message")
		}
	}
	if failed > 0 {
		c.notify(ctx, channel, user, msgDeleteFailed)
	}
}

func (c *Consumer) notify(ctx context.Context, channel, user, text string) {
	if err := c.notifier.PostEphemeral(ctx, channel, user, text); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to post ephemeral notice")
	}
}
