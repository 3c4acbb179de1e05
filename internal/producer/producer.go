// Package producer implements the classification stage of the triage
// pipeline: score a raw feed item and enqueue it onto the durable review
// queue iff the verdict is negative.
package producer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/classify"
	"github.com/reviewtriage/internal/queue"
)

// Producer classifies feed items and publishes negative ones.
type Producer struct {
	classifier classify.Classifier
	queue      queue.ReviewQueue
}

// New creates a Producer.
func New(classifier classify.Classifier, reviewQueue queue.ReviewQueue) *Producer {
	return &Producer{classifier: classifier, queue: reviewQueue}
}

// ClassifyAndEnqueue processes a single feed item. Items without usable
// text are skipped with a diagnostic; that is an expected shape of upstream
// records, not an error. Classifier and publish failures are logged and
// returned without retry; the item is dropped. Non-negative verdicts are
// dropped silently.
func (p *Producer) ClassifyAndEnqueue(ctx context.Context, item queue.FeedItem) error {
	if strings.TrimSpace(item.Text) == "" {
		log.Warn().
			Str("item_id", item.ID).
			Str("username", item.Username).
			Msg("Skipping feed item without text")
		return nil
	}

	verdict, err := p.classifier.Detect(ctx, item.Text)
	if err != nil {
		log.Error().Err(err).
			Str("item_id", item.ID).
			Msg("Sentiment classification failed, dropping item")
		return fmt.Errorf("classify feed item %s: %w", item.ID, err)
	}

	if verdict.Label != classify.SentimentNegative {
		log.Debug().
			Str("item_id", item.ID).
			Str("label", string(verdict.Label)).
			Msg("Non-negative verdict, not enqueuing")
		return nil
	}

	log.Info().
		Str("item_id", item.ID).
		Str("username", item.Username).
		Float64("negative_score", verdict.Scores.Negative).
		Msg("Negative review detected")

	if err := p.queue.Send(ctx, queue.QueuedReview{Sentiment: verdict, Body: item}); err != nil {
		log.Error().Err(err).
			Str("item_id", item.ID).
			Msg("Failed to enqueue negative review")
		return fmt.Errorf("enqueue review %s: %w", item.ID, err)
	}
	return nil
}

// ClassifyBatch processes several records independently; a failure on one
// never blocks the others. Returns the number of items that made it through
// (classified, whether or not they were enqueued).
func (p *Producer) ClassifyBatch(ctx context.Context, items []queue.FeedItem) int {
	processed := 0
	for _, item := range items {
		if err := p.ClassifyAndEnqueue(ctx, item); err != nil {
			continue
		}
		processed++
	}
	return processed
}
