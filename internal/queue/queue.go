// Package queue holds the durable review queue boundary. Negative reviews
// are serialized as JSON message bodies and live in the external queue
// (at-least-once delivery, no FIFO guarantee) until explicitly deleted.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reviewtriage/internal/classify"
)

// FeedItem is one raw record from the upstream social feed.
type FeedItem struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Username string `json:"username"`
}

// QueuedReview is the durable queue payload: the classifier verdict plus
// the item it was computed from. Body.ID is the deduplication key.
type QueuedReview struct {
	Sentiment classify.Verdict `json:"sentiment"`
	Body      FeedItem         `json:"body"`
}

// ParseQueuedReview decodes a queue message body.
func ParseQueuedReview(body []byte) (QueuedReview, error) {
	var review QueuedReview
	if err := json.Unmarshal(body, &review); err != nil {
		return QueuedReview{}, fmt.Errorf("parse queued review: %w", err)
	}
	return review, nil
}

// Message is one received queue entry. ReceiptHandle is the opaque deletion
// key, valid only while the visibility lease holds.
type Message struct {
	Body          []byte
	ReceiptHandle string
	SentAt        time.Time
}

// ReviewQueue is the durable queue the producer writes to and the consumer
// drains. Receive is a non-blocking poll with fixed batch and lease
// parameters; Delete removes a single message by receipt handle.
type ReviewQueue interface {
	Send(ctx context.Context, review QueuedReview) error
	Receive(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}
