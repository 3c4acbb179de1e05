// Package classify defines the sentiment classification boundary and its
// backends. The rest of the pipeline only sees the Classifier interface;
// which remote service actually scores the text is a configuration detail.
package classify

import (
	"context"
	"fmt"
)

// Sentiment is the label assigned to a piece of text by a classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentMixed    Sentiment = "MIXED"
)

// ParseSentiment maps a raw label string onto the Sentiment enum.
func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return Sentiment(s), nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", s)
}

// Scores holds the per-label confidence scores reported by the classifier.
type Scores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Mixed    float64 `json:"mixed"`
}

// Verdict is the result of classifying one piece of text.
type Verdict struct {
	Label  Sentiment `json:"label"`
	Scores Scores    `json:"scores"`
}

// Classifier scores a single piece of text. Implementations call a remote,
// fallible service; a returned error is final and the caller owns the
// drop-on-error policy.
type Classifier interface {
	Detect(ctx context.Context, text string) (Verdict, error)
}
