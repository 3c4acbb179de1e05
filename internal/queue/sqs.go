package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// Receive parameters. The short visibility lease is the soft lock: if a
// drain fails to delete within the window, the message becomes eligible
// for re-delivery to a later drain.
const (
	maxMessages       = 10
	visibilityTimeout = 20 * time.Second
	waitTime          = 0
)

// SQSAPI is the slice of the SQS client the queue needs. Satisfied by
// *sqs.Client.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue implements ReviewQueue over an Amazon SQS queue.
type SQSQueue struct {
	api      SQSAPI
	queueURL string
}

// NewSQSQueue wraps an SQS client and queue URL.
func NewSQSQueue(api SQSAPI, queueURL string) *SQSQueue {
	return &SQSQueue{api: api, queueURL: queueURL}
}

// Send publishes one review as a JSON message body.
func (q *SQSQueue) Send(ctx context.Context, review QueuedReview) error {
	body, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal queued review: %w", err)
	}

	out, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send review message: %w", err)
	}

	log.Debug().
		Str("message_id", aws.ToString(out.MessageId)).
		Str("review_id", review.Body.ID).
		Msg("Enqueued negative review")
	return nil
}

// Receive polls for up to 10 messages with a 20-second visibility lease and
// no long-poll wait, requesting the enqueue timestamp attribute.
func (q *SQSQueue) Receive(ctx context.Context) ([]Message, error) {
	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(q.queueURL),
		MaxNumberOfMessages:         maxMessages,
		VisibilityTimeout:           int32(visibilityTimeout / time.Second),
		WaitTimeSeconds:             waitTime,
		MessageSystemAttributeNames: []sqstypes.MessageSystemAttributeName{sqstypes.MessageSystemAttributeNameSentTimestamp},
		MessageAttributeNames:       []string{"All"},
	})
	if err != nil {
		return nil, fmt.Errorf("receive reviews: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, Message{
			Body:          []byte(aws.ToString(m.Body)),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			SentAt:        parseSentTimestamp(m.Attributes),
		})
	}
	return messages, nil
}

// Delete removes one message by its receipt handle.
func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete review message: %w", err)
	}
	return nil
}

// parseSentTimestamp reads the SentTimestamp attribute (epoch milliseconds).
func parseSentTimestamp(attrs map[string]string) time.Time {
	raw, ok := attrs[string(sqstypes.MessageSystemAttributeNameSentTimestamp)]
	if !ok {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}
