package producer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/queue"
)

// ClassifyJobArgs is the durable job payload for one feed record awaiting
// classification.
type ClassifyJobArgs struct {
	Item queue.FeedItem `json:"item"`
}

// Kind returns the job kind for River.
func (ClassifyJobArgs) Kind() string { return "classify_feed_item" }

// ClassifyWorker runs classification jobs.
type ClassifyWorker struct {
	river.WorkerDefaults[ClassifyJobArgs]
	producer *Producer
}

// Work classifies one feed item. Errors are returned so River records them
// on the job row, but jobs are inserted with a single attempt: the pipeline
// drops items on classifier or publish failure rather than retrying.
func (w *ClassifyWorker) Work(ctx context.Context, job *river.Job[ClassifyJobArgs]) error {
	return w.producer.ClassifyAndEnqueue(ctx, job.Args.Item)
}

// IngestConfig tunes the ingest job queue.
type IngestConfig struct {
	// MaxWorkers is the number of concurrent classification jobs.
	MaxWorkers int
}

// DefaultIngestConfig returns the default ingest tuning.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{MaxWorkers: 10}
}

// IngestQueue is the River-backed ingestion stage: inbound feed records
// become durable classification jobs worked by the Producer.
type IngestQueue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
}

// NewIngestQueue connects to Postgres and registers the classify worker.
func NewIngestQueue(ctx context.Context, databaseURL string, p *Producer, cfg IngestConfig) (*IngestQueue, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &ClassifyWorker{producer: p})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &IngestQueue{client: client, pool: pool}, nil
}

// NewInsertOnlyIngestQueue connects an insert-only client (no workers).
// The API server uses this to accept feed records while a separate ingest
// process works them.
func NewInsertOnlyIngestQueue(ctx context.Context, databaseURL string) (*IngestQueue, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &IngestQueue{client: client, pool: pool}, nil
}

// Start starts the job workers.
func (iq *IngestQueue) Start(ctx context.Context) error {
	return iq.client.Start(ctx)
}

// Stop stops the job workers and releases the pool.
func (iq *IngestQueue) Stop(ctx context.Context) error {
	err := iq.client.Stop(ctx)
	iq.pool.Close()
	return err
}

// Enqueue inserts one classification job per feed item. MaxAttempts is
// pinned to 1 so a failed classification is dropped, not retried.
func (iq *IngestQueue) Enqueue(ctx context.Context, items []queue.FeedItem) (int, error) {
	inserted := 0
	for _, item := range items {
		_, err := iq.client.Insert(ctx, ClassifyJobArgs{Item: item}, &river.InsertOpts{
			MaxAttempts: 1,
		})
		if err != nil {
			log.Error().Err(err).
				Str("item_id", item.ID).
				Msg("Failed to insert classification job")
			continue
		}
		inserted++
	}
	if inserted == 0 && len(items) > 0 {
		return 0, fmt.Errorf("failed to insert any of %d classification jobs", len(items))
	}
	return inserted, nil
}
