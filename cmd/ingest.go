package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/reviewtriage/internal/classify"
	"github.com/reviewtriage/internal/config"
	"github.com/reviewtriage/internal/logging"
	"github.com/reviewtriage/internal/producer"
	"github.com/reviewtriage/internal/queue"
)

// IngestCommand returns the CLI command for the feed ingest workers.
func IngestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Run the feed classification workers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent classification jobs (overrides config)",
			},
		},
		Action: runIngest,
	}
}

func runIngest(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup("")

	if cfg.Ingest.DatabaseURL == "" {
		return fmt.Errorf("ingest database_url is required to run workers")
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Queue.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	reviewQueue := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.Queue.URL)

	classifier, err := buildClassifier(ctx, cfg, awsCfg)
	if err != nil {
		return err
	}

	ingestCfg := producer.DefaultIngestConfig()
	if cfg.Ingest.MaxWorkers > 0 {
		ingestCfg.MaxWorkers = cfg.Ingest.MaxWorkers
	}
	if c.IsSet("workers") {
		ingestCfg.MaxWorkers = c.Int("workers")
	}

	ingestQueue, err := producer.NewIngestQueue(ctx, cfg.Ingest.DatabaseURL,
		producer.New(classifier, reviewQueue), ingestCfg)
	if err != nil {
		return fmt.Errorf("failed to create ingest queue: %w", err)
	}

	if err := ingestQueue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ingest workers: %w", err)
	}
	log.Info().
		Int("max_workers", ingestCfg.MaxWorkers).
		Str("backend", cfg.Classifier.Backend).
		Msg("Ingest workers started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Stopping ingest workers")
	return ingestQueue.Stop(ctx)
}

// buildClassifier selects the sentiment backend from config.
func buildClassifier(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (classify.Classifier, error) {
	switch cfg.Classifier.Backend {
	case "comprehend":
		return classify.NewComprehendClassifier(
			comprehend.NewFromConfig(awsCfg), cfg.Classifier.LanguageCode), nil
	case "gemini", "openai":
		classifier, err := classify.NewLLMClassifier(ctx, classify.LLMOptions{
			Provider: classify.Provider(cfg.Classifier.Backend),
			APIKey:   cfg.Classifier.APIKey,
			Model:    cfg.Classifier.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s classifier: %w", cfg.Classifier.Backend, err)
		}
		return classifier, nil
	}
	return nil, fmt.Errorf("unsupported classifier backend %q", cfg.Classifier.Backend)
}
