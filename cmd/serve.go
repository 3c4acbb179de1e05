package cmd

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/reviewtriage/internal/api"
	"github.com/reviewtriage/internal/chat"
	"github.com/reviewtriage/internal/config"
	"github.com/reviewtriage/internal/consumer"
	"github.com/reviewtriage/internal/forwarder"
	"github.com/reviewtriage/internal/logging"
	"github.com/reviewtriage/internal/producer"
	"github.com/reviewtriage/internal/queue"
	"github.com/reviewtriage/internal/sigverify"
	"github.com/reviewtriage/internal/tracker"
)

// ServeCommand returns the CLI command for the triage API server.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the review triage API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup("")

	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Queue.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	reviewQueue := queue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.Queue.URL)

	notifier := chat.NewSlackNotifier(cfg.Chat.BotToken)
	trackerClient := tracker.NewClient(cfg.Tracker.BaseURL, cfg.Tracker.AccessToken)

	opts := api.Options{
		Port:              cfg.Server.Port,
		ReviewCommand:     cfg.Server.ReviewCommand,
		VerificationToken: cfg.Chat.VerificationToken,
		IngestToken:       cfg.Ingest.Token,
		WorkspaceID:       cfg.Tracker.WorkspaceID,
		ProjectID:         cfg.Tracker.ProjectID,
		Verifier:          sigverify.New(cfg.Chat.SigningSecret),
		Consumer:          consumer.New(reviewQueue, notifier),
		Forwarder:         forwarder.New(trackerClient, notifier),
		Notifier:          notifier,
	}

	// Feed records pass through the durable ingest queue; a separate
	// `ingest` process works them. Without a database the endpoint stays
	// disabled and classification runs elsewhere.
	if cfg.Ingest.DatabaseURL != "" {
		ingestQueue, err := producer.NewInsertOnlyIngestQueue(ctx, cfg.Ingest.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect ingest queue: %w", err)
		}
		defer func() {
			if err := ingestQueue.Stop(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to stop ingest queue client")
			}
		}()
		opts.Ingest = ingestQueue
	}

	log.Info().Int("port", cfg.Server.Port).Msg("Starting review triage server")
	return api.NewServer(opts).Start()
}
