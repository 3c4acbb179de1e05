// Package api exposes the webhook surface of the triage service: the chat
// platform handshake, slash commands, block actions, and the feed ingest
// endpoint. It owns interaction routing; the pipeline stages live behind
// small interfaces so handlers stay testable.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/reviewtriage/internal/chat"
	"github.com/reviewtriage/internal/queue"
	"github.com/reviewtriage/internal/sigverify"
	"github.com/reviewtriage/internal/tracker"
)

// Webhook authentication headers.
const (
	headerTimestamp = "X-Request-Timestamp"
	headerSignature = "X-Request-Signature"
)

// dispatchTimeout bounds background work spawned after a webhook
// acknowledgment.
const dispatchTimeout = 30 * time.Second

// ReviewFetcher drains the review queue for one operator.
type ReviewFetcher interface {
	FetchAndPresent(ctx context.Context, channel, user string) error
}

// TaskForwarder forwards a selected review into the task tracker.
type TaskForwarder interface {
	CreateTask(ctx context.Context, req tracker.TaskRequest, channel, user string) error
}

// FeedEnqueuer accepts raw feed records for durable classification.
type FeedEnqueuer interface {
	Enqueue(ctx context.Context, items []queue.FeedItem) (int, error)
}

// Options wires a Server.
type Options struct {
	Port              int
	ReviewCommand     string
	VerificationToken string
	IngestToken       string
	WorkspaceID       string
	ProjectID         string

	Verifier  *sigverify.Verifier
	Consumer  ReviewFetcher
	Forwarder TaskForwarder
	Ingest    FeedEnqueuer  // nil disables the feed ingest endpoint
	Notifier  chat.Notifier // nil disables the greeting reply on message events
}

// Server is the triage API server.
type Server struct {
	echo *echo.Echo
	opts Options
}

// NewServer creates the API server and registers its routes.
func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	server := &Server{echo: e, opts: opts}
	server.setupRoutes()
	return server
}

// setupRoutes configures all endpoints.
func (s *Server) setupRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Review triage bot is running!")
	})
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	webhook := s.echo.Group("/slack", s.signatureMiddleware)
	webhook.POST("/events", s.handleEvents)
	webhook.POST("/commands", s.handleCommands)
	webhook.POST("/actions", s.handleActions)

	if s.opts.Ingest != nil {
		s.echo.POST("/feed/items", s.handleFeedItems)
	}
}

// Start runs the server until interrupted, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.opts.Port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router. Used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
