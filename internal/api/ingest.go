package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/queue"
)

// feedRecord is one inbound raw feed record. Missing ids get a synthetic
// one so deduplication downstream stays meaningful.
type feedRecord struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Username string `json:"username"`
}

// handleFeedItems accepts a batch of raw feed records and inserts one
// durable classification job per record. This endpoint sits in a different
// trust domain than the chat webhooks: it is guarded by a shared bearer
// token, not the platform signature.
func (s *Server) handleFeedItems(c echo.Context) error {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(auth, "Bearer ")
	if s.opts.IngestToken == "" || token == auth || token != s.opts.IngestToken {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid ingest token"})
	}

	var records []feedRecord
	if err := c.Bind(&records); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid feed payload"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty feed payload"})
	}

	items := make([]queue.FeedItem, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		items = append(items, queue.FeedItem{ID: r.ID, Text: r.Text, Username: r.Username})
	}

	inserted, err := s.opts.Ingest.Enqueue(c.Request().Context(), items)
	if err != nil {
		log.Error().Err(err).Int("records", len(items)).Msg("Feed ingest failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to enqueue feed items"})
	}

	return c.JSON(http.StatusAccepted, map[string]int{
		"received": len(items),
		"queued":   inserted,
	})
}
