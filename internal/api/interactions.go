package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/chat"
	"github.com/reviewtriage/internal/queue"
	"github.com/reviewtriage/internal/tracker"
)

// ephemeralResponse is the structured body returned for command and action
// acknowledgments.
type ephemeralResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func ephemeral(text string) ephemeralResponse {
	return ephemeralResponse{ResponseType: "ephemeral", Text: text}
}

// handleEvents serves the events endpoint: the one-time url_verification
// handshake plus steady-state event callbacks. Platform redeliveries are
// suppressed via the no-retry response header.
func (s *Server) handleEvents(c echo.Context) error {
	c.Response().Header().Set("X-Slack-No-Retry", "1")

	interaction, err := parseEventPayload(rawBody(c))
	if err != nil {
		log.Debug().Err(err).Msg("Rejected malformed event payload")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	switch interaction.Kind {
	case KindURLVerification:
		if interaction.URLVerification.Token != s.opts.VerificationToken {
			log.Warn().Msg("Handshake verification token mismatch")
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "verification failed"})
		}
		return c.String(http.StatusOK, interaction.URLVerification.Challenge)

	case KindEventCallback:
		if c.Request().Header.Get("X-Slack-Retry-Num") != "" {
			return c.JSON(http.StatusOK, map[string]bool{"ok": true})
		}
		s.handleEventCallback(interaction.EventCallback)
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
}

// handleEventCallback answers plain channel greetings. Everything else is
// acknowledged and dropped.
func (s *Server) handleEventCallback(callback *EventCallbackPayload) {
	event := callback.Event
	if s.opts.Notifier == nil || event.Type != "message" || event.ThreadTS != "" || event.Text != "Hi" {
		return
	}
	channel, user := event.Channel, event.User
	s.dispatch("greeting", func(ctx context.Context) error {
		return s.opts.Notifier.PostMessage(ctx, channel, fmt.Sprintf("Hi there, <@%s>", user))
	})
}

// handleCommands serves slash commands. The acknowledgment is returned
// before any queue work starts so the platform never times out the
// operator.
func (s *Server) handleCommands(c echo.Context) error {
	interaction, err := parseCommandPayload(rawBody(c))
	if err != nil {
		log.Debug().Err(err).Msg("Rejected malformed command payload")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	cmd := interaction.SlashCommand
	if cmd.Command != s.opts.ReviewCommand {
		return c.JSON(http.StatusBadRequest,
			ephemeral("Command not found. Try "+s.opts.ReviewCommand))
	}

	channel, user := cmd.ChannelID, cmd.UserID
	err = c.JSON(http.StatusOK, ephemeral("Processing request..."))

	s.dispatch("fetch reviews", func(ctx context.Context) error {
		return s.opts.Consumer.FetchAndPresent(ctx, channel, user)
	})
	return err
}

// handleActions serves block action callbacks from interactive cards.
func (s *Server) handleActions(c echo.Context) error {
	interaction, err := parseActionPayload(rawBody(c))
	if err != nil {
		log.Debug().Err(err).Msg("Rejected malformed action payload")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	action := interaction.BlockAction
	switch action.ActionID {
	case chat.ActionCreateTask:
		review, err := queue.ParseQueuedReview([]byte(action.Value))
		if err != nil {
			log.Warn().Err(err).Msg("Create-task action with undecodable value")
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		}

		req := s.taskRequestFromReview(review, action.ChannelName)
		channel, user := action.ChannelID, action.UserID
		// The platform callback gets an empty success response; the
		// operator hears the outcome later from the forwarder.
		err = c.NoContent(http.StatusOK)

		s.dispatch("forward task", func(ctx context.Context) error {
			return s.opts.Forwarder.CreateTask(ctx, req, channel, user)
		})
		return err

	case chat.ActionLoadMore:
		channel, user := action.ChannelID, action.UserID
		err := c.JSON(http.StatusOK, ephemeral("Fetching more reviews..."))

		s.dispatch("fetch more reviews", func(ctx context.Context) error {
			return s.opts.Consumer.FetchAndPresent(ctx, channel, user)
		})
		return err
	}

	return c.JSON(http.StatusBadRequest, ephemeral("Invalid action"))
}

// taskRequestFromReview derives the tracker work item from a selected
// review plus channel context.
func (s *Server) taskRequestFromReview(review queue.QueuedReview, channelName string) tracker.TaskRequest {
	title := truncateRunes(review.Body.Text, 80)
	if title == "" {
		title = "Negative review from " + review.Body.Username
	}

	notes := fmt.Sprintf("Reported by %s (review %s)\nNegative score: %.2f",
		review.Body.Username, review.Body.ID, review.Sentiment.Scores.Negative)
	if channelName != "" {
		notes += "\nTriaged in #" + channelName
	}
	notes += "\n\n" + review.Body.Text

	return tracker.TaskRequest{
		Title:       title,
		Notes:       notes,
		WorkspaceID: s.opts.WorkspaceID,
		ProjectID:   s.opts.ProjectID,
	}
}

// dispatch runs downstream work in the background after the webhook
// acknowledgment was written. Components deliver their own operator
// feedback; errors here only need the log.
func (s *Server) dispatch(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("task", name).Msg("Background task panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("task", name).Msg("Background task failed")
		}
	}()
}

// truncateRunes bounds s to max runes without splitting a character.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
