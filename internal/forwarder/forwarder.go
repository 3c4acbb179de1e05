// Package forwarder turns operator-selected reviews into tracker work
// items and reports the outcome back to the operator.
package forwarder

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/reviewtriage/internal/chat"
	"github.com/reviewtriage/internal/tracker"
)

const msgTaskFailed = "Task creation failed. Click Create Task to try again."

// Forwarder submits tasks and delivers operator-only feedback.
type Forwarder struct {
	tracker  tracker.Tracker
	notifier chat.Notifier
}

// New creates a Forwarder.
func New(t tracker.Tracker, notifier chat.Notifier) *Forwarder {
	return &Forwarder{tracker: t, notifier: notifier}
}

// CreateTask submits the work item. On success the operator gets a
// confirmation card; on failure an ephemeral notice. Failures are terminal
// for the click, the operator retries by clicking again.
func (f *Forwarder) CreateTask(ctx context.Context, req tracker.TaskRequest, channel, user string) error {
	task, err := f.tracker.CreateTask(ctx, req)
	if err != nil {
		log.Error().Err(err).
			Str("title", req.Title).
			Str("channel", channel).
			Msg("Task creation failed")
		if nerr := f.notifier.PostEphemeral(ctx, channel, user, msgTaskFailed); nerr != nil {
			log.Error().Err(nerr).Msg("Failed to post task failure notice")
		}
		return err
	}

	card := chat.TaskConfirmationCard(chat.TaskConfirmation{
		Title:     task.Name,
		Permalink: task.Permalink,
		Workspace: task.Workspace,
		Project:   task.Project,
		Section:   task.Section,
		CreatedAt: task.CreatedAt,
		Notes:     task.Notes,
	})
	if err := f.notifier.PostEphemeral(ctx, channel, user, "Task created: "+task.Name, card...); err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Msg("Failed to post task confirmation")
	}
	return nil
}
