// Package tracker is the boundary to the external task tracker. The
// pipeline only sees the Tracker interface; the concrete client speaks an
// Asana-compatible REST API.
package tracker

import (
	"context"
	"time"
)

// TaskRequest is a work item derived from an operator-selected review.
type TaskRequest struct {
	Title       string `json:"title"`
	Notes       string `json:"notes"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id"`
}

// Task is the created work item as reported back by the tracker.
type Task struct {
	ID        string
	Name      string
	Permalink string
	Workspace string
	Project   string
	Section   string
	CreatedAt time.Time
	Notes     string
}

// Tracker creates work items in the external tracker.
type Tracker interface {
	CreateTask(ctx context.Context, req TaskRequest) (*Task, error)
}
