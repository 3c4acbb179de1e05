package forwarder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewtriage/internal/tracker"
)

type fakeTracker struct {
	task *tracker.Task
	err  error
	got  tracker.TaskRequest
}

func (f *fakeTracker) CreateTask(ctx context.Context, req tracker.TaskRequest) (*tracker.Task, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

type posted struct {
	channel string
	user    string
	text    string
	blocks  []slack.Block
}

type fakeNotifier struct {
	ephemerals []posted
	postErr    error
}

func (f *fakeNotifier) PostEphemeral(ctx context.Context, channel, user, text string, blocks ...slack.Block) error {
	f.ephemerals = append(f.ephemerals, posted{channel, user, text, blocks})
	return f.postErr
}

func (f *fakeNotifier) PostMessage(ctx context.Context, channel, text string, blocks ...slack.Block) error {
	return nil
}

func TestCreateTaskSuccessPostsConfirmation(t *testing.T) {
	tr := &fakeTracker{task: &tracker.Task{
		ID:        "12345",
		Name:      "terrible product",
		Permalink: "https://tracker.example/t/12345",
		Workspace: "Support",
		Project:   "Review Triage",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}}
	n := &fakeNotifier{}

	req := tracker.TaskRequest{Title: "terrible product", WorkspaceID: "w1", ProjectID: "p1"}
	err := New(tr, n).CreateTask(context.Background(), req, "C1", "U1")

	require.NoError(t, err)
	assert.Equal(t, req, tr.got)

	require.Len(t, n.ephemerals, 1)
	assert.Equal(t, "C1", n.ephemerals[0].channel)
	assert.Equal(t, "U1", n.ephemerals[0].user)
	assert.Equal(t, "Task created: terrible product", n.ephemerals[0].text)
	assert.NotEmpty(t, n.ephemerals[0].blocks)
}

func TestCreateTaskFailurePostsNotice(t *testing.T) {
	tr := &fakeTracker{err: errors.New("workspace not found")}
	n := &fakeNotifier{}

	err := New(tr, n).CreateTask(context.Background(),
		tracker.TaskRequest{Title: "anything"}, "C1", "U1")

	require.Error(t, err)
	require.Len(t, n.ephemerals, 1)
	assert.Equal(t, "Task creation failed. Click Create Task to try again.", n.ephemerals[0].text)
	assert.Empty(t, n.ephemerals[0].blocks)
}

func TestCreateTaskConfirmationPostFailureIsNotFatal(t *testing.T) {
	tr := &fakeTracker{task: &tracker.Task{ID: "1", Name: "t"}}
	n := &fakeNotifier{postErr: errors.New("channel archived")}

	err := New(tr, n).CreateTask(context.Background(),
		tracker.TaskRequest{Title: "t"}, "C1", "U1")

	assert.NoError(t, err, "the task exists; a lost confirmation stays a log line")
}
