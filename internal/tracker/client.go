package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production tracker API root.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// Client implements Tracker against an Asana-compatible REST API.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a tracker client. baseURL falls back to DefaultBaseURL
// when empty; tests point it at a local server.
func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// The tracker wraps every request and response in a {"data": ...} envelope.
type createTaskRequest struct {
	Data taskData `json:"data"`
}

type taskData struct {
	Name      string   `json:"name"`
	Notes     string   `json:"notes,omitempty"`
	Workspace string   `json:"workspace,omitempty"`
	Projects  []string `json:"projects,omitempty"`
}

type createTaskResponse struct {
	Data struct {
		GID          string `json:"gid"`
		Name         string `json:"name"`
		Notes        string `json:"notes"`
		PermalinkURL string `json:"permalink_url"`
		CreatedAt    string `json:"created_at"`
		Workspace    struct {
			GID  string `json:"gid"`
			Name string `json:"name"`
		} `json:"workspace"`
		Memberships []struct {
			Project struct {
				GID  string `json:"gid"`
				Name string `json:"name"`
			} `json:"project"`
			Section struct {
				GID  string `json:"gid"`
				Name string `json:"name"`
			} `json:"section"`
		} `json:"memberships"`
	} `json:"data"`
}

// CreateTask implements Tracker. No retry: a failure is terminal for this
// operator action.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	payload := createTaskRequest{Data: taskData{
		Name:      req.Title,
		Notes:     req.Notes,
		Workspace: req.WorkspaceID,
	}}
	if req.ProjectID != "" {
		payload.Data.Projects = []string{req.ProjectID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tracker request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker API error (status %d): %s", resp.StatusCode, snippet(respBody))
	}

	var parsed createTaskResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode tracker response: %w", err)
	}

	task := &Task{
		ID:        parsed.Data.GID,
		Name:      parsed.Data.Name,
		Permalink: parsed.Data.PermalinkURL,
		Workspace: parsed.Data.Workspace.Name,
		Notes:     parsed.Data.Notes,
	}
	if len(parsed.Data.Memberships) > 0 {
		task.Project = parsed.Data.Memberships[0].Project.Name
		task.Section = parsed.Data.Memberships[0].Section.Name
	}
	if parsed.Data.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, parsed.Data.CreatedAt); err == nil {
			task.CreatedAt = t
		}
	}

	log.Info().
		Str("task_id", task.ID).
		Str("permalink", task.Permalink).
		Msg("Created tracker task")
	return task, nil
}

// snippet bounds error bodies so a misbehaving tracker cannot flood logs.
func snippet(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
