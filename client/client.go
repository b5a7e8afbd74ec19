// Package client is the consuming side of the status workflow: an HTTP
// client for the task API plus an optimistic board that shows a status
// change immediately and reconciles it against the server's answer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Pavitraraman/oneflow/constants"
	"github.com/Pavitraraman/oneflow/models"
	"github.com/Pavitraraman/oneflow/workflow"
)

// TransitionResult is the wire shape of a transition response. Outcome
// "pending" (HTTP 202) means the request was recorded but the status did
// not change; callers must not treat it like "applied".
type TransitionResult struct {
	Outcome workflow.Outcome `json:"outcome"`
	Task    models.Task      `json:"task"`
}

// ListOptions narrows a task list read.
type ListOptions struct {
	ProjectID          uint
	IncludeProjectName bool
}

// API is what the optimistic controller needs from the server.
type API interface {
	AttemptTransition(ctx context.Context, taskID uint, target constants.TaskStatus) (TransitionResult, error)
	ListTasks(ctx context.Context, opts ListOptions) ([]models.Task, error)
	GetTask(ctx context.Context, taskID uint) (models.Task, error)
}

// APIError is a non-2xx answer with the server's reason string. A 400
// here is a rejected transition, not a transport failure.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Reason)
}

// Client talks to the OneFlow server. The token identifies the actor;
// the server resolves the role from it, so no role ever travels in a
// request body.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) AttemptTransition(ctx context.Context, taskID uint, target constants.TaskStatus) (TransitionResult, error) {
	body, err := json.Marshal(map[string]constants.TaskStatus{"status": target})
	if err != nil {
		return TransitionResult{}, err
	}

	path := fmt.Sprintf("/tasks/%d/status", taskID)
	resp, err := c.do(ctx, http.MethodPut, path, nil, bytes.NewReader(body))
	if err != nil {
		return TransitionResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		var result TransitionResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	default:
		return TransitionResult{}, apiError(resp)
	}
}

func (c *Client) ListTasks(ctx context.Context, opts ListOptions) ([]models.Task, error) {
	query := url.Values{}
	if opts.ProjectID != 0 {
		query.Set("project_id", strconv.FormatUint(uint64(opts.ProjectID), 10))
	}
	if opts.IncludeProjectName {
		query.Set("include_project_name", "true")
	}

	resp, err := c.do(ctx, http.MethodGet, "/tasks", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var tasks []models.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, taskID uint) (models.Task, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), nil, nil)
	if err != nil {
		return models.Task{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Task{}, apiError(resp)
	}

	var task models.Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body *bytes.Reader) (*http.Response, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTP.Do(req)
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error == "" {
		payload.Error = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Reason: payload.Error}
}
