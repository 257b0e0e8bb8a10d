package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/ports"
)

const tasksPath = "/api/tasks"

// APIError is a non-2xx response from the task API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task api: %d %s", e.Status, e.Message)
}

// Is lets callers match 404 responses with entities.ErrTaskNotFound
func (e *APIError) Is(target error) bool {
	switch target {
	case entities.ErrTaskNotFound:
		return e.Status == http.StatusNotFound
	case entities.ErrValidation:
		return e.Status == http.StatusBadRequest
	default:
		return false
	}
}

// Options configures the API client
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// Client talks to the task API
type Client struct {
	http *resty.Client
}

// New creates a task API client
func New(opts Options) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryable)

	if opts.Token != "" {
		rc.SetAuthToken(opts.Token)
	}

	return &Client{http: rc}
}

// retryable retries reads on throttling and gateway errors. Writes are
// never retried.
func retryable(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 502 && code <= 504)
}

// ListTasks fetches every task matching key
func (c *Client) ListTasks(ctx context.Context, key Key) ([]entities.Task, error) {
	day := key.Day
	if day == "" {
		day = entities.FilterAll
	}

	var tasks []entities.Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search": key.Search,
			"day":    day,
		}).
		SetResult(&tasks).
		SetError(&ports.ErrorResponse{}).
		Get(tasksPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task
func (c *Client) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	var task entities.Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&task).
		SetError(&ports.ErrorResponse{}).
		Get(tasksPath + "/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask submits a new task and returns it with its id
func (c *Client) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&task).
		SetError(&ports.ErrorResponse{}).
		Post(tasksPath)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces the supplied fields of a task
func (c *Client) UpdateTask(ctx context.Context, id string, fields ports.TaskFields) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(fields).
		SetError(&ports.ErrorResponse{}).
		Put(tasksPath + "/{id}")
	return check(resp, err)
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetError(&ports.ErrorResponse{}).
		Delete(tasksPath + "/{id}")
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("task api request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	message := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*ports.ErrorResponse); ok && body.Error != "" {
		message = body.Error
	}
	return &APIError{Status: resp.StatusCode(), Message: message}
}
