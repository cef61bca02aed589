// Package remote talks to the task service over HTTP/JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/pkg/respond"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for the service at baseURL. A nil httpClient
// means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

func (c *Client) SignIn(ctx context.Context, creds model.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, "", http.MethodPost, "/signin", creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}

func (c *Client) SignUp(ctx context.Context, reg model.Registration) error {
	return c.do(ctx, "", http.MethodPost, "/signup", reg, nil)
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, token, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, in model.TaskInput) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, token, http.MethodPost, "/tasks", in, &t)
	return t, err
}

// ToggleTask sends the new completion time; nil marks the task as pending.
func (c *Client) ToggleTask(ctx context.Context, token string, id int64, doneAt *time.Time) (model.Task, error) {
	body := struct {
		DoneAt *string `json:"doneAt"`
	}{}
	if doneAt != nil {
		s := model.FormatISO(*doneAt)
		body.DoneAt = &s
	}

	var t model.Task
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/tasks/%d/toggle", id), body, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, token string, id int64, in model.TaskInput) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, token, http.MethodPut, fmt.Sprintf("/tasks/%d", id), in, &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, token, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// authorized returns an http.Client that sends "Authorization: Bearer <token>".
func (c *Client) authorized(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.http
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), src)
	hc.Timeout = c.http.Timeout
	return hc
}

func (c *Client) do(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.authorized(ctx, token).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("task service call",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: respond.ReadError(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
