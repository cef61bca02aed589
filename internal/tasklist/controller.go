// Package tasklist holds the per-screen task list: it fetches on focus, applies
// mutations through the task service and reconciles the cached list afterwards.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/horizon"
	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/remote"
	"github.com/BuzzLyutic/tasks-client/internal/service"
)

type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "ready"
}

var ErrTaskNotFound = errors.New("task not in list")

// TaskAPI is the task half of the remote service.
type TaskAPI interface {
	ListTasks(ctx context.Context, token string) ([]model.Task, error)
	CreateTask(ctx context.Context, token string, in model.TaskInput) (model.Task, error)
	ToggleTask(ctx context.Context, token string, id int64, doneAt *time.Time) (model.Task, error)
	UpdateTask(ctx context.Context, token string, id int64, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, token string, id int64) error
}

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type VisibilityFlag interface {
	Get() bool
}

// Serializer runs fn exclusively with respect to other calls sharing key.
type Serializer interface {
	Do(ctx context.Context, key int64, fn func(context.Context) error) error
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithSerializer(s Serializer) Option {
	return func(c *Controller) { c.serial = s }
}

func WithLocale(l horizon.Locale) Option {
	return func(c *Controller) { c.locale = l }
}

type Controller struct {
	horizon    horizon.Horizon
	api        TaskAPI
	tokens     TokenSource
	visibility VisibilityFlag
	logger     *zap.Logger
	now        func() time.Time
	locale     horizon.Locale
	serial     Serializer

	mu    sync.RWMutex
	state State
	tasks []model.Task
}

func New(h horizon.Horizon, api TaskAPI, tokens TokenSource, visibility VisibilityFlag, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		horizon:    h,
		api:        api,
		tokens:     tokens,
		visibility: visibility,
		logger:     logger.With(zap.String("horizon", horizon.Title(h))),
		now:        time.Now,
		locale:     horizon.PtBR,
		state:      Loading,
		tasks:      []model.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Horizon() horizon.Horizon { return c.horizon }

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// All returns a copy of the cached, unfiltered list.
func (c *Controller) All() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Tasks is the cached list narrowed to the controller's horizon at now.
func (c *Controller) Tasks(now time.Time) []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale.Filter(c.tasks, c.horizon, now)
}

// Visible is Tasks without completed tasks when the visibility flag is off.
func (c *Controller) Visible(now time.Time) []model.Task {
	tasks := c.Tasks(now)
	if c.visibility == nil || c.visibility.Get() {
		return tasks
	}
	pending := tasks[:0]
	for _, t := range tasks {
		if !t.Done() {
			pending = append(pending, t)
		}
	}
	return pending
}

// Header returns the screen title and the date line under it.
func (c *Controller) Header(now time.Time) (title, subtitle string) {
	return horizon.Title(c.horizon), c.locale.Subtitle(c.horizon, now)
}

// Focus is called whenever the screen becomes active again.
func (c *Controller) Focus(ctx context.Context) error {
	return c.Load(ctx)
}

// Load replaces the cached list with the server's. Without a token the list
// becomes empty; on failure the previous list is kept.
func (c *Controller) Load(ctx context.Context) error {
	c.setState(Loading)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Error("token not found", zap.Error(err))
		c.mu.Lock()
		c.tasks = []model.Task{}
		c.state = Ready
		c.mu.Unlock()
		return fmt.Errorf("load tasks: %w", err)
	}

	tasks, err := c.api.ListTasks(ctx, token)
	if err != nil {
		c.logFailure("failed to load tasks", err)
		c.setState(Ready)
		return fmt.Errorf("load tasks: %w", err)
	}

	c.mu.Lock()
	c.tasks = tasks
	c.state = Ready
	c.mu.Unlock()
	return nil
}

// Toggle flips the completion of a cached task. The server's answer replaces
// the cached record; nothing is changed locally before it arrives.
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	return c.serialize(ctx, id, func(ctx context.Context) error {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}

		task, ok := c.find(id)
		if !ok {
			c.logger.Error("toggle of unknown task", zap.Int64("task_id", id))
			return fmt.Errorf("toggle task %d: %w", id, ErrTaskNotFound)
		}

		var doneAt *time.Time
		if !task.Done() {
			now := c.now()
			doneAt = &now
		}

		updated, err := c.api.ToggleTask(ctx, token, id, doneAt)
		if err != nil {
			c.logFailure("failed to toggle task", err, zap.Int64("task_id", id))
			return fmt.Errorf("toggle task %d: %w", id, err)
		}

		c.replace(updated)
		return nil
	})
}

// Add creates a task and then refetches the whole list.
func (c *Controller) Add(ctx context.Context, in model.TaskInput) error {
	if err := validateInput(in); err != nil {
		c.logger.Warn("task rejected", zap.Error(err))
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	if _, err := c.api.CreateTask(ctx, token, in); err != nil {
		c.logFailure("failed to add task", err)
		return fmt.Errorf("add task: %w", err)
	}

	c.reload(ctx)
	return nil
}

// Edit updates description and estimate, then refetches the whole list.
func (c *Controller) Edit(ctx context.Context, id int64, in model.TaskInput) error {
	if err := validateInput(in); err != nil {
		c.logger.Warn("edit rejected", zap.Int64("task_id", id), zap.Error(err))
		return err
	}

	err := c.serialize(ctx, id, func(ctx context.Context) error {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		if _, err := c.api.UpdateTask(ctx, token, id, in); err != nil {
			c.logFailure("failed to edit task", err, zap.Int64("task_id", id))
			return fmt.Errorf("edit task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.reload(ctx)
	return nil
}

// Delete removes a task on the server, then refetches the whole list.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	err := c.serialize(ctx, id, func(ctx context.Context) error {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		if err := c.api.DeleteTask(ctx, token, id); err != nil {
			c.logFailure("failed to delete task", err, zap.Int64("task_id", id))
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.reload(ctx)
	return nil
}

// reload refetches after a successful mutation. Its failure is logged by Load
// and does not undo the mutation.
func (c *Controller) reload(ctx context.Context) {
	_ = c.Load(ctx)
}

func (c *Controller) serialize(ctx context.Context, id int64, fn func(context.Context) error) error {
	if c.serial == nil {
		return fn(ctx)
	}
	return c.serial.Do(ctx, id, fn)
}

func (c *Controller) token(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Error("token not found", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (c *Controller) find(id int64) (model.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *Controller) replace(updated model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]model.Task, len(c.tasks))
	for i, t := range c.tasks {
		if t.ID == updated.ID {
			t = updated
		}
		next[i] = t
	}
	c.tasks = next
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if serverMsg := remote.Message(err); serverMsg != "" {
		fields = append(fields, zap.String("server_message", serverMsg))
	}
	c.logger.Error(msg, fields...)
}

func validateInput(in model.TaskInput) error {
	if strings.TrimSpace(in.Desc) == "" {
		return fmt.Errorf("%w: description is required", service.ErrValidation)
	}
	if in.EstimateAt.IsZero() {
		return fmt.Errorf("%w: estimated date is required", service.ErrValidation)
	}
	return nil
}
