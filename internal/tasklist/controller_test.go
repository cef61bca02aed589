package tasklist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/horizon"
	"github.com/BuzzLyutic/tasks-client/internal/model"
	"github.com/BuzzLyutic/tasks-client/internal/remote"
	"github.com/BuzzLyutic/tasks-client/internal/service"
	"github.com/BuzzLyutic/tasks-client/internal/store"
)

// MockTaskAPI - мок удалённого сервиса задач
type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	args := m.Called(ctx, token)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskAPI) CreateTask(ctx context.Context, token string, in model.TaskInput) (model.Task, error) {
	args := m.Called(ctx, token, in)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) ToggleTask(ctx context.Context, token string, id int64, doneAt *time.Time) (model.Task, error) {
	args := m.Called(ctx, token, id, doneAt)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) UpdateTask(ctx context.Context, token string, id int64, in model.TaskInput) (model.Task, error) {
	args := m.Called(ctx, token, id, in)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskAPI) DeleteTask(ctx context.Context, token string, id int64) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

type staticToken string

func (s staticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", store.ErrorNotFound
	}
	return string(s), nil
}

type flag bool

func (f flag) Get() bool { return bool(f) }

var (
	brt  = time.FixedZone("BRT", -3*3600)
	noon = time.Date(2024, 10, 19, 12, 0, 0, 0, brt)
)

func newController(api TaskAPI, token staticToken, shown bool) *Controller {
	return New(horizon.Today, api, token, flag(shown), zap.NewNop(), WithClock(func() time.Time { return noon }))
}

func pending(id int64, at time.Time) model.Task {
	return model.Task{ID: id, Desc: "tarefa", EstimateAt: model.At(at)}
}

func TestController_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the whole list", func(t *testing.T) {
		api := new(MockTaskAPI)
		first := []model.Task{pending(1, noon), pending(2, noon)}
		second := []model.Task{pending(3, noon)}
		api.On("ListTasks", mock.Anything, "tok").Return(first, nil).Once()
		api.On("ListTasks", mock.Anything, "tok").Return(second, nil).Once()

		c := newController(api, "tok", true)
		assert.Equal(t, Loading, c.State())

		require.NoError(t, c.Load(ctx))
		assert.Equal(t, first, c.All())
		require.NoError(t, c.Focus(ctx))
		assert.Equal(t, second, c.All())
		assert.Equal(t, Ready, c.State())
		api.AssertExpectations(t)
	})

	t.Run("missing token gives empty ready list", func(t *testing.T) {
		api := new(MockTaskAPI)
		c := newController(api, "", true)

		err := c.Load(ctx)
		assert.ErrorIs(t, err, store.ErrorNotFound)
		assert.Equal(t, Ready, c.State())
		assert.Empty(t, c.All())
		api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
	})

	t.Run("failure keeps previous list", func(t *testing.T) {
		api := new(MockTaskAPI)
		first := []model.Task{pending(1, noon)}
		api.On("ListTasks", mock.Anything, "tok").Return(first, nil).Once()
		api.On("ListTasks", mock.Anything, "tok").Return(nil, &remote.APIError{StatusCode: 500, Message: "boom"}).Once()

		c := newController(api, "tok", true)
		require.NoError(t, c.Load(ctx))
		assert.Error(t, c.Load(ctx))
		assert.Equal(t, first, c.All())
		assert.Equal(t, Ready, c.State())
	})

	t.Run("failure on first load leaves empty list", func(t *testing.T) {
		api := new(MockTaskAPI)
		api.On("ListTasks", mock.Anything, "tok").Return(nil, remote.ErrNetwork)

		c := newController(api, "tok", true)
		assert.ErrorIs(t, c.Load(ctx), remote.ErrNetwork)
		assert.NotNil(t, c.All())
		assert.Empty(t, c.All())
	})
}

func TestController_Toggle(t *testing.T) {
	ctx := context.Background()
	doneAt := noon.Add(-time.Hour)

	tests := []struct {
		name       string
		cached     model.Task
		wantDoneAt *time.Time
		response   model.Task
		respErr    error
		wantCached model.Task
		wantErr    bool
	}{
		{
			name:       "pending task gets completion time",
			cached:     pending(1, noon),
			wantDoneAt: &noon,
			response:   model.Task{ID: 1, Desc: "do servidor", EstimateAt: model.At(noon), DoneAt: model.At(noon.Add(time.Second))},
			wantCached: model.Task{ID: 1, Desc: "do servidor", EstimateAt: model.At(noon), DoneAt: model.At(noon.Add(time.Second))},
		},
		{
			name:       "done task is reopened",
			cached:     model.Task{ID: 1, Desc: "tarefa", EstimateAt: model.At(noon), DoneAt: model.At(doneAt)},
			wantDoneAt: nil,
			response:   pending(1, noon),
			wantCached: pending(1, noon),
		},
		{
			name:       "failure keeps cached record",
			cached:     pending(1, noon),
			wantDoneAt: &noon,
			respErr:    remote.ErrNetwork,
			wantCached: pending(1, noon),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockTaskAPI)
			other := pending(2, noon)
			api.On("ListTasks", mock.Anything, "tok").Return([]model.Task{tt.cached, other}, nil).Once()
			api.On("ToggleTask", mock.Anything, "tok", int64(1), mock.MatchedBy(func(got *time.Time) bool {
				if tt.wantDoneAt == nil {
					return got == nil
				}
				return got != nil && got.Equal(*tt.wantDoneAt)
			})).Return(tt.response, tt.respErr).Once()

			c := newController(api, "tok", true)
			require.NoError(t, c.Load(ctx))

			err := c.Toggle(ctx, 1)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, []model.Task{tt.wantCached, other}, c.All())
			api.AssertExpectations(t)
		})
	}
}

func TestController_ToggleUnknownTask(t *testing.T) {
	api := new(MockTaskAPI)
	api.On("ListTasks", mock.Anything, "tok").Return([]model.Task{}, nil)

	c := newController(api, "tok", true)
	require.NoError(t, c.Load(context.Background()))

	assert.ErrorIs(t, c.Toggle(context.Background(), 9), ErrTaskNotFound)
	api.AssertNotCalled(t, "ToggleTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestController_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("validation blocks the network", func(t *testing.T) {
		inputs := []model.TaskInput{
			{Desc: "", EstimateAt: noon},
			{Desc: "   ", EstimateAt: noon},
			{Desc: "sem data"},
		}
		for _, in := range inputs {
			api := new(MockTaskAPI)
			c := newController(api, "tok", true)

			assert.ErrorIs(t, c.Add(ctx, in), service.ErrValidation)
			assert.Empty(t, api.Calls)
		}
	})

	t.Run("creates then refetches", func(t *testing.T) {
		api := new(MockTaskAPI)
		in := model.TaskInput{Desc: "Ir ao mercado", EstimateAt: noon}
		created := model.Task{ID: 10, Desc: in.Desc, EstimateAt: model.At(noon)}
		api.On("CreateTask", mock.Anything, "tok", in).Return(created, nil).Once()
		api.On("ListTasks", mock.Anything, "tok").Return([]model.Task{created}, nil).Once()

		c := newController(api, "tok", true)
		require.NoError(t, c.Add(ctx, in))

		assert.Equal(t, []model.Task{created}, c.All())
		api.AssertExpectations(t)
	})

	t.Run("server failure does not refetch", func(t *testing.T) {
		api := new(MockTaskAPI)
		api.On("CreateTask", mock.Anything, "tok", mock.Anything).
			Return(model.Task{}, &remote.APIError{StatusCode: 400, Message: "Dados incompletos"}).Once()

		c := newController(api, "tok", true)
		err := c.Add(ctx, model.TaskInput{Desc: "x", EstimateAt: noon})
		assert.Equal(t, "Dados incompletos", remote.Message(err))
		api.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
	})
}

func TestController_EditAndDeleteRefetch(t *testing.T) {
	ctx := context.Background()
	api := new(MockTaskAPI)
	in := model.TaskInput{Desc: "novo texto", EstimateAt: noon}
	edited := model.Task{ID: 1, Desc: in.Desc, EstimateAt: model.At(noon)}

	api.On("UpdateTask", mock.Anything, "tok", int64(1), in).Return(edited, nil).Once()
	api.On("ListTasks", mock.Anything, "tok").Return([]model.Task{edited}, nil).Once()
	api.On("DeleteTask", mock.Anything, "tok", int64(1)).Return(nil).Once()
	api.On("ListTasks", mock.Anything, "tok").Return([]model.Task{}, nil).Once()

	c := newController(api, "tok", true)

	require.NoError(t, c.Edit(ctx, 1, in))
	assert.Equal(t, []model.Task{edited}, c.All())

	require.NoError(t, c.Delete(ctx, 1))
	assert.Empty(t, c.All())

	assert.ErrorIs(t, c.Edit(ctx, 1, model.TaskInput{Desc: "", EstimateAt: noon}), service.ErrValidation)
	api.AssertExpectations(t)
}

func TestController_VisibleHidesDoneWhenFlagOff(t *testing.T) {
	done := model.Task{ID: 2, Desc: "feita", EstimateAt: model.At(noon), DoneAt: model.At(noon)}
	tomorrow := pending(3, noon.AddDate(0, 0, 1))
	tasks := []model.Task{pending(1, noon), done, tomorrow}

	for _, shown := range []bool{true, false} {
		api := new(MockTaskAPI)
		api.On("ListTasks", mock.Anything, "tok").Return(tasks, nil)
		c := newController(api, "tok", shown)
		require.NoError(t, c.Load(context.Background()))

		assert.Equal(t, []model.Task{tasks[0], done}, c.Tasks(noon))
		if shown {
			assert.Equal(t, []model.Task{tasks[0], done}, c.Visible(noon))
		} else {
			assert.Equal(t, []model.Task{tasks[0]}, c.Visible(noon))
		}
	}
}

func TestController_Header(t *testing.T) {
	c := New(horizon.Month, new(MockTaskAPI), staticToken("tok"), flag(true), zap.NewNop())
	title, subtitle := c.Header(noon)
	assert.Equal(t, "Mês", title)
	assert.Equal(t, "Mês de outubro", subtitle)
}
