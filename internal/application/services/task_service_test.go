package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/loadboard/internal/adapters/repository"
	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()
	repo := repository.NewTaskRepository(repository.NewMemoryStore().Collection(entities.CollectionName))
	return NewTaskService(repo, validator.New(), time.Second, logger.NewNop())
}

func validRequest() ports.CreateTaskRequest {
	return ports.CreateTaskRequest{
		Retailer:  "Acme",
		Day:       "Monday",
		FileCount: 9,
		Formats:   entities.Formats{XLSX: 3, CSV: 4, TXT: 1, Mail: 1},
		LoadType:  entities.LoadTypeDirect,
		Link:      "https://portal.acme.example",
		Username:  "loader",
		Password:  "secret",
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	t.Run("minimal input gets defaults", func(t *testing.T) {
		task, err := svc.CreateTask(ctx, ports.CreateTaskRequest{Retailer: "Acme", Day: "Monday"})
		require.NoError(t, err)

		assert.NotEmpty(t, task.ID)
		assert.Equal(t, entities.LoadTypeDirect, task.LoadType)
		assert.Equal(t, []entities.TaskFile{}, task.Files)
		assert.False(t, task.Completed)
	})

	tests := []struct {
		name   string
		mutate func(*ports.CreateTaskRequest)
		field  string
	}{
		{"missing retailer", func(r *ports.CreateTaskRequest) { r.Retailer = "" }, "Retailer"},
		{"missing day", func(r *ports.CreateTaskRequest) { r.Day = "" }, "Day"},
		{"negative file count", func(r *ports.CreateTaskRequest) { r.FileCount = -1 }, "FileCount"},
		{"negative format count", func(r *ports.CreateTaskRequest) { r.Formats.CSV = -2 }, "CSV"},
		{"unknown load type", func(r *ports.CreateTaskRequest) { r.LoadType = "Teleport" }, "LoadType"},
		{"bad link", func(r *ports.CreateTaskRequest) { r.Link = "not a url" }, "Link"},
		{"incomplete file mapping", func(r *ports.CreateTaskRequest) {
			r.Files = []entities.TaskFile{{DownloadName: "a.csv"}}
		}, "RequiredName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.CreateTask(ctx, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, entities.ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Contains(t, verr.Fields[0], tt.field)
		})
	}
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	task, err := svc.CreateTask(ctx, validRequest())
	require.NoError(t, err)

	t.Run("applies supplied fields", func(t *testing.T) {
		completed := true
		day := "Friday"
		require.NoError(t, svc.UpdateTask(ctx, task.ID, ports.TaskFields{Completed: &completed, Day: &day}))

		got, err := svc.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, "Friday", got.Day)
		assert.Equal(t, "Acme", got.Retailer)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		loadType := entities.LoadType("Sideways")
		err := svc.UpdateTask(ctx, task.ID, ports.TaskFields{LoadType: &loadType})
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("rejects blank retailer and day", func(t *testing.T) {
		empty, spaces := "", "   "
		err := svc.UpdateTask(ctx, task.ID, ports.TaskFields{Retailer: &empty, Day: &spaces})
		require.ErrorIs(t, err, entities.ErrValidation)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"TaskFields.Retailer", "TaskFields.Day"}, verr.Fields)

		got, err := svc.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.Retailer)
		assert.Equal(t, "Friday", got.Day)
	})

	t.Run("unknown id", func(t *testing.T) {
		completed := false
		err := svc.UpdateTask(ctx, "nope", ports.TaskFields{Completed: &completed})
		assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	})
}

func TestTaskService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, r := range []string{"Acme", "Globex"} {
		req := validRequest()
		req.Retailer = r
		_, err := svc.CreateTask(ctx, req)
		require.NoError(t, err)
	}

	tasks, err := svc.ListTasks(ctx, ports.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.NoError(t, svc.DeleteTask(ctx, tasks[0].ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, tasks[0].ID), entities.ErrTaskNotFound)

	tasks, err = svc.ListTasks(ctx, ports.TaskFilter{Search: "acme"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

type slowRepository struct {
	ports.TaskRepository
}

func (slowRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTaskService_QueryTimeout(t *testing.T) {
	svc := NewTaskService(slowRepository{}, nil, 20*time.Millisecond, logger.NewNop())

	start := time.Now()
	_, err := svc.ListTasks(context.Background(), ports.TaskFilter{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
