package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/ports"
)

func newTestRepository(now func() time.Time) *TaskRepository {
	repo := NewTaskRepository(NewMemoryStore().Collection(entities.CollectionName))
	if now != nil {
		repo.WithClock(now)
	}
	return repo
}

func sampleTask(retailer, day string) *entities.Task {
	return &entities.Task{
		Retailer:  retailer,
		Day:       day,
		FileCount: 9,
		Formats:   entities.Formats{XLSX: 3, CSV: 4, TXT: 1, Mail: 1},
		LoadType:  entities.LoadTypeDirect,
		Link:      "https://portal.example.com",
		Username:  "loader",
		Password:  "secret",
	}
}

func TestTaskRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(nil)

	t.Run("forces completed false and stamps timestamps", func(t *testing.T) {
		in := sampleTask("Acme", "Monday")
		in.Completed = true
		in.ID = "client-chosen"

		created, err := repo.Create(ctx, in)
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.NotEqual(t, "client-chosen", created.ID)
		assert.False(t, created.Completed)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)
		assert.Equal(t, []entities.TaskFile{}, created.Files)

		// the caller's value is left alone
		assert.True(t, in.Completed)

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, stored.Completed)
		assert.Equal(t, "Acme", stored.Retailer)
		assert.Equal(t, in.Formats, stored.Formats)
	})

	t.Run("ids are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			created, err := repo.Create(ctx, sampleTask("Acme", "Monday"))
			require.NoError(t, err)
			assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
			seen[created.ID] = true
		}
	})
}

func TestTaskRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(nil)

	for _, task := range []*entities.Task{
		sampleTask("Acme Foods", "Monday"),
		sampleTask("Globex", "Today's load"),
		sampleTask("ACME Hardware", "Tuesday"),
	} {
		_, err := repo.Create(ctx, task)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter ports.TaskFilter
		want   []string
	}{
		{"empty filter", ports.TaskFilter{}, []string{"Acme Foods", "Globex", "ACME Hardware"}},
		{"day all", ports.TaskFilter{Day: entities.FilterAll}, []string{"Acme Foods", "Globex", "ACME Hardware"}},
		{"search ignores case", ports.TaskFilter{Search: "acme"}, []string{"Acme Foods", "ACME Hardware"}},
		{"day ignores case", ports.TaskFilter{Day: "MONDAY"}, []string{"Acme Foods"}},
		{"today is a literal substring", ports.TaskFilter{Day: "today"}, []string{"Globex"}},
		{"search and day combine", ports.TaskFilter{Search: "acme", Day: "tue"}, []string{"ACME Hardware"}},
		{"no match", ports.TaskFilter{Search: "initech"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			var got []string
			for _, task := range tasks {
				got = append(got, task.Retailer)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskRepository_UpdateByID(t *testing.T) {
	ctx := context.Background()

	// A frozen clock still has to move updatedAt forward.
	frozen := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := newTestRepository(func() time.Time { return frozen })

	created, err := repo.Create(ctx, sampleTask("Acme", "Monday"))
	require.NoError(t, err)

	t.Run("updatedAt strictly increases and createdAt is kept", func(t *testing.T) {
		before := created.UpdatedAt
		for i := 0; i < 3; i++ {
			completed := i%2 == 0
			require.NoError(t, repo.UpdateByID(ctx, created.ID, ports.TaskFields{Completed: &completed}))

			got, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, got.UpdatedAt.After(before))
			assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
			assert.Equal(t, completed, got.Completed)
			before = got.UpdatedAt
		}
	})

	t.Run("nested values are replaced wholesale", func(t *testing.T) {
		formats := entities.Formats{Mail: 2}
		files := []entities.TaskFile{{DownloadName: "a.csv", RequiredName: "acme.csv"}}
		require.NoError(t, repo.UpdateByID(ctx, created.ID, ports.TaskFields{Formats: &formats, Files: &files}))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.Formats{Mail: 2}, got.Formats)
		assert.Equal(t, files, got.Files)
		assert.Equal(t, "Acme", got.Retailer)
	})

	t.Run("unknown id", func(t *testing.T) {
		completed := true
		err := repo.UpdateByID(ctx, "does-not-exist", ports.TaskFields{Completed: &completed})
		assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	})
}

func TestTaskRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(nil)

	created, err := repo.Create(ctx, sampleTask("Acme", "Monday"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	assert.ErrorIs(t, repo.DeleteByID(ctx, created.ID), entities.ErrTaskNotFound)

	tasks, err := repo.List(ctx, ports.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
