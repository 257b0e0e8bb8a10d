package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/ports"
)

// TaskRepository implements the task repository interface on top of a
// document collection
type TaskRepository struct {
	coll ports.Collection
	now  func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(coll ports.Collection) *TaskRepository {
	return &TaskRepository{coll: coll, now: time.Now}
}

// WithClock replaces the time source
func (r *TaskRepository) WithClock(now func() time.Time) *TaskRepository {
	r.now = now
	return r
}

// timestamp never returns the same instant twice, so every write moves
// updatedAt forward even when the clock has not.
func (r *TaskRepository) timestamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Nanosecond)
	}
	r.last = t
	return t
}

// List retrieves every task matching filter in store order
func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	docs, err := r.coll.Find(ctx, filter.Matches()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*entities.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := decodeTask(doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entities.Task, error) {
	doc, err := r.coll.Get(ctx, id)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, entities.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decodeTask(doc)
}

// Create persists a new task. Identity, timestamps and completion are
// assigned here whatever the caller put in task.
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	created := *task
	created.ID = ""
	created.Completed = false
	if created.Files == nil {
		created.Files = []entities.TaskFile{}
	}
	now := r.timestamp()
	created.CreatedAt = now
	created.UpdatedAt = now

	body, err := json.Marshal(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}

	id, err := r.coll.Insert(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	created.ID = id

	return &created, nil
}

// UpdateByID replaces the supplied fields and refreshes updatedAt
func (r *TaskRepository) UpdateByID(ctx context.Context, id string, fields ports.TaskFields) error {
	if fields.Files != nil && *fields.Files == nil {
		empty := []entities.TaskFile{}
		fields.Files = &empty
	}

	patch, err := json.Marshal(struct {
		ports.TaskFields
		UpdatedAt time.Time `json:"updatedAt"`
	}{fields, r.timestamp()})
	if err != nil {
		return fmt.Errorf("failed to encode task update: %w", err)
	}

	matched, err := r.coll.Merge(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if !matched {
		return entities.ErrTaskNotFound
	}
	return nil
}

// DeleteByID removes a task
func (r *TaskRepository) DeleteByID(ctx context.Context, id string) error {
	deleted, err := r.coll.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return entities.ErrTaskNotFound
	}
	return nil
}

func decodeTask(doc ports.Document) (*entities.Task, error) {
	var task entities.Task
	if err := json.Unmarshal(doc.Body, &task); err != nil {
		return nil, fmt.Errorf("failed to decode task %s: %w", doc.ID, err)
	}
	task.ID = doc.ID
	if task.Files == nil {
		task.Files = []entities.TaskFile{}
	}
	return &task, nil
}

var _ ports.TaskRepository = (*TaskRepository)(nil)
