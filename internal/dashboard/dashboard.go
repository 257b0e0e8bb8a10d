package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/retailops/loadboard/internal/client"
	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

// TaskAPI is the write side of the task API
type TaskAPI interface {
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id string, fields ports.TaskFields) error
	DeleteTask(ctx context.Context, id string) error
}

// BulkResult reports the outcome of a bulk action
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

// Err joins every per-task failure
func (r BulkResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for id, err := range r.Failed {
		errs = append(errs, fmt.Errorf("task %s: %w", id, err))
	}
	return errors.Join(errs...)
}

// Dashboard holds the view state and selection and keeps them in step with
// the task cache.
type Dashboard struct {
	api      TaskAPI
	cache    *client.Cache
	validate *validator.Validate
	logger   *logger.Logger

	mu        sync.Mutex
	key       client.Key
	state     ViewState
	selection *Selection
}

// New creates a dashboard showing every task
func New(api TaskAPI, cache *client.Cache, validate *validator.Validate, log *logger.Logger) *Dashboard {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dashboard{
		api:       api,
		cache:     cache,
		validate:  validate,
		logger:    log.WithComponent("dashboard"),
		key:       client.Key{Day: entities.FilterAll},
		state:     DefaultViewState(),
		selection: NewSelection(),
	}
}

// Key is the active server-side query
func (d *Dashboard) Key() client.Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.key
}

// State is the active client-side view state
func (d *Dashboard) State() ViewState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Load fetches the active key if it is not cached yet
func (d *Dashboard) Load(ctx context.Context) Model {
	d.cache.Get(ctx, d.Key())
	return d.Model()
}

// Search changes the retailer search and loads the new key
func (d *Dashboard) Search(ctx context.Context, search string) Model {
	d.mu.Lock()
	d.key.Search = search
	d.mu.Unlock()
	return d.Load(ctx)
}

// FilterDay changes the day filter and loads the new key
func (d *Dashboard) FilterDay(ctx context.Context, day string) Model {
	if day == "" {
		day = entities.FilterAll
	}
	d.mu.Lock()
	d.key.Day = day
	d.mu.Unlock()
	return d.Load(ctx)
}

// Query sets both server-side filters and loads the resulting key
func (d *Dashboard) Query(ctx context.Context, search, day string) Model {
	if day == "" {
		day = entities.FilterAll
	}
	d.mu.Lock()
	d.key = client.Key{Search: search, Day: day}
	d.mu.Unlock()
	return d.Load(ctx)
}

// SetView replaces the client-side view state. The selection is kept.
func (d *Dashboard) SetView(state ViewState) Model {
	d.mu.Lock()
	d.state = state
	d.mu.Unlock()
	return d.Model()
}

// Refresh refetches the active key
func (d *Dashboard) Refresh(ctx context.Context) Model {
	d.cache.Revalidate(ctx, d.Key())
	return d.Model()
}

// Model derives the current frame from the cached snapshot
func (d *Dashboard) Model() Model {
	d.mu.Lock()
	key, state := d.key, d.state
	sel := d.cloneSelection()
	d.mu.Unlock()

	snap, _ := d.cache.Peek(key)
	return Model{
		Search:      key.Search,
		Day:         key.Day,
		State:       state,
		Visible:     Derive(snap.Tasks, state),
		Selection:   sel,
		Err:         snap.Err,
		Loading:     snap.Loading(),
		RefreshedAt: snap.FetchedAt,
	}
}

// Toggle flips the selection of one task
func (d *Dashboard) Toggle(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Toggle(id)
}

// Select adds ids to the selection
func (d *Dashboard) Select(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		d.selection.Set(id, true)
	}
}

// SelectAll selects every visible task, or clears the selection when
// checked is false.
func (d *Dashboard) SelectAll(checked bool) {
	visible := d.Model().Visible

	d.mu.Lock()
	defer d.mu.Unlock()
	if !checked {
		d.selection.Clear()
		return
	}
	d.selection.SelectAll(visible)
}

// Selected returns the selected ids
func (d *Dashboard) Selected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.IDs()
}

// Detail fetches one task for the detail dialog
func (d *Dashboard) Detail(ctx context.Context, id string) (*entities.Task, error) {
	return d.api.GetTask(ctx, id)
}

// Create submits the create dialog and refreshes the list
func (d *Dashboard) Create(ctx context.Context, form *TaskForm) (*entities.Task, error) {
	req, err := form.Request(d.validate)
	if err != nil {
		return nil, err
	}

	task, err := d.api.CreateTask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	d.logger.Infow("Task created", "task_id", task.ID, "retailer", task.Retailer)
	d.invalidate(ctx)
	return task, nil
}

// Save submits the edit dialog and refreshes the list. Nothing is sent
// when no field changed.
func (d *Dashboard) Save(ctx context.Context, form *EditForm) error {
	fields, err := form.Changes(d.validate)
	if err != nil {
		return err
	}
	if fields.IsEmpty() {
		return nil
	}

	if err := d.api.UpdateTask(ctx, form.ID(), fields); err != nil {
		return fmt.Errorf("update task %s: %w", form.ID(), err)
	}
	d.invalidate(ctx)
	return nil
}

// SetCompleted marks one task complete or pending
func (d *Dashboard) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := d.api.UpdateTask(ctx, id, ports.TaskFields{Completed: &completed}); err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	d.invalidate(ctx)
	return nil
}

// Delete removes one task and drops it from the selection
func (d *Dashboard) Delete(ctx context.Context, id string) error {
	if err := d.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	d.mu.Lock()
	d.selection.Set(id, false)
	d.mu.Unlock()

	d.invalidate(ctx)
	return nil
}

// BulkSetCompleted marks every selected task complete or pending
func (d *Dashboard) BulkSetCompleted(ctx context.Context, completed bool) BulkResult {
	return d.bulk(ctx, "set_completed", func(id string) error {
		return d.api.UpdateTask(ctx, id, ports.TaskFields{Completed: &completed})
	}, false)
}

// BulkDelete deletes every selected task
func (d *Dashboard) BulkDelete(ctx context.Context) BulkResult {
	return d.bulk(ctx, "delete", func(id string) error {
		return d.api.DeleteTask(ctx, id)
	}, true)
}

func (d *Dashboard) bulk(ctx context.Context, action string, apply func(id string) error, deselect bool) BulkResult {
	res := BulkResult{Failed: make(map[string]error)}
	for _, id := range d.Selected() {
		if err := ctx.Err(); err != nil {
			res.Failed[id] = err
			continue
		}
		if err := apply(id); err != nil {
			res.Failed[id] = err
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}

	if deselect {
		d.mu.Lock()
		for _, id := range res.Succeeded {
			d.selection.Set(id, false)
		}
		d.mu.Unlock()
	}

	d.logger.Infow("Bulk action finished", "action", action,
		"succeeded", len(res.Succeeded), "failed", len(res.Failed))

	if len(res.Succeeded) > 0 {
		d.invalidate(ctx)
	}
	return res
}

func (d *Dashboard) invalidate(ctx context.Context) {
	snap := d.cache.Invalidate(ctx, d.Key())
	if snap.Err != nil {
		d.logger.WithError(snap.Err).Warn("Refresh after mutation failed")
	}
}

func (d *Dashboard) cloneSelection() *Selection {
	sel := NewSelection()
	for id := range d.selection.ids {
		sel.ids[id] = struct{}{}
	}
	return sel
}
