package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo     ports.TaskRepository
	validate     *validator.Validate
	queryTimeout time.Duration
	logger       *logger.Logger
}

// NewTaskService creates a new task service. Every repository call is
// bounded by queryTimeout on top of the caller's context.
func NewTaskService(taskRepo ports.TaskRepository, validate *validator.Validate, queryTimeout time.Duration, logger *logger.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{
		taskRepo:     taskRepo,
		validate:     validate,
		queryTimeout: queryTimeout,
		logger:       logger.WithComponent("task_service"),
	}
}

func (s *TaskService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// ListTasks retrieves every task matching the search and day filters
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	if filter.Day == "" {
		filter.Day = entities.FilterAll
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}

	return task, nil
}

// CreateTask validates and persists a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	task, err := s.taskRepo.Create(ctx, req.ToTask())
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created successfully", "task_id", task.ID, "retailer", task.Retailer, "day", task.Day)

	return task, nil
}

// UpdateTask replaces the supplied fields of a task
func (s *TaskService) UpdateTask(ctx context.Context, id string, fields ports.TaskFields) error {
	if err := s.validate.Struct(fields); err != nil {
		return validationError(err)
	}
	if err := rejectBlank(fields); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.taskRepo.UpdateByID(ctx, id, fields); err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}

	s.logger.Infow("Task updated successfully", "task_id", id, "fields", fields.Names())

	return nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.taskRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}

	s.logger.Infow("Task deleted successfully", "task_id", id)

	return nil
}

// ValidationError lists the offending fields of a rejected request.
type ValidationError struct {
	Fields []string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", entities.ErrValidation, e.err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{entities.ErrValidation, e.err}
}

var errBlank = errors.New("must not be blank")

// rejectBlank catches retailer or day set to whitespace, which omitempty
// lets through.
func rejectBlank(fields ports.TaskFields) error {
	var blank []string
	if fields.Retailer != nil && strings.TrimSpace(*fields.Retailer) == "" {
		blank = append(blank, "TaskFields.Retailer")
	}
	if fields.Day != nil && strings.TrimSpace(*fields.Day) == "" {
		blank = append(blank, "TaskFields.Day")
	}
	if len(blank) == 0 {
		return nil
	}
	return &ValidationError{Fields: blank, err: fmt.Errorf("%s %w", strings.Join(blank, ", "), errBlank)}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{err: err}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace())
	}
	return &ValidationError{Fields: fields, err: err}
}

var _ ports.TaskService = (*TaskService)(nil)
