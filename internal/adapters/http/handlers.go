package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.WithComponent("task_handler"),
	}
}

// Register mounts the task routes on g
func (h *TaskHandler) Register(g *echo.Group) {
	g.GET("", h.ListTasks)
	g.POST("", h.CreateTask)
	g.GET("/:id", h.GetTask)
	g.PUT("/:id", h.UpdateTask)
	g.DELETE("/:id", h.DeleteTask)
}

// ListTasks godoc
// @Summary List tasks
// @Tags Tasks
// @Param search query string false "Retailer substring"
// @Param day query string false "Day substring, or all" default(all)
// @Success 200 {array} entities.Task
// @Failure 500 {object} ports.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := ports.TaskFilter{
		Search: c.QueryParam("search"),
		Day:    c.QueryParam("day"),
	}
	if filter.Day == "" {
		filter.Day = entities.FilterAll
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return h.fail(c, "list", "", err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// GetTask godoc
// @Summary Get a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id := c.Param("id")

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "get", id, err)
	}

	return c.JSON(http.StatusOK, task)
}

// CreateTask godoc
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Param task body ports.CreateTaskRequest true "Task fields"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "create", "", err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "create", "", err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Update task fields
// @Tags Tasks
// @Accept json
// @Param id path string true "Task ID"
// @Param fields body ports.TaskFields true "Fields to replace"
// @Success 200 {object} ports.SuccessResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id := c.Param("id")

	var fields ports.TaskFields
	if err := c.Bind(&fields); err != nil {
		return h.fail(c, "update", id, err)
	}

	if err := h.taskService.UpdateTask(c.Request().Context(), id, fields); err != nil {
		return h.fail(c, "update", id, err)
	}

	return c.JSON(http.StatusOK, ports.SuccessResponse{Success: true})
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 200 {object} ports.SuccessResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id := c.Param("id")

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return h.fail(c, "delete", id, err)
	}

	return c.JSON(http.StatusOK, ports.SuccessResponse{Success: true})
}

// fail logs err with the operation and target, then maps it to a status
// and a JSON error body.
func (h *TaskHandler) fail(c echo.Context, op, id string, err error) error {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		if m, ok := failureMessages[op]; ok {
			message = m
		}
	}

	log := h.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).WithError(err)
	fields := []interface{}{"operation", op, "status", status}
	if id != "" {
		fields = append(fields, "task_id", id)
	}

	if status >= http.StatusInternalServerError {
		log.Errorw("Task request failed", fields...)
	} else {
		log.Warnw("Task request rejected", fields...)
	}

	return c.JSON(status, ports.ErrorResponse{Error: message})
}

var failureMessages = map[string]string{
	"list":   "Failed to fetch tasks",
	"get":    "Failed to fetch task",
	"create": "Failed to create task",
	"update": "Failed to update task",
	"delete": "Failed to delete task",
}

// StatusFor maps a service error to the response status and the message
// shown to the caller. Internal failures never expose the cause.
func StatusFor(err error) (int, string) {
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, entities.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, entities.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
		return httpErr.Code, "Invalid request body"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
