package ports

import (
	"context"

	"github.com/retailops/loadboard/internal/domain/entities"
)

// TaskService interface for task management operations
type TaskService interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	GetTask(ctx context.Context, id string) (*entities.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id string, fields TaskFields) error
	DeleteTask(ctx context.Context, id string) error
}

// TokenService validates and issues bearer tokens for API callers
type TokenService interface {
	ValidateToken(tokenString string) (*Claims, error)
	IssueToken(subject string) (string, error)
}

// Claims is what the API keeps from a validated token
type Claims struct {
	Subject string `json:"sub"`
	Issuer  string `json:"iss"`
}

// CreateTaskRequest carries every task field except identity, timestamps
// and the completion flag. A completed value in the body is ignored.
type CreateTaskRequest struct {
	Retailer  string              `json:"retailer" validate:"required,max=200"`
	Day       string              `json:"day" validate:"required,max=64"`
	FileCount int                 `json:"fileCount" validate:"gte=0"`
	Formats   entities.Formats    `json:"formats"`
	LoadType  entities.LoadType   `json:"loadType" validate:"omitempty,oneof='Direct load' 'Indirect load'"`
	Link      string              `json:"link" validate:"omitempty,url"`
	Username  string              `json:"username"`
	Password  string              `json:"password"`
	Files     []entities.TaskFile `json:"files" validate:"dive"`
}

// ToTask builds the entity to persist. Timestamps and completion are left
// to the repository.
func (r CreateTaskRequest) ToTask() *entities.Task {
	loadType := r.LoadType
	if loadType == "" {
		loadType = entities.LoadTypeDirect
	}
	files := r.Files
	if files == nil {
		files = []entities.TaskFile{}
	}
	return &entities.Task{
		Retailer:  r.Retailer,
		Day:       r.Day,
		FileCount: r.FileCount,
		Formats:   r.Formats,
		LoadType:  loadType,
		Link:      r.Link,
		Username:  r.Username,
		Password:  r.Password,
		Files:     files,
	}
}

// SuccessResponse acknowledges update and delete
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
