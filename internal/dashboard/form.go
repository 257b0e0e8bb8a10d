package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/retailops/loadboard/internal/domain/entities"
	"github.com/retailops/loadboard/internal/ports"
)

// Create dialog defaults
const (
	DefaultFileCount = 9
	DefaultLoadType  = entities.LoadTypeDirect
)

// DefaultFormats is the per-format breakdown a new task starts with
var DefaultFormats = entities.Formats{XLSX: 3, CSV: 4, TXT: 1, Mail: 1}

// TaskForm is the create dialog. Day must be one of the schedule choices.
type TaskForm struct {
	Retailer  string
	Day       string
	FileCount int
	Formats   entities.Formats
	LoadType  entities.LoadType
	Link      string
	Username  string
	Password  string
	Files     []entities.TaskFile
}

// NewTaskForm returns a form holding the dialog defaults
func NewTaskForm() *TaskForm {
	return &TaskForm{
		FileCount: DefaultFileCount,
		Formats:   DefaultFormats,
		LoadType:  DefaultLoadType,
		Files:     []entities.TaskFile{},
	}
}

// AddFile appends a download/required name pair
func (f *TaskForm) AddFile(downloadName, requiredName string) {
	f.Files = append(f.Files, entities.TaskFile{DownloadName: downloadName, RequiredName: requiredName})
}

// RemoveFile drops the pair at index i
func (f *TaskForm) RemoveFile(i int) {
	if i < 0 || i >= len(f.Files) {
		return
	}
	f.Files = slices.Delete(f.Files, i, i+1)
}

// Request validates the form and builds the create request
func (f *TaskForm) Request(validate *validator.Validate) (ports.CreateTaskRequest, error) {
	if !slices.Contains(entities.ScheduleDays, f.Day) {
		return ports.CreateTaskRequest{}, fmt.Errorf("%w: %q, choose one of %s",
			entities.ErrInvalidDay, f.Day, strings.Join(entities.ScheduleDays, ", "))
	}

	files := f.Files
	if files == nil {
		files = []entities.TaskFile{}
	}

	req := ports.CreateTaskRequest{
		Retailer:  strings.TrimSpace(f.Retailer),
		Day:       f.Day,
		FileCount: f.FileCount,
		Formats:   f.Formats,
		LoadType:  f.LoadType,
		Link:      strings.TrimSpace(f.Link),
		Username:  f.Username,
		Password:  f.Password,
		Files:     files,
	}

	if err := validate.Struct(req); err != nil {
		return ports.CreateTaskRequest{}, formError(err)
	}
	return req, nil
}

// EditForm is the detail dialog in edit mode. It starts from a task and
// reports only the fields that changed.
type EditForm struct {
	original entities.Task
	TaskForm
	Completed bool
}

// NewEditForm loads task into an edit form
func NewEditForm(task entities.Task) *EditForm {
	files := slices.Clone(task.Files)
	if files == nil {
		files = []entities.TaskFile{}
	}
	return &EditForm{
		original: task,
		TaskForm: TaskForm{
			Retailer:  task.Retailer,
			Day:       task.Day,
			FileCount: task.FileCount,
			Formats:   task.Formats,
			LoadType:  task.LoadType,
			Link:      task.Link,
			Username:  task.Username,
			Password:  task.Password,
			Files:     files,
		},
		Completed: task.Completed,
	}
}

// ID is the task being edited
func (f *EditForm) ID() string {
	return f.original.ID
}

// Changes validates the form and returns the changed fields. Nested
// values like formats and files are sent whole when they differ.
func (f *EditForm) Changes(validate *validator.Validate) (ports.TaskFields, error) {
	var fields ports.TaskFields
	o := f.original

	if strings.TrimSpace(f.Retailer) == "" {
		return fields, fmt.Errorf("%w: Retailer failed on required", entities.ErrValidation)
	}
	if f.Day == "" {
		return fields, fmt.Errorf("%w: Day failed on required", entities.ErrValidation)
	}

	if r := strings.TrimSpace(f.Retailer); r != o.Retailer {
		fields.Retailer = &r
	}
	if f.Day != o.Day {
		day := f.Day
		fields.Day = &day
	}
	if f.FileCount != o.FileCount {
		n := f.FileCount
		fields.FileCount = &n
	}
	if f.Formats != o.Formats {
		formats := f.Formats
		fields.Formats = &formats
	}
	if f.LoadType != o.LoadType {
		lt := f.LoadType
		fields.LoadType = &lt
	}
	if l := strings.TrimSpace(f.Link); l != o.Link {
		fields.Link = &l
	}
	if f.Username != o.Username {
		u := f.Username
		fields.Username = &u
	}
	if f.Password != o.Password {
		p := f.Password
		fields.Password = &p
	}
	if !slices.Equal(f.Files, o.Files) {
		files := slices.Clone(f.Files)
		if files == nil {
			files = []entities.TaskFile{}
		}
		fields.Files = &files
	}
	if f.Completed != o.Completed {
		c := f.Completed
		fields.Completed = &c
	}

	if err := validate.Struct(fields); err != nil {
		return ports.TaskFields{}, formError(err)
	}
	return fields, nil
}

func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", entities.ErrValidation, strings.Join(msgs, "; "))
}
