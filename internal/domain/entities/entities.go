package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidDay   = errors.New("invalid schedule day")
)

// Store layout. The collection name doubles as the table name in the
// Postgres-backed store.
const (
	DatabaseName   = "taskmanager"
	CollectionName = "tasks"
)

// LoadType describes how a retailer's files reach the warehouse.
type LoadType string

const (
	LoadTypeDirect   LoadType = "Direct load"
	LoadTypeIndirect LoadType = "Indirect load"
)

// Valid reports whether t is one of the known load types.
func (t LoadType) Valid() bool {
	return t == LoadTypeDirect || t == LoadTypeIndirect
}

// Filter sentinels shared by the API and the dashboard.
const (
	FilterAll = "all"

	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Schedule choices offered by the create dialog. The API itself accepts
// any non-empty day string.
var ScheduleDays = []string{
	"Today's load",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
}

// FileFormat names a format counted in Formats.
type FileFormat string

const (
	FormatXLSX FileFormat = "xlsx"
	FormatCSV  FileFormat = "csv"
	FormatTXT  FileFormat = "txt"
	FormatMail FileFormat = "mail"
)

// Formats breaks the expected file count down by format.
type Formats struct {
	XLSX int `json:"xlsx" validate:"gte=0"`
	CSV  int `json:"csv" validate:"gte=0"`
	TXT  int `json:"txt" validate:"gte=0"`
	Mail int `json:"mail" validate:"gte=0"`
}

// Total sums the per-format counts.
func (f Formats) Total() int {
	return f.XLSX + f.CSV + f.TXT + f.Mail
}

// Count returns the expected count for a single format.
func (f Formats) Count(format FileFormat) int {
	switch format {
	case FormatXLSX:
		return f.XLSX
	case FormatCSV:
		return f.CSV
	case FormatTXT:
		return f.TXT
	case FormatMail:
		return f.Mail
	default:
		return 0
	}
}

// TaskFile maps the name a file is downloaded under to the name the load
// expects.
type TaskFile struct {
	DownloadName string `json:"downloadName" validate:"required"`
	RequiredName string `json:"requiredName" validate:"required"`
}

// Task is a recurring retail data-load job.
type Task struct {
	ID        string     `json:"_id,omitempty"`
	Retailer  string     `json:"retailer"`
	Day       string     `json:"day"`
	FileCount int        `json:"fileCount"`
	Formats   Formats    `json:"formats"`
	LoadType  LoadType   `json:"loadType"`
	Link      string     `json:"link"`
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	Files     []TaskFile `json:"files"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// StatusLabel is the label shown next to the retailer name.
func (t *Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Pending"
}

// ToggleLabel names the action that flips the completion flag.
func (t *Task) ToggleLabel() string {
	if t.Completed {
		return "Mark Pending"
	}
	return "Mark Complete"
}

// MatchesStatus applies the dashboard status filter.
func (t *Task) MatchesStatus(status string) bool {
	switch status {
	case "", FilterAll:
		return true
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	default:
		return false
	}
}

// MatchesLoadType applies the dashboard load type filter.
func (t *Task) MatchesLoadType(loadType string) bool {
	return loadType == "" || loadType == FilterAll || string(t.LoadType) == loadType
}
