package ports

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/retailops/loadboard/internal/domain/entities"
)

// ErrDocumentNotFound is returned by a Collection when no document has the
// requested id. Malformed ids are reported the same way.
var ErrDocumentNotFound = errors.New("document not found")

// Document is a stored record: the store-assigned id plus the JSON body.
type Document struct {
	ID   string
	Body json.RawMessage
}

// Match constrains a top-level string field to contain Substring,
// ignoring case.
type Match struct {
	Field     string
	Substring string
}

// Collection is the narrow view of the document store the repositories
// consume. Writes are atomic per document.
type Collection interface {
	// Find returns every document satisfying all matches in natural order.
	Find(ctx context.Context, matches ...Match) ([]Document, error)
	Get(ctx context.Context, id string) (Document, error)
	// Insert stores body and returns the assigned id.
	Insert(ctx context.Context, body json.RawMessage) (string, error)
	// Merge replaces the top-level fields present in patch. It reports
	// whether a document matched id.
	Merge(ctx context.Context, id string, patch json.RawMessage) (bool, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// DocumentStore hands out collections and reports its own health.
type DocumentStore interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	GetByID(ctx context.Context, id string) (*entities.Task, error)
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	UpdateByID(ctx context.Context, id string, fields TaskFields) error
	DeleteByID(ctx context.Context, id string) error
}

// TaskFilter is the server-side list query. An empty Search or a Day of
// "all" leaves that field unconstrained.
type TaskFilter struct {
	Search string
	Day    string
}

// Matches converts the filter into store matches.
func (f TaskFilter) Matches() []Match {
	var matches []Match
	if f.Search != "" {
		matches = append(matches, Match{Field: "retailer", Substring: f.Search})
	}
	if f.Day != "" && f.Day != entities.FilterAll {
		matches = append(matches, Match{Field: "day", Substring: f.Day})
	}
	return matches
}

// TaskFields is a shallow update: every non-nil field replaces the stored
// value wholesale.
type TaskFields struct {
	Retailer  *string              `json:"retailer,omitempty" validate:"omitempty,min=1,max=200"`
	Day       *string              `json:"day,omitempty" validate:"omitempty,min=1,max=64"`
	FileCount *int                 `json:"fileCount,omitempty" validate:"omitempty,gte=0"`
	Formats   *entities.Formats    `json:"formats,omitempty"`
	LoadType  *entities.LoadType   `json:"loadType,omitempty" validate:"omitempty,oneof='Direct load' 'Indirect load'"`
	Link      *string              `json:"link,omitempty" validate:"omitempty,url"`
	Username  *string              `json:"username,omitempty"`
	Password  *string              `json:"password,omitempty"`
	Files     *[]entities.TaskFile `json:"files,omitempty" validate:"omitempty,dive"`
	Completed *bool                `json:"completed,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f TaskFields) IsEmpty() bool {
	return f.Retailer == nil && f.Day == nil && f.FileCount == nil && f.Formats == nil &&
		f.LoadType == nil && f.Link == nil && f.Username == nil && f.Password == nil &&
		f.Files == nil && f.Completed == nil
}

// Names lists the set fields, for logging.
func (f TaskFields) Names() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(f.Retailer != nil, "retailer")
	add(f.Day != nil, "day")
	add(f.FileCount != nil, "fileCount")
	add(f.Formats != nil, "formats")
	add(f.LoadType != nil, "loadType")
	add(f.Link != nil, "link")
	add(f.Username != nil, "username")
	add(f.Password != nil, "password")
	add(f.Files != nil, "files")
	add(f.Completed != nil, "completed")
	return names
}
