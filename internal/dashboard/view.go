// Package dashboard derives, renders and drives the task dashboard on top of
// the cached task list.
package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/retailops/loadboard/internal/domain/entities"
)

// SortKey is a column the visible list can be ordered by
type SortKey string

const (
	SortByRetailer  SortKey = "retailer"
	SortByFileCount SortKey = "fileCount"
	SortByDay       SortKey = "day"
	SortByUpdatedAt SortKey = "updatedAt"
)

// SortOrder is the direction of a sort
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortKey validates a sort key given on the command line
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "", SortByRetailer, SortByFileCount, SortByDay, SortByUpdatedAt:
		if k == "" {
			return SortByRetailer, nil
		}
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseSortOrder validates a sort order given on the command line
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(s) {
	case "", string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// ViewState holds the client-side filters and ordering. Values are
// immutable; the With methods return modified copies.
type ViewState struct {
	LoadType  string
	Status    string
	SortKey   SortKey
	SortOrder SortOrder
	Locale    language.Tag
}

// DefaultViewState shows everything ordered by retailer
func DefaultViewState() ViewState {
	return ViewState{
		LoadType:  entities.FilterAll,
		Status:    entities.FilterAll,
		SortKey:   SortByRetailer,
		SortOrder: Ascending,
		Locale:    language.English,
	}
}

// WithLoadType returns a copy filtered to loadType
func (v ViewState) WithLoadType(loadType string) ViewState {
	v.LoadType = loadType
	return v
}

// WithStatus returns a copy filtered to status
func (v ViewState) WithStatus(status string) ViewState {
	v.Status = status
	return v
}

// WithSort returns a copy ordered by key in order
func (v ViewState) WithSort(key SortKey, order SortOrder) ViewState {
	v.SortKey = key
	v.SortOrder = order
	return v
}

// Derive filters tasks by load type and status and orders them. The input
// is not modified. The sort is stable, so equal keys keep their input
// order in either direction. Unknown sort keys order by retailer.
func Derive(tasks []entities.Task, state ViewState) []entities.Task {
	visible := make([]entities.Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].MatchesLoadType(state.LoadType) && tasks[i].MatchesStatus(state.Status) {
			visible = append(visible, tasks[i])
		}
	}

	cmp := comparator(state)
	slices.SortStableFunc(visible, cmp)
	return visible
}

func comparator(state ViewState) func(a, b entities.Task) int {
	locale := state.Locale
	if locale == language.Und {
		locale = language.English
	}
	col := collate.New(locale)

	var base func(a, b entities.Task) int
	switch state.SortKey {
	case SortByFileCount:
		base = func(a, b entities.Task) int {
			switch {
			case a.FileCount < b.FileCount:
				return -1
			case a.FileCount > b.FileCount:
				return 1
			default:
				return 0
			}
		}
	case SortByUpdatedAt:
		base = func(a, b entities.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortByDay:
		base = func(a, b entities.Task) int { return col.CompareString(a.Day, b.Day) }
	default:
		base = func(a, b entities.Task) int { return col.CompareString(a.Retailer, b.Retailer) }
	}

	if state.SortOrder == Descending {
		return func(a, b entities.Task) int { return -base(a, b) }
	}
	return base
}
