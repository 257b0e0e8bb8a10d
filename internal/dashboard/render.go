package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/retailops/loadboard/internal/domain/entities"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"

	loadErrorMessage = "Error loading tasks. Please try again later"
)

// Model is everything one frame of the dashboard shows
type Model struct {
	Search      string
	Day         string
	State       ViewState
	Visible     []entities.Task
	Selection   *Selection
	Err         error
	Loading     bool
	RefreshedAt time.Time
}

// RenderOptions controls terminal output
type RenderOptions struct {
	Color bool
}

// Render writes the task list view
func Render(w io.Writer, m Model, opts RenderOptions) error {
	sel := m.Selection
	if sel == nil {
		sel = NewSelection()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Tasks  search=%q day=%s load=%s status=%s sort=%s %s\n",
		m.Search, orAll(m.Day), orAll(m.State.LoadType), orAll(m.State.Status), m.State.SortKey, m.State.SortOrder)

	if m.Err != nil {
		b.WriteString(paint(opts.Color, ansiRed, loadErrorMessage))
		b.WriteString("\n")
	}
	if m.Loading {
		b.WriteString("Loading...\n")
	}

	check := "[ ]"
	if sel.AllSelected(m.Visible) {
		check = "[x]"
	}
	fmt.Fprintf(&b, "%s Select All (%d tasks)", check, len(m.Visible))
	fmt.Fprintf(&b, "    %d selected\n\n", sel.Len())

	if len(m.Visible) == 0 && !m.Loading {
		b.WriteString("No tasks found\nTry adjusting your filters or search query\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tRETAILER\tDAY\tFORMATS\tLOAD TYPE\tSTATUS\tACTION")
	for i := range m.Visible {
		t := &m.Visible[i]
		mark := "[ ]"
		if sel.Has(t.ID) {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, t.ID, t.Retailer, t.Day, formatsSummary(t.Formats), t.LoadType, status(t, opts.Color), t.ToggleLabel())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !m.RefreshedAt.IsZero() {
		fmt.Fprintf(&b, "\nLast refreshed %s\n", m.RefreshedAt.Format(time.TimeOnly))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderDetail writes the detail dialog for one task
func RenderDetail(w io.Writer, t entities.Task, opts RenderOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", t.ID},
		{"Retailer", t.Retailer},
		{"Schedule", t.Day},
		{"Status", status(&t, opts.Color)},
		{"Load type", string(t.LoadType)},
		{"File count", fmt.Sprintf("%d", t.FileCount)},
		{"Formats", formatsSummary(t.Formats)},
		{"Link", t.Link},
		{"Username", t.Username},
		{"Password", t.Password},
		{"Created", t.CreatedAt.Format(time.RFC3339)},
		{"Updated", t.UpdatedAt.Format(time.RFC3339)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	if len(t.Files) == 0 {
		fmt.Fprintln(tw, "Files:\tnone")
	}
	for i, f := range t.Files {
		label := ""
		if i == 0 {
			label = "Files:"
		}
		fmt.Fprintf(tw, "%s\t%s -> %s\n", label, f.DownloadName, f.RequiredName)
	}
	return tw.Flush()
}

func status(t *entities.Task, color bool) string {
	if !t.Completed {
		return t.StatusLabel()
	}
	return paint(color, ansiGreen, t.StatusLabel())
}

var summaryFormats = []entities.FileFormat{
	entities.FormatXLSX, entities.FormatCSV, entities.FormatTXT, entities.FormatMail,
}

func formatsSummary(f entities.Formats) string {
	parts := make([]string, len(summaryFormats))
	for i, format := range summaryFormats {
		parts[i] = fmt.Sprintf("%d %s", f.Count(format), format)
	}
	return strings.Join(parts, ", ")
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + ansiReset
}

func orAll(s string) string {
	if s == "" {
		return entities.FilterAll
	}
	return s
}
