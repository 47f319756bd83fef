// Package report turns threads, tasks and the assignment ledger into flat
// sheets for export and renders them as CSV, Markdown or aligned text.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/ledger"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
	"github.com/yukikurage/pmo-timeline-api/internal/timeline"
)

// Format selects how a sheet is rendered.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat defaults to CSV for an empty string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the HTTP content type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension is the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// Sheet is a titled table.
type Sheet struct {
	Name   string
	Header table.Row
	Rows   []table.Row
}

// Render writes the sheet to w in the given format.
func (s Sheet) Render(w io.Writer, format Format) error {
	t := table.NewWriter()
	t.AppendHeader(s.Header)
	t.AppendRows(s.Rows)

	var out string
	switch format {
	case FormatCSV:
		out = t.RenderCSV()
	case FormatMarkdown:
		t.SetTitle(s.Name)
		out = t.RenderMarkdown()
	case FormatText:
		t.SetTitle(s.Name)
		t.SetStyle(table.StyleLight)
		out = t.Render()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", s.Name, err)
	}
	return nil
}

// Data is the snapshot the sheets are built from.
type Data struct {
	Today   time.Time
	Threads []models.Thread
	Tasks   []models.Task
	Members []models.Member
	// Open holds the open ledger records per thread id.
	Open map[uint64][]models.ThreadAssignment
}

// ThreadSheet lists each thread with its D-day and its current lead and
// support holders.
func ThreadSheet(d Data) Sheet {
	idx := timeline.IndexMembers(d.Members)
	sheet := Sheet{
		Name:   "Threads",
		Header: table.Row{"Thread ID", "Title", "Type", "Status", "Start", "Due", "D-day", "Lead", "Support", "Outcome goal"},
	}

	for _, t := range d.Threads {
		var leads, supports []string
		for _, a := range ledger.ByGrab(d.Open[t.ID]) {
			name := timeline.UnknownMemberLabel
			if m, ok := idx.Lookup(a.MemberID); ok {
				name = m.Name
			}
			if a.Role == models.RoleLead {
				leads = append(leads, name)
			} else {
				supports = append(supports, name)
			}
		}

		sheet.Rows = append(sheet.Rows, table.Row{
			t.ID,
			t.Title,
			t.ThreadType,
			t.Status,
			t.Start().Format(constants.DateLayout),
			t.Due().Format(constants.DateLayout),
			timeline.UrgencyOf(t.Due(), d.Today).Label,
			joinOr(leads, timeline.UnassignedLabel),
			joinOr(supports, "-"),
			t.OutcomeGoal,
		})
	}
	return sheet
}

// TaskSheet lists tasks with their thread title and assignee. Completed
// tasks show "done" instead of a D-day.
func TaskSheet(d Data) Sheet {
	idx := timeline.IndexMembers(d.Members)
	titles := make(map[uint64]string, len(d.Threads))
	for _, t := range d.Threads {
		titles[t.ID] = t.Title
	}

	sheet := Sheet{
		Name:   "Tasks",
		Header: table.Row{"Task ID", "Thread", "Title", "Status", "Due", "D-day", "Assignee", "Priority"},
	}

	for _, task := range d.Tasks {
		thread, ok := titles[task.ThreadID]
		if !ok {
			thread = "-"
		}

		assignee := timeline.UnassignedLabel
		if task.AssigneeID != nil {
			assignee = timeline.UnknownMemberLabel
			if m, ok := idx.Lookup(*task.AssigneeID); ok {
				assignee = m.Name
			}
		}

		due, dDay := "-", "-"
		if task.DueDate != nil {
			dueTime := time.Time(*task.DueDate)
			due = dueTime.Format(constants.DateLayout)
			dDay = timeline.UrgencyOf(dueTime, d.Today).Label
		}
		if task.Status == models.TaskStatusCompleted {
			dDay = "done"
		}

		sheet.Rows = append(sheet.Rows, table.Row{
			task.ID,
			thread,
			task.Title,
			task.Status,
			due,
			dDay,
			assignee,
			task.Priority,
		})
	}
	return sheet
}

// PeopleSheet lists every member with the threads they currently hold. The
// member's name, role and thread count appear on their first row only.
func PeopleSheet(d Data) Sheet {
	sheet := Sheet{
		Name:   "People",
		Header: table.Row{"Member", "Role", "Threads", "Thread", "Assignment", "Due", "D-day"},
	}

	for _, m := range d.Members {
		type holding struct {
			thread models.Thread
			role   models.AssignmentRole
		}
		var held []holding
		for _, t := range d.Threads {
			for _, a := range d.Open[t.ID] {
				if a.MemberID == m.ID {
					held = append(held, holding{thread: t, role: a.Role})
					break
				}
			}
		}

		if len(held) == 0 {
			sheet.Rows = append(sheet.Rows, table.Row{m.Name, m.Role, 0, "-", "-", "-", "-"})
			continue
		}

		for i, h := range held {
			row := table.Row{"", "", "", h.thread.Title, h.role, h.thread.Due().Format(constants.DateLayout), timeline.UrgencyOf(h.thread.Due(), d.Today).Label}
			if i == 0 {
				row[0], row[1], row[2] = m.Name, m.Role, len(held)
			}
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	return sheet
}

// SheetByName builds the named sheet: threads, tasks or people.
func SheetByName(name string, d Data) (Sheet, bool) {
	switch strings.ToLower(name) {
	case "threads":
		return ThreadSheet(d), true
	case "tasks":
		return TaskSheet(d), true
	case "people":
		return PeopleSheet(d), true
	default:
		return Sheet{}, false
	}
}

func joinOr(names []string, empty string) string {
	if len(names) == 0 {
		return empty
	}
	return strings.Join(names, ", ")
}
