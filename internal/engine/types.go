package engine

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Weight orders priorities for sorting; no priority weighs 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// ParsePriority maps user input to a Priority. Empty input and "none" clear the priority.
func ParsePriority(input string) (Priority, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "", "none", "-":
		return PriorityNone, nil
	case "l", "low":
		return PriorityLow, nil
	case "m", "med", "medium":
		return PriorityMedium, nil
	case "h", "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %q", input)
	}
}

// DateLayout is the on-disk format of due dates. Lexicographic order equals
// chronological order for this layout.
const DateLayout = "2006-01-02"

// ParseDueDate validates a YYYY-MM-DD string. Empty input means "no due date".
func ParseDueDate(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", input)
	}
	return s, nil
}

// Task is a node of a category forest.
type Task struct {
	ID         string   `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	Completed  bool     `json:"completed" yaml:"completed"`
	DueDate    string   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Priority   Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
	Notes      string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	SubTasks   []Task   `json:"subTasks" yaml:"subTasks"`
	ParentID   string   `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	IsExpanded bool     `json:"isExpanded" yaml:"isExpanded"`
}

func (t Task) IsRoot() bool { return t.ParentID == "" }

func (t Task) HasChildren() bool { return len(t.SubTasks) > 0 }

// TaskEdit carries the editable fields of a task. Empty DueDate, Priority or
// Notes clear the corresponding field.
type TaskEdit struct {
	Text     string
	DueDate  string
	Priority Priority
	Notes    string
}

// EditFrom pre-fills an edit with the task's current values.
func EditFrom(t Task) TaskEdit {
	return TaskEdit{Text: t.Text, DueDate: t.DueDate, Priority: t.Priority, Notes: t.Notes}
}

func newTask(id, text, parentID string) Task {
	return Task{
		ID:       id,
		Text:     text,
		SubTasks: []Task{},
		ParentID: parentID,
	}
}
