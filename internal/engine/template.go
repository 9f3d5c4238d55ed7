package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectTemplate is a named, structure-only snapshot of a whole store.
type ProjectTemplate struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	TasksState Store     `json:"tasksState" yaml:"tasksState"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// TaskCount returns the number of tasks the template would create.
func (t ProjectTemplate) TaskCount() int { return t.TasksState.Count() }

// Templates is the ordered list of saved templates. Like Store it is replaced,
// never modified in place.
type Templates []ProjectTemplate

// Extract deep-copies every category of s, clearing completion and dropping due
// dates and notes. Ids, texts, priorities, order and expansion are kept.
func Extract(s Store) Store {
	out := make(Store, len(Categories))
	for _, c := range Categories {
		out[c] = sanitizeForest(s[c], nil, "")
	}
	return out
}

// Instantiate builds a fresh store from a template state. Every task gets a new
// id from newID, so the same template can be applied repeatedly without id
// collisions. Categories missing from the state become empty forests.
func Instantiate(state Store, newID func() string) Store {
	out := make(Store, len(Categories))
	for _, c := range Categories {
		out[c] = sanitizeForest(state[c], newID, "")
	}
	return out
}

// sanitizeForest copies forest without completion, due dates or notes. When
// newID is non-nil every task is re-identified and parent links rewritten.
func sanitizeForest(forest []Task, newID func() string, parentID string) []Task {
	out := make([]Task, len(forest))
	for i, t := range forest {
		if newID != nil {
			t.ID = newID()
			t.ParentID = parentID
		}
		t.Completed = false
		t.DueDate = ""
		t.Notes = ""
		t.SubTasks = sanitizeForest(t.SubTasks, newID, t.ID)
		out[i] = t
	}
	return out
}

// NormalizeTemplateName trims a template name and rejects blanks.
func NormalizeTemplateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyInput
	}
	return name, nil
}

// NewTemplate extracts a template named name from s.
func NewTemplate(id, name string, s Store, now time.Time) (ProjectTemplate, error) {
	name, err := NormalizeTemplateName(name)
	if err != nil {
		return ProjectTemplate{}, err
	}
	return ProjectTemplate{ID: id, Name: name, TasksState: Extract(s), CreatedAt: now.UTC()}, nil
}

// Add appends tpl. Names are compared after trimming.
func (ts Templates) Add(tpl ProjectTemplate) (Templates, error) {
	name, err := NormalizeTemplateName(tpl.Name)
	if err != nil {
		return ts, err
	}
	for _, existing := range ts {
		if strings.TrimSpace(existing.Name) == name {
			return ts, DuplicateNameError{Name: name}
		}
	}
	tpl.Name = name
	out := make(Templates, len(ts), len(ts)+1)
	copy(out, ts)
	return append(out, tpl), nil
}

// Find looks a template up by id first, then by trimmed name.
func (ts Templates) Find(ref string) (ProjectTemplate, bool) {
	ref = strings.TrimSpace(ref)
	for _, t := range ts {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range ts {
		if strings.TrimSpace(t.Name) == ref {
			return t, true
		}
	}
	return ProjectTemplate{}, false
}

func (ts Templates) Delete(ref string) (Templates, error) {
	tpl, ok := ts.Find(ref)
	if !ok {
		return ts, NotFoundError{Kind: "template", ID: ref}
	}
	out := make(Templates, 0, len(ts))
	for _, t := range ts {
		if t.ID != tpl.ID {
			out = append(out, t)
		}
	}
	return out, nil
}

// DecodeTemplates parses the persisted template list. Entries without a name,
// or repeating an earlier name, are dropped and every state is re-sanitized.
// Unparsable data yields an empty list and a MalformedDataError.
func DecodeTemplates(data []byte, newID func() string) (Templates, error) {
	var raw []ProjectTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return Templates{}, MalformedDataError{Key: "templates", Err: err}
	}
	out := Templates{}
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		name, err := NormalizeTemplateName(t.Name)
		if err != nil || seen[name] {
			continue
		}
		seen[name] = true
		t.Name = name
		if t.ID == "" {
			t.ID = newID()
		}
		t.TasksState = Extract(t.TasksState)
		out = append(out, t)
	}
	return out, nil
}

// MarshalTemplateYAML renders a single template for sharing.
func MarshalTemplateYAML(t ProjectTemplate) ([]byte, error) {
	return yaml.Marshal(t)
}

// UnmarshalTemplateYAML parses a template written by MarshalTemplateYAML. The
// id and creation time are reassigned by the caller on import.
func UnmarshalTemplateYAML(data []byte) (ProjectTemplate, error) {
	var t ProjectTemplate
	if err := yaml.Unmarshal(data, &t); err != nil {
		return ProjectTemplate{}, fmt.Errorf("parse template: %w", err)
	}
	name, err := NormalizeTemplateName(t.Name)
	if err != nil {
		return ProjectTemplate{}, fmt.Errorf("parse template: %w", err)
	}
	t.Name = name
	for c := range t.TasksState {
		if !c.IsValid() {
			return ProjectTemplate{}, fmt.Errorf("parse template: unknown category %q", c)
		}
	}
	t.TasksState = Extract(t.TasksState)
	return t, nil
}
