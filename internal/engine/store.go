package engine

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// UntitledTaskText replaces a missing text when loading persisted tasks.
const UntitledTaskText = "Untitled task"

// Store maps every category to its forest. A Store is treated as immutable:
// mutations return a new Store that shares the untouched forests.
type Store map[Category][]Task

// Forest returns the forest of one category.
func (s Store) Forest(c Category) []Task { return s[c] }

// With returns a copy of s whose forest for c is replaced.
func (s Store) With(c Category, forest []Task) Store {
	out := make(Store, len(Categories))
	for k, v := range s {
		out[k] = v
	}
	out[c] = forest
	return out
}

// Apply runs op against one category and returns the resulting store. On error
// the original store is returned.
func (s Store) Apply(c Category, op func([]Task) ([]Task, error)) (Store, error) {
	next, err := op(s[c])
	if err != nil {
		return s, err
	}
	return s.With(c, next), nil
}

// Clone deep-copies every forest.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for k, v := range s {
		out[k] = CloneForest(v)
	}
	return out
}

// Count returns the number of tasks across all categories.
func (s Store) Count() int {
	n := 0
	for _, c := range Categories {
		n += Count(s[c])
	}
	return n
}

// DecodeStore rebuilds a store from a persisted snapshot. Categories missing
// from the snapshot, or whose value is not a list, keep the default forest. A
// snapshot that is not a JSON object yields the default store together with a
// MalformedDataError the caller may log.
func DecodeStore(data []byte, newID func() string) (Store, error) {
	store := DefaultStore()
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return store, MalformedDataError{Key: "tasks", Err: err}
	}
	if raw == nil {
		return store, MalformedDataError{Key: "tasks", Err: errors.New("snapshot is null")}
	}

	seen := map[string]bool{}
	var bad []Category
	for _, c := range Categories {
		v, ok := raw[string(c)]
		if !ok {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			bad = append(bad, c)
			continue
		}
		store[c] = normalizeForest(items, "", seen, newID)
	}
	// Default forests keep their stable ids; collisions with loaded ids are resolved
	// in favour of the loaded data.
	for _, c := range Categories {
		if _, ok := raw[string(c)]; ok && !contains(bad, c) {
			continue
		}
		store[c] = reassignDuplicates(store[c], "", seen, newID)
	}
	if len(bad) > 0 {
		return store, MalformedDataError{Key: "tasks." + string(bad[0]), Err: errors.New("category is not a list")}
	}
	return store, nil
}

func normalizeForest(items []any, parentID string, seen map[string]bool, newID func() string) []Task {
	out := make([]Task, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		id, _ := obj["id"].(string)
		if id == "" || seen[id] {
			id = newID()
		}
		seen[id] = true

		text, _ := obj["text"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			text = UntitledTaskText
		}

		t := Task{
			ID:         id,
			Text:       text,
			Completed:  truthy(obj["completed"]),
			IsExpanded: truthy(obj["isExpanded"]),
			ParentID:   parentID,
		}
		if s, ok := obj["dueDate"].(string); ok {
			if due, err := ParseDueDate(s); err == nil {
				t.DueDate = due
			}
		}
		if s, ok := obj["priority"].(string); ok && Priority(s).IsValid() {
			t.Priority = Priority(s)
		}
		if s, ok := obj["notes"].(string); ok {
			t.Notes = s
		}
		if subs, ok := obj["subTasks"].([]any); ok {
			t.SubTasks = normalizeForest(subs, id, seen, newID)
		} else {
			t.SubTasks = []Task{}
		}
		out = append(out, t)
	}
	return out
}

func reassignDuplicates(forest []Task, parentID string, seen map[string]bool, newID func() string) []Task {
	out := make([]Task, len(forest))
	for i, t := range forest {
		if seen[t.ID] {
			t.ID = newID()
		}
		seen[t.ID] = true
		t.ParentID = parentID
		t.SubTasks = reassignDuplicates(t.SubTasks, t.ID, seen, newID)
		out[i] = t
	}
	return out
}

// truthy mirrors loose boolean coercion of JSON values.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

func contains(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
