package engine

import "strings"

// Tree operations never mutate their input. A changed node gets a fresh copy of
// every slice on its path from the root; untouched subtrees are shared.

// AddRoot appends a new root task. Root texts must be unique.
func AddRoot(forest []Task, id, text string) ([]Task, error) {
	for _, t := range forest {
		if t.Text == text {
			return forest, DuplicateTaskError{Text: text}
		}
	}
	out := make([]Task, len(forest), len(forest)+1)
	copy(out, forest)
	return append(out, newTask(id, text, "")), nil
}

// AddChild appends a new subtask under parentID and expands the parent.
// Direct children of a node must have unique texts.
func AddChild(forest []Task, parentID, id, text string) ([]Task, error) {
	out, found, err := updateNode(forest, parentID, func(t Task) (Task, error) {
		for _, sub := range t.SubTasks {
			if sub.Text == text {
				return t, DuplicateTaskError{Text: text, ParentID: parentID}
			}
		}
		subs := make([]Task, len(t.SubTasks), len(t.SubTasks)+1)
		copy(subs, t.SubTasks)
		t.SubTasks = append(subs, newTask(id, text, t.ID))
		t.IsExpanded = true
		return t, nil
	})
	if err != nil {
		return forest, err
	}
	if !found {
		return forest, NotFoundError{ID: parentID}
	}
	return out, nil
}

// ToggleCompleted flips the completion flag of one task. Parents and children
// are left alone.
func ToggleCompleted(forest []Task, id string) ([]Task, error) {
	return updateExisting(forest, id, func(t Task) (Task, error) {
		t.Completed = !t.Completed
		return t, nil
	})
}

// ToggleExpanded flips the UI expansion flag of one task.
func ToggleExpanded(forest []Task, id string) ([]Task, error) {
	return updateExisting(forest, id, func(t Task) (Task, error) {
		t.IsExpanded = !t.IsExpanded
		return t, nil
	})
}

// UpdateFields applies an edit to one task. Subtasks and expansion state are kept.
func UpdateFields(forest []Task, id string, edit TaskEdit) ([]Task, error) {
	return updateExisting(forest, id, func(t Task) (Task, error) {
		t.Text = edit.Text
		t.DueDate = edit.DueDate
		t.Priority = edit.Priority
		t.Notes = edit.Notes
		return t, nil
	})
}

// Reorder moves draggedID within the sibling list owned by containingID
// ("" for the root list). targetIndex addresses the list with the dragged task
// already removed and is clamped to its bounds. When the dragged task is not in
// that list the forest is returned unchanged.
func Reorder(forest []Task, containingID, draggedID string, targetIndex int) []Task {
	if containingID == "" {
		return moveWithin(forest, draggedID, targetIndex)
	}
	out, found, _ := updateNode(forest, containingID, func(t Task) (Task, error) {
		t.SubTasks = moveWithin(t.SubTasks, draggedID, targetIndex)
		return t, nil
	})
	if !found {
		return forest
	}
	return out
}

func moveWithin(list []Task, draggedID string, targetIndex int) []Task {
	from := -1
	for i := range list {
		if list[i].ID == draggedID {
			from = i
			break
		}
	}
	if from < 0 {
		return list
	}

	rest := make([]Task, 0, len(list))
	rest = append(rest, list[:from]...)
	rest = append(rest, list[from+1:]...)

	if targetIndex < 0 {
		targetIndex = 0
	}
	if targetIndex > len(rest) {
		targetIndex = len(rest)
	}

	out := make([]Task, 0, len(list))
	out = append(out, rest[:targetIndex]...)
	out = append(out, list[from])
	out = append(out, rest[targetIndex:]...)
	return out
}

// Find returns the task with the given id anywhere in the forest.
func Find(forest []Task, id string) (Task, bool) {
	var hit Task
	found := false
	Walk(forest, func(t Task, _ int) bool {
		if t.ID == id {
			hit = t
			found = true
			return false
		}
		return true
	})
	return hit, found
}

// Walk visits every task depth-first, parents before children. Returning false
// from fn stops the walk.
func Walk(forest []Task, fn func(t Task, depth int) bool) {
	walk(forest, 0, fn)
}

func walk(forest []Task, depth int, fn func(t Task, depth int) bool) bool {
	for _, t := range forest {
		if !fn(t, depth) {
			return false
		}
		if !walk(t.SubTasks, depth+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of tasks at every depth.
func Count(forest []Task) int {
	n := 0
	Walk(forest, func(Task, int) bool {
		n++
		return true
	})
	return n
}

// ResolveID accepts a full task id or a unique prefix of one.
func ResolveID(forest []Task, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyInput
	}
	if _, ok := Find(forest, ref); ok {
		return ref, nil
	}
	var matches []string
	Walk(forest, func(t Task, _ int) bool {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
		return true
	})
	switch len(matches) {
	case 0:
		return "", NotFoundError{ID: ref}
	case 1:
		return matches[0], nil
	default:
		return "", AmbiguousIDError{Prefix: ref, Matches: len(matches)}
	}
}

// CloneForest deep-copies a forest so no node is shared with the input.
func CloneForest(forest []Task) []Task {
	out := make([]Task, len(forest))
	for i, t := range forest {
		t.SubTasks = CloneForest(t.SubTasks)
		out[i] = t
	}
	return out
}

func updateExisting(forest []Task, id string, fn func(Task) (Task, error)) ([]Task, error) {
	out, found, err := updateNode(forest, id, fn)
	if err != nil {
		return forest, err
	}
	if !found {
		return forest, NotFoundError{ID: id}
	}
	return out, nil
}

// updateNode rebuilds the path to the first task matching id, replacing it with
// fn's result.
func updateNode(forest []Task, id string, fn func(Task) (Task, error)) ([]Task, bool, error) {
	for i := range forest {
		if forest[i].ID == id {
			t, err := fn(forest[i])
			if err != nil {
				return forest, true, err
			}
			out := make([]Task, len(forest))
			copy(out, forest)
			out[i] = t
			return out, true, nil
		}
		if len(forest[i].SubTasks) == 0 {
			continue
		}
		subs, found, err := updateNode(forest[i].SubTasks, id, fn)
		if err != nil {
			return forest, true, err
		}
		if found {
			out := make([]Task, len(forest))
			copy(out, forest)
			out[i].SubTasks = subs
			return out, true, nil
		}
	}
	return forest, false, nil
}
