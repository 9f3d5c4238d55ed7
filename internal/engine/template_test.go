package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richStore() Store {
	forest := sample()
	forest[1].Notes = "top notes"
	forest[1].SubTasks[0].Completed = true
	forest[1].SubTasks[0].Notes = "deep notes"
	return DefaultStore().With(CategoryStart, forest)
}

func assertSanitized(t *testing.T, s Store) {
	t.Helper()
	for _, c := range Categories {
		Walk(s[c], func(task Task, _ int) bool {
			assert.False(t, task.Completed, task.ID)
			assert.Empty(t, task.DueDate, task.ID)
			assert.Empty(t, task.Notes, task.ID)
			return true
		})
	}
}

func TestExtractStripsTransientFields(t *testing.T) {
	s := richStore()
	state := Extract(s)
	assertSanitized(t, state)

	assert.Equal(t, ids(s[CategoryStart]), ids(state[CategoryStart]))
	assert.Equal(t, PriorityHigh, state[CategoryStart][0].Priority)

	// The live store keeps its values.
	assert.True(t, s[CategoryStart][0].Completed)
	assert.Equal(t, "top notes", s[CategoryStart][1].Notes)
}

func TestExtractedFieldsAreAbsentInJSON(t *testing.T) {
	tpl, err := NewTemplate("t1", " Launch ", richStore(), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Launch", tpl.Name)

	raw, err := MarshalTemplateYAML(tpl)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dueDate")
	assert.NotContains(t, string(raw), "notes")
}

func TestInstantiateTwiceYieldsDisjointIDs(t *testing.T) {
	state := Extract(richStore())

	a := Instantiate(state, seqIDs("a"))
	b := Instantiate(state, seqIDs("b"))
	assertSanitized(t, a)

	seen := map[string]bool{}
	for _, c := range Categories {
		for _, id := range ids(a[c]) {
			seen[id] = true
		}
	}
	for _, c := range Categories {
		for _, id := range ids(b[c]) {
			assert.False(t, seen[id], id)
		}
	}

	a[CategoryStart][0].Text = "mutated"
	assert.Equal(t, "Audit", b[CategoryStart][0].Text)
	assert.Equal(t, "Audit", state[CategoryStart][0].Text)
}

func TestInstantiateRewritesParentIDs(t *testing.T) {
	out := Instantiate(Extract(richStore()), seqIDs("n"))
	Walk(out[CategoryStart], func(task Task, _ int) bool {
		for _, sub := range task.SubTasks {
			assert.Equal(t, task.ID, sub.ParentID)
		}
		return true
	})
	assert.Empty(t, out[CategoryStart][0].ParentID)
}

func TestInstantiateMissingCategoryIsEmpty(t *testing.T) {
	out := Instantiate(Store{CategoryDaily: DefaultForest(CategoryDaily)}, seqIDs("n"))
	assert.Len(t, out[CategoryDaily], 2)
	assert.NotNil(t, out[CategoryWeekly])
	assert.Empty(t, out[CategoryWeekly])
}

func TestTemplatesAddFindDelete(t *testing.T) {
	var ts Templates
	ts, err := ts.Add(ProjectTemplate{ID: "1", Name: "Launch"})
	require.NoError(t, err)

	_, err = ts.Add(ProjectTemplate{ID: "2", Name: "  Launch "})
	var dup DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Launch", dup.Name)

	_, err = ts.Add(ProjectTemplate{ID: "3", Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)

	got, ok := ts.Find("Launch")
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)

	ts, err = ts.Delete("1")
	require.NoError(t, err)
	assert.Empty(t, ts)

	_, err = ts.Delete("1")
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "template", nf.Kind)
}

func TestTemplateYAMLRoundTrip(t *testing.T) {
	tpl, err := NewTemplate("t1", "Launch", richStore(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	raw, err := MarshalTemplateYAML(tpl)
	require.NoError(t, err)

	back, err := UnmarshalTemplateYAML(raw)
	require.NoError(t, err)
	assert.Equal(t, tpl.Name, back.Name)
	assert.True(t, tpl.CreatedAt.Equal(back.CreatedAt))
	assert.Equal(t, ids(tpl.TasksState[CategoryStart]), ids(back.TasksState[CategoryStart]))
	assert.Equal(t, tpl.TaskCount(), back.TaskCount())
}

func TestUnmarshalTemplateYAMLRejectsBadInput(t *testing.T) {
	_, err := UnmarshalTemplateYAML([]byte("name: ''\n"))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = UnmarshalTemplateYAML([]byte("name: x\ntasksState:\n  yearly: []\n"))
	assert.Error(t, err)

	tpl, err := UnmarshalTemplateYAML([]byte(`
name: Imported
tasksState:
  daily:
    - id: a
      text: Crawl
      completed: true
      notes: secret
`))
	require.NoError(t, err)
	require.Len(t, tpl.TasksState[CategoryDaily], 1)
	assertSanitized(t, tpl.TasksState)
}

func TestDecodeTemplatesDropsUnnamed(t *testing.T) {
	raw := `[
		{"id": "1", "name": "Keep", "tasksState": {"daily": [{"id": "x", "text": "t", "completed": true, "subTasks": []}]}, "createdAt": "2024-01-01T00:00:00Z"},
		{"id": "2", "name": "  ", "tasksState": {}, "createdAt": "2024-01-01T00:00:00Z"}
	]`
	ts, err := DecodeTemplates([]byte(raw), seqIDs("n"))
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.False(t, ts[0].TasksState[CategoryDaily][0].Completed)

	ts, err = DecodeTemplates([]byte(`{"no": "list"}`), seqIDs("n"))
	assert.Error(t, err)
	assert.Empty(t, ts)
}

func TestDecodeTemplatesKeepsFirstOfDuplicateNames(t *testing.T) {
	raw := `[
		{"id": "1", "name": "Launch", "tasksState": {}, "createdAt": "2024-01-01T00:00:00Z"},
		{"id": "2", "name": " Launch ", "tasksState": {}, "createdAt": "2024-02-01T00:00:00Z"},
		{"id": "3", "name": "Audit", "tasksState": {}, "createdAt": "2024-03-01T00:00:00Z"}
	]`
	ts, err := DecodeTemplates([]byte(raw), seqIDs("n"))
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "1", ts[0].ID)
	assert.Equal(t, "Audit", ts[1].Name)
}
