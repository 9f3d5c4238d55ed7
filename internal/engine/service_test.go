package engine

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoboard/internal/storage"
)

type memBlobs struct {
	data    map[string][]byte
	saves   []string
	saveErr error
	loadErr error
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (m *memBlobs) Load(_ context.Context, key string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[key], nil
}

func (m *memBlobs) Save(_ context.Context, key string, value []byte) error {
	m.saves = append(m.saves, key)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = value
	return nil
}

func newMemService(t *testing.T) (*Service, *memBlobs) {
	t.Helper()
	blobs := newMemBlobs()
	svc := NewService(blobs, Options{
		NewID: seqIDs("id"),
		Now:   func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	svc.Load(context.Background())
	require.NoError(t, svc.Warning())
	return svc, blobs
}

func newTestService(t *testing.T) (*Service, *storage.BlobRepo) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := storage.NewBlobRepo(db)
	svc := NewService(repo, Options{})
	svc.Load(ctx)
	return svc, repo
}

func TestServiceAddTask(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newMemService(t)

	task, err := svc.AddTask(ctx, CategoryDaily, "  Check Core Web Vitals  ")
	require.NoError(t, err)
	assert.Equal(t, "Check Core Web Vitals", task.Text)
	assert.Len(t, svc.Forest(CategoryDaily), 3)
	assert.Equal(t, []string{KeyTasks}, blobs.saves)

	_, err = svc.AddTask(ctx, CategoryDaily, "Check Core Web Vitals")
	assert.ErrorAs(t, err, &DuplicateTaskError{})
	assert.Len(t, svc.Forest(CategoryDaily), 3)

	_, err = svc.AddTask(ctx, CategoryDaily, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.AddTask(ctx, CategoryCompleted, "Report")
	assert.ErrorIs(t, err, ErrReadOnlyCategory)

	_, err = svc.AddTask(ctx, Category("yearly"), "x")
	assert.ErrorAs(t, err, &NotFoundError{})
	assert.Len(t, blobs.saves, 1, "rejections are not persisted")
}

func TestServiceSubTasksAndEdits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	child, err := svc.AddSubTask(ctx, CategoryWeekly, "w1", "Disavow spam links")
	require.NoError(t, err)
	assert.Equal(t, "w1", child.ParentID)
	parent, _ := Find(svc.Forest(CategoryWeekly), "w1")
	assert.True(t, parent.IsExpanded)

	// Subtasks can be added in the reporting category.
	_, err = svc.AddSubTask(ctx, CategoryCompleted, "c1", "Export GA4 data")
	require.NoError(t, err)

	toggled, err := svc.ToggleTask(ctx, CategoryWeekly, child.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	collapsed, err := svc.ToggleExpanded(ctx, CategoryWeekly, "w1")
	require.NoError(t, err)
	assert.False(t, collapsed.IsExpanded)

	edited, err := svc.UpdateTask(ctx, CategoryWeekly, child.ID, TaskEdit{Text: "Disavow", DueDate: "2024-07-01", Priority: PriorityHigh, Notes: " n "})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-01", edited.DueDate)
	assert.Equal(t, "n", edited.Notes)
	assert.True(t, edited.Completed)

	_, err = svc.UpdateTask(ctx, CategoryWeekly, child.ID, TaskEdit{Text: "Disavow", DueDate: "July"})
	assert.Error(t, err)
	_, err = svc.UpdateTask(ctx, CategoryWeekly, child.ID, TaskEdit{Text: " "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = svc.UpdateTask(ctx, CategoryWeekly, "ghost", TaskEdit{Text: "x"})
	assert.ErrorAs(t, err, &NotFoundError{})

	got, _ := Find(svc.Forest(CategoryWeekly), child.ID)
	assert.Equal(t, edited, got)
}

func TestServiceSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newMemService(t)
	blobs.saveErr = errors.New("disk full")

	_, err := svc.AddTask(ctx, CategoryMonthly, "Audit internal links")
	require.NoError(t, err)
	assert.Len(t, svc.Forest(CategoryMonthly), 3)

	var adapter AdapterError
	require.ErrorAs(t, svc.Warning(), &adapter)
	assert.Equal(t, "save tasks", adapter.Op)
	svc.ClearWarning()
	assert.NoError(t, svc.Warning())
}

func TestServiceLoadFallsBackPerKey(t *testing.T) {
	blobs := newMemBlobs()
	blobs.data[KeyTasks] = []byte(`{"daily": [{"id": "x", "text": "Persisted"}]}`)
	blobs.data[KeyTemplates] = []byte(`garbage`)
	blobs.data[KeyFiltersGlobalEnabled] = []byte(`true`)
	blobs.data[KeyFiltersPerCategory] = []byte(`{"weekly": {"status": "completed"}, "completed": {"status": "completed"}}`)

	svc := NewService(blobs, Options{NewID: seqIDs("n")})
	svc.Load(context.Background())

	assert.Equal(t, []string{"Persisted"}, texts(svc.Forest(CategoryDaily)))
	assert.Equal(t, DefaultForest(CategoryStart), svc.Forest(CategoryStart))
	assert.Empty(t, svc.Templates())
	assert.ErrorAs(t, svc.Warning(), &MalformedDataError{})

	scope := svc.Filters()
	assert.True(t, scope.Global)
	assert.Equal(t, StatusCompleted, scope.PerCategory[CategoryWeekly].Status)
	assert.Equal(t, SortAsc, scope.PerCategory[CategoryWeekly].SortDirection)
	_, hasReporting := scope.PerCategory[CategoryCompleted]
	assert.False(t, hasReporting)
}

func TestServiceLoadErrorUsesDefaults(t *testing.T) {
	blobs := newMemBlobs()
	blobs.loadErr = errors.New("locked")
	svc := NewService(blobs, Options{})
	svc.Load(context.Background())

	assert.Equal(t, DefaultStore(), svc.Store())
	assert.ErrorAs(t, svc.Warning(), &AdapterError{})
}

func TestServiceReorderResetsSort(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	by := SortText
	_, err := svc.SetFilter(ctx, CategoryDaily, FilterPatch{SortBy: &by})
	require.NoError(t, err)

	require.NoError(t, svc.ReorderTask(ctx, CategoryDaily, "", "d2", 0))
	assert.Equal(t, []string{"d2", "d1"}, ids(svc.Forest(CategoryDaily)))

	f, _ := svc.Filter(CategoryDaily)
	assert.Equal(t, SortDefault, f.SortBy)

	// The reporting category has no filters but can still be reordered.
	require.NoError(t, svc.ReorderTask(ctx, CategoryCompleted, "", "c3", 0))
	assert.Equal(t, "c3", svc.Forest(CategoryCompleted)[0].ID)
}

func TestServiceViewAppliesActiveFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	_, err := svc.ToggleTask(ctx, CategoryWeekly, "w2")
	require.NoError(t, err)

	status := StatusCompleted
	_, err = svc.SetFilter(ctx, CategoryWeekly, FilterPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{"w2"}, ids(svc.View(CategoryWeekly)))
	assert.Len(t, svc.Forest(CategoryWeekly), 2, "stored forest is untouched")
	assert.Len(t, svc.View(CategoryDaily), 2)

	_, err = svc.SetFilter(ctx, CategoryCompleted, FilterPatch{Status: &status})
	assert.ErrorIs(t, err, ErrReadOnlyCategory)
	assert.Len(t, svc.View(CategoryCompleted), 3)

	require.True(t, svc.ToggleGlobalFilters(ctx, CategoryWeekly))
	assert.Empty(t, svc.View(CategoryDaily))

	require.NoError(t, svc.ResetFilter(ctx, CategoryDaily))
	assert.Len(t, svc.View(CategoryDaily), 2)
	assert.False(t, svc.ToggleGlobalFilters(ctx, CategoryDaily))
	assert.Equal(t, []string{"w2"}, ids(svc.View(CategoryWeekly)))
}

func TestServiceTemplates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)

	_, err := svc.ToggleTask(ctx, CategoryStart, "s1")
	require.NoError(t, err)

	tpl, err := svc.SaveTemplate(ctx, " Agency kickoff ")
	require.NoError(t, err)
	assert.Equal(t, "Agency kickoff", tpl.Name)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), tpl.CreatedAt)

	_, err = svc.SaveTemplate(ctx, "Agency kickoff")
	assert.ErrorAs(t, err, &DuplicateNameError{})

	_, err = svc.AddTask(ctx, CategoryDaily, "Temporary")
	require.NoError(t, err)

	applied, err := svc.ApplyTemplate(ctx, "Agency kickoff")
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, applied.ID)
	assert.Len(t, svc.Forest(CategoryDaily), 2)
	assert.False(t, svc.Forest(CategoryStart)[0].Completed)
	assert.NotEqual(t, "s1", svc.Forest(CategoryStart)[0].ID)

	raw, err := svc.ExportTemplate(tpl.ID)
	require.NoError(t, err)
	_, err = svc.ImportTemplate(ctx, raw)
	assert.ErrorAs(t, err, &DuplicateNameError{})

	_, err = svc.DeleteTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	imported, err := svc.ImportTemplate(ctx, raw)
	require.NoError(t, err)
	assert.NotEqual(t, tpl.ID, imported.ID)
	assert.Len(t, svc.Templates(), 1)

	_, err = svc.ApplyTemplate(ctx, "nope")
	assert.ErrorAs(t, err, &NotFoundError{})
}

func TestServiceApplySuggestions(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newMemService(t)

	added, skipped, err := svc.ApplySuggestions(ctx, CategoryMonthly, []string{" Refresh old posts ", "", "Analyze competitors", "Refresh old posts"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Refresh old posts"}, texts(added))
	assert.Equal(t, []string{"Analyze competitors", "Refresh old posts"}, skipped)
	assert.Len(t, svc.Forest(CategoryMonthly), 3)
	assert.Equal(t, []string{KeyTasks}, blobs.saves)

	_, _, err = svc.ApplySuggestions(ctx, CategoryCompleted, []string{"x"})
	assert.ErrorIs(t, err, ErrReadOnlyCategory)
}

func TestServiceResetAndClear(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newMemService(t)

	status := StatusCompleted
	_, err := svc.SetFilter(ctx, CategoryDaily, FilterPatch{Status: &status})
	require.NoError(t, err)

	svc.Clear(ctx)
	assert.Zero(t, svc.Store().Count())
	f, _ := svc.Filter(CategoryDaily)
	assert.True(t, f.IsDefault())
	// Without deletion support the defaults are written back.
	var stored map[Category]FilterSettings
	require.NoError(t, json.Unmarshal(blobs.data[KeyFiltersPerCategory], &stored))
	assert.Equal(t, StatusAll, stored[CategoryDaily].Status)

	svc.Reset(ctx)
	assert.Equal(t, DefaultStore(), svc.Store())
}

func TestServiceClearDropsStoredFilters(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	status := StatusIncomplete
	_, err := svc.SetFilter(ctx, CategoryWeekly, FilterPatch{Status: &status})
	require.NoError(t, err)
	require.True(t, svc.ToggleGlobalFilters(ctx, CategoryWeekly))

	raw, err := repo.Load(ctx, KeyFiltersGlobal)
	require.NoError(t, err)
	require.NotNil(t, raw)

	svc.Clear(ctx)
	require.NoError(t, svc.Warning())
	for _, key := range []string{KeyFiltersGlobalEnabled, KeyFiltersGlobal, KeyFiltersPerCategory} {
		raw, err := repo.Load(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, raw, key)
	}

	svc.Load(ctx)
	assert.False(t, svc.Filters().Global)
	assert.Zero(t, svc.Store().Count())
}

func TestServiceViewIsACopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemService(t)
	_, err := svc.AddSubTask(ctx, CategoryDaily, "d1", "Check mobile coverage")
	require.NoError(t, err)

	for _, c := range []Category{CategoryDaily, CategoryCompleted} {
		view := svc.View(c)
		require.NotEmpty(t, view)
		view[0].Text = "changed"
		if len(view[0].SubTasks) > 0 {
			view[0].SubTasks[0].Text = "changed"
		}
	}
	assert.Equal(t, "Check site indexing", svc.Forest(CategoryDaily)[0].Text)
	assert.Equal(t, "Check mobile coverage", svc.Forest(CategoryDaily)[0].SubTasks[0].Text)
	assert.NotEqual(t, "changed", svc.Forest(CategoryCompleted)[0].Text)

	snap := svc.Store()
	snap[CategoryDaily][0].Text = "changed"
	assert.Equal(t, "Check site indexing", svc.Forest(CategoryDaily)[0].Text)
}

func TestServiceLocate(t *testing.T) {
	svc, _ := newMemService(t)

	c, task, err := svc.Locate("w2")
	require.NoError(t, err)
	assert.Equal(t, CategoryWeekly, c)
	assert.Equal(t, "Analyze keyword rankings", task.Text)

	_, _, err = svc.Locate("s")
	assert.ErrorAs(t, err, &AmbiguousIDError{})

	_, _, err = svc.Locate("zzz")
	assert.ErrorAs(t, err, &NotFoundError{})
}

func TestServicePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	task, err := svc.AddTask(ctx, CategoryStart, "Fix hreflang tags")
	require.NoError(t, err)
	_, err = svc.AddSubTask(ctx, CategoryStart, task.ID, "Check es-MX pages")
	require.NoError(t, err)
	_, err = svc.SaveTemplate(ctx, "Base")
	require.NoError(t, err)
	require.True(t, svc.ToggleGlobalFilters(ctx, CategoryStart))
	require.NoError(t, svc.Warning())

	before := svc.Store()
	svc.Load(ctx)
	require.NoError(t, svc.Warning())
	assert.Equal(t, before, svc.Store())
	assert.Len(t, svc.Templates(), 1)
	assert.True(t, svc.Filters().Global)
}
