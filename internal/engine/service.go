package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Persistence keys.
const (
	KeyTasks                = "tasks"
	KeyTemplates            = "templates"
	KeyFiltersGlobalEnabled = "filters.global_enabled"
	KeyFiltersGlobal        = "filters.global"
	KeyFiltersPerCategory   = "filters.per_category"
)

// BlobStore loads and saves opaque JSON snapshots by key. Load returns nil, nil
// for a key that was never saved.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// batchSaver is implemented by stores that can write several keys atomically.
type batchSaver interface {
	SaveMany(ctx context.Context, values map[string][]byte) error
}

// blobDeleter is implemented by stores that can drop a key entirely.
type blobDeleter interface {
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Logger *slog.Logger
	// Locale drives text collation when sorting by text.
	Locale string
	NewID  func() string
	Now    func() time.Time
}

// Service owns the in-memory state and writes every successful change back to
// the blob store. It is not safe for concurrent use; callers serialize access.
type Service struct {
	blobs     BlobStore
	log       *slog.Logger
	projector *Projector
	newID     func() string
	now       func() time.Time

	store     Store
	templates Templates
	filters   FilterScope

	lastWarning error
}

func NewService(blobs BlobStore, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	return &Service{
		blobs:     blobs,
		log:       opts.Logger,
		projector: NewProjector(opts.Locale),
		newID:     opts.NewID,
		now:       opts.Now,
		store:     DefaultStore(),
		templates: Templates{},
		filters:   DefaultFilterScope(),
	}
}

// Load replaces the in-memory state with what the blob store holds. Any key
// that is missing or unreadable falls back to its default; problems are
// logged and kept as the last warning, never returned.
func (s *Service) Load(ctx context.Context) {
	s.store = DefaultStore()
	s.templates = Templates{}
	s.filters = DefaultFilterScope()

	if raw := s.load(ctx, KeyTasks); raw != nil {
		store, err := DecodeStore(raw, s.newID)
		s.warn(err)
		s.store = store
	}
	if raw := s.load(ctx, KeyTemplates); raw != nil {
		tpls, err := DecodeTemplates(raw, s.newID)
		s.warn(err)
		s.templates = tpls
	}
	if raw := s.load(ctx, KeyFiltersGlobalEnabled); raw != nil {
		var enabled bool
		if err := json.Unmarshal(raw, &enabled); err != nil {
			s.warn(MalformedDataError{Key: KeyFiltersGlobalEnabled, Err: err})
		} else {
			s.filters.Global = enabled
		}
	}
	if raw := s.load(ctx, KeyFiltersGlobal); raw != nil {
		var f FilterSettings
		if err := json.Unmarshal(raw, &f); err != nil {
			s.warn(MalformedDataError{Key: KeyFiltersGlobal, Err: err})
		} else {
			s.filters.GlobalSettings = f.Normalized()
		}
	}
	if raw := s.load(ctx, KeyFiltersPerCategory); raw != nil {
		var per map[string]*FilterSettings
		if err := json.Unmarshal(raw, &per); err != nil {
			s.warn(MalformedDataError{Key: KeyFiltersPerCategory, Err: err})
		} else {
			for _, c := range WorkCategories {
				if f := per[string(c)]; f != nil {
					s.filters.PerCategory[c] = f.Normalized()
				}
			}
		}
	}
}

func (s *Service) load(ctx context.Context, key string) []byte {
	raw, err := s.blobs.Load(ctx, key)
	if err != nil {
		s.warn(AdapterError{Op: "load " + key, Err: err})
		return nil
	}
	return raw
}

func (s *Service) warn(err error) {
	if err == nil {
		return
	}
	s.lastWarning = err
	s.log.Warn("persistence", "err", err)
}

// Warning returns the most recent persistence problem, if any.
func (s *Service) Warning() error { return s.lastWarning }

// ClearWarning forgets the last persistence problem.
func (s *Service) ClearWarning() { s.lastWarning = nil }

func (s *Service) persist(ctx context.Context, keys ...string) {
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var v any
		switch key {
		case KeyTasks:
			v = s.store
		case KeyTemplates:
			v = s.templates
		case KeyFiltersGlobalEnabled:
			v = s.filters.Global
		case KeyFiltersGlobal:
			v = s.filters.GlobalSettings
		case KeyFiltersPerCategory:
			v = s.filters.PerCategory
		}
		raw, err := json.Marshal(v)
		if err != nil {
			s.warn(AdapterError{Op: "encode " + key, Err: err})
			continue
		}
		values[key] = raw
	}

	if bs, ok := s.blobs.(batchSaver); ok && len(values) > 1 {
		if err := bs.SaveMany(ctx, values); err != nil {
			s.warn(AdapterError{Op: "save " + strings.Join(keys, ","), Err: err})
		}
		return
	}
	for _, key := range keys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if err := s.blobs.Save(ctx, key, raw); err != nil {
			s.warn(AdapterError{Op: "save " + key, Err: err})
		}
	}
}

// Store returns a deep copy of the current snapshot.
func (s *Service) Store() Store { return s.store.Clone() }

// Forest returns the stored forest of c. Callers must not modify it.
func (s *Service) Forest(c Category) []Task { return s.store[c] }

func (s *Service) Templates() Templates { return s.templates }

func (s *Service) Filters() FilterScope { return s.filters }

func normalizeText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", ErrEmptyInput
	}
	return t, nil
}

func checkCategory(c Category) error {
	if !c.IsValid() {
		return NotFoundError{Kind: "category", ID: string(c)}
	}
	return nil
}

func checkWorkCategory(c Category) error {
	if err := checkCategory(c); err != nil {
		return err
	}
	if c.IsReporting() {
		return ErrReadOnlyCategory
	}
	return nil
}

// mutate applies op to one category and saves the task snapshot.
func (s *Service) mutate(ctx context.Context, c Category, op func([]Task) ([]Task, error)) error {
	next, err := s.store.Apply(c, op)
	if err != nil {
		return err
	}
	s.store = next
	s.persist(ctx, KeyTasks)
	return nil
}

func (s *Service) AddTask(ctx context.Context, c Category, text string) (Task, error) {
	if err := checkWorkCategory(c); err != nil {
		return Task{}, err
	}
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}
	id := s.newID()
	if err := s.mutate(ctx, c, func(f []Task) ([]Task, error) { return AddRoot(f, id, text) }); err != nil {
		return Task{}, err
	}
	t, _ := Find(s.store[c], id)
	s.log.Debug("task added", "category", c, "id", id)
	return t, nil
}

func (s *Service) AddSubTask(ctx context.Context, c Category, parentID, text string) (Task, error) {
	if err := checkCategory(c); err != nil {
		return Task{}, err
	}
	text, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}
	id := s.newID()
	if err := s.mutate(ctx, c, func(f []Task) ([]Task, error) { return AddChild(f, parentID, id, text) }); err != nil {
		return Task{}, err
	}
	t, _ := Find(s.store[c], id)
	s.log.Debug("subtask added", "category", c, "parent", parentID, "id", id)
	return t, nil
}

func (s *Service) ToggleTask(ctx context.Context, c Category, id string) (Task, error) {
	if err := checkCategory(c); err != nil {
		return Task{}, err
	}
	if err := s.mutate(ctx, c, func(f []Task) ([]Task, error) { return ToggleCompleted(f, id) }); err != nil {
		return Task{}, err
	}
	t, _ := Find(s.store[c], id)
	return t, nil
}

func (s *Service) ToggleExpanded(ctx context.Context, c Category, id string) (Task, error) {
	if err := checkCategory(c); err != nil {
		return Task{}, err
	}
	if err := s.mutate(ctx, c, func(f []Task) ([]Task, error) { return ToggleExpanded(f, id) }); err != nil {
		return Task{}, err
	}
	t, _ := Find(s.store[c], id)
	return t, nil
}

// UpdateTask validates and applies an edit. Blank text is rejected; empty
// optional fields clear the stored value.
func (s *Service) UpdateTask(ctx context.Context, c Category, id string, edit TaskEdit) (Task, error) {
	if err := checkCategory(c); err != nil {
		return Task{}, err
	}
	text, err := normalizeText(edit.Text)
	if err != nil {
		return Task{}, err
	}
	due, err := ParseDueDate(edit.DueDate)
	if err != nil {
		return Task{}, err
	}
	if !edit.Priority.IsValid() {
		return Task{}, errors.New("invalid priority: " + string(edit.Priority))
	}
	edit = TaskEdit{Text: text, DueDate: due, Priority: edit.Priority, Notes: strings.TrimSpace(edit.Notes)}
	if err := s.mutate(ctx, c, func(f []Task) ([]Task, error) { return UpdateFields(f, id, edit) }); err != nil {
		return Task{}, err
	}
	t, _ := Find(s.store[c], id)
	return t, nil
}

// ReorderTask moves a task within its sibling list and resets the active sort
// of c to the insertion order so the move stays visible.
func (s *Service) ReorderTask(ctx context.Context, c Category, containingID, draggedID string, targetIndex int) error {
	if err := checkCategory(c); err != nil {
		return err
	}
	s.store = s.store.With(c, Reorder(s.store[c], containingID, draggedID, targetIndex))
	s.persist(ctx, KeyTasks)

	if _, ok := s.filters.Active(c); ok {
		sortBy := SortDefault
		s.filters, _ = s.filters.Update(c, FilterPatch{SortBy: &sortBy})
		s.persistFilters(ctx)
	}
	return nil
}

// Siblings returns the list that holds id together with the id of its owner
// ("" for roots) and the task's position in that list.
func (s *Service) Siblings(c Category, id string) (containingID string, list []Task, index int, ok bool) {
	t, found := Find(s.store[c], id)
	if !found {
		return "", nil, -1, false
	}
	list = s.store[c]
	if !t.IsRoot() {
		parent, found := Find(s.store[c], t.ParentID)
		if !found {
			return "", nil, -1, false
		}
		list = parent.SubTasks
	}
	for i := range list {
		if list[i].ID == id {
			return t.ParentID, list, i, true
		}
	}
	return "", nil, -1, false
}

// View projects the forest of c through its active filter settings into a fresh
// copy. The reporting category is copied unfiltered.
func (s *Service) View(c Category) []Task {
	f, ok := s.filters.Active(c)
	if !ok {
		return CloneForest(s.store[c])
	}
	return s.projector.Project(s.store[c], f)
}

// Filter returns the settings in effect for c.
func (s *Service) Filter(c Category) (FilterSettings, bool) { return s.filters.Active(c) }

func (s *Service) SetFilter(ctx context.Context, c Category, patch FilterPatch) (FilterSettings, error) {
	if err := checkWorkCategory(c); err != nil {
		return FilterSettings{}, err
	}
	next, err := s.filters.Update(c, patch)
	if err != nil {
		return FilterSettings{}, err
	}
	s.filters = next
	s.persistFilters(ctx)
	f, _ := s.filters.Active(c)
	return f, nil
}

func (s *Service) ResetFilter(ctx context.Context, c Category) error {
	if err := checkWorkCategory(c); err != nil {
		return err
	}
	next, err := s.filters.Reset(c)
	if err != nil {
		return err
	}
	s.filters = next
	s.persistFilters(ctx)
	return nil
}

// ToggleGlobalFilters flips between global and per-category settings, using c
// as the seed when switching to global. It returns the new selector value.
func (s *Service) ToggleGlobalFilters(ctx context.Context, c Category) bool {
	s.filters = s.filters.ToggleGlobal(c)
	s.persist(ctx, KeyFiltersGlobalEnabled, KeyFiltersGlobal)
	return s.filters.Global
}

func (s *Service) persistFilters(ctx context.Context) {
	if s.filters.Global {
		s.persist(ctx, KeyFiltersGlobal)
		return
	}
	s.persist(ctx, KeyFiltersPerCategory)
}

func (s *Service) SaveTemplate(ctx context.Context, name string) (ProjectTemplate, error) {
	tpl, err := NewTemplate(s.newID(), name, s.store, s.now())
	if err != nil {
		return ProjectTemplate{}, err
	}
	next, err := s.templates.Add(tpl)
	if err != nil {
		return ProjectTemplate{}, err
	}
	s.templates = next
	s.persist(ctx, KeyTemplates)
	s.log.Info("template saved", "name", tpl.Name, "tasks", tpl.TaskCount())
	return tpl, nil
}

// ApplyTemplate replaces every category with a fresh instance of the template.
func (s *Service) ApplyTemplate(ctx context.Context, ref string) (ProjectTemplate, error) {
	tpl, ok := s.templates.Find(ref)
	if !ok {
		return ProjectTemplate{}, NotFoundError{Kind: "template", ID: ref}
	}
	s.store = Instantiate(tpl.TasksState, s.newID)
	s.persist(ctx, KeyTasks)
	s.log.Info("template applied", "name", tpl.Name)
	return tpl, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, ref string) (ProjectTemplate, error) {
	tpl, ok := s.templates.Find(ref)
	if !ok {
		return ProjectTemplate{}, NotFoundError{Kind: "template", ID: ref}
	}
	next, err := s.templates.Delete(tpl.ID)
	if err != nil {
		return ProjectTemplate{}, err
	}
	s.templates = next
	s.persist(ctx, KeyTemplates)
	return tpl, nil
}

// ExportTemplate renders one template as YAML.
func (s *Service) ExportTemplate(ref string) ([]byte, error) {
	tpl, ok := s.templates.Find(ref)
	if !ok {
		return nil, NotFoundError{Kind: "template", ID: ref}
	}
	return MarshalTemplateYAML(tpl)
}

// ImportTemplate adds a template read from YAML under a new id.
func (s *Service) ImportTemplate(ctx context.Context, data []byte) (ProjectTemplate, error) {
	tpl, err := UnmarshalTemplateYAML(data)
	if err != nil {
		return ProjectTemplate{}, err
	}
	tpl.ID = s.newID()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = s.now().UTC()
	}
	next, err := s.templates.Add(tpl)
	if err != nil {
		return ProjectTemplate{}, err
	}
	s.templates = next
	s.persist(ctx, KeyTemplates)
	return tpl, nil
}

func (s *Service) Progress() ProgressSnapshot { return Progress(s.store) }

func (s *Service) Export() []ExportRow { return Flatten(s.store) }

// ApplySuggestions adds each non-blank suggestion as a root task of c.
// Suggestions colliding with an existing root are skipped.
func (s *Service) ApplySuggestions(ctx context.Context, c Category, texts []string) (added []Task, skipped []string, err error) {
	if err := checkWorkCategory(c); err != nil {
		return nil, nil, err
	}
	forest := s.store[c]
	for _, raw := range texts {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		id := s.newID()
		next, err := AddRoot(forest, id, text)
		if err != nil {
			skipped = append(skipped, text)
			continue
		}
		forest = next
		t, _ := Find(forest, id)
		added = append(added, t)
	}
	if len(added) > 0 {
		s.store = s.store.With(c, forest)
		s.persist(ctx, KeyTasks)
	}
	return added, skipped, nil
}

// Reset restores the starter checklist in every category.
func (s *Service) Reset(ctx context.Context) {
	s.store = DefaultStore()
	s.persist(ctx, KeyTasks)
	s.log.Info("store reset to defaults")
}

// Clear empties every category and restores the default filters. Stored
// filter keys are dropped when the blob store supports deletion.
func (s *Service) Clear(ctx context.Context) {
	empty := make(Store, len(Categories))
	for _, c := range Categories {
		empty[c] = []Task{}
	}
	s.store = empty
	s.filters = DefaultFilterScope()
	s.persist(ctx, KeyTasks)
	s.forget(ctx, KeyFiltersGlobalEnabled, KeyFiltersGlobal, KeyFiltersPerCategory)
	s.log.Info("store cleared")
}

// forget removes keys from the blob store, or saves their current in-memory
// value when the store cannot delete.
func (s *Service) forget(ctx context.Context, keys ...string) {
	d, ok := s.blobs.(blobDeleter)
	if !ok {
		s.persist(ctx, keys...)
		return
	}
	for _, key := range keys {
		if err := d.Delete(ctx, key); err != nil {
			s.warn(AdapterError{Op: "delete " + key, Err: err})
		}
	}
}

// Locate finds a task by id or unique id prefix in any category.
func (s *Service) Locate(ref string) (Category, Task, error) {
	for _, c := range Categories {
		if t, ok := Find(s.store[c], ref); ok {
			return c, t, nil
		}
	}
	var (
		hitCat  Category
		hitTask Task
		hits    int
	)
	for _, c := range Categories {
		id, err := ResolveID(s.store[c], ref)
		if err != nil {
			var amb AmbiguousIDError
			if errors.As(err, &amb) {
				return "", Task{}, err
			}
			if errors.Is(err, ErrEmptyInput) {
				return "", Task{}, err
			}
			continue
		}
		t, _ := Find(s.store[c], id)
		hitCat, hitTask = c, t
		hits++
	}
	switch hits {
	case 0:
		return "", Task{}, NotFoundError{ID: ref}
	case 1:
		return hitCat, hitTask, nil
	default:
		return "", Task{}, AmbiguousIDError{Prefix: ref, Matches: hits}
	}
}
