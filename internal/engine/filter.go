package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusCompleted  StatusFilter = "completed"
	StatusIncomplete StatusFilter = "incomplete"
)

type PriorityFilter string

const (
	PriorityFilterAll    PriorityFilter = "all"
	PriorityFilterNone   PriorityFilter = "none"
	PriorityFilterLow    PriorityFilter = "low"
	PriorityFilterMedium PriorityFilter = "medium"
	PriorityFilterHigh   PriorityFilter = "high"
)

type SortBy string

const (
	SortDefault  SortBy = "default"
	SortDueDate  SortBy = "dueDate"
	SortPriority SortBy = "priority"
	SortText     SortBy = "text"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterSettings controls how a forest is projected for display.
type FilterSettings struct {
	Status        StatusFilter   `json:"status" yaml:"status"`
	Priority      PriorityFilter `json:"priority" yaml:"priority"`
	SortBy        SortBy         `json:"sortBy" yaml:"sortBy"`
	SortDirection SortDirection  `json:"sortDirection" yaml:"sortDirection"`
	SearchTerm    string         `json:"searchTerm" yaml:"searchTerm"`
}

func DefaultFilterSettings() FilterSettings {
	return FilterSettings{
		Status:        StatusAll,
		Priority:      PriorityFilterAll,
		SortBy:        SortDefault,
		SortDirection: SortAsc,
	}
}

// IsDefault reports whether the settings leave a forest untouched.
func (f FilterSettings) IsDefault() bool {
	return f.Status == StatusAll && f.Priority == PriorityFilterAll &&
		f.SortBy == SortDefault && strings.TrimSpace(f.SearchTerm) == ""
}

// Normalized replaces unknown enum values with their defaults.
func (f FilterSettings) Normalized() FilterSettings {
	d := DefaultFilterSettings()
	switch f.Status {
	case StatusAll, StatusCompleted, StatusIncomplete:
	default:
		f.Status = d.Status
	}
	switch f.Priority {
	case PriorityFilterAll, PriorityFilterNone, PriorityFilterLow, PriorityFilterMedium, PriorityFilterHigh:
	default:
		f.Priority = d.Priority
	}
	switch f.SortBy {
	case SortDefault, SortDueDate, SortPriority, SortText:
	default:
		f.SortBy = d.SortBy
	}
	if f.SortDirection != SortDesc {
		f.SortDirection = SortAsc
	}
	return f
}

// FilterPatch is a partial update of FilterSettings; nil fields are kept.
type FilterPatch struct {
	Status        *StatusFilter
	Priority      *PriorityFilter
	SortBy        *SortBy
	SortDirection *SortDirection
	SearchTerm    *string
}

func (p FilterPatch) Apply(f FilterSettings) FilterSettings {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortDirection != nil {
		f.SortDirection = *p.SortDirection
	}
	if p.SearchTerm != nil {
		f.SearchTerm = *p.SearchTerm
	}
	return f.Normalized()
}

func ParseStatusFilter(input string) (StatusFilter, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "all", "":
		return StatusAll, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "incomplete", "open", "pending":
		return StatusIncomplete, nil
	default:
		return "", fmt.Errorf("invalid status filter: %q", input)
	}
}

func ParsePriorityFilter(input string) (PriorityFilter, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "all", "":
		return PriorityFilterAll, nil
	case "none", "-":
		return PriorityFilterNone, nil
	}
	p, err := ParsePriority(s)
	if err != nil {
		return "", fmt.Errorf("invalid priority filter: %q", input)
	}
	return PriorityFilter(p), nil
}

func ParseSortBy(input string) (SortBy, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "default", "":
		return SortDefault, nil
	case "duedate", "due", "date":
		return SortDueDate, nil
	case "priority":
		return SortPriority, nil
	case "text", "name":
		return SortText, nil
	default:
		return "", fmt.Errorf("invalid sort key: %q", input)
	}
}

func ParseSortDirection(input string) (SortDirection, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "asc", "":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("invalid sort direction: %q", input)
	}
}

// Projector derives display forests from stored forests. Text sorting uses a
// locale-aware collator.
type Projector struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewProjector builds a projector collating text for the given BCP 47 locale.
// An unparsable locale falls back to English.
func NewProjector(locale string) *Projector {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Projector{collator: collate.New(tag)}
}

// Project filters then sorts a copy of forest. The input is never modified.
func (p *Projector) Project(forest []Task, f FilterSettings) []Task {
	f = f.Normalized()
	out := CloneForest(forest)
	search := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	if f.Status != StatusAll || f.Priority != PriorityFilterAll || search != "" {
		out = filterForest(out, f, search)
	}
	if f.SortBy != SortDefault {
		out = p.sortForest(out, f)
	}
	return out
}

func filterForest(forest []Task, f FilterSettings, search string) []Task {
	out := make([]Task, 0, len(forest))
	for _, t := range forest {
		if search == "" {
			// Each level is filtered on its own; an excluded parent takes its subtree with it.
			if !matchesStatus(t, f.Status) || !matchesPriority(t, f.Priority) {
				continue
			}
			t.SubTasks = filterForest(t.SubTasks, f, search)
			out = append(out, t)
			continue
		}

		subs := filterForest(t.SubTasks, f, search)
		self := matchesSearch(t, search) && matchesStatus(t, f.Status) && matchesPriority(t, f.Priority)
		if !self && len(subs) == 0 {
			continue
		}
		t.SubTasks = subs
		out = append(out, t)
	}
	return out
}

func matchesSearch(t Task, search string) bool {
	return strings.Contains(strings.ToLower(t.Text), search) ||
		strings.Contains(strings.ToLower(t.Notes), search)
}

func matchesStatus(t Task, s StatusFilter) bool {
	switch s {
	case StatusCompleted:
		return t.Completed
	case StatusIncomplete:
		return !t.Completed
	default:
		return true
	}
}

func matchesPriority(t Task, p PriorityFilter) bool {
	switch p {
	case PriorityFilterAll:
		return true
	case PriorityFilterNone:
		return t.Priority == PriorityNone
	default:
		return string(t.Priority) == string(p)
	}
}

func (p *Projector) sortForest(forest []Task, f FilterSettings) []Task {
	type indexed struct {
		task Task
		pos  int
	}
	items := make([]indexed, len(forest))
	for i, t := range forest {
		items[i] = indexed{task: t, pos: i}
	}

	sort.Slice(items, func(i, j int) bool {
		c := p.compare(items[i].task, items[j].task, f.SortBy)
		if c == 0 {
			c = items[i].pos - items[j].pos
		}
		if f.SortDirection == SortDesc {
			c = -c
		}
		return c < 0
	})

	out := make([]Task, len(items))
	for i, it := range items {
		it.task.SubTasks = p.sortForest(it.task.SubTasks, f)
		out[i] = it.task
	}
	return out
}

func (p *Projector) compare(a, b Task, by SortBy) int {
	switch by {
	case SortDueDate:
		switch {
		case a.DueDate == "" && b.DueDate == "":
			return 0
		case a.DueDate == "":
			return 1
		case b.DueDate == "":
			return -1
		default:
			return strings.Compare(a.DueDate, b.DueDate)
		}
	case SortPriority:
		return b.Priority.Weight() - a.Priority.Weight()
	case SortText:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.collator.CompareString(a.Text, b.Text)
	default:
		return 0
	}
}

// FilterScope holds the global settings and one settings slot per work
// category. Global selects which of the two is active.
type FilterScope struct {
	Global         bool
	GlobalSettings FilterSettings
	PerCategory    map[Category]FilterSettings
}

func DefaultFilterScope() FilterScope {
	per := make(map[Category]FilterSettings, len(WorkCategories))
	for _, c := range WorkCategories {
		per[c] = DefaultFilterSettings()
	}
	return FilterScope{GlobalSettings: DefaultFilterSettings(), PerCategory: per}
}

// Active returns the settings in effect for c. The reporting category has none.
func (s FilterScope) Active(c Category) (FilterSettings, bool) {
	if !c.IsValid() || c.IsReporting() {
		return FilterSettings{}, false
	}
	if s.Global {
		return s.GlobalSettings, true
	}
	if f, ok := s.PerCategory[c]; ok {
		return f, true
	}
	return DefaultFilterSettings(), true
}

// Update applies patch to whichever slot is active for c.
func (s FilterScope) Update(c Category, patch FilterPatch) (FilterScope, error) {
	cur, ok := s.Active(c)
	if !ok {
		return s, ErrReadOnlyCategory
	}
	return s.set(c, patch.Apply(cur)), nil
}

// Reset restores the active slot for c to defaults.
func (s FilterScope) Reset(c Category) (FilterScope, error) {
	if _, ok := s.Active(c); !ok {
		return s, ErrReadOnlyCategory
	}
	return s.set(c, DefaultFilterSettings()), nil
}

// ToggleGlobal flips the active scope. Switching to global seeds the global
// settings from the settings active on c.
func (s FilterScope) ToggleGlobal(c Category) FilterScope {
	out := s.clone()
	out.Global = !s.Global
	if out.Global {
		if f, ok := s.PerCategory[c]; ok && !c.IsReporting() {
			out.GlobalSettings = f
		} else {
			out.GlobalSettings = DefaultFilterSettings()
		}
	}
	return out
}

func (s FilterScope) set(c Category, f FilterSettings) FilterScope {
	out := s.clone()
	if out.Global {
		out.GlobalSettings = f
	} else {
		out.PerCategory[c] = f
	}
	return out
}

func (s FilterScope) clone() FilterScope {
	per := make(map[Category]FilterSettings, len(s.PerCategory))
	for k, v := range s.PerCategory {
		per[k] = v
	}
	s.PerCategory = per
	return s
}
