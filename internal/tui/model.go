package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"seoboard/internal/assist"
	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputAdd
	inputSub
	inputEdit
	inputDue
	inputNotes
	inputSearch
	inputTemplate
	inputApply
)

func (k inputKind) prompt() string {
	switch k {
	case inputAdd:
		return "New task: "
	case inputSub:
		return "New subtask: "
	case inputEdit:
		return "Text: "
	case inputDue:
		return "Due (YYYY-MM-DD, empty clears): "
	case inputNotes:
		return "Notes: "
	case inputSearch:
		return "Search: "
	case inputTemplate:
		return "Template name: "
	case inputApply:
		return "Apply template (replaces all tasks): "
	default:
		return ""
	}
}

type boardModel struct {
	ctx        context.Context
	svc        *engine.Service
	assistant  assist.Assistant
	dispatcher *assist.Dispatcher

	width  int
	height int

	tab      int
	selected int

	input     textinput.Model
	inputKind inputKind
	target    string

	analysis string
	lastLog  string
}

type assistMsg struct {
	res assist.Result
}

// newBoardModel builds the board. assistant may be nil when no API key is set.
func newBoardModel(ctx context.Context, svc *engine.Service, assistant assist.Assistant) boardModel {
	in := textinput.New()
	in.CharLimit = 500
	return boardModel{
		ctx:        ctx,
		svc:        svc,
		assistant:  assistant,
		dispatcher: assist.NewDispatcher(),
		input:      in,
		lastLog:    "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) category() engine.Category {
	return engine.Categories[m.tab]
}

func (m boardModel) suggestCmd(t assist.Ticket) tea.Cmd {
	a := m.assistant
	ctx := m.ctx
	return func() tea.Msg {
		return assistMsg{res: assist.Suggest(ctx, a, t, t.Category.Label())}
	}
}

func (m boardModel) analyzeCmd(t assist.Ticket, snap engine.ProgressSnapshot) tea.Cmd {
	a := m.assistant
	ctx := m.ctx
	return func() tea.Msg {
		return assistMsg{res: assist.Analyze(ctx, a, t, snap)}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case assistMsg:
		return m.handleAssist(msg.res), nil
	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m boardModel) handleAssist(res assist.Result) boardModel {
	valid := func(c engine.Category) bool {
		if res.Ticket.Kind == assist.KindSuggest {
			return c.IsValid() && !c.IsReporting()
		}
		return c.IsValid()
	}
	switch m.dispatcher.Resolve(res, valid) {
	case assist.OutcomeDiscarded:
		return m
	case assist.OutcomeError:
		m.lastLog = fmt.Sprintf("%s %s failed: %v", ui.IconError, res.Ticket.Kind, res.Err)
		return m
	}

	if res.Ticket.Kind == assist.KindAnalyze {
		m.analysis = res.Analysis
		m.lastLog = "Analysis ready."
		return m
	}
	added, skipped, err := m.svc.ApplySuggestions(m.ctx, res.Ticket.Category, res.Suggestions)
	if err != nil {
		m.lastLog = "Suggestions rejected: " + err.Error()
		return m
	}
	m.lastLog = fmt.Sprintf("%s Added %d suggested task(s) to %s", ui.IconSparkle, len(added), res.Ticket.Category.Label())
	if len(skipped) > 0 {
		m.lastLog += fmt.Sprintf(", skipped %d duplicate(s)", len(skipped))
	}
	return m
}

func (m boardModel) startInput(kind inputKind, value string) (boardModel, tea.Cmd) {
	m.inputKind = kind
	m.input.Prompt = kind.prompt()
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputKind = inputNone
		m.input.Blur()
		m.lastLog = "Cancelled."
		return m, nil
	case "enter":
		kind, value := m.inputKind, m.input.Value()
		m.inputKind = inputNone
		m.input.Blur()
		return m.submit(kind, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) submit(kind inputKind, value string) (tea.Model, tea.Cmd) {
	c := m.category()
	var err error
	switch kind {
	case inputAdd:
		var t engine.Task
		if t, err = m.svc.AddTask(m.ctx, c, value); err == nil {
			m.lastLog = fmt.Sprintf("%s Added %q", ui.IconPlus, t.Text)
		}
	case inputSub:
		var t engine.Task
		if t, err = m.svc.AddSubTask(m.ctx, c, m.target, value); err == nil {
			m.lastLog = fmt.Sprintf("%s Added subtask %q", ui.IconPlus, t.Text)
		}
	case inputEdit, inputDue, inputNotes:
		err = m.editField(kind, value)
	case inputSearch:
		term := strings.TrimSpace(value)
		_, err = m.svc.SetFilter(m.ctx, c, engine.FilterPatch{SearchTerm: &term})
		m.selected = 0
		if err == nil {
			m.lastLog = "Search: " + term
		}
	case inputTemplate:
		var tpl engine.ProjectTemplate
		if tpl, err = m.svc.SaveTemplate(m.ctx, value); err == nil {
			m.lastLog = fmt.Sprintf("%s Saved template %q", ui.IconScroll, tpl.Name)
		}
	case inputApply:
		var tpl engine.ProjectTemplate
		if tpl, err = m.svc.ApplyTemplate(m.ctx, value); err == nil {
			// Every task was replaced; pending assistant results no longer apply.
			m.dispatcher.Invalidate()
			m.selected = 0
			m.analysis = ""
			m.lastLog = fmt.Sprintf("%s Applied template %q", ui.IconRocket, tpl.Name)
		}
	}
	if err != nil {
		m.lastLog = describe(err)
	}
	return m, nil
}

func (m *boardModel) editField(kind inputKind, value string) error {
	t, ok := engine.Find(m.svc.Forest(m.category()), m.target)
	if !ok {
		return engine.NotFoundError{ID: m.target}
	}
	edit := engine.EditFrom(t)
	switch kind {
	case inputEdit:
		edit.Text = value
	case inputDue:
		edit.DueDate = value
	case inputNotes:
		edit.Notes = value
	}
	updated, err := m.svc.UpdateTask(m.ctx, m.category(), t.ID, edit)
	if err != nil {
		return err
	}
	m.lastLog = fmt.Sprintf("Updated %q", updated.Text)
	return nil
}

func (m boardModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.category()
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % len(engine.Categories)
		m.selected = 0
		return m, nil
	case "shift+tab", "left", "h":
		m.tab = (m.tab + len(engine.Categories) - 1) % len(engine.Categories)
		m.selected = 0
		return m, nil
	case "1", "2", "3", "4", "5":
		m.tab = int(key[0] - '1')
		m.selected = 0
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.taskLines())-1 {
			m.selected++
		}
		return m, nil
	case "a":
		if c.IsReporting() {
			m.lastLog = "Tasks cannot be added to " + c.Label() + "."
			return m, nil
		}
		return m.startInput(inputAdd, "")
	case "/":
		if c.IsReporting() {
			m.lastLog = c.Label() + " has no filters."
			return m, nil
		}
		f, _ := m.svc.Filter(c)
		return m.startInput(inputSearch, f.SearchTerm)
	case "T":
		return m.startInput(inputTemplate, "")
	case "L":
		if len(m.svc.Templates()) == 0 {
			m.lastLog = "No templates saved yet. Press T to save one."
			return m, nil
		}
		return m.startInput(inputApply, "")
	case "f":
		return m.cycleFilter(func(f engine.FilterSettings) engine.FilterPatch {
			next := nextStatus(f.Status)
			return engine.FilterPatch{Status: &next}
		})
	case "v":
		return m.cycleFilter(func(f engine.FilterSettings) engine.FilterPatch {
			next := nextPriorityFilter(f.Priority)
			return engine.FilterPatch{Priority: &next}
		})
	case "o":
		return m.cycleFilter(func(f engine.FilterSettings) engine.FilterPatch {
			next := nextSort(f.SortBy)
			return engine.FilterPatch{SortBy: &next}
		})
	case "O":
		return m.cycleFilter(func(f engine.FilterSettings) engine.FilterPatch {
			next := engine.SortDesc
			if f.SortDirection == engine.SortDesc {
				next = engine.SortAsc
			}
			return engine.FilterPatch{SortDirection: &next}
		})
	case "R":
		if err := m.svc.ResetFilter(m.ctx, c); err != nil {
			m.lastLog = describe(err)
		} else {
			m.lastLog = "Filters reset."
		}
		return m, nil
	case "g":
		if m.svc.ToggleGlobalFilters(m.ctx, c) {
			m.lastLog = "Filters now apply to every category."
		} else {
			m.lastLog = "Filters are per category."
		}
		m.selected = 0
		return m, nil
	case "S":
		return m.startSuggest(c)
	case "A":
		return m.startAnalyze()
	}

	line, ok := m.selectedLine()
	if !ok {
		return m, nil
	}
	switch key {
	case "enter":
		if line.hasChildren {
			if _, err := m.svc.ToggleExpanded(m.ctx, c, line.id); err != nil {
				m.lastLog = describe(err)
			}
		}
		return m, nil
	case " ", "x":
		t, err := m.svc.ToggleTask(m.ctx, c, line.id)
		if err != nil {
			m.lastLog = describe(err)
			return m, nil
		}
		m.lastLog = fmt.Sprintf("%s %q is %s", ui.CheckIcon(t.Completed), t.Text, statusWord(t.Completed))
		return m, nil
	case "s":
		m.target = line.id
		return m.startInput(inputSub, "")
	case "e":
		m.target = line.id
		return m.startInput(inputEdit, line.task.Text)
	case "d":
		m.target = line.id
		return m.startInput(inputDue, line.task.DueDate)
	case "n":
		m.target = line.id
		return m.startInput(inputNotes, line.task.Notes)
	case "p":
		edit := engine.EditFrom(line.task)
		edit.Priority = nextPriority(edit.Priority)
		if _, err := m.svc.UpdateTask(m.ctx, c, line.id, edit); err != nil {
			m.lastLog = describe(err)
		}
		return m, nil
	case "K", "J":
		return m.move(line, key == "J"), nil
	}
	return m, nil
}

// move shifts the selected task one slot within its stored sibling list.
func (m boardModel) move(line taskLine, down bool) boardModel {
	c := m.category()
	parent, list, idx, ok := m.svc.Siblings(c, line.id)
	if !ok {
		return m
	}
	target := idx - 1
	if down {
		target = idx + 1
	}
	if target < 0 || target >= len(list) {
		return m
	}
	if err := m.svc.ReorderTask(m.ctx, c, parent, line.id, target); err != nil {
		m.lastLog = describe(err)
		return m
	}
	for i, l := range m.taskLines() {
		if l.id == line.id {
			m.selected = i
			break
		}
	}
	return m
}

func (m boardModel) cycleFilter(next func(engine.FilterSettings) engine.FilterPatch) (tea.Model, tea.Cmd) {
	c := m.category()
	f, ok := m.svc.Filter(c)
	if !ok {
		m.lastLog = c.Label() + " has no filters."
		return m, nil
	}
	f, err := m.svc.SetFilter(m.ctx, c, next(f))
	if err != nil {
		m.lastLog = describe(err)
		return m, nil
	}
	m.selected = 0
	m.lastLog = filterSummary(f)
	return m, nil
}

func (m boardModel) startSuggest(c engine.Category) (tea.Model, tea.Cmd) {
	if m.assistant == nil {
		m.lastLog = assist.ErrNotConfigured.Error()
		return m, nil
	}
	if c.IsReporting() {
		m.lastLog = "Suggestions are not available for " + c.Label() + "."
		return m, nil
	}
	t, err := m.dispatcher.Begin(assist.KindSuggest, c)
	if err != nil {
		m.lastLog = "Suggestions are already loading…"
		return m, nil
	}
	m.lastLog = "Asking for suggestions…"
	return m, m.suggestCmd(t)
}

func (m boardModel) startAnalyze() (tea.Model, tea.Cmd) {
	if m.assistant == nil {
		m.lastLog = assist.ErrNotConfigured.Error()
		return m, nil
	}
	t, err := m.dispatcher.Begin(assist.KindAnalyze, engine.CategoryCompleted)
	if err != nil {
		m.lastLog = "Analysis is already running…"
		return m, nil
	}
	m.tab = len(engine.Categories) - 1
	m.analysis = ""
	m.lastLog = "Analyzing progress…"
	return m, m.analyzeCmd(t, m.svc.Progress())
}

type taskLine struct {
	id          string
	depth       int
	task        engine.Task
	hasChildren bool
}

// taskLines flattens the projected forest, descending only into expanded tasks.
func (m boardModel) taskLines() []taskLine {
	var out []taskLine
	var walk func(forest []engine.Task, depth int)
	walk = func(forest []engine.Task, depth int) {
		for _, t := range forest {
			out = append(out, taskLine{id: t.ID, depth: depth, task: t, hasChildren: t.HasChildren()})
			if t.IsExpanded {
				walk(t.SubTasks, depth+1)
			}
		}
	}
	walk(m.svc.View(m.category()), 0)
	return out
}

func (m boardModel) selectedLine() (taskLine, bool) {
	lines := m.taskLines()
	if m.selected < 0 || m.selected >= len(lines) {
		return taskLine{}, false
	}
	return lines[m.selected], true
}

func describe(err error) string {
	var dup engine.DuplicateTaskError
	switch {
	case errors.As(err, &dup):
		return fmt.Sprintf("%s %q already exists here.", ui.IconWarn, dup.Text)
	case errors.Is(err, engine.ErrEmptyInput):
		return ui.IconWarn + " Text is required."
	default:
		return ui.IconError + " " + err.Error()
	}
}

func statusWord(done bool) string {
	if done {
		return "done"
	}
	return "open"
}

func nextStatus(s engine.StatusFilter) engine.StatusFilter {
	switch s {
	case engine.StatusAll:
		return engine.StatusIncomplete
	case engine.StatusIncomplete:
		return engine.StatusCompleted
	default:
		return engine.StatusAll
	}
}

func nextPriorityFilter(p engine.PriorityFilter) engine.PriorityFilter {
	order := []engine.PriorityFilter{
		engine.PriorityFilterAll,
		engine.PriorityFilterHigh,
		engine.PriorityFilterMedium,
		engine.PriorityFilterLow,
		engine.PriorityFilterNone,
	}
	for i, o := range order {
		if o == p {
			return order[(i+1)%len(order)]
		}
	}
	return engine.PriorityFilterAll
}

func nextSort(s engine.SortBy) engine.SortBy {
	switch s {
	case engine.SortDefault:
		return engine.SortDueDate
	case engine.SortDueDate:
		return engine.SortPriority
	case engine.SortPriority:
		return engine.SortText
	default:
		return engine.SortDefault
	}
}

func nextPriority(p engine.Priority) engine.Priority {
	switch p {
	case engine.PriorityNone:
		return engine.PriorityLow
	case engine.PriorityLow:
		return engine.PriorityMedium
	case engine.PriorityMedium:
		return engine.PriorityHigh
	default:
		return engine.PriorityNone
	}
}

func filterSummary(f engine.FilterSettings) string {
	s := fmt.Sprintf("status=%s priority=%s sort=%s/%s", f.Status, f.Priority, f.SortBy, f.SortDirection)
	if strings.TrimSpace(f.SearchTerm) != "" {
		s += fmt.Sprintf(" search=%q", f.SearchTerm)
	}
	return s
}
