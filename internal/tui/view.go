package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"seoboard/internal/assist"
	"seoboard/internal/engine"
	"seoboard/internal/ui"
)

func (m boardModel) View() string {
	w := m.width
	if w <= 0 {
		w = 100
	}
	h := m.height
	if h <= 0 {
		h = 30
	}

	header := ui.Heading(ui.IconBoard, "SEO Board") + "  " + m.tabsLine()
	if warn := m.svc.Warning(); warn != nil {
		header += "\n" + ui.Warn.Render(ui.IconWarn+" "+warn.Error())
	}

	sidebarW := 32
	if w < 90 {
		sidebarW = 26
	}
	mainW := w - sidebarW - 3
	if mainW < 30 {
		mainW = 30
	}

	sidebar := ui.Panel.Width(sidebarW).Render(m.sidebar(sidebarW - 4))

	var main string
	if m.category().IsReporting() {
		main = ui.Panel.Width(mainW).Render(m.reportsPanel(mainW-4) + "\n\n" + m.taskPanel(mainW-4, h-18))
	} else {
		main = ui.Panel.Width(mainW).Render(m.taskPanel(mainW-4, h-8))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)

	footer := ui.Muted.Render(m.lastLog)
	if m.inputKind != inputNone {
		footer = m.input.View() + "  " + ui.Muted.Render("(enter to save, esc to cancel)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
}

func (m boardModel) tabsLine() string {
	parts := make([]string, 0, len(engine.Categories))
	for i, c := range engine.Categories {
		label := fmt.Sprintf("%d %s", i+1, c.Label())
		if i == m.tab {
			parts = append(parts, ui.ActiveTab.Render(label))
		} else {
			parts = append(parts, ui.InactiveTab.Render(label))
		}
	}
	return strings.Join(parts, ui.Muted.Render(" │ "))
}

func (m boardModel) sidebar(width int) string {
	var b strings.Builder
	snap := m.svc.Progress()

	b.WriteString(ui.PanelTitle.Render(ui.IconChart + " Progress"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d/%d %s %d%%\n", snap.Overall.Completed, snap.Overall.Total,
		ui.ProgressBar(snap.Overall.Percentage, max(6, width-14)), snap.Overall.Percentage))
	b.WriteString("\n")

	c := m.category()
	b.WriteString(ui.PanelTitle.Render(ui.IconSearch + " Filters"))
	b.WriteString("\n")
	if f, ok := m.svc.Filter(c); ok {
		scope := "this category"
		if m.svc.Filters().Global {
			scope = "all categories"
		}
		b.WriteString(ui.LabelValue("Scope", scope) + "\n")
		b.WriteString(ui.LabelValue("Status", f.Status) + "\n")
		b.WriteString(ui.LabelValue("Priority", f.Priority) + "\n")
		b.WriteString(ui.LabelValue("Sort", fmt.Sprintf("%s %s", f.SortBy, f.SortDirection)) + "\n")
		if f.SearchTerm != "" {
			b.WriteString(ui.LabelValue("Search", f.SearchTerm) + "\n")
		}
	} else {
		b.WriteString(ui.Muted.Render("none for "+c.Label()) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(ui.PanelTitle.Render("Keys"))
	b.WriteString("\n")
	keys := [][2]string{
		{"tab/1-5", "category"},
		{"j/k", "move"},
		{"x", "toggle done"},
		{"enter", "expand"},
		{"a/s", "add task/subtask"},
		{"e/d/n/p", "text/due/notes/priority"},
		{"J/K", "reorder"},
		{"/ f v", "search/status/priority"},
		{"o O", "sort/direction"},
		{"g R", "global/reset filters"},
		{"S A", "suggest/analyze"},
		{"T L", "save/apply template"},
		{"q", "quit"},
	}
	for _, k := range keys {
		b.WriteString(ui.Key.Render(padRight(k[0], 8)) + ui.Muted.Render(k[1]) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m boardModel) taskPanel(width int, maxLines int) string {
	var b strings.Builder
	c := m.category()
	b.WriteString(ui.PanelTitle.Render(ui.CategoryIcon(string(c)) + " " + c.Label()))
	b.WriteString("\n")

	lines := m.taskLines()
	if len(lines) == 0 {
		if len(m.svc.Forest(c)) > 0 {
			b.WriteString(ui.Muted.Render("No tasks match the current filters."))
		} else {
			b.WriteString(ui.Muted.Render("No tasks yet. Press a to add one."))
		}
		return b.String()
	}

	if maxLines < 3 {
		maxLines = 3
	}
	start := 0
	if m.selected >= maxLines {
		start = m.selected - maxLines + 1
	}
	end := min(len(lines), start+maxLines)

	for i := start; i < end; i++ {
		row := renderLine(lines[i], width)
		if i == m.selected {
			row = ui.SelectedRow.Render(padRight(row, width))
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if line, ok := m.selectedLine(); ok && line.task.Notes != "" {
		b.WriteString("\n")
		b.WriteString(ui.Muted.Render(ui.IconNote + " " + line.task.Notes))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLine(l taskLine, width int) string {
	indent := strings.Repeat("  ", l.depth)
	marker := "  "
	if l.hasChildren {
		marker = "▸ "
		if l.task.IsExpanded {
			marker = "▾ "
		}
	}
	prefix := indent + marker + ui.CheckIcon(l.task.Completed) + " "
	text := l.task.Text
	if budget := width - lipgloss.Width(prefix) - 16; budget > 4 && lipgloss.Width(text) > budget {
		text = truncate(text, budget)
	}
	if l.task.Completed {
		text = ui.Done.Render(text)
	}
	row := prefix + text
	if badge := ui.PriorityBadge(string(l.task.Priority)); badge != "" {
		row += " " + badge
	}
	if l.task.DueDate != "" {
		row += " " + ui.Muted.Render(ui.IconCal+" "+l.task.DueDate)
	}
	return row
}

func (m boardModel) reportsPanel(width int) string {
	var b strings.Builder
	snap := m.svc.Progress()
	b.WriteString(ui.PanelTitle.Render(ui.IconChart + " Progress by category"))
	b.WriteString("\n")
	barW := max(10, width-36)
	for _, cp := range snap.Categories {
		b.WriteString(fmt.Sprintf("%s %s %3d%% (%d/%d)\n",
			padRight(cp.Label, 14), ui.ProgressBar(cp.Percentage, barW), cp.Percentage, cp.Completed, cp.Total))
	}
	b.WriteString("\n")
	b.WriteString(ui.PanelTitle.Render(ui.IconSparkle + " Analysis"))
	b.WriteString("\n")
	switch {
	case m.dispatcher.InFlight(assist.KindAnalyze):
		b.WriteString(ui.Muted.Render("Analyzing…"))
	case m.analysis != "":
		b.WriteString(m.analysis)
	default:
		b.WriteString(ui.Muted.Render("Press A for an assistant analysis."))
	}
	return b.String()
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, width int) string {
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
