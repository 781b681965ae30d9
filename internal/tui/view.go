package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/app"
)

// helpMarkdown lists board workflows shown below the key reference.
const helpMarkdown = `
## Workflows

- **Tasks**: ` + "`n`" + ` adds to the focused column, ` + "`e`" + ` renames, ` + "`x`" + ` toggles done.
- **Ordering**: ` + "`J`/`K`" + ` reorder inside a column, ` + "`[`/`]`" + ` move across columns.
- **Columns**: ` + "`N`" + ` adds, ` + "`E`" + ` renames, ` + "`<`/`>`" + ` reorder, ` + "`D`" + ` deletes with its tasks.
- **Selection**: ` + "`space`" + ` toggles, ` + "`a`" + ` selects the column, then ` + "`c`" + `, ` + "`m`" + ` or ` + "`X`" + ` act on all of it.
- **Search**: ` + "`/`" + ` filters as you type; ` + "`enter`" + ` jumps to the highlighted suggestion.
- **Filter**: ` + "`f`" + ` cycles all, completed and incomplete.
`

// View renders the board.
func (m Model) View() tea.View {
	if !m.loaded {
		return newAltView("loading...")
	}

	accent, muted, dim := m.palette()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render(m.title)
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	if m.view.SearchTerm != "" {
		header += statusStyle.Render("  search: " + m.view.SearchTerm)
	}
	header += statusStyle.Render("  filter: " + string(m.view.Filter))
	if count := m.view.Selection.Count; count > 0 {
		header += statusStyle.Render(fmt.Sprintf("  selected: %d", count))
	}

	sections := []string{header, "", m.renderBoard(accent, muted, dim)}
	if bar := m.renderBulkBar(accent, muted); bar != "" {
		sections = append(sections, bar)
	}
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine

	var overlay string
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, m.width-8)
	} else {
		overlay = m.renderModeOverlay(accent, muted, dim, m.width-8)
	}
	if overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, max(1, m.width), max(1, height))
	}
	return newAltView(full)
}

// palette returns the accent, muted and dim colors.
func (m Model) palette() (color.Color, color.Color, color.Color) {
	return lipgloss.Color("62"), lipgloss.Color("241"), lipgloss.Color("239")
}

// newAltView wraps content in an alt-screen view.
func newAltView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderBoard renders the columns side by side.
func (m Model) renderBoard(accent, muted, dim color.Color) string {
	if len(m.view.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("No columns yet. Press N to add one.")
	}

	colWidth := m.columnWidthFor(m.width)
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	focusColStyle := baseColStyle.BorderForeground(accent)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	focusTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237")).Bold(true)
	hitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	doneStyle := lipgloss.NewStyle().Foreground(muted).Strikethrough(true)

	rows := max(1, m.columnRows())
	views := make([]string, 0, len(m.view.Columns))
	for colIdx, col := range m.view.Columns {
		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d/%d)", col.Title, len(col.Visible), col.Total)), ""}
		if len(col.Visible) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		focusIdx := -1
		if colIdx == m.focusColumn {
			focusIdx = m.focusTask
		}
		start, end := windowBounds(len(col.Visible), focusIdx, rows)
		if start > 0 {
			lines = append(lines, emptyStyle.Render(fmt.Sprintf("↑ %d more", start)))
		}
		for taskIdx := start; taskIdx < end; taskIdx++ {
			task := col.Visible[taskIdx]
			line := cardLine(task, colWidth-2)
			switch {
			case taskIdx == focusIdx:
				line = focusTaskStyle.Render("> " + line)
			case task.Selected:
				line = selectedStyle.Render("  " + line)
			case task.Highlighted:
				line = hitStyle.Render("  " + line)
			case task.Completed:
				line = doneStyle.Render("  " + line)
			default:
				line = "  " + line
			}
			lines = append(lines, line)
		}
		if end < len(col.Visible) {
			lines = append(lines, emptyStyle.Render(fmt.Sprintf("↓ %d more", len(col.Visible)-end)))
		}

		style := baseColStyle
		if colIdx == m.focusColumn {
			style = focusColStyle
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// cardLine renders one task as a checkbox row.
func cardLine(task app.TaskView, width int) string {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	suffix := ""
	if task.Selected {
		suffix = " *"
	}
	titleWidth := max(1, width-len(box)-len(suffix)-1)
	return box + " " + truncate(task.Title, titleWidth) + suffix
}

// renderBulkBar renders the selection action bar.
func (m Model) renderBulkBar(accent, muted color.Color) string {
	sel := m.view.Selection
	if sel.Count == 0 {
		return ""
	}
	verb := "complete"
	if sel.AllCompleted {
		verb = "uncomplete"
	}
	count := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(fmt.Sprintf("%d selected", sel.Count))
	actions := lipgloss.NewStyle().Foreground(muted).Render(
		fmt.Sprintf("c %s • m move • X delete • esc clear", verb),
	)
	return count + "  " + actions
}

// renderHelpOverlay renders the full key reference and workflow notes.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(m.title + " help"),
		"",
		hb.View(m.keys),
	}
	if m.helpDoc != nil {
		if doc := m.helpDoc.render(helpMarkdown, width-4); doc != "" {
			lines = append(lines, doc)
		}
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderModeOverlay renders the active modal.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	if m.mode == modeNone {
		return ""
	}
	width := clamp(maxWidth, 40, 72)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	lines := []string{titleStyle.Render(m.modeLabel()), ""}

	switch m.mode {
	case modeAddTask, modeEditTask, modeAddColumn, modeEditColumn:
		lines = append(lines, m.input.View(), "", hintStyle.Render("enter save • esc cancel"))
	case modeSearch:
		lines = append(lines, m.input.View(), "")
		if len(m.view.Suggestions) == 0 && m.input.Value() != "" {
			lines = append(lines, hintStyle.Render("no matches"))
		}
		for idx, s := range m.view.Suggestions {
			prefix := "  "
			if idx == m.suggestionIndex {
				prefix = "> "
			}
			lines = append(lines, prefix+truncate(s.Title, width-6))
		}
		lines = append(lines, "", hintStyle.Render("↑/↓ choose • enter jump • esc close"))
	case modeConfirm:
		confirm := "[confirm]"
		cancel := "[cancel]"
		active := lipgloss.NewStyle().Bold(true).Foreground(accent)
		if m.confirmChoice == 0 {
			confirm = active.Render(confirm)
		} else {
			cancel = active.Render(cancel)
		}
		lines = append(lines,
			m.pendingConfirm.label,
			"",
			confirm+" "+cancel,
			"",
			hintStyle.Render("enter apply • esc cancel • h/l switch • y confirm • n cancel"),
		)
	case modeMovePicker:
		for idx, col := range m.view.Columns {
			prefix := "  "
			if idx == m.pickerIndex {
				prefix = "> "
			}
			lines = append(lines, prefix+truncate(col.Title, width-6))
		}
		lines = append(lines, "", hintStyle.Render("j/k choose • enter move • esc cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// modeLabel returns a short label for the active mode.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeAddTask:
		return "new task"
	case modeEditTask:
		return "edit task"
	case modeAddColumn:
		return "new column"
	case modeEditColumn:
		return "edit column"
	case modeSearch:
		return "search"
	case modeConfirm:
		return "confirm"
	case modeMovePicker:
		return "move selection"
	default:
		return "board"
	}
}

// columnWidthFor returns the column width for the given board width.
func (m Model) columnWidthFor(boardWidth int) int {
	if len(m.view.Columns) == 0 {
		return 24
	}
	w := 28
	if boardWidth > 0 {
		// border (2) + padding (4) + margin (1)
		const colOverhead = 7
		if candidate := (boardWidth - len(m.view.Columns)*colOverhead) / len(m.view.Columns); candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, 24, 42)
}

// columnRows returns how many cards fit in one column.
func (m Model) columnRows() int {
	if m.height <= 0 {
		return 50
	}
	// header, spacer, column chrome, bulk bar, status and help line
	return m.height - 14
}

// windowBounds returns the [start, end) window of size rows that keeps focus visible.
func windowBounds(total, focus, rows int) (int, int) {
	if total <= rows {
		return 0, total
	}
	if focus < 0 {
		return 0, rows
	}
	start := clamp(focus-rows/2, 0, total-rows)
	return start, start + rows
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		return overlay + "\n\n" + base
	}
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max == 1 {
		return string(rs[:1])
	}
	return string(rs[:max-1]) + "…"
}
