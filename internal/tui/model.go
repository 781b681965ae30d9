package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// Service is the board surface driven by the TUI. *app.Store satisfies it.
type Service interface {
	View() app.BoardView
	Snapshot() domain.Board
	AddTask(ctx context.Context, columnID, title string) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ToggleTaskComplete(ctx context.Context, taskID string) error
	UpdateTaskTitle(ctx context.Context, taskID, title string) error
	MoveTask(ctx context.Context, taskID, sourceColumnID, destColumnID string, destIndex int) error
	AddColumn(ctx context.Context, title string) (domain.Column, error)
	DeleteColumn(ctx context.Context, columnID string) error
	MoveColumn(ctx context.Context, sourceIndex, destIndex int) error
	UpdateColumnTitle(ctx context.Context, columnID, title string) error
	SetSearchTerm(ctx context.Context, term string) error
	SetFilter(ctx context.Context, filter domain.Filter) error
	ToggleTaskSelection(ctx context.Context, taskID string) error
	SelectAllTasksInColumn(ctx context.Context, columnID string) error
	ClearSelectedTasks(ctx context.Context) error
	MoveSelectedTasks(ctx context.Context, destColumnID string) error
	DeleteSelectedTasks(ctx context.Context) error
	ToggleSelectedComplete(ctx context.Context) error
}

// inputMode represents the active modal.
type inputMode int

// modeNone and related constants enumerate modal states.
const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeAddColumn
	modeEditColumn
	modeSearch
	modeConfirm
	modeMovePicker
)

// confirmKind identifies a destructive action waiting for confirmation.
type confirmKind int

const (
	confirmDeleteTask confirmKind = iota
	confirmDeleteColumn
	confirmBulkDelete
)

// confirmAction describes a pending confirmation.
type confirmAction struct {
	kind     confirmKind
	targetID string
	label    string
}

// Model is the bubbletea model for one board.
type Model struct {
	svc      Service
	keys     keyMap
	help     help.Model
	helpDoc  *markdownRenderer
	confirm  ConfirmConfig
	copyText func(string) error
	title    string
	changes  <-chan struct{}

	view   app.BoardView
	loaded bool
	ready  bool
	width  int
	height int

	focusColumn int
	focusTask   int

	mode            inputMode
	input           textinput.Model
	editTargetID    string
	pendingConfirm  confirmAction
	confirmChoice   int
	pickerIndex     int
	suggestionIndex int

	status string
}

// loadedMsg carries the initial projection.
type loadedMsg struct {
	view app.BoardView
}

// boardChangedMsg reports a transition applied outside the TUI.
type boardChangedMsg struct{}

// actionMsg reports the result of one store transition.
type actionMsg struct {
	err           error
	status        string
	focusTaskID   string
	focusColumnID string
}

// NewModel constructs the board model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:      svc,
		keys:     newKeyMap(),
		help:     h,
		helpDoc:  newMarkdownRenderer("dark"),
		confirm:  DefaultConfirmConfig(),
		copyText: systemClipboard,
		title:    "tavla",
		status:   "loading...",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the first projection and starts listening for external changes.
func (m Model) Init() tea.Cmd {
	if m.changes == nil {
		return m.loadView
	}
	return tea.Batch(m.loadView, m.waitForChange())
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loaded = true
		m.view = msg.view
		m.clampFocus()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		m.loaded = true
		m.view = m.svc.View()
		if msg.focusColumnID != "" {
			m.focusColumnByID(msg.focusColumnID)
		}
		if msg.focusTaskID != "" {
			m.focusTaskByID(msg.focusTaskID)
		}
		m.clampFocus()
		if msg.err != nil {
			m.status = errorStatus(msg.err)
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case boardChangedMsg:
		m.loaded = true
		m.view = m.svc.View()
		m.clampFocus()
		return m, m.waitForChange()

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// loadView reads the current projection.
func (m Model) loadView() tea.Msg {
	return loadedMsg{view: m.svc.View()}
}

// waitForChange blocks until the change feed fires. A closed feed ends the loop.
func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return boardChangedMsg{}
	}
}

// errorStatus formats a transition error for the status line.
func errorStatus(err error) string {
	if errors.Is(err, app.ErrPersist) {
		return "save failed: " + err.Error()
	}
	return "error: " + err.Error()
}

// action runs fn against the service and reports msg with its error.
func (m Model) action(msg actionMsg, fn func(context.Context, Service) error) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		msg.err = fn(context.Background(), svc)
		return msg
	}
}

// handleNormalModeKey handles keys while no modal is open.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.clearSelection):
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if m.view.Selection.Count > 0 {
			return m, m.action(actionMsg{status: "selection cleared"}, func(ctx context.Context, svc Service) error {
				return svc.ClearSelectedTasks(ctx)
			})
		}
		if m.view.SearchTerm != "" {
			return m, m.setSearchCmd("", "search cleared")
		}
		return m, nil
	case key.Matches(msg, m.keys.focusLeft):
		m.shiftColumnFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.focusRight):
		m.shiftColumnFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.focusUp):
		m.focusTask--
		m.clampFocus()
		return m, nil
	case key.Matches(msg, m.keys.focusDown):
		m.focusTask++
		m.clampFocus()
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		col, ok := m.focusedColumn()
		if !ok {
			m.status = "add a column first"
			return m, nil
		}
		return m, m.startInput(modeAddTask, col.ID, "new task: ", "task title", "")
	case key.Matches(msg, m.keys.addColumn):
		return m, m.startInput(modeAddColumn, "", "new column: ", "column title", "")
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.focusedTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startInput(modeEditTask, task.ID, "title: ", "task title", task.Title)
	case key.Matches(msg, m.keys.editColumn):
		col, ok := m.focusedColumn()
		if !ok {
			m.status = "no column selected"
			return m, nil
		}
		return m, m.startInput(modeEditColumn, col.ID, "column: ", "column title", col.Title)
	case key.Matches(msg, m.keys.toggleComplete):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		status := "task completed"
		if task.Completed {
			status = "task reopened"
		}
		return m, m.action(actionMsg{status: status, focusTaskID: task.ID}, func(ctx context.Context, svc Service) error {
			return svc.ToggleTaskComplete(ctx, task.ID)
		})
	case key.Matches(msg, m.keys.toggleSelect):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		return m, m.action(actionMsg{focusTaskID: task.ID}, func(ctx context.Context, svc Service) error {
			return svc.ToggleTaskSelection(ctx, task.ID)
		})
	case key.Matches(msg, m.keys.selectColumn):
		col, ok := m.focusedColumn()
		if !ok {
			return m, nil
		}
		return m, m.action(actionMsg{focusColumnID: col.ID}, func(ctx context.Context, svc Service) error {
			return svc.SelectAllTasksInColumn(ctx, col.ID)
		})
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		return m.requestConfirm(confirmAction{kind: confirmDeleteTask, targetID: task.ID, label: fmt.Sprintf("delete task %q?", task.Title)}, m.confirm.DeleteTask)
	case key.Matches(msg, m.keys.deleteColumn):
		col, ok := m.focusedColumn()
		if !ok {
			return m, nil
		}
		label := fmt.Sprintf("delete column %q and its %d tasks?", col.Title, col.Total)
		return m.requestConfirm(confirmAction{kind: confirmDeleteColumn, targetID: col.ID, label: label}, m.confirm.DeleteColumn)
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m.shiftTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m.shiftTask(1)
	case key.Matches(msg, m.keys.moveTaskDown):
		return m.reorderTask(1)
	case key.Matches(msg, m.keys.moveTaskUp):
		return m.reorderTask(-1)
	case key.Matches(msg, m.keys.moveColumnLeft):
		return m.shiftColumn(-1)
	case key.Matches(msg, m.keys.moveColumnRight):
		return m.shiftColumn(1)
	case key.Matches(msg, m.keys.search):
		return m, m.startSearchMode()
	case key.Matches(msg, m.keys.cycleFilter):
		next := m.view.Filter.Next()
		return m, m.action(actionMsg{status: "filter: " + string(next)}, func(ctx context.Context, svc Service) error {
			return svc.SetFilter(ctx, next)
		})
	case key.Matches(msg, m.keys.bulkComplete):
		if m.view.Selection.Count == 0 {
			m.status = "no tasks selected"
			return m, nil
		}
		status := fmt.Sprintf("completed %d tasks", m.view.Selection.Count)
		if m.view.Selection.AllCompleted {
			status = fmt.Sprintf("reopened %d tasks", m.view.Selection.Count)
		}
		return m, m.action(actionMsg{status: status}, func(ctx context.Context, svc Service) error {
			return svc.ToggleSelectedComplete(ctx)
		})
	case key.Matches(msg, m.keys.bulkDelete):
		if m.view.Selection.Count == 0 {
			m.status = "no tasks selected"
			return m, nil
		}
		label := fmt.Sprintf("delete %d selected tasks?", m.view.Selection.Count)
		return m.requestConfirm(confirmAction{kind: confirmBulkDelete, label: label}, m.confirm.BulkDelete)
	case key.Matches(msg, m.keys.bulkMove):
		if m.view.Selection.Count == 0 {
			m.status = "no tasks selected"
			return m, nil
		}
		m.mode = modeMovePicker
		m.pickerIndex = clamp(m.focusColumn, 0, len(m.view.Columns)-1)
		m.status = "move selection"
		return m, nil
	case key.Matches(msg, m.keys.copyTitle):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		if err := m.copyText(task.Title); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied " + truncate(task.Title, 32)
		return m, nil
	default:
		return m, nil
	}
}

// handleInputModeKey routes keys while a modal is open.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeMovePicker:
		return m.handleMovePickerKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "esc":
		m.closeInput()
		m.status = "cancelled"
		return m, nil
	case "enter":
		return m.submitInputMode()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInputMode applies the open title form. Blank titles keep the form open.
func (m Model) submitInputMode() (tea.Model, tea.Cmd) {
	title, err := domain.NormalizeTitle(m.input.Value())
	if err != nil {
		m.status = "title is required"
		return m, nil
	}
	mode, targetID := m.mode, m.editTargetID
	m.closeInput()
	if m.titleUnchanged(mode, targetID, title) {
		m.status = "unchanged"
		return m, nil
	}

	switch mode {
	case modeAddTask:
		svc := m.svc
		return m, func() tea.Msg {
			task, err := svc.AddTask(context.Background(), targetID, title)
			return actionMsg{err: err, status: "task added", focusTaskID: task.ID}
		}
	case modeEditTask:
		return m, m.action(actionMsg{status: "task renamed", focusTaskID: targetID}, func(ctx context.Context, svc Service) error {
			return svc.UpdateTaskTitle(ctx, targetID, title)
		})
	case modeAddColumn:
		svc := m.svc
		return m, func() tea.Msg {
			col, err := svc.AddColumn(context.Background(), title)
			return actionMsg{err: err, status: "column added", focusColumnID: col.ID}
		}
	case modeEditColumn:
		return m, m.action(actionMsg{status: "column renamed", focusColumnID: targetID}, func(ctx context.Context, svc Service) error {
			return svc.UpdateColumnTitle(ctx, targetID, title)
		})
	default:
		return m, nil
	}
}

// titleUnchanged reports whether an edit form would write back the current title.
func (m Model) titleUnchanged(mode inputMode, targetID, title string) bool {
	board := m.svc.Snapshot()
	switch mode {
	case modeEditTask:
		task, ok := board.Task(targetID)
		return ok && task.Title == title
	case modeEditColumn:
		col, ok := board.Column(targetID)
		return ok && col.Title == title
	default:
		return false
	}
}

// handleSearchKey updates the live search term and suggestion cursor.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		m.status = "ready"
		if m.view.SearchTerm != "" {
			m.status = "search: " + m.view.SearchTerm
		}
		return m, nil
	case "up", "ctrl+p":
		m.suggestionIndex = clamp(m.suggestionIndex-1, 0, len(m.view.Suggestions)-1)
		return m, nil
	case "down", "ctrl+n":
		m.suggestionIndex = clamp(m.suggestionIndex+1, 0, len(m.view.Suggestions)-1)
		return m, nil
	case "enter":
		m.closeInput()
		if len(m.view.Suggestions) == 0 {
			m.status = "no matches"
			return m, nil
		}
		pick := m.view.Suggestions[clamp(m.suggestionIndex, 0, len(m.view.Suggestions)-1)]
		if !m.focusTaskByID(pick.ID) {
			m.status = "match hidden by filter"
			return m, nil
		}
		m.status = "jumped to " + truncate(pick.Title, 32)
		return m, nil
	}

	before := m.input.Value()
	// Cursor blink commands are dropped so the search command is the only follow-up.
	m.input, _ = m.input.Update(msg)
	if m.input.Value() == before {
		return m, nil
	}
	m.suggestionIndex = 0
	return m, m.setSearchCmd(m.input.Value(), "search")
}

// setSearchCmd stores the search term.
func (m Model) setSearchCmd(term, status string) tea.Cmd {
	return m.action(actionMsg{status: status}, func(ctx context.Context, svc Service) error {
		return svc.SetSearchTerm(ctx, term)
	})
}

// handleConfirmKey handles the confirm dialog.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.confirmChoice = 0
		return m, nil
	case "l", "right":
		m.confirmChoice = 1
		return m, nil
	case "tab":
		m.confirmChoice = 1 - m.confirmChoice
		return m, nil
	case "y":
		return m.applyConfirmedAction(m.pendingConfirm)
	case "n", "esc":
		m.mode = modeNone
		m.pendingConfirm = confirmAction{}
		m.status = "cancelled"
		return m, nil
	case "enter":
		if m.confirmChoice != 0 {
			m.mode = modeNone
			m.pendingConfirm = confirmAction{}
			m.status = "cancelled"
			return m, nil
		}
		return m.applyConfirmedAction(m.pendingConfirm)
	default:
		return m, nil
	}
}

// handleMovePickerKey chooses the destination column for the selection.
func (m Model) handleMovePickerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.status = "cancelled"
		return m, nil
	case "j", "down":
		m.pickerIndex = clamp(m.pickerIndex+1, 0, len(m.view.Columns)-1)
		return m, nil
	case "k", "up":
		m.pickerIndex = clamp(m.pickerIndex-1, 0, len(m.view.Columns)-1)
		return m, nil
	case "enter":
		m.mode = modeNone
		if len(m.view.Columns) == 0 {
			return m, nil
		}
		dest := m.view.Columns[clamp(m.pickerIndex, 0, len(m.view.Columns)-1)]
		status := fmt.Sprintf("moved %d tasks to %s", m.view.Selection.Count, dest.Title)
		return m, m.action(actionMsg{status: status, focusColumnID: dest.ID}, func(ctx context.Context, svc Service) error {
			return svc.MoveSelectedTasks(ctx, dest.ID)
		})
	default:
		return m, nil
	}
}

// requestConfirm opens the confirm dialog or applies the action directly.
func (m Model) requestConfirm(action confirmAction, needsConfirm bool) (tea.Model, tea.Cmd) {
	if !needsConfirm {
		return m.applyConfirmedAction(action)
	}
	m.mode = modeConfirm
	m.pendingConfirm = action
	m.confirmChoice = 0
	m.status = "confirm"
	return m, nil
}

// applyConfirmedAction runs a destructive action.
func (m Model) applyConfirmedAction(action confirmAction) (tea.Model, tea.Cmd) {
	m.mode = modeNone
	m.pendingConfirm = confirmAction{}
	switch action.kind {
	case confirmDeleteTask:
		return m, m.action(actionMsg{status: "task deleted"}, func(ctx context.Context, svc Service) error {
			return svc.DeleteTask(ctx, action.targetID)
		})
	case confirmDeleteColumn:
		return m, m.action(actionMsg{status: "column deleted"}, func(ctx context.Context, svc Service) error {
			return svc.DeleteColumn(ctx, action.targetID)
		})
	case confirmBulkDelete:
		status := fmt.Sprintf("deleted %d tasks", m.view.Selection.Count)
		return m, m.action(actionMsg{status: status}, func(ctx context.Context, svc Service) error {
			return svc.DeleteSelectedTasks(ctx)
		})
	default:
		return m, nil
	}
}

// shiftTask moves the focused task to the adjacent column, appending it there.
func (m Model) shiftTask(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.focusedColumn()
	task, hasTask := m.focusedTask()
	if !ok || !hasTask {
		return m, nil
	}
	destIdx := m.focusColumn + delta
	if destIdx < 0 || destIdx >= len(m.view.Columns) {
		return m, nil
	}
	dest := m.view.Columns[destIdx]
	return m, m.action(actionMsg{status: "moved to " + dest.Title, focusTaskID: task.ID}, func(ctx context.Context, svc Service) error {
		return svc.MoveTask(ctx, task.ID, col.ID, dest.ID, -1)
	})
}

// reorderTask swaps the focused task past its visible neighbour. The target
// index is the neighbour's position in the full column so hidden tasks keep
// their relative order.
func (m Model) reorderTask(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.focusedColumn()
	task, hasTask := m.focusedTask()
	if !ok || !hasTask {
		return m, nil
	}
	neighbor := m.focusTask + delta
	if neighbor < 0 || neighbor >= len(col.Visible) {
		return m, nil
	}
	full, ok := m.svc.Snapshot().Column(col.ID)
	if !ok {
		return m, nil
	}
	destIndex := full.IndexOf(col.Visible[neighbor].ID)
	if destIndex < 0 {
		return m, nil
	}
	return m, m.action(actionMsg{status: "task reordered", focusTaskID: task.ID}, func(ctx context.Context, svc Service) error {
		return svc.MoveTask(ctx, task.ID, col.ID, col.ID, destIndex)
	})
}

// shiftColumn moves the focused column one slot.
func (m Model) shiftColumn(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.focusedColumn()
	if !ok {
		return m, nil
	}
	src := m.focusColumn
	dest := src + delta
	if dest < 0 || dest >= len(m.view.Columns) {
		return m, nil
	}
	return m, m.action(actionMsg{status: "column moved", focusColumnID: col.ID}, func(ctx context.Context, svc Service) error {
		return svc.MoveColumn(ctx, src, dest)
	})
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
		in.CursorEnd()
	}
	return in
}

// startInput opens a title form.
func (m *Model) startInput(mode inputMode, targetID, prompt, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.editTargetID = targetID
	m.input = newModalInput(prompt, placeholder, value, 200)
	m.status = m.modeLabel()
	return m.input.Focus()
}

// startSearchMode opens the search prompt seeded with the current term.
func (m *Model) startSearchMode() tea.Cmd {
	m.mode = modeSearch
	m.suggestionIndex = 0
	m.input = newModalInput("/ ", "search titles", m.view.SearchTerm, 120)
	m.status = "search"
	return m.input.Focus()
}

// closeInput closes the active form.
func (m *Model) closeInput() {
	m.mode = modeNone
	m.editTargetID = ""
	m.input.Blur()
}

// focusedColumn returns the focused column view.
func (m Model) focusedColumn() (app.ColumnView, bool) {
	if m.focusColumn < 0 || m.focusColumn >= len(m.view.Columns) {
		return app.ColumnView{}, false
	}
	return m.view.Columns[m.focusColumn], true
}

// focusedTask returns the focused visible task.
func (m Model) focusedTask() (app.TaskView, bool) {
	col, ok := m.focusedColumn()
	if !ok || m.focusTask < 0 || m.focusTask >= len(col.Visible) {
		return app.TaskView{}, false
	}
	return col.Visible[m.focusTask], true
}

// shiftColumnFocus moves focus between columns.
func (m *Model) shiftColumnFocus(delta int) {
	m.focusColumn += delta
	m.clampFocus()
}

// focusColumnByID focuses the column with id.
func (m *Model) focusColumnByID(id string) {
	for idx, col := range m.view.Columns {
		if col.ID == id {
			m.focusColumn = idx
			return
		}
	}
}

// focusTaskByID focuses a visible task and reports whether it was found.
func (m *Model) focusTaskByID(id string) bool {
	for colIdx, col := range m.view.Columns {
		for taskIdx, task := range col.Visible {
			if task.ID == id {
				m.focusColumn = colIdx
				m.focusTask = taskIdx
				return true
			}
		}
	}
	return false
}

// clampFocus keeps focus inside the current projection.
func (m *Model) clampFocus() {
	m.focusColumn = clamp(m.focusColumn, 0, len(m.view.Columns)-1)
	col, ok := m.focusedColumn()
	if !ok {
		m.focusTask = 0
		return
	}
	m.focusTask = clamp(m.focusTask, 0, len(col.Visible)-1)
}

// clamp clamps v into [minV, maxV], preferring minV when the range is empty.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
