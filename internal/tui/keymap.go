package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit            key.Binding
	toggleHelp      key.Binding
	focusLeft       key.Binding
	focusRight      key.Binding
	focusUp         key.Binding
	focusDown       key.Binding
	addTask         key.Binding
	addColumn       key.Binding
	editTask        key.Binding
	editColumn      key.Binding
	toggleComplete  key.Binding
	toggleSelect    key.Binding
	selectColumn    key.Binding
	clearSelection  key.Binding
	deleteTask      key.Binding
	deleteColumn    key.Binding
	moveTaskLeft    key.Binding
	moveTaskRight   key.Binding
	moveTaskDown    key.Binding
	moveTaskUp      key.Binding
	moveColumnLeft  key.Binding
	moveColumnRight key.Binding
	search          key.Binding
	cycleFilter     key.Binding
	bulkComplete    key.Binding
	bulkDelete      key.Binding
	bulkMove        key.Binding
	copyTitle       key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		focusLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		focusRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		focusUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		focusDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		addColumn:       key.NewBinding(key.WithKeys("N", "shift+n"), key.WithHelp("N", "new column")),
		editTask:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		editColumn:      key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "edit column")),
		toggleComplete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle complete")),
		toggleSelect:    key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "toggle select")),
		selectColumn:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select column")),
		clearSelection:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		deleteTask:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		deleteColumn:    key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "delete column")),
		moveTaskLeft:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		moveTaskDown:    key.NewBinding(key.WithKeys("J", "shift+j"), key.WithHelp("J", "reorder down")),
		moveTaskUp:      key.NewBinding(key.WithKeys("K", "shift+k"), key.WithHelp("K", "reorder up")),
		moveColumnLeft:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "move column left")),
		moveColumnRight: key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "move column right")),
		search:          key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		cycleFilter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter")),
		bulkComplete:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete selected")),
		bulkDelete:      key.NewBinding(key.WithKeys("X", "shift+x"), key.WithHelp("X", "delete selected")),
		bulkMove:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move selected")),
		copyTitle:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.toggleComplete, k.toggleSelect, k.search, k.cycleFilter, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.focusLeft, k.focusRight, k.focusUp, k.focusDown, k.search, k.cycleFilter, k.copyTitle, k.toggleHelp, k.quit},
		{k.addTask, k.editTask, k.toggleComplete, k.deleteTask, k.moveTaskLeft, k.moveTaskRight, k.moveTaskDown, k.moveTaskUp},
		{k.addColumn, k.editColumn, k.deleteColumn, k.moveColumnLeft, k.moveColumnRight},
		{k.toggleSelect, k.selectColumn, k.clearSelection, k.bulkComplete, k.bulkDelete, k.bulkMove},
	}
}
