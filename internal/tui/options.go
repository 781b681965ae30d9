package tui

import "github.com/atotto/clipboard"

// ConfirmConfig toggles confirmation prompts for destructive actions.
type ConfirmConfig struct {
	DeleteTask   bool
	DeleteColumn bool
	BulkDelete   bool
}

type Option func(*Model)

func DefaultConfirmConfig() ConfirmConfig {
	return ConfirmConfig{
		DeleteTask:   true,
		DeleteColumn: true,
		BulkDelete:   true,
	}
}

func WithConfirmConfig(cfg ConfirmConfig) Option {
	return func(m *Model) {
		m.confirm = cfg
	}
}

// WithClipboard replaces the clipboard writer used by the copy key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.title = title
		}
	}
}

// systemClipboard writes to the OS clipboard.
func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// WithHelpStyle selects the glamour style used for the help overlay.
func WithHelpStyle(style string) Option {
	return func(m *Model) {
		m.helpDoc = newMarkdownRenderer(style)
	}
}

// WithChangeFeed refreshes the board whenever changes fires.
func WithChangeFeed(changes <-chan struct{}) Option {
	return func(m *Model) {
		m.changes = changes
	}
}
