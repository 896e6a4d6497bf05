package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/evanschultz/todo/internal/app"
)

// KeyConfig holds rebindable action keys; blank values keep defaults.
type KeyConfig struct {
	Add    string
	Toggle string
	Edit   string
	Delete string
	Clear  string
	Grab   string
	Copy   string
}

// ClipboardWriter copies text to the system clipboard.
type ClipboardWriter func(string) error

type Option func(*Model)

// defaultClipboardWriter writes through the OS clipboard.
func defaultClipboardWriter(text string) error {
	return clipboard.WriteAll(text)
}

func WithTitle(title string) Option {
	return func(m *Model) {
		if title = strings.TrimSpace(title); title != "" {
			m.title = title
		}
	}
}

func WithPlaceholder(placeholder string) Option {
	return func(m *Model) {
		if placeholder = strings.TrimSpace(placeholder); placeholder != "" {
			m.input.Placeholder = placeholder
		}
	}
}

// WithCharLimit caps input length; zero means unlimited.
func WithCharLimit(limit int) Option {
	return func(m *Model) {
		if limit >= 0 {
			m.input.CharLimit = limit
			m.editInput.CharLimit = limit
		}
	}
}

func WithDeleteMatch(match app.DeleteMatch) Option {
	return func(m *Model) {
		switch match {
		case app.DeleteMatchText, app.DeleteMatchID:
			m.deleteMatch = match
		}
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyKeyConfig(cfg)
	}
}

func WithClipboardWriter(write ClipboardWriter) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
