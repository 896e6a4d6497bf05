package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	focusInput  key.Binding
	switchFocus key.Binding
	submit      key.Binding
	cancel      key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	toggle      key.Binding
	editTask    key.Binding
	deleteTask  key.Binding
	clearAll    key.Binding
	grab        key.Binding
	copyTask    key.Binding
	confirmYes  key.Binding
	confirmNo   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		focusInput:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		switchFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "input/list")),
		submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		toggle:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		editTask:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		clearAll:    key.NewBinding(key.WithKeys("C", "shift+c"), key.WithHelp("C", "clear all")),
		grab:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab/drop task")),
		copyTask:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		confirmYes:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		confirmNo:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep tasks")),
	}
}

// applyKeyConfig overrides rebindable actions from runtime config.
func (k *keyMap) applyKeyConfig(cfg KeyConfig) {
	configureBinding(&k.focusInput, cfg.Add, "a", "add task")
	configureBinding(&k.toggle, cfg.Toggle, "x", "toggle done")
	configureBinding(&k.editTask, cfg.Edit, "e", "edit task")
	configureBinding(&k.deleteTask, cfg.Delete, "d", "delete task")
	configureBinding(&k.clearAll, cfg.Clear, "C", "clear all")
	configureBinding(&k.grab, cfg.Grab, "m", "grab/drop task")
	configureBinding(&k.copyTask, cfg.Copy, "y", "copy text")
}

// configureBinding replaces keys and help text on one binding.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys maps one configured key string to matcher keys and help text.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	value := strings.TrimSpace(raw)
	if raw == " " {
		value = "space"
	}
	if value == "" {
		value = fallback
	}
	if strings.EqualFold(value, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + strings.ToLower(value)}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.focusInput, k.toggle, k.editTask, k.deleteTask, k.grab, k.clearAll, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.focusInput, k.switchFocus, k.submit, k.cancel, k.toggleHelp, k.quit},
		{k.moveUp, k.moveDown, k.grab},
		{k.toggle, k.editTask, k.deleteTask, k.clearAll, k.copyTask},
	}
}

// bindingRows lists every user-facing binding for the key reference.
func (k keyMap) bindingRows() []key.Binding {
	return []key.Binding{
		k.focusInput, k.switchFocus, k.submit, k.cancel,
		k.moveUp, k.moveDown, k.toggle, k.editTask, k.deleteTask,
		k.grab, k.clearAll, k.confirmYes, k.confirmNo, k.copyTask,
		k.toggleHelp, k.quit,
	}
}
