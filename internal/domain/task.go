package domain

import "strings"

type Task struct {
	ID        string
	Text      string
	Completed bool
}

type TaskInput struct {
	ID   string
	Text string
}

// NewTask builds an open task from trimmed input.
func NewTask(in TaskInput) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Text = strings.TrimSpace(in.Text)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Text == "" {
		return Task{}, ErrInvalidText
	}

	return Task{
		ID:   in.ID,
		Text: in.Text,
	}, nil
}

func (t *Task) ToggleCompleted() {
	t.Completed = !t.Completed
}

// Rename stores text exactly as typed; inline editing must round-trip partial input.
func (t *Task) Rename(text string) {
	t.Text = text
}

// IsBlank reports whether the label has no visible characters.
func (t Task) IsBlank() bool {
	return strings.TrimSpace(t.Text) == ""
}
