package app

import "github.com/evanschultz/todo/internal/domain"

// noIndex marks an unset optional index.
const noIndex = -1

// DragState tracks the source and target rows of an in-progress drag gesture.
type DragState struct {
	Source int
	Target int
}

// emptyDrag returns a drag state with both indices unset.
func emptyDrag() DragState {
	return DragState{Source: noIndex, Target: noIndex}
}

// HasSource reports whether a drag gesture has started.
func (d DragState) HasSource() bool {
	return d.Source >= 0
}

// HasTarget reports whether a drop position has been entered.
func (d DragState) HasTarget() bool {
	return d.Target >= 0
}

// Active reports whether a gesture is between start and end.
func (d DragState) Active() bool {
	return d.HasSource()
}

// State is one immutable snapshot of the task list and its UI-mode flags.
type State struct {
	Tasks                    []domain.Task
	ClearConfirmationPending bool
	EditModeActive           bool
	// EditTarget is the row whose inline editor is open, or -1.
	EditTarget int
	Drag       DragState
}

// NewState returns the empty session state.
func NewState() State {
	return State{
		Tasks:      []domain.Task{},
		EditTarget: noIndex,
		Drag:       emptyDrag(),
	}
}

// Clone deep-copies the task slice so callers cannot alias a published snapshot.
func (s State) Clone() State {
	out := s
	out.Tasks = append([]domain.Task(nil), s.Tasks...)
	if out.Tasks == nil {
		out.Tasks = []domain.Task{}
	}
	return out
}

// Len returns the number of tasks.
func (s State) Len() int {
	return len(s.Tasks)
}

// InRange reports whether idx addresses an existing task.
func (s State) InRange(idx int) bool {
	return idx >= 0 && idx < len(s.Tasks)
}

// HasEditTarget reports whether one row currently owns the inline editor.
func (s State) HasEditTarget() bool {
	return s.EditModeActive && s.InRange(s.EditTarget)
}

// CompletedCount returns how many tasks are completed.
func (s State) CompletedCount() int {
	count := 0
	for _, task := range s.Tasks {
		if task.Completed {
			count++
		}
	}
	return count
}
