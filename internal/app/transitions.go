package app

import (
	"slices"

	"github.com/evanschultz/todo/internal/domain"
)

// Transition functions never mutate their input; each returns a fresh snapshot.

// appendTask adds task at the end of the list.
func appendTask(s State, task domain.Task) State {
	next := s.Clone()
	next.Tasks = append(next.Tasks, task)
	return next
}

// toggleComplete flips completion on the task at idx.
func toggleComplete(s State, idx int) State {
	if !s.InRange(idx) {
		return s
	}
	next := s.Clone()
	next.Tasks[idx].ToggleCompleted()
	return next
}

// deleteByText removes every task whose text equals text exactly.
func deleteByText(s State, text string) State {
	next := s.Clone()
	next.Tasks = slices.DeleteFunc(next.Tasks, func(task domain.Task) bool {
		return task.Text == text
	})
	return retargetEdit(s, next)
}

// deleteByID removes the task carrying id.
func deleteByID(s State, id string) State {
	if id == "" {
		return s
	}
	next := s.Clone()
	next.Tasks = slices.DeleteFunc(next.Tasks, func(task domain.Task) bool {
		return task.ID == id
	})
	return retargetEdit(s, next)
}

// requestClear arms the two-step clear confirmation.
func requestClear(s State) State {
	next := s.Clone()
	next.ClearConfirmationPending = true
	return next
}

// confirmClear resolves a pending clear request.
func confirmClear(s State, accept bool) State {
	next := s.Clone()
	next.ClearConfirmationPending = false
	if accept {
		next.Tasks = []domain.Task{}
		next.EditModeActive = false
		next.EditTarget = noIndex
		next.Drag = emptyDrag()
	}
	return next
}

// beginEdit opens the inline editor on idx.
func beginEdit(s State, idx int) State {
	if !s.InRange(idx) {
		return s
	}
	next := s.Clone()
	next.EditModeActive = true
	next.EditTarget = idx
	return next
}

// applyEdit replaces the text at idx and keeps its completion flag.
func applyEdit(s State, idx int, text string) State {
	if !s.InRange(idx) {
		return s
	}
	next := s.Clone()
	next.Tasks[idx].Rename(text)
	return next
}

// endEdit closes the inline editor.
func endEdit(s State) State {
	next := s.Clone()
	next.EditModeActive = false
	next.EditTarget = noIndex
	return next
}

// startDrag records the gesture source.
func startDrag(s State, idx int) State {
	next := s.Clone()
	next.Drag.Source = idx
	return next
}

// enterDrag records the latest drop candidate.
func enterDrag(s State, idx int) State {
	next := s.Clone()
	next.Drag.Target = idx
	return next
}

// endDrag moves the source row to the target position and resets the gesture.
func endDrag(s State) State {
	next := s.Clone()
	next.Drag = emptyDrag()
	src, dst := s.Drag.Source, s.Drag.Target
	if !s.Drag.HasSource() || !s.Drag.HasTarget() {
		return next
	}
	if !s.InRange(src) || !s.InRange(dst) {
		return next
	}
	next.Tasks = moveTask(next.Tasks, src, dst)
	return retargetEdit(s, next)
}

// cancelDrag drops the gesture without reordering.
func cancelDrag(s State) State {
	next := s.Clone()
	next.Drag = emptyDrag()
	return next
}

// moveTask removes tasks[from] and reinserts it at to in the shortened slice.
func moveTask(tasks []domain.Task, from, to int) []domain.Task {
	moved := tasks[from]
	tasks = slices.Delete(tasks, from, from+1)
	return slices.Insert(tasks, to, moved)
}

// retargetEdit keeps the open editor on the same task after rows were removed or moved.
func retargetEdit(prev, next State) State {
	if !prev.HasEditTarget() {
		return next
	}
	edited := prev.Tasks[prev.EditTarget]
	for idx, task := range next.Tasks {
		if task.ID == edited.ID && task.Text == edited.Text {
			next.EditTarget = idx
			return next
		}
	}
	next.EditModeActive = false
	next.EditTarget = noIndex
	return next
}
