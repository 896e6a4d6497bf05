package app

import (
	"fmt"
	"strings"

	"github.com/evanschultz/todo/internal/domain"
)

// DeleteMatch selects how the delete command identifies tasks.
type DeleteMatch string

// DeleteMatchText and related constants define package defaults.
const (
	DeleteMatchText DeleteMatch = "text"
	DeleteMatchID   DeleteMatch = "id"
)

// ParseDeleteMatch normalizes a configured delete matching mode.
func ParseDeleteMatch(raw string) (DeleteMatch, error) {
	switch DeleteMatch(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DeleteMatchText:
		return DeleteMatchText, nil
	case DeleteMatchID:
		return DeleteMatchID, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeleteMatch, raw)
	}
}

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// Operation names one controller command for observers.
type Operation string

// OpAdd and related constants name every state transition.
const (
	OpAdd            Operation = "add"
	OpToggleComplete Operation = "toggle_complete"
	OpDelete         Operation = "delete"
	OpDeleteByID     Operation = "delete_by_id"
	OpRequestClear   Operation = "request_clear"
	OpConfirmClear   Operation = "confirm_clear"
	OpBeginEdit      Operation = "begin_edit"
	OpApplyEdit      Operation = "apply_edit"
	OpEndEdit        Operation = "end_edit"
	OpStartDrag      Operation = "start_drag"
	OpEnterDrag      Operation = "enter_drag"
	OpEndDrag        Operation = "end_drag"
	OpCancelDrag     Operation = "cancel_drag"
)

// TransitionFunc observes one applied transition.
type TransitionFunc func(op Operation, prev, next State)

// ControllerConfig holds configuration for the controller.
type ControllerConfig struct {
	OnTransition TransitionFunc
}

// Controller owns the task-list state and replaces it on every command.
type Controller struct {
	state        State
	idGen        IDGenerator
	onTransition TransitionFunc
	seq          int
}

// NewController constructs an empty controller.
func NewController(idGen IDGenerator, cfg ControllerConfig) *Controller {
	c := &Controller{
		state:        NewState(),
		onTransition: cfg.OnTransition,
	}
	if idGen == nil {
		idGen = c.sequentialID
	}
	c.idGen = idGen
	return c
}

// sequentialID is the fallback generator when none is injected.
func (c *Controller) sequentialID() string {
	c.seq++
	return fmt.Sprintf("task-%d", c.seq)
}

// State returns a copy of the current snapshot.
func (c *Controller) State() State {
	return c.state.Clone()
}

// Len returns the number of tasks.
func (c *Controller) Len() int {
	return len(c.state.Tasks)
}

// replace publishes next as the current snapshot.
func (c *Controller) replace(op Operation, next State) {
	prev := c.state
	c.state = next
	if c.onTransition != nil {
		c.onTransition(op, prev.Clone(), next.Clone())
	}
}

// Add appends a new open task and reports whether the submission was accepted.
func (c *Controller) Add(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	task, err := domain.NewTask(domain.TaskInput{ID: c.idGen(), Text: text})
	if err != nil {
		return false
	}
	c.replace(OpAdd, appendTask(c.state, task))
	return true
}

// ToggleComplete flips completion on the task at idx.
func (c *Controller) ToggleComplete(idx int) {
	c.replace(OpToggleComplete, toggleComplete(c.state, idx))
}

// Delete removes every task whose text equals text.
func (c *Controller) Delete(text string) {
	c.replace(OpDelete, deleteByText(c.state, text))
}

// DeleteByID removes the single task carrying id.
func (c *Controller) DeleteByID(id string) {
	c.replace(OpDeleteByID, deleteByID(c.state, id))
}

// RequestClear asks for confirmation before clearing the list.
func (c *Controller) RequestClear() {
	c.replace(OpRequestClear, requestClear(c.state))
}

// ConfirmClear answers a pending clear request.
func (c *Controller) ConfirmClear(accept bool) {
	c.replace(OpConfirmClear, confirmClear(c.state, accept))
}

// BeginEdit opens the inline editor on idx.
func (c *Controller) BeginEdit(idx int) {
	c.replace(OpBeginEdit, beginEdit(c.state, idx))
}

// ApplyEdit replaces the text at idx; called on every keystroke.
func (c *Controller) ApplyEdit(idx int, text string) {
	c.replace(OpApplyEdit, applyEdit(c.state, idx, text))
}

// EndEdit closes the inline editor.
func (c *Controller) EndEdit() {
	c.replace(OpEndEdit, endEdit(c.state))
}

// StartDrag records the row a gesture started on.
func (c *Controller) StartDrag(idx int) {
	c.replace(OpStartDrag, startDrag(c.state, idx))
}

// EnterDrag records the row the pointer is over.
func (c *Controller) EnterDrag(idx int) {
	c.replace(OpEnterDrag, enterDrag(c.state, idx))
}

// EndDrag completes the gesture with a move and resets the indices.
func (c *Controller) EndDrag() {
	c.replace(OpEndDrag, endDrag(c.state))
}

// CancelDrag resets the gesture without reordering.
func (c *Controller) CancelDrag() {
	c.replace(OpCancelDrag, cancelDrag(c.state))
}
