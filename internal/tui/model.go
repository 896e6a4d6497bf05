package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/todo/internal/app"
	"github.com/evanschultz/todo/internal/domain"
)

// Controller is the task-list state manager driven by the model.
type Controller interface {
	State() app.State
	Add(string) bool
	ToggleComplete(int)
	Delete(string)
	DeleteByID(string)
	RequestClear()
	ConfirmClear(bool)
	BeginEdit(int)
	ApplyEdit(int, string)
	EndEdit()
	StartDrag(int)
	EnterDrag(int)
	EndDrag()
	CancelDrag()
}

// focusArea represents which pane receives plain key presses.
type focusArea int

// focusInput and related constants define package defaults.
const (
	focusInput focusArea = iota
	focusList
)

// row layout cells used by rendering and mouse hit testing.
const (
	rowMarkerWidth   = 2
	rowCheckboxWidth = 3
	rowDeleteWidth   = 2
	minRowWidth      = 24
)

// Model represents model data used by this package.
type Model struct {
	ctrl Controller

	ready  bool
	width  int
	height int

	status string
	title  string

	help help.Model
	keys keyMap

	input     textinput.Model
	editInput textinput.Model
	focus     focusArea
	cursor    int

	deleteMatch app.DeleteMatch

	// grabbing is a keyboard drag gesture; mouseDragging is a pointer one.
	grabbing      bool
	mouseDragging bool

	copyText ClipboardWriter
}

// clipboardMsg reports the outcome of one clipboard write.
type clipboardMsg struct {
	text string
	err  error
}

// NewModel constructs a new value for this package.
func NewModel(ctrl Controller, opts ...Option) Model {
	if ctrl == nil {
		ctrl = app.NewController(nil, app.ControllerConfig{})
	}
	h := help.New()
	h.ShowAll = false
	input := newInput("+ ", "Type a task", "", 120)
	editInput := newInput("~ ", "task text", "", 120)
	m := Model{
		ctrl:        ctrl,
		status:      "ready",
		title:       "TO-DO",
		help:        h,
		keys:        newKeyMap(),
		input:       input,
		editInput:   editInput,
		focus:       focusInput,
		deleteMatch: app.DeleteMatchText,
		copyText:    defaultClipboardWriter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.input.Focus()
	return m
}

// newInput constructs one single-line text input.
func newInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(10, m.rowWidth()-6))
		m.editInput.SetWidth(max(10, m.textWidth()))
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("copied %q", truncate(msg.text, 32))
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		state := m.ctrl.State()
		switch {
		case state.ClearConfirmationPending:
			return m.handleConfirmKey(msg)
		case state.HasEditTarget():
			return m.handleEditKey(msg, state)
		case m.grabbing:
			return m.handleGrabKey(msg)
		case m.focus == focusInput:
			return m.handleInputKey(msg)
		default:
			return m.handleListKey(msg)
		}

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		var cmd tea.Cmd
		if m.ctrl.State().HasEditTarget() {
			m.editInput, cmd = m.editInput.Update(msg)
			return m, cmd
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// handleInputKey routes key presses while the add input is focused.
func (m Model) handleInputKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		value := m.input.Value()
		if !m.ctrl.Add(value) {
			m.status = "type a task first"
			return m, nil
		}
		m.input.Reset()
		m.cursor = len(m.ctrl.State().Tasks) - 1
		m.status = fmt.Sprintf("added %q", truncate(strings.TrimSpace(value), 32))
		return m, nil
	case key.Matches(msg, m.keys.switchFocus), key.Matches(msg, m.keys.cancel):
		m.focusList()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// handleListKey routes key presses while the task list is focused.
func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
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
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.switchFocus), key.Matches(msg, m.keys.focusInput):
		cmd := m.focusAddInput()
		return m, cmd
	case key.Matches(msg, m.keys.moveUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.cursor < len(state.Tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		task, ok := m.taskAtCursor(state)
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.ctrl.ToggleComplete(m.cursor)
		if task.Completed {
			m.status = fmt.Sprintf("reopened %q", truncate(task.Text, 32))
		} else {
			m.status = fmt.Sprintf("completed %q", truncate(task.Text, 32))
		}
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		cmd := m.startEdit(m.cursor)
		return m, cmd
	case key.Matches(msg, m.keys.deleteTask):
		return m.deleteAt(m.cursor)
	case key.Matches(msg, m.keys.clearAll):
		m.ctrl.RequestClear()
		m.status = "clear all tasks?"
		return m, nil
	case key.Matches(msg, m.keys.grab):
		if _, ok := m.taskAtCursor(state); !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.ctrl.StartDrag(m.cursor)
		m.ctrl.EnterDrag(m.cursor)
		m.grabbing = true
		m.status = "moving task: j/k to choose, m to drop, esc to cancel"
		return m, nil
	case key.Matches(msg, m.keys.copyTask):
		task, ok := m.taskAtCursor(state)
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.copyTaskCmd(task.Text)
	default:
		return m, nil
	}
}

// handleGrabKey routes key presses during a keyboard drag gesture.
func (m Model) handleGrabKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	total := len(m.ctrl.State().Tasks)
	switch {
	case key.Matches(msg, m.keys.moveUp):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ctrl.EnterDrag(m.cursor)
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.cursor < total-1 {
			m.cursor++
		}
		m.ctrl.EnterDrag(m.cursor)
		return m, nil
	case key.Matches(msg, m.keys.grab), key.Matches(msg, m.keys.submit):
		m.ctrl.EndDrag()
		m.grabbing = false
		m.status = "task moved"
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		source := m.ctrl.State().Drag.Source
		m.ctrl.CancelDrag()
		m.grabbing = false
		if source >= 0 && source < total {
			m.cursor = source
		}
		m.status = "move canceled"
		return m, nil
	default:
		return m, nil
	}
}

// handleEditKey feeds the inline editor and mirrors every keystroke into the task.
func (m Model) handleEditKey(msg tea.KeyPressMsg, state app.State) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.submit) || key.Matches(msg, m.keys.cancel) {
		m.finishEdit()
		m.status = "edit saved"
		return m, nil
	}
	before := m.editInput.Value()
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	if after := m.editInput.Value(); after != before {
		m.ctrl.ApplyEdit(state.EditTarget, after)
	}
	return m, cmd
}

// handleConfirmKey answers the pending clear confirmation.
func (m Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirmYes):
		count := len(m.ctrl.State().Tasks)
		m.ctrl.ConfirmClear(true)
		m.cursor = 0
		m.status = fmt.Sprintf("cleared %d tasks", count)
		return m, nil
	case key.Matches(msg, m.keys.confirmNo):
		m.ctrl.ConfirmClear(false)
		m.status = "clear canceled"
		return m, nil
	default:
		return m, nil
	}
}

// focusList moves key focus from the add input to the list.
func (m *Model) focusList() {
	m.focus = focusList
	m.input.Blur()
	m.status = "ready"
}

// focusAddInput moves key focus to the add input.
func (m *Model) focusAddInput() tea.Cmd {
	m.focus = focusInput
	m.help.ShowAll = false
	m.status = "add task"
	return m.input.Focus()
}

// startEdit opens the inline editor on idx.
func (m *Model) startEdit(idx int) tea.Cmd {
	state := m.ctrl.State()
	if !state.InRange(idx) {
		m.status = "no task selected"
		return nil
	}
	m.ctrl.BeginEdit(idx)
	m.cursor = idx
	m.editInput.SetValue(state.Tasks[idx].Text)
	m.editInput.CursorEnd()
	m.status = "editing: enter or esc to finish"
	return m.editInput.Focus()
}

// finishEdit closes the inline editor if one is open.
func (m *Model) finishEdit() {
	if !m.ctrl.State().EditModeActive {
		return
	}
	m.ctrl.EndEdit()
	m.editInput.Blur()
	m.editInput.Reset()
}

// deleteAt removes the task at idx using the configured match mode.
func (m Model) deleteAt(idx int) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	if !state.InRange(idx) {
		m.status = "no task selected"
		return m, nil
	}
	task := state.Tasks[idx]
	before := len(state.Tasks)
	if m.deleteMatch == app.DeleteMatchID {
		m.ctrl.DeleteByID(task.ID)
	} else {
		m.ctrl.Delete(task.Text)
	}
	after := len(m.ctrl.State().Tasks)
	m.cursor = clamp(m.cursor, 0, after-1)
	if removed := before - after; removed > 1 {
		m.status = fmt.Sprintf("deleted %d tasks named %q", removed, truncate(task.Text, 24))
	} else {
		m.status = fmt.Sprintf("deleted %q", truncate(task.Text, 32))
	}
	return m, nil
}

// copyTaskCmd copies text to the clipboard off the update loop.
func (m Model) copyTaskCmd(text string) tea.Cmd {
	write := m.copyText
	return func() tea.Msg {
		return clipboardMsg{text: text, err: write(text)}
	}
}

// taskAtCursor returns the task under the cursor.
func (m Model) taskAtCursor(state app.State) (domain.Task, bool) {
	if !state.InRange(m.cursor) {
		return domain.Task{}, false
	}
	return state.Tasks[m.cursor], true
}

// mouseBlocked reports whether a modal interaction owns the input.
func (m Model) mouseBlocked(state app.State) bool {
	return m.help.ShowAll || state.ClearConfirmationPending || state.EditModeActive || m.grabbing
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	if m.mouseBlocked(state) || len(state.Tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.MouseWheelDown:
		if m.cursor < len(state.Tasks)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// handleMouseClick starts a drag, or toggles/deletes when the press lands on a row control.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()
	if m.mouseBlocked(state) || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if m.isInputRow(msg.Y) {
		cmd := m.focusAddInput()
		return m, cmd
	}
	idx, ok := m.rowAt(msg.Y, len(state.Tasks))
	if !ok {
		return m, nil
	}
	if m.focus == focusInput {
		m.focusList()
	}
	m.cursor = idx
	switch {
	case m.isCheckboxCell(msg.X):
		m.ctrl.ToggleComplete(idx)
		m.status = "toggled " + fmt.Sprintf("%q", truncate(state.Tasks[idx].Text, 32))
		return m, nil
	case m.isDeleteCell(msg.X):
		return m.deleteAt(idx)
	}
	m.ctrl.StartDrag(idx)
	m.mouseDragging = true
	return m, nil
}

// handleMouseMotion records the row under the pointer while dragging.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDragging {
		return m, nil
	}
	state := m.ctrl.State()
	if idx, ok := m.rowAt(msg.Y, len(state.Tasks)); ok {
		if !state.Drag.HasTarget() || state.Drag.Target != idx {
			m.ctrl.EnterDrag(idx)
		}
		m.cursor = idx
	}
	return m, nil
}

// handleMouseRelease completes a pointer drag gesture.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDragging {
		return m, nil
	}
	m.mouseDragging = false
	state := m.ctrl.State()
	if idx, ok := m.rowAt(msg.Y, len(state.Tasks)); ok {
		m.ctrl.EnterDrag(idx)
		state = m.ctrl.State()
	}
	source, target := state.Drag.Source, state.Drag.Target
	m.ctrl.EndDrag()
	if state.Drag.HasTarget() && source != target {
		m.cursor = clamp(target, 0, len(state.Tasks)-1)
		m.status = "task moved"
	}
	return m, nil
}

// rowWidth returns the rendered width of one task row.
func (m Model) rowWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(minRowWidth, m.width)
}

// textWidth returns the width left for task text inside a row.
func (m Model) textWidth() int {
	return max(1, m.rowWidth()-rowMarkerWidth-rowCheckboxWidth-1-rowDeleteWidth)
}

// isCheckboxCell reports whether x falls on the row checkbox.
func (m Model) isCheckboxCell(x int) bool {
	return x >= rowMarkerWidth && x < rowMarkerWidth+rowCheckboxWidth
}

// isDeleteCell reports whether x falls on the row delete marker.
func (m Model) isDeleteCell(x int) bool {
	return x >= m.rowWidth()-rowDeleteWidth
}

// listTop returns the zero-based screen row of the first task row.
func (m Model) listTop() int {
	return lipgloss.Height(m.renderHeader()) + 1
}

// isInputRow reports whether y lands on the add input line.
func (m Model) isInputRow(y int) bool {
	return y == lipgloss.Height(m.renderTitle())+1
}

// listHeight returns how many task rows fit on screen.
func (m Model) listHeight(total int) int {
	if m.height <= 0 {
		return total
	}
	return max(1, m.height-m.listTop()-lipgloss.Height(m.renderFooter())-1)
}

// rowAt maps a screen row to a task index.
func (m Model) rowAt(y, total int) (int, bool) {
	rel := y - m.listTop()
	if rel < 0 || total == 0 {
		return 0, false
	}
	start, end := windowBounds(total, m.cursor, m.listHeight(total))
	idx := start + rel
	if idx >= end {
		return 0, false
	}
	return idx, true
}

// View handles view.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// render draws the full screen from the current state snapshot.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}
	state := m.ctrl.State()
	sections := []string{
		m.renderHeader(),
		"",
		m.renderList(state),
		"",
		m.renderFooterFor(state),
	}
	content := strings.Join(sections, "\n")
	if m.height > 0 {
		content = fitLines(content, m.height)
	}
	return content
}

// renderTitle draws the title bar.
func (m Model) renderTitle() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("16")).
		Background(lipgloss.Color("75")).
		Width(m.rowWidth()).
		Align(lipgloss.Center).
		Padding(1, 0).
		Render(m.title)
}

// renderHeader draws the title bar and the add input.
func (m Model) renderHeader() string {
	inputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	if m.focus != focusInput {
		inputStyle = inputStyle.Foreground(lipgloss.Color("241"))
	}
	return m.renderTitle() + "\n\n" + inputStyle.Render(m.input.View())
}

// renderList draws the visible task rows.
func (m Model) renderList(state app.State) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if len(state.Tasks) == 0 {
		return muted.Render("  No tasks yet.")
	}
	start, end := windowBounds(len(state.Tasks), m.cursor, m.listHeight(len(state.Tasks)))
	rows := make([]string, 0, end-start)
	for idx := start; idx < end; idx++ {
		rows = append(rows, m.renderRow(state, idx))
	}
	return strings.Join(rows, "\n")
}

// renderRow draws one task row: marker, checkbox, text, delete marker.
func (m Model) renderRow(state app.State, idx int) string {
	task := state.Tasks[idx]
	accent := lipgloss.Color("75")
	muted := lipgloss.Color("241")

	marker := "  "
	switch {
	case state.Drag.Active() && state.Drag.Source == idx:
		marker = "≡ "
	case state.Drag.Active() && state.Drag.HasTarget() && state.Drag.Target == idx:
		marker = "→ "
	case idx == m.cursor && m.focus == focusList:
		marker = "> "
	}

	checkbox := "[ ]"
	if task.Completed {
		checkbox = "[x]"
	}

	textStyle := lipgloss.NewStyle()
	if task.Completed {
		textStyle = textStyle.Foreground(muted).Strikethrough(true)
	}
	var text string
	if state.HasEditTarget() && state.EditTarget == idx {
		text = m.editInput.View()
	} else {
		label := task.Text
		if task.IsBlank() {
			label = "(empty)"
			textStyle = textStyle.Foreground(muted).Italic(true)
		}
		text = textStyle.Render(truncate(label, m.textWidth()))
	}
	text = lipgloss.NewStyle().Width(m.textWidth()).MaxWidth(m.textWidth()).Render(text)

	line := marker + checkbox + " " + text + " ✕"
	rowStyle := lipgloss.NewStyle()
	if idx == m.cursor && m.focus == focusList {
		rowStyle = rowStyle.Foreground(accent).Bold(true)
	}
	return rowStyle.Render(line)
}

// renderFooter draws the footer for the current snapshot.
func (m Model) renderFooter() string {
	return m.renderFooterFor(m.ctrl.State())
}

// renderFooterFor draws the status line and either the clear prompt or the help bubble.
func (m Model) renderFooterFor(state app.State) string {
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	counts := fmt.Sprintf("%d tasks • %d done", len(state.Tasks), state.CompletedCount())
	statusLine := statusStyle.Render(counts + " • " + m.status)
	if state.ClearConfirmationPending {
		prompt := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")).
			Render("clear all tasks? (y/n)")
		return statusLine + "\n" + prompt
	}
	helpBubble := m.help
	helpBubble.SetWidth(m.rowWidth())
	return statusLine + "\n" + helpBubble.View(m.keys)
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	start := max(0, selected-windowSize/2)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps the requested operation.
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

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
