package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// CodeEditor is a multi-line input for exercise solutions.
type CodeEditor struct {
	Model textarea.Model
}

// NewCodeEditor creates a focused editor of the given size.
func NewCodeEditor(placeholder string, width, height int) CodeEditor {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = true
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return CodeEditor{Model: ta}
}

// Update forwards messages to the textarea. A tab key inserts four spaces.
func (e CodeEditor) Update(msg tea.Msg) (CodeEditor, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "tab" {
		e.Model.InsertString("    ")
		return e, nil
	}
	var cmd tea.Cmd
	e.Model, cmd = e.Model.Update(msg)
	return e, cmd
}

// SetWidth resizes the editor.
func (e *CodeEditor) SetWidth(w int) {
	e.Model.SetWidth(w)
}

// View renders the editor.
func (e CodeEditor) View() string {
	return e.Model.View()
}

// Value returns the code typed so far.
func (e CodeEditor) Value() string {
	return e.Model.Value()
}
