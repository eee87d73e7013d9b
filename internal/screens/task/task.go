package task

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/ui/components"
	"github.com/abhisek/pylearn/internal/ui/layout"
	"github.com/abhisek/pylearn/internal/ui/theme"
	"github.com/abhisek/pylearn/internal/validator"
)

type taskLoadedMsg struct {
	Content *progression.Content
	State   progression.TaskState
	Err     error
}

type submittedMsg struct {
	Result validator.Result
	Next   *progression.TaskView
	Err    error
}

// TaskScreen presents one task and grades the learner's answer.
type TaskScreen struct {
	deps    screen.Deps
	taskID  int64
	content *progression.Content
	state   progression.TaskState
	loaded  bool
	errMsg  string

	input  components.TextInput
	choice components.MultiChoice
	editor components.CodeEditor

	submitting bool
	result     *validator.Result
	next       *progression.TaskView
}

var _ screen.Screen = (*TaskScreen)(nil)
var _ screen.KeyHintProvider = (*TaskScreen)(nil)

// New creates a TaskScreen for taskID.
func New(deps screen.Deps, taskID int64) *TaskScreen {
	return &TaskScreen{deps: deps, taskID: taskID}
}

func (s *TaskScreen) Init() tea.Cmd {
	deps, id := s.deps, s.taskID
	return func() tea.Msg {
		ctx := context.Background()
		c, err := deps.Engine.TaskContent(ctx, id)
		if err != nil || c == nil {
			return taskLoadedMsg{Err: err}
		}
		st, err := deps.Engine.TaskStatus(ctx, id, deps.UserID)
		return taskLoadedMsg{Content: c, State: st, Err: err}
	}
}

func (s *TaskScreen) Title() string {
	if s.content == nil {
		return "Tâche"
	}
	return s.content.Task.Name
}

func (s *TaskScreen) KeyHints() []layout.KeyHint {
	if s.result != nil && s.result.Success {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Suivant"},
			{Key: "Esc", Description: "Retour"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Valider"}}
	if s.content != nil {
		switch s.content.Task.Type {
		case store.TypeTheory:
			hints[0].Description = "J'ai lu"
		case store.TypeQuiz:
			if len(s.choice.Choices) > 0 {
				hints = append([]layout.KeyHint{{Key: "↑↓/A-Z", Description: "Choisir"}}, hints...)
			}
		case store.TypeExercise:
			hints = []layout.KeyHint{{Key: "Ctrl+S", Description: "Valider"}, {Key: "Tab", Description: "Indenter"}}
		}
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Retour"})
}

func (s *TaskScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case taskLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Content == nil {
			s.errMsg = validator.MsgNotFound
			return s, nil
		}
		s.content = msg.Content
		s.state = msg.State
		return s, s.setupInput()

	case submittedMsg:
		s.submitting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = &msg.Result
		s.next = msg.Next
		s.markInput(msg.Result.Success)
		if msg.Result.Success {
			s.state = progression.TaskState{Status: store.StatusCompleted, Unlocked: true}
		} else if !msg.Result.Locked && !msg.Result.NotFound {
			s.state.Status = store.StatusFailed
		}
		return s, func() tea.Msg { return screen.ProgressChangedMsg{} }

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blinks and other widget messages.
	var cmd tea.Cmd
	switch {
	case s.content == nil:
	case s.content.Task.Type == store.TypeExercise:
		s.editor, cmd = s.editor.Update(msg)
	case s.content.Task.Type == store.TypeTyping,
		s.content.Task.Type == store.TypeQuiz && len(s.choice.Choices) == 0:
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *TaskScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.content == nil || s.submitting || !s.accessible() {
		return s, nil
	}
	key := msg.String()

	if s.result != nil && s.result.Success {
		if key == "enter" {
			return s, s.advance()
		}
		return s, nil
	}

	switch s.content.Task.Type {
	case store.TypeTheory:
		if key == "enter" {
			return s, s.submit("")
		}
	case store.TypeQuiz:
		if len(s.choice.Choices) > 0 {
			var submit bool
			s.choice, submit = s.choice.Update(msg)
			if submit {
				return s, s.submit(s.choice.Letter())
			}
			return s, nil
		}
		return s.updateInput(msg)
	case store.TypeTyping:
		return s.updateInput(msg)
	case store.TypeExercise:
		if key == "ctrl+s" {
			return s, s.submit(s.editor.Value())
		}
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TaskScreen) updateInput(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		return s, s.submit(s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// setupInput builds the input widget matching the task type.
func (s *TaskScreen) setupInput() tea.Cmd {
	switch s.content.Task.Type {
	case store.TypeQuiz:
		if s.content.Quiz != nil {
			s.choice = components.NewMultiChoice(s.content.Quiz.Question)
		}
		if len(s.choice.Choices) == 0 {
			s.input = components.NewTextInput("Votre réponse", 0)
			return s.input.Init()
		}
	case store.TypeTyping:
		s.input = components.NewTextInput("Recopiez le texte ici", 0)
		return s.input.Init()
	case store.TypeExercise:
		s.editor = components.NewCodeEditor("# Écrivez votre code Python ici", 60, 8)
	}
	return nil
}

func (s *TaskScreen) markInput(ok bool) {
	switch s.content.Task.Type {
	case store.TypeQuiz:
		if len(s.choice.Choices) > 0 {
			s.choice.Mark(ok)
			return
		}
		s.input.Submit(ok)
	case store.TypeTyping:
		s.input.Submit(ok)
	}
}

func (s *TaskScreen) accessible() bool {
	return s.state.Unlocked || s.state.Completed()
}

// submit grades input in the background and looks up where to go next.
func (s *TaskScreen) submit(input string) tea.Cmd {
	s.submitting = true
	deps, id := s.deps, s.taskID
	return func() tea.Msg {
		ctx := context.Background()
		res, err := deps.Validator.Validate(ctx, id, deps.UserID, input)
		if err != nil {
			return submittedMsg{Err: err}
		}
		var next *progression.TaskView
		if res.Success {
			if next, err = deps.Engine.Resume(ctx, deps.UserID); err != nil {
				return submittedMsg{Err: err}
			}
		}
		return submittedMsg{Result: res, Next: next}
	}
}

// advance moves to the next available task, or back to the list when
// the catalog is exhausted.
func (s *TaskScreen) advance() tea.Cmd {
	if s.next == nil || s.next.ID == s.taskID {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	next := New(s.deps, s.next.ID)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *TaskScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n%s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Chargement...")
	}

	cw := components.ContentWidth(width)
	var sections []string

	t := s.content.Task
	head := theme.Title.Render(t.Name) + "  " + theme.Hint.Render(typeLabel(t.Type)+"  "+statusLabel(s.state))
	sections = append(sections, head)
	if t.Description != "" {
		sections = append(sections, theme.Body.Width(cw).Render(t.Description))
	}

	if !s.accessible() {
		sections = append(sections, components.Card(
			theme.Locked.Render("🔒 "+validator.MsgLocked), cw, theme.Border))
		return s.frame(sections, width)
	}

	sections = append(sections, s.renderBody(cw))

	if s.submitting {
		sections = append(sections, theme.Hint.Render("Vérification..."))
	} else if s.result != nil {
		sections = append(sections, renderFeedback(*s.result, s.next, s.taskID))
	}
	return s.frame(sections, width)
}

func (s *TaskScreen) renderBody(cw int) string {
	c := s.content
	switch c.Task.Type {
	case store.TypeTheory:
		return components.Card(theme.Body.Render(c.Task.Content), cw, theme.Primary)
	case store.TypeQuiz:
		if len(s.choice.Choices) > 0 {
			return s.choice.View()
		}
		question := ""
		if c.Quiz != nil {
			question = c.Quiz.Question
		}
		return theme.Body.Bold(true).Render(question) + "\n\n" + s.input.View()
	case store.TypeTyping:
		text := ""
		if c.Typing != nil {
			text = c.Typing.Text
		}
		return theme.Hint.Render("Recopiez exactement :") + "\n" +
			theme.Code.Render(text) + "\n\n" + s.input.View()
	case store.TypeExercise:
		prompt := ""
		if c.Exercise != nil {
			prompt = c.Exercise.Prompt
		}
		s.editor.SetWidth(cw)
		return theme.Body.Width(cw).Render(prompt) + "\n\n" + s.editor.View()
	default:
		return theme.Incorrect.Render(validator.MsgUnknownType)
	}
}

func (s *TaskScreen) frame(sections []string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		Render(strings.Join(sections, "\n\n"))
}

func renderFeedback(res validator.Result, next *progression.TaskView, current int64) string {
	switch {
	case res.Success:
		line := theme.Correct.Render(res.Message)
		if next != nil && next.ID != current {
			line += "\n" + theme.Hint.Render("Entrée : "+next.Name)
		} else {
			line += "\n" + theme.Hint.Render("Tout est terminé pour le moment !")
		}
		return line
	case res.Message == validator.MsgTypingClose || res.Message == validator.MsgExerciseClose:
		return theme.Near.Render(res.Message) +
			theme.Hint.Render(fmt.Sprintf("  (similarité %d%%)", int(res.Similarity*100+0.5)))
	default:
		return theme.Incorrect.Render(res.Message)
	}
}

func typeLabel(t store.TaskType) string {
	switch t {
	case store.TypeTheory:
		return "Théorie"
	case store.TypeQuiz:
		return "Quiz"
	case store.TypeTyping:
		return "Saisie"
	case store.TypeExercise:
		return "Exercice"
	default:
		return string(t)
	}
}

func statusLabel(s progression.TaskState) string {
	switch {
	case s.Status == store.StatusCompleted:
		return "✓ terminée"
	case s.Status == store.StatusFailed:
		return "✗ à refaire"
	case s.Unlocked:
		return "à faire"
	default:
		return "🔒 verrouillée"
	}
}
