package task

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/router"
	"github.com/abhisek/pylearn/internal/screen"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/validator"
)

func newDeps(t *testing.T) screen.Deps {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pylearn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.Seed(context.Background())
	require.NoError(t, err)

	engine := progression.New(st)
	return screen.Deps{
		Store:     st,
		Engine:    engine,
		Validator: validator.New(st, engine, validator.DefaultConfig(), nil),
		Stats:     stats.NewService(st),
		UserID:    store.DefaultUserID,
	}
}

// open creates the screen and delivers its load message.
func open(t *testing.T, deps screen.Deps, taskID int64) *TaskScreen {
	t.Helper()
	s := New(deps, taskID)
	s.Update(s.Init()())
	require.True(t, s.loaded)
	return s
}

// press sends a key and runs the resulting submission, if any.
func press(t *testing.T, s *TaskScreen, key tea.KeyPressMsg) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(key)
	if cmd == nil {
		return nil
	}
	if msg, ok := cmd().(submittedMsg); ok {
		_, cmd = s.Update(msg)
	}
	return cmd
}

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func letter(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestTheoryMarksReadAndAdvances(t *testing.T) {
	deps := newDeps(t)
	s := open(t, deps, 1)

	assert.Contains(t, s.View(100, 30), "Python")

	cmd := press(t, s, enter)
	require.NotNil(t, s.result)
	assert.True(t, s.result.Success)
	assert.Equal(t, validator.MsgTheoryRead, s.result.Message)
	require.NotNil(t, cmd)
	assert.IsType(t, screen.ProgressChangedMsg{}, cmd())

	require.NotNil(t, s.next)
	assert.Equal(t, int64(2), s.next.ID)

	_, cmd = s.Update(enter)
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Tâche", msg.Screen.Title(), "next screen is not loaded yet")
}

func TestQuizChoice(t *testing.T) {
	deps := newDeps(t)
	_, err := deps.Engine.MarkCompleted(context.Background(), 1, deps.UserID)
	require.NoError(t, err)

	s := open(t, deps, 2)
	require.Len(t, s.choice.Choices, 3)

	press(t, s, letter('a'))
	require.NotNil(t, s.result)
	assert.False(t, s.result.Success)
	assert.Equal(t, fmt.Sprintf(validator.MsgQuizWrong, "B"), s.result.Message)
	assert.Equal(t, store.StatusFailed, s.state.Status)

	press(t, s, letter('b'))
	assert.True(t, s.result.Success)
	assert.True(t, s.state.Completed())
}

func TestLockedTaskIgnoresInput(t *testing.T) {
	deps := newDeps(t)
	s := open(t, deps, 3)

	assert.Contains(t, s.View(100, 30), "verrouillée")
	_, cmd := s.Update(enter)
	assert.Nil(t, cmd)
	assert.Nil(t, s.result)
}

func TestExerciseSubmitWithCtrlS(t *testing.T) {
	deps := newDeps(t)
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		_, err := deps.Engine.MarkCompleted(ctx, id, deps.UserID)
		require.NoError(t, err)
	}

	s := open(t, deps, 4)
	s.editor.Model.SetValue("print('Hello, World!')")
	press(t, s, tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})

	require.NotNil(t, s.result)
	assert.True(t, s.result.Success)
	require.NotNil(t, s.next)
	assert.Equal(t, int64(5), s.next.ID, "the next lesson opens")
}

func TestUnknownTask(t *testing.T) {
	deps := newDeps(t)
	s := open(t, deps, 999)
	assert.True(t, strings.Contains(s.View(100, 30), validator.MsgNotFound))
}
