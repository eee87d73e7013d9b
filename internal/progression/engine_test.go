package progression

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pylearn/internal/store"
)

const user = store.DefaultUserID

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pylearn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.Seed(context.Background())
	require.NoError(t, err)
	return New(st), st
}

func rowCount(t *testing.T, st *store.Store) int {
	t.Helper()
	var n int
	require.NoError(t, st.DB().Get(&n, "SELECT COUNT(*) FROM progression"))
	return n
}

func TestTaskStatusDefaults(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		taskID   int64
		unlocked bool
	}{
		{1, true},  // first task of the first lesson
		{2, false}, // later task of an open lesson
		{5, false}, // first task of a locked lesson
		{999, false},
	}
	for _, tt := range tests {
		s, err := e.TaskStatus(ctx, tt.taskID, user)
		require.NoError(t, err)
		assert.Equal(t, store.StatusNotStarted, s.Status, "task %d", tt.taskID)
		assert.Equal(t, tt.unlocked, s.Unlocked, "task %d", tt.taskID)
	}
}

func TestMarkCompletedUnlocksSuccessor(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	unlocked, err := e.MarkCompleted(ctx, 1, user)
	require.NoError(t, err)
	assert.True(t, unlocked)

	s1, err := e.TaskStatus(ctx, 1, user)
	require.NoError(t, err)
	assert.Equal(t, TaskState{Status: store.StatusCompleted, Unlocked: true}, s1)

	s2, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, TaskState{Status: store.StatusNotStarted, Unlocked: true}, s2)

	s3, err := e.TaskStatus(ctx, 3, user)
	require.NoError(t, err)
	assert.False(t, s3.Unlocked)
}

func TestUnlockNextAtLastTask(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	before := rowCount(t, st)
	ok, err := e.UnlockNext(ctx, 4, user)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, rowCount(t, st), "no row created at the last task")
}

func TestUnlockNextKeepsSuccessorStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.MarkFailed(ctx, 2, user))
	ok, err := e.UnlockNext(ctx, 1, user)
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, s.Status)
	assert.True(t, s.Unlocked)
}

func TestMarkFailedKeepsUnlocked(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.MarkCompleted(ctx, 1, user)
	require.NoError(t, err)
	require.NoError(t, e.MarkFailed(ctx, 2, user))

	s, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, TaskState{Status: store.StatusFailed, Unlocked: true}, s)

	s3, err := e.TaskStatus(ctx, 3, user)
	require.NoError(t, err)
	assert.False(t, s3.Unlocked, "failure unlocks nothing")
}

func TestMarkUnknownTaskIsNoop(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	before := rowCount(t, st)
	ok, err := e.MarkCompleted(ctx, 999, user)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, e.MarkFailed(ctx, 999, user))
	assert.Equal(t, before, rowCount(t, st))
}

func TestLessonChain(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	states := func() []LessonState {
		views, err := e.Lessons(ctx, 1, user)
		require.NoError(t, err)
		out := make([]LessonState, len(views))
		for i, v := range views {
			out[i] = v.State
		}
		return out
	}

	assert.Equal(t, []LessonState{LessonInProgress, LessonLocked, LessonLocked, LessonLocked}, states())

	for id := int64(1); id <= 4; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	assert.Equal(t, []LessonState{LessonCompleted, LessonInProgress, LessonLocked, LessonLocked}, states())

	s, err := e.TaskStatus(ctx, 5, user)
	require.NoError(t, err)
	assert.True(t, s.Unlocked, "first task of the next lesson opens")

	var lessonRow *store.LessonProgress
	lessonRow, err = e.st.Repo().GetLessonProgress(ctx, user, 1)
	require.NoError(t, err)
	require.NotNil(t, lessonRow)
	assert.Equal(t, store.StatusCompleted, lessonRow.Status)
}

func TestRetryAfterLessonCompletedKeepsItCompleted(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	require.NoError(t, e.MarkFailed(ctx, 2, user))

	s2, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, s2.Status)

	l1, err := e.LessonStatus(ctx, 1, user)
	require.NoError(t, err)
	assert.Equal(t, LessonCompleted, l1)

	l2, err := e.LessonStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, LessonInProgress, l2)

	s5, err := e.TaskStatus(ctx, 5, user)
	require.NoError(t, err)
	assert.True(t, s5.Unlocked, "next lesson stays open")
}

func TestLessonStatusUsesPredecessorByPosition(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()
	r := st.Repo()

	// Module 2 gets two lessons whose IDs are not adjacent.
	a, err := r.AddLesson(ctx, store.Lesson{ModuleID: 2, Name: "A"})
	require.NoError(t, err)
	_, err = r.AddLesson(ctx, store.Lesson{ModuleID: 3, Name: "filler"})
	require.NoError(t, err)
	b, err := r.AddLesson(ctx, store.Lesson{ModuleID: 2, Name: "B"})
	require.NoError(t, err)
	ta, err := r.AddTask(ctx, store.Task{LessonID: a, Name: "t", Type: store.TypeTheory})
	require.NoError(t, err)
	_, err = r.AddTask(ctx, store.Task{LessonID: b, Name: "t", Type: store.TypeTheory})
	require.NoError(t, err)

	for id := int64(1); id <= 16; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	sb, err := e.LessonStatus(ctx, b, user)
	require.NoError(t, err)
	assert.Equal(t, LessonLocked, sb)

	_, err = e.MarkCompleted(ctx, ta, user)
	require.NoError(t, err)
	sb, err = e.LessonStatus(ctx, b, user)
	require.NoError(t, err)
	assert.Equal(t, LessonInProgress, sb)
}

func TestModuleUnlockRequiresFullCompletion(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	ok, err := e.ModuleUnlocked(ctx, 1, user)
	require.NoError(t, err)
	assert.True(t, ok, "first module is always unlocked")

	for id := int64(1); id <= 15; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	ok, err = e.ModuleUnlocked(ctx, 2, user)
	require.NoError(t, err)
	assert.False(t, ok, "15 of 16 tasks is not enough")

	_, err = e.MarkCompleted(ctx, 16, user)
	require.NoError(t, err)
	ok, err = e.ModuleUnlocked(ctx, 2, user)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.ModuleUnlocked(ctx, 3, user)
	require.NoError(t, err)
	assert.False(t, ok, "an empty module never completes")

	ok, err = e.ModuleUnlocked(ctx, 999, user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModulesView(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	views, err := e.Modules(ctx, user)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.True(t, views[0].Unlocked)
	assert.False(t, views[1].Unlocked)
	assert.Equal(t, 16, views[0].Progress.Total)
}

func TestTasksView(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.MarkCompleted(ctx, 1, user)
	require.NoError(t, err)

	views, err := e.Tasks(ctx, 1, user)
	require.NoError(t, err)
	require.Len(t, views, 4)
	assert.True(t, views[0].Completed())
	assert.True(t, views[1].Unlocked)
	assert.False(t, views[2].Unlocked)
	assert.Equal(t, store.TypeQuiz, views[1].Type)
}

func TestTaskContent(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		taskID int64
		check  func(*testing.T, *Content)
	}{
		{1, func(t *testing.T, c *Content) {
			assert.NotEmpty(t, c.Task.Content)
			assert.Nil(t, c.Quiz)
		}},
		{2, func(t *testing.T, c *Content) {
			require.NotNil(t, c.Quiz)
			assert.Equal(t, "B", c.Quiz.Answer)
		}},
		{3, func(t *testing.T, c *Content) {
			require.NotNil(t, c.Typing)
			assert.NotEmpty(t, c.Typing.Text)
		}},
		{4, func(t *testing.T, c *Content) {
			require.NotNil(t, c.Exercise)
			assert.Equal(t, "print('Hello, World!')", c.Exercise.Solution)
		}},
	}
	for _, tt := range tests {
		c, err := e.TaskContent(ctx, tt.taskID)
		require.NoError(t, err)
		require.NotNil(t, c, "task %d", tt.taskID)
		tt.check(t, c)
	}

	c, err := e.TaskContent(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestReset(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	for id := int64(1); id <= 6; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	require.NoError(t, e.Reset(ctx, user))

	assert.Equal(t, 1, rowCount(t, st), "only the first lesson row remains")
	s, err := e.TaskStatus(ctx, 1, user)
	require.NoError(t, err)
	assert.Equal(t, TaskState{Status: store.StatusNotStarted, Unlocked: true}, s)

	ls, err := e.LessonStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, LessonLocked, ls)
}

func TestResume(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	next, err := e.Resume(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(1), next.ID)

	for id := int64(1); id <= 4; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	next, err = e.Resume(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(5), next.ID, "first task of the second lesson")

	require.NoError(t, e.MarkFailed(ctx, 5, user))
	next, err = e.Resume(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, int64(5), next.ID, "failed tasks are retried")

	for id := int64(5); id <= 16; id++ {
		_, err := e.MarkCompleted(ctx, id, user)
		require.NoError(t, err)
	}
	next, err = e.Resume(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, next)
}
