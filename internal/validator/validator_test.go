package validator

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/store"
)

const user = store.DefaultUserID

func setup(t *testing.T) (*Validator, *progression.Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pylearn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.Seed(context.Background())
	require.NoError(t, err)
	e := progression.New(st)
	return New(st, e, Config{}, nil), e, st
}

func count(t *testing.T, st *store.Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, st.DB().Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestPositionalScore(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abc", "abd", 2.0 / 3.0},
		{"", "x", 0},
		{"x", "", 0},
		{"abc", "abc", 1},
		{"abcd", "ab", 0.5},
		{"été", "ete", 1.0 / 3.0},
	}
	for _, tt := range tests {
		got := Positional{}.Score(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Positional.Score(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshteinScore(t *testing.T) {
	s := Levenshtein{}
	assert.Equal(t, 0.0, s.Score("", "x"))
	assert.Equal(t, 1.0, s.Score("print(x)", "print(x)"))
	// One insertion: positional scoring collapses, edit distance does not.
	assert.Less(t, Positional{}.Score("print(x)", "pprint(x)"), 0.5)
	assert.Greater(t, s.Score("print(x)", "pprint(x)"), 0.8)
}

func TestScorerByName(t *testing.T) {
	assert.Equal(t, "levenshtein", ScorerByName("Levenshtein").Name())
	assert.Equal(t, "positional", ScorerByName("").Name())
	assert.Equal(t, "positional", ScorerByName("bogus").Name())
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"print('Hello, World!')\n\n", "print('Hello, World!')"},
		{"  a = 1  \n\n\t\n  print(a)\r\n", "a = 1\nprint(a)"},
		{"", ""},
		{"\n \n", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	v := New(nil, nil, Config{}, nil)

	quiz := &progression.Content{Task: store.Task{Type: store.TypeQuiz}, Quiz: &store.Quiz{Answer: "B"}}
	typing := &progression.Content{Task: store.Task{Type: store.TypeTyping}, Typing: &store.Typing{Text: "print('Bonjour')"}}
	exercise := &progression.Content{Task: store.Task{Type: store.TypeExercise}, Exercise: &store.Exercise{Solution: "print('Hello, World!')"}}

	tests := []struct {
		name    string
		content *progression.Content
		input   string
		success bool
		message string
	}{
		{"theory", &progression.Content{Task: store.Task{Type: store.TypeTheory}}, "", true, MsgTheoryRead},
		{"quiz trimmed case-folded", quiz, " b ", true, MsgQuizCorrect},
		{"quiz empty", quiz, "   ", false, MsgQuizEmpty},
		{"quiz wrong discloses answer", quiz, "a", false, "Incorrect. La bonne réponse était: B"},
		{"typing exact", typing, "  print('Bonjour')\n", true, MsgTypingCorrect},
		{"typing empty", typing, "", false, MsgTypingEmpty},
		{"typing near miss", typing, "print('Bonjoux')", false, MsgTypingClose},
		{"typing far", typing, "hello", false, MsgTypingWrong},
		{"typing case matters", typing, "PRINT('BONJOUR')", false, MsgTypingWrong},
		{"exercise normalized", exercise, "print('Hello, World!')\n\n", true, MsgExerciseOK},
		{"exercise empty", exercise, "\n\n", false, MsgExerciseEmpty},
		{"exercise near miss", exercise, "print('Hello, World?')", false, MsgExerciseClose},
		{"exercise far", exercise, "x = 1", false, MsgExerciseWrong},
		{"unknown type", &progression.Content{Task: store.Task{Type: "video"}}, "x", false, MsgUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Check(tt.content, tt.input)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestValidateTheoryUnlocksQuiz(t *testing.T) {
	v, e, _ := setup(t)
	ctx := context.Background()

	res, err := v.Validate(ctx, 1, user, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.UnlockNext)

	s1, err := e.TaskStatus(ctx, 1, user)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, s1.Status)

	s2, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.True(t, s2.Unlocked)
}

func TestValidateWrongQuizMarksFailed(t *testing.T) {
	v, e, _ := setup(t)
	ctx := context.Background()

	_, err := v.Validate(ctx, 1, user, "")
	require.NoError(t, err)

	res, err := v.Validate(ctx, 2, user, "a")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.UnlockNext)

	s2, err := e.TaskStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, progression.TaskState{Status: store.StatusFailed, Unlocked: true}, s2)

	s3, err := e.TaskStatus(ctx, 3, user)
	require.NoError(t, err)
	assert.False(t, s3.Unlocked)

	res, err = v.Validate(ctx, 2, user, " b ")
	require.NoError(t, err)
	assert.True(t, res.Success, "a failed task can be retried")
}

func TestValidateLockedTaskWritesNothing(t *testing.T) {
	v, _, st := setup(t)
	ctx := context.Background()

	progBefore := count(t, st, "progression")
	res, err := v.Validate(ctx, 3, user, "print('Bonjour, Python !')")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Locked)
	assert.Equal(t, progBefore, count(t, st, "progression"))
	assert.Equal(t, 0, count(t, st, "attempts"))
}

func TestValidateUnknownTask(t *testing.T) {
	v, _, st := setup(t)

	res, err := v.Validate(context.Background(), 999, user, "x")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.NotFound)
	assert.Equal(t, MsgNotFound, res.Message)
	assert.Equal(t, 0, count(t, st, "attempts"))
}

func TestValidateWholeLesson(t *testing.T) {
	v, e, st := setup(t)
	ctx := context.Background()

	inputs := []string{"", "B", "print('Bonjour, Python !')", "print('Hello, World!')\n\n"}
	for i, in := range inputs {
		res, err := v.Validate(ctx, int64(i+1), user, in)
		require.NoError(t, err)
		require.True(t, res.Success, "task %d: %s", i+1, res.Message)
		assert.Equal(t, i < 3, res.UnlockNext, "task %d", i+1)
	}

	state, err := e.LessonStatus(ctx, 2, user)
	require.NoError(t, err)
	assert.Equal(t, progression.LessonInProgress, state)

	attempts, err := st.Repo().ListAttempts(ctx, user, 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 4)
}

func TestValidateUnknownTypeMarksFailed(t *testing.T) {
	v, e, st := setup(t)
	ctx := context.Background()
	r := st.Repo()

	lessonID, err := r.AddLesson(ctx, store.Lesson{ModuleID: 1, Name: "extra"})
	require.NoError(t, err)
	// The new lesson sits behind lesson 4, so open its task by hand.
	taskID, err := r.AddTask(ctx, store.Task{LessonID: lessonID, Name: "vidéo", Type: "video"})
	require.NoError(t, err)
	require.NoError(t, r.UpsertTaskProgress(ctx, store.TaskProgress{
		UserID: user, ModuleID: 1, LessonID: lessonID, TaskID: taskID,
		Status: store.StatusNotStarted, Unlocked: true,
	}))

	res, err := v.Validate(ctx, taskID, user, "x")
	require.NoError(t, err)
	assert.Equal(t, MsgUnknownType, res.Message)

	s, err := e.TaskStatus(ctx, taskID, user)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, s.Status)
}

func TestLevenshteinConfigChangesHintOnly(t *testing.T) {
	_, e, st := setup(t)
	v := New(st, e, Config{Scorer: Levenshtein{}}, nil)
	ctx := context.Background()

	_, err := v.Validate(ctx, 1, user, "")
	require.NoError(t, err)
	_, err = v.Validate(ctx, 2, user, "b")
	require.NoError(t, err)

	target := "print('Bonjour, Python !')"
	res, err := v.Validate(ctx, 3, user, "p"+target)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgTypingClose, res.Message)
	assert.True(t, strings.HasPrefix(res.Message, "Presque"))
}
