package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pylearn/internal/store"
)

const sampleJSON = `{
  "version": "1.2.0",
  "modules": [
    {
      "name": "Boucles",
      "description": "for et while",
      "lessons": [
        {
          "name": "La boucle for",
          "tasks": [
            {"name": "Théorie", "type": "theory", "content": "for i in range(3): ..."},
            {"name": "Quiz", "type": "quiz", "question": "range(3) produit combien de valeurs ?", "answer": "3"},
            {"name": "Saisie", "type": "typing", "text": "for i in range(3):"},
            {"name": "Exercice", "type": "exercise", "prompt": "Affichez 0 à 2.", "solution": "for i in range(3):\n    print(i)"}
          ]
        }
      ]
    }
  ]
}`

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		v       string
		wantErr bool
	}{
		{"1.0.0", false},
		{"v1.4.2", false},
		{"v0.9.0", false},
		{"v2.0.0", true},
		{"latest", true},
		{"", true},
	}
	for _, tt := range tests {
		err := CheckVersion(tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckVersion(%q) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(sampleJSON), "sample.json")
	require.NoError(t, err)
	require.Len(t, c.Modules, 1)
	require.Len(t, c.Modules[0].Lessons, 1)
	tasks := c.Modules[0].Lessons[0].Tasks
	require.Len(t, tasks, 4)
	assert.Equal(t, store.TypeQuiz, tasks[1].Type)
	assert.Equal(t, "3", tasks[1].Answer)
}

func TestLoadJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing version", `{"modules": []}`},
		{"unknown task type", `{"version": "1.0.0", "modules": [{"name": "m", "lessons": [{"name": "l", "tasks": [{"name": "t", "type": "video"}]}]}]}`},
		{"quiz without answer", `{"version": "1.0.0", "modules": [{"name": "m", "lessons": [{"name": "l", "tasks": [{"name": "t", "type": "quiz", "question": "?"}]}]}]}`},
		{"future major", `{"version": "2.0.0", "modules": []}`},
		{"unknown field", `{"version": "1.0.0", "modules": [], "author": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJSON(strings.NewReader(tt.doc), "doc.json")
			require.Error(t, err)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "got %T: %v", err, err)
		})
	}
}

func TestFromRows(t *testing.T) {
	rows := [][]string{
		XLSXColumns,
		{"M1", "desc", "L1", "", "Théorie", "theory", "", "corps"},
		{"M1", "", "L1", "", "Quiz", "QUIZ", "", "Q ?", "A"},
		{"M1", "", "L2", "", "Saisie", "typing", "", "", "print(1)"},
		{},
		{"M2", "", "L1", "", "Exercice", "exercise", "", "Faites x.", "x = 1"},
	}
	c, err := fromRows(rows)
	require.NoError(t, err)

	require.Len(t, c.Modules, 2)
	assert.Equal(t, "desc", c.Modules[0].Description)
	require.Len(t, c.Modules[0].Lessons, 2)
	require.Len(t, c.Modules[0].Lessons[0].Tasks, 2)
	assert.Equal(t, "corps", c.Modules[0].Lessons[0].Tasks[0].Content)
	assert.Equal(t, Task{Name: "Quiz", Type: store.TypeQuiz, Question: "Q ?", Answer: "A"}, c.Modules[0].Lessons[0].Tasks[1])
	assert.Equal(t, "print(1)", c.Modules[0].Lessons[1].Tasks[0].Text)
	assert.Equal(t, "x = 1", c.Modules[1].Lessons[0].Tasks[0].Solution)
}

func TestFromRowsRejectsMissingLesson(t *testing.T) {
	_, err := fromRows([][]string{XLSXColumns, {"M1", "", "", "", "T", "theory"}})
	assert.Error(t, err)
}

func TestXLSXTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, WriteTemplate(path))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Modules, 1)
	tasks := c.Modules[0].Lessons[0].Tasks
	require.Len(t, tasks, 4)
	assert.Equal(t, store.TypeExercise, tasks[3].Type)
	assert.Equal(t, "print('ok')", tasks[3].Solution)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "pylearn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()
	_, err = st.Seed(ctx)
	require.NoError(t, err)

	c, err := LoadJSON(strings.NewReader(sampleJSON), "sample.json")
	require.NoError(t, err)

	res, err := Apply(ctx, st, c)
	require.NoError(t, err)
	assert.Equal(t, Result{Modules: 1, Lessons: 1, Tasks: 4, Payloads: 3}, res)

	r := st.Repo()
	modules, err := r.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, modules, 4)
	assert.Equal(t, "Boucles", modules[3].Name)

	lessons, err := r.ListLessons(ctx, modules[3].ID)
	require.NoError(t, err)
	require.Len(t, lessons, 1)

	ex, err := r.GetExercise(ctx, lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, ex)
	assert.Equal(t, "for i in range(3):\n    print(i)", ex.Solution)
}
