// Package catalog imports course content (modules, lessons, tasks and
// their quiz, typing and exercise payloads) from JSON or XLSX files.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/abhisek/pylearn/internal/store"
)

// SupportedMajor is the newest catalog format major version understood.
const SupportedMajor = "v1"

// Catalog is an importable content tree.
type Catalog struct {
	Version string   `json:"version"`
	Modules []Module `json:"modules"`
}

type Module struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tasks       []Task `json:"tasks,omitempty"`
}

// Task carries the fields for every task type; only those matching Type
// are used. Quiz, typing and exercise payloads become the lesson's
// content rows, first one of each kind wins.
type Task struct {
	Name        string         `json:"name"`
	Type        store.TaskType `json:"type"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content,omitempty"`
	Question    string         `json:"question,omitempty"`
	Answer      string         `json:"answer,omitempty"`
	Text        string         `json:"text,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Solution    string         `json:"solution,omitempty"`
}

// ValidationError reports content that cannot be imported.
type ValidationError struct {
	Source string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog %s: %v", e.Source, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CheckVersion accepts a semver version ("v" optional) whose major is not
// newer than SupportedMajor.
func CheckVersion(v string) error {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("version %q is not a semantic version", v)
	}
	if semver.Compare(semver.Major(v), SupportedMajor) > 0 {
		return fmt.Errorf("version %s is newer than supported %s", v, SupportedMajor)
	}
	return nil
}

// Check validates fields the loaders cannot express structurally.
func (c *Catalog) Check() error {
	if err := CheckVersion(c.Version); err != nil {
		return err
	}
	for i, m := range c.Modules {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("module %d: empty name", i+1)
		}
		for j, l := range m.Lessons {
			if strings.TrimSpace(l.Name) == "" {
				return fmt.Errorf("module %q lesson %d: empty name", m.Name, j+1)
			}
			for k, t := range l.Tasks {
				if !t.Type.Valid() {
					return fmt.Errorf("lesson %q task %d: unknown type %q", l.Name, k+1, t.Type)
				}
			}
		}
	}
	return nil
}

// Load reads a catalog, choosing the format from the file extension.
func Load(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSONFile(path)
	case ".xlsx":
		return LoadXLSX(path, "")
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// Result counts the rows created by Apply.
type Result struct {
	Modules  int
	Lessons  int
	Tasks    int
	Payloads int
}

// Apply inserts the catalog in one transaction. Existing content is left
// untouched; modules are appended after it.
func Apply(ctx context.Context, st *store.Store, c *Catalog) (Result, error) {
	var res Result
	err := st.Update(ctx, func(r *store.Repo) error {
		res = Result{}
		for _, m := range c.Modules {
			moduleID, err := r.AddModule(ctx, store.Module{Name: m.Name, Description: m.Description})
			if err != nil {
				return err
			}
			res.Modules++
			for _, l := range m.Lessons {
				if err := applyLesson(ctx, r, moduleID, l, &res); err != nil {
					return fmt.Errorf("lesson %q: %w", l.Name, err)
				}
			}
		}
		return nil
	})
	return res, err
}

func applyLesson(ctx context.Context, r *store.Repo, moduleID int64, l Lesson, res *Result) error {
	lessonID, err := r.AddLesson(ctx, store.Lesson{ModuleID: moduleID, Name: l.Name, Description: l.Description})
	if err != nil {
		return err
	}
	res.Lessons++

	seen := map[store.TaskType]bool{}
	for _, t := range l.Tasks {
		_, err := r.AddTask(ctx, store.Task{
			LessonID:    lessonID,
			Name:        t.Name,
			Type:        t.Type,
			Description: t.Description,
			Content:     t.Content,
		})
		if err != nil {
			return err
		}
		res.Tasks++

		if seen[t.Type] {
			continue
		}
		seen[t.Type] = true
		switch t.Type {
		case store.TypeQuiz:
			_, err = r.AddQuiz(ctx, store.Quiz{LessonID: lessonID, Question: t.Question, Answer: t.Answer})
		case store.TypeTyping:
			_, err = r.AddTyping(ctx, store.Typing{LessonID: lessonID, Text: t.Text})
		case store.TypeExercise:
			_, err = r.AddExercise(ctx, store.Exercise{LessonID: lessonID, Prompt: t.Prompt, Solution: t.Solution})
		default:
			continue
		}
		if err != nil {
			return err
		}
		res.Payloads++
	}
	return nil
}
