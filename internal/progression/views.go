package progression

import (
	"context"

	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
)

// ModuleView is a module with the user's access and progress.
type ModuleView struct {
	store.Module
	Unlocked bool
	Progress stats.Progress
}

// LessonView is a lesson with the user's derived state and progress.
type LessonView struct {
	store.Lesson
	State    LessonState
	Progress stats.Progress
}

// TaskView is a task with the user's state.
type TaskView struct {
	store.Task
	TaskState
}

// Content is everything needed to present one task. Only the payload
// matching Task.Type is set.
type Content struct {
	Task     store.Task
	Quiz     *store.Quiz
	Typing   *store.Typing
	Exercise *store.Exercise
}

// Modules lists every module with unlock state and progress.
func (e *Engine) Modules(ctx context.Context, userID int64) ([]ModuleView, error) {
	var out []ModuleView
	err := e.view(ctx, func(tx *Tx) error {
		modules, err := tx.r.ListModules(ctx)
		if err != nil {
			return err
		}
		out = make([]ModuleView, 0, len(modules))
		for _, m := range modules {
			unlocked, err := tx.ModuleUnlocked(ctx, m.ID, userID)
			if err != nil {
				return err
			}
			p, err := stats.ModuleProgress(ctx, tx.r, m.ID, userID)
			if err != nil {
				return err
			}
			out = append(out, ModuleView{Module: m, Unlocked: unlocked, Progress: p})
		}
		return nil
	})
	return out, err
}

// Lessons lists a module's lessons with state and progress.
func (e *Engine) Lessons(ctx context.Context, moduleID, userID int64) ([]LessonView, error) {
	var out []LessonView
	err := e.view(ctx, func(tx *Tx) error {
		lessons, err := tx.r.ListLessons(ctx, moduleID)
		if err != nil {
			return err
		}
		out = make([]LessonView, 0, len(lessons))
		for _, l := range lessons {
			state, err := tx.LessonStatus(ctx, l.ID, userID)
			if err != nil {
				return err
			}
			p, err := stats.LessonProgress(ctx, tx.r, l.ID, userID)
			if err != nil {
				return err
			}
			out = append(out, LessonView{Lesson: l, State: state, Progress: p})
		}
		return nil
	})
	return out, err
}

// Tasks lists a lesson's tasks in unlock order with the user's state.
func (e *Engine) Tasks(ctx context.Context, lessonID, userID int64) ([]TaskView, error) {
	var out []TaskView
	err := e.view(ctx, func(tx *Tx) error {
		tasks, err := tx.r.ListTasks(ctx, lessonID)
		if err != nil {
			return err
		}
		out = make([]TaskView, 0, len(tasks))
		for _, t := range tasks {
			s, err := tx.TaskStatus(ctx, t.ID, userID)
			if err != nil {
				return err
			}
			out = append(out, TaskView{Task: t, TaskState: s})
		}
		return nil
	})
	return out, err
}

// Resume finds the first task the user can work on: unlocked and not yet
// completed, in module, lesson and task order. It returns nil when nothing
// reachable is left.
func (e *Engine) Resume(ctx context.Context, userID int64) (*TaskView, error) {
	var out *TaskView
	err := e.view(ctx, func(tx *Tx) error {
		modules, err := tx.r.ListModules(ctx)
		if err != nil {
			return err
		}
		for _, m := range modules {
			ok, err := tx.ModuleUnlocked(ctx, m.ID, userID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			lessons, err := tx.r.ListLessons(ctx, m.ID)
			if err != nil {
				return err
			}
			for _, l := range lessons {
				state, err := tx.LessonStatus(ctx, l.ID, userID)
				if err != nil {
					return err
				}
				if state != LessonInProgress {
					continue
				}
				tasks, err := tx.r.ListTasks(ctx, l.ID)
				if err != nil {
					return err
				}
				for _, t := range tasks {
					s, err := tx.TaskStatus(ctx, t.ID, userID)
					if err != nil {
						return err
					}
					if s.Unlocked && !s.Completed() {
						out = &TaskView{Task: t, TaskState: s}
						return nil
					}
				}
			}
		}
		return nil
	})
	return out, err
}

// TaskContent loads a task with its type-specific payload. It returns nil
// for an unknown task.
func (e *Engine) TaskContent(ctx context.Context, taskID int64) (*Content, error) {
	var c *Content
	err := e.view(ctx, func(tx *Tx) error {
		var err error
		c, err = LoadContent(ctx, tx.r, taskID)
		return err
	})
	return c, err
}

// LoadContent reads a task and the lesson row its type refers to. A
// missing payload row yields an empty one.
func LoadContent(ctx context.Context, r *store.Repo, taskID int64) (*Content, error) {
	task, err := r.GetTask(ctx, taskID)
	if err != nil || task == nil {
		return nil, err
	}
	c := &Content{Task: *task}
	switch task.Type {
	case store.TypeQuiz:
		if c.Quiz, err = r.GetQuiz(ctx, task.LessonID); c.Quiz == nil && err == nil {
			c.Quiz = &store.Quiz{LessonID: task.LessonID}
		}
	case store.TypeTyping:
		if c.Typing, err = r.GetTyping(ctx, task.LessonID); c.Typing == nil && err == nil {
			c.Typing = &store.Typing{LessonID: task.LessonID}
		}
	case store.TypeExercise:
		if c.Exercise, err = r.GetExercise(ctx, task.LessonID); c.Exercise == nil && err == nil {
			c.Exercise = &store.Exercise{LessonID: task.LessonID}
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
