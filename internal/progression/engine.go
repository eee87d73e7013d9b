// Package progression decides which modules, lessons and tasks a learner
// may open, and moves the unlock frontier forward as tasks are completed.
package progression

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
)

// Engine runs progression queries and updates against a store. Every
// public method is one transaction.
type Engine struct {
	st  *store.Store
	log *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine backed by st.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{st: st, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// In binds the engine to a repository, typically one obtained inside
// store.Update, so progression changes join the caller's transaction.
func (e *Engine) In(r *store.Repo) *Tx {
	return &Tx{r: r, log: e.log}
}

func (e *Engine) view(ctx context.Context, fn func(*Tx) error) error {
	return e.st.View(ctx, func(r *store.Repo) error { return fn(e.In(r)) })
}

func (e *Engine) update(ctx context.Context, fn func(*Tx) error) error {
	return e.st.Update(ctx, func(r *store.Repo) error { return fn(e.In(r)) })
}

// TaskStatus returns the user's state for a task.
func (e *Engine) TaskStatus(ctx context.Context, taskID, userID int64) (TaskState, error) {
	var s TaskState
	err := e.view(ctx, func(tx *Tx) error {
		var err error
		s, err = tx.TaskStatus(ctx, taskID, userID)
		return err
	})
	return s, err
}

// MarkCompleted completes the task and unlocks its successor. It reports
// whether a successor was unlocked.
func (e *Engine) MarkCompleted(ctx context.Context, taskID, userID int64) (bool, error) {
	var tr Transition
	err := e.update(ctx, func(tx *Tx) error {
		var err error
		tr, err = tx.MarkCompleted(ctx, taskID, userID)
		return err
	})
	return tr.UnlockedNext != 0, err
}

// MarkFailed records a failed attempt on the task.
func (e *Engine) MarkFailed(ctx context.Context, taskID, userID int64) error {
	return e.update(ctx, func(tx *Tx) error {
		_, err := tx.MarkFailed(ctx, taskID, userID)
		return err
	})
}

// UnlockNext unlocks the task after taskID in its lesson.
func (e *Engine) UnlockNext(ctx context.Context, taskID, userID int64) (bool, error) {
	var next int64
	err := e.update(ctx, func(tx *Tx) error {
		var err error
		next, err = tx.UnlockNext(ctx, taskID, userID)
		return err
	})
	return next != 0, err
}

// LessonStatus derives the lesson's state for the user.
func (e *Engine) LessonStatus(ctx context.Context, lessonID, userID int64) (LessonState, error) {
	var s LessonState
	err := e.view(ctx, func(tx *Tx) error {
		var err error
		s, err = tx.LessonStatus(ctx, lessonID, userID)
		return err
	})
	return s, err
}

// ModuleUnlocked reports whether the user may enter the module.
func (e *Engine) ModuleUnlocked(ctx context.Context, moduleID, userID int64) (bool, error) {
	var ok bool
	err := e.view(ctx, func(tx *Tx) error {
		var err error
		ok, err = tx.ModuleUnlocked(ctx, moduleID, userID)
		return err
	})
	return ok, err
}

// Reset deletes the user's progression and attempts and re-opens the
// first lesson.
func (e *Engine) Reset(ctx context.Context, userID int64) error {
	return e.update(ctx, func(tx *Tx) error { return tx.Reset(ctx, userID) })
}

// Tx evaluates progression rules on a single repository.
type Tx struct {
	r   *store.Repo
	log *zap.Logger
}

// TaskStatus returns the stored row for (userID, taskID) or the default
// state. The first task of a lesson the user can reach defaults to
// unlocked; the very first task of the catalog is such a task.
func (tx *Tx) TaskStatus(ctx context.Context, taskID, userID int64) (TaskState, error) {
	row, err := tx.r.GetTaskProgress(ctx, userID, taskID)
	if err != nil {
		return TaskState{}, err
	}
	if row != nil {
		return TaskState{Status: row.Status, Unlocked: row.Unlocked}, nil
	}

	def := TaskState{Status: store.StatusNotStarted}
	task, err := tx.r.GetTask(ctx, taskID)
	if err != nil || task == nil {
		return def, err
	}
	tasks, err := tx.r.ListTasks(ctx, task.LessonID)
	if err != nil {
		return def, err
	}
	if len(tasks) == 0 || tasks[0].ID != taskID {
		return def, nil
	}
	ls, err := tx.LessonStatus(ctx, task.LessonID, userID)
	if err != nil {
		return def, err
	}
	def.Unlocked = ls != LessonLocked
	return def, nil
}

// MarkCompleted sets the task to completed and unlocked, then unlocks its
// successor. When the lesson becomes fully completed its lesson-level row
// is marked completed too.
func (tx *Tx) MarkCompleted(ctx context.Context, taskID, userID int64) (Transition, error) {
	tr, task, err := tx.setStatus(ctx, taskID, userID, store.StatusCompleted)
	if err != nil || task == nil {
		return tr, err
	}

	next, err := tx.UnlockNext(ctx, taskID, userID)
	if err != nil {
		return tr, err
	}
	tr.UnlockedNext = next

	done, err := stats.LessonCompleted(ctx, tx.r, task.LessonID, userID)
	if err != nil {
		return tr, err
	}
	if done {
		lesson, err := tx.r.GetLesson(ctx, task.LessonID)
		if err != nil {
			return tr, err
		}
		var moduleID int64
		if lesson != nil {
			moduleID = lesson.ModuleID
		}
		err = tx.r.UpsertLessonProgress(ctx, store.LessonProgress{
			UserID:   userID,
			ModuleID: moduleID,
			LessonID: task.LessonID,
			Status:   store.StatusCompleted,
		})
		if err != nil {
			return tr, err
		}
		tr.LessonDone = true
	}

	tx.log.Info("task completed",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.String("from", string(tr.From)),
		zap.Int64("unlocked_next", tr.UnlockedNext),
		zap.Bool("lesson_done", tr.LessonDone))
	return tr, nil
}

// MarkFailed sets the task to failed. The task stays unlocked since the
// user was already attempting it.
func (tx *Tx) MarkFailed(ctx context.Context, taskID, userID int64) (Transition, error) {
	tr, task, err := tx.setStatus(ctx, taskID, userID, store.StatusFailed)
	if err != nil || task == nil {
		return tr, err
	}
	tx.log.Debug("task failed",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", taskID),
		zap.String("from", string(tr.From)))
	return tr, nil
}

// setStatus upserts the task's row with the given status and unlocked set.
// A missing task is a no-op and returns a nil task.
func (tx *Tx) setStatus(ctx context.Context, taskID, userID int64, status store.Status) (Transition, *store.Task, error) {
	tr := Transition{TaskID: taskID, From: store.StatusNotStarted, To: status}

	task, err := tx.r.GetTask(ctx, taskID)
	if err != nil || task == nil {
		return tr, nil, err
	}
	prev, err := tx.r.GetTaskProgress(ctx, userID, taskID)
	if err != nil {
		return tr, nil, err
	}
	if prev != nil {
		tr.From = prev.Status
	}

	moduleID, err := tx.moduleOf(ctx, task.LessonID)
	if err != nil {
		return tr, nil, err
	}
	err = tx.r.UpsertTaskProgress(ctx, store.TaskProgress{
		UserID:   userID,
		ModuleID: moduleID,
		LessonID: task.LessonID,
		TaskID:   taskID,
		Status:   status,
		Unlocked: true,
	})
	if err != nil {
		return tr, nil, fmt.Errorf("set task %d %s: %w", taskID, status, err)
	}
	return tr, task, nil
}

// UnlockNext unlocks the successor of taskID within its lesson and returns
// its ID, or 0 when taskID is the lesson's last task. An existing row keeps
// its status; a new one starts not_started.
func (tx *Tx) UnlockNext(ctx context.Context, taskID, userID int64) (int64, error) {
	task, err := tx.r.GetTask(ctx, taskID)
	if err != nil || task == nil {
		return 0, err
	}
	tasks, err := tx.r.ListTasks(ctx, task.LessonID)
	if err != nil {
		return 0, err
	}

	idx := indexOfTask(tasks, taskID)
	if idx < 0 || idx == len(tasks)-1 {
		return 0, nil
	}
	next := tasks[idx+1]

	row, err := tx.r.GetTaskProgress(ctx, userID, next.ID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		moduleID, err := tx.moduleOf(ctx, task.LessonID)
		if err != nil {
			return 0, err
		}
		row = &store.TaskProgress{
			UserID:   userID,
			ModuleID: moduleID,
			LessonID: next.LessonID,
			TaskID:   next.ID,
			Status:   store.StatusNotStarted,
		}
	}
	row.Unlocked = true
	if err := tx.r.UpsertTaskProgress(ctx, *row); err != nil {
		return 0, fmt.Errorf("unlock task %d: %w", next.ID, err)
	}
	return next.ID, nil
}

// LessonStatus is completed when the lesson-level row says so or every task
// is completed; otherwise in_progress when its module is unlocked and the
// lesson is the module's first or follows a completed lesson; otherwise
// locked. Unknown lessons are locked.
func (tx *Tx) LessonStatus(ctx context.Context, lessonID, userID int64) (LessonState, error) {
	lesson, err := tx.r.GetLesson(ctx, lessonID)
	if err != nil || lesson == nil {
		return LessonLocked, err
	}

	done, err := stats.LessonCompleted(ctx, tx.r, lessonID, userID)
	if err != nil {
		return LessonLocked, err
	}
	if done {
		return LessonCompleted, nil
	}

	unlocked, err := tx.ModuleUnlocked(ctx, lesson.ModuleID, userID)
	if err != nil || !unlocked {
		return LessonLocked, err
	}

	lessons, err := tx.r.ListLessons(ctx, lesson.ModuleID)
	if err != nil {
		return LessonLocked, err
	}
	idx := indexOfLesson(lessons, lessonID)
	if idx == 0 {
		return LessonInProgress, nil
	}
	if idx < 0 {
		return LessonLocked, nil
	}

	prevDone, err := stats.LessonCompleted(ctx, tx.r, lessons[idx-1].ID, userID)
	if err != nil || !prevDone {
		return LessonLocked, err
	}
	return LessonInProgress, nil
}

// ModuleUnlocked is true for the first module and for any module whose
// predecessor is fully completed.
func (tx *Tx) ModuleUnlocked(ctx context.Context, moduleID, userID int64) (bool, error) {
	modules, err := tx.r.ListModules(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOfModule(modules, moduleID)
	switch {
	case idx < 0:
		return false, nil
	case idx == 0:
		return true, nil
	}
	p, err := stats.ModuleProgress(ctx, tx.r, modules[idx-1].ID, userID)
	if err != nil {
		return false, err
	}
	return p.Complete(), nil
}

// Reset wipes the user's progression and attempts, then marks the first
// lesson of the first module in_progress again.
func (tx *Tx) Reset(ctx context.Context, userID int64) error {
	n, err := tx.r.DeleteProgress(ctx, userID)
	if err != nil {
		return err
	}
	if err := tx.r.DeleteAttempts(ctx, userID); err != nil {
		return err
	}

	modules, err := tx.r.ListModules(ctx)
	if err != nil || len(modules) == 0 {
		return err
	}
	lessons, err := tx.r.ListLessons(ctx, modules[0].ID)
	if err != nil || len(lessons) == 0 {
		return err
	}
	err = tx.r.UpsertLessonProgress(ctx, store.LessonProgress{
		UserID:   userID,
		ModuleID: modules[0].ID,
		LessonID: lessons[0].ID,
		Status:   store.StatusInProgress,
	})
	if err != nil {
		return err
	}
	tx.log.Info("progress reset", zap.Int64("user_id", userID), zap.Int64("rows", n))
	return nil
}

func (tx *Tx) moduleOf(ctx context.Context, lessonID int64) (int64, error) {
	lesson, err := tx.r.GetLesson(ctx, lessonID)
	if err != nil || lesson == nil {
		return 0, err
	}
	return lesson.ModuleID, nil
}

func indexOfTask(tasks []store.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func indexOfLesson(lessons []store.Lesson, id int64) int {
	for i, l := range lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func indexOfModule(modules []store.Module, id int64) int {
	for i, m := range modules {
		if m.ID == id {
			return i
		}
	}
	return -1
}
