package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repo reads and writes catalog and progression rows. Lookups by ID
// return (nil, nil) when no row exists.
type Repo struct {
	q sqlx.ExtContext
}

func (r *Repo) get(ctx context.Context, op string, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, r.q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap(op, err)
	}
	return true, nil
}

func (r *Repo) insert(ctx context.Context, op, query string, arg any) (int64, error) {
	res, err := sqlx.NamedExecContext(ctx, r.q, query, arg)
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := res.LastInsertId()
	return id, wrap(op, err)
}

const moduleCols = `id, name, COALESCE(description, '') AS description`

// ListModules returns every module ordered by ID.
func (r *Repo) ListModules(ctx context.Context) ([]Module, error) {
	var out []Module
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+moduleCols+` FROM modules ORDER BY id`)
	return out, wrap("list modules", err)
}

// GetModule returns the module with the given ID.
func (r *Repo) GetModule(ctx context.Context, id int64) (*Module, error) {
	var m Module
	ok, err := r.get(ctx, "get module", &m, `SELECT `+moduleCols+` FROM modules WHERE id = ?`, id)
	if !ok {
		return nil, err
	}
	return &m, nil
}

// CountModules returns the number of modules.
func (r *Repo) CountModules(ctx context.Context) (int, error) {
	var n int
	_, err := r.get(ctx, "count modules", &n, `SELECT COUNT(*) FROM modules`)
	return n, err
}

// AddModule inserts a module and returns its ID.
func (r *Repo) AddModule(ctx context.Context, m Module) (int64, error) {
	return r.insert(ctx, "add module",
		`INSERT INTO modules (name, description) VALUES (:name, :description)`, m)
}

const lessonCols = `id, COALESCE(module_id, 0) AS module_id, name, COALESCE(description, '') AS description`

// ListLessons returns the lessons of a module ordered by ID.
func (r *Repo) ListLessons(ctx context.Context, moduleID int64) ([]Lesson, error) {
	var out []Lesson
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+lessonCols+` FROM lessons WHERE module_id = ? ORDER BY id`, moduleID)
	return out, wrap("list lessons", err)
}

// ListAllLessons returns every lesson ordered by ID.
func (r *Repo) ListAllLessons(ctx context.Context) ([]Lesson, error) {
	var out []Lesson
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+lessonCols+` FROM lessons ORDER BY id`)
	return out, wrap("list all lessons", err)
}

// GetLesson returns the lesson with the given ID.
func (r *Repo) GetLesson(ctx context.Context, id int64) (*Lesson, error) {
	var l Lesson
	ok, err := r.get(ctx, "get lesson", &l, `SELECT `+lessonCols+` FROM lessons WHERE id = ?`, id)
	if !ok {
		return nil, err
	}
	return &l, nil
}

// AddLesson inserts a lesson and returns its ID.
func (r *Repo) AddLesson(ctx context.Context, l Lesson) (int64, error) {
	return r.insert(ctx, "add lesson",
		`INSERT INTO lessons (module_id, name, description) VALUES (:module_id, :name, :description)`, l)
}

const taskCols = `id, COALESCE(lesson_id, 0) AS lesson_id, name,
	COALESCE(task_type, 'theory') AS task_type,
	COALESCE(description, '') AS description,
	COALESCE(content, '') AS content`

// ListTasks returns the tasks of a lesson in unlock order.
func (r *Repo) ListTasks(ctx context.Context, lessonID int64) ([]Task, error) {
	var out []Task
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT `+taskCols+` FROM tasks WHERE lesson_id = ? ORDER BY id`, lessonID)
	return out, wrap("list tasks", err)
}

// ListAllTasks returns every task ordered by ID.
func (r *Repo) ListAllTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+taskCols+` FROM tasks ORDER BY id`)
	return out, wrap("list all tasks", err)
}

// GetTask returns the task with the given ID.
func (r *Repo) GetTask(ctx context.Context, id int64) (*Task, error) {
	var t Task
	ok, err := r.get(ctx, "get task", &t, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	if !ok {
		return nil, err
	}
	return &t, nil
}

// AddTask inserts a task and returns its ID. An empty type is stored as theory.
func (r *Repo) AddTask(ctx context.Context, t Task) (int64, error) {
	if t.Type == "" {
		t.Type = TypeTheory
	}
	return r.insert(ctx, "add task",
		`INSERT INTO tasks (lesson_id, name, task_type, description, content)
		 VALUES (:lesson_id, :name, :task_type, :description, :content)`, t)
}

// GetQuiz returns the first quiz row of a lesson.
func (r *Repo) GetQuiz(ctx context.Context, lessonID int64) (*Quiz, error) {
	var q Quiz
	ok, err := r.get(ctx, "get quiz", &q,
		`SELECT id, lesson_id, question, COALESCE(answer, '') AS answer
		 FROM quiz WHERE lesson_id = ? ORDER BY id LIMIT 1`, lessonID)
	if !ok {
		return nil, err
	}
	return &q, nil
}

// AddQuiz inserts a quiz row and returns its ID.
func (r *Repo) AddQuiz(ctx context.Context, q Quiz) (int64, error) {
	return r.insert(ctx, "add quiz",
		`INSERT INTO quiz (lesson_id, question, answer) VALUES (:lesson_id, :question, :answer)`, q)
}

// GetTyping returns the first typing row of a lesson.
func (r *Repo) GetTyping(ctx context.Context, lessonID int64) (*Typing, error) {
	var t Typing
	ok, err := r.get(ctx, "get typing", &t,
		`SELECT id, lesson_id, text FROM typing WHERE lesson_id = ? ORDER BY id LIMIT 1`, lessonID)
	if !ok {
		return nil, err
	}
	return &t, nil
}

// AddTyping inserts a typing row and returns its ID.
func (r *Repo) AddTyping(ctx context.Context, t Typing) (int64, error) {
	return r.insert(ctx, "add typing",
		`INSERT INTO typing (lesson_id, text) VALUES (:lesson_id, :text)`, t)
}

// GetExercise returns the first exercise row of a lesson.
func (r *Repo) GetExercise(ctx context.Context, lessonID int64) (*Exercise, error) {
	var e Exercise
	ok, err := r.get(ctx, "get exercise", &e,
		`SELECT id, lesson_id, prompt, COALESCE(solution, '') AS solution
		 FROM exercise WHERE lesson_id = ? ORDER BY id LIMIT 1`, lessonID)
	if !ok {
		return nil, err
	}
	return &e, nil
}

// AddExercise inserts an exercise row and returns its ID.
func (r *Repo) AddExercise(ctx context.Context, e Exercise) (int64, error) {
	return r.insert(ctx, "add exercise",
		`INSERT INTO exercise (lesson_id, prompt, solution) VALUES (:lesson_id, :prompt, :solution)`, e)
}

const progressCols = `COALESCE(user_id, 0) AS user_id,
	COALESCE(module_id, 0) AS module_id,
	COALESCE(lesson_id, 0) AS lesson_id`

// GetTaskProgress returns the progression row for (userID, taskID).
func (r *Repo) GetTaskProgress(ctx context.Context, userID, taskID int64) (*TaskProgress, error) {
	var p TaskProgress
	ok, err := r.get(ctx, "get task progress", &p,
		`SELECT `+progressCols+`, task_id,
			COALESCE(status, 'not_started') AS status,
			COALESCE(unlocked, 0) AS unlocked
		 FROM progression WHERE user_id = ? AND task_id = ? ORDER BY id LIMIT 1`, userID, taskID)
	if !ok {
		return nil, err
	}
	return &p, nil
}

// UpsertTaskProgress writes the row for (p.UserID, p.TaskID), updating it
// in place when one exists.
func (r *Repo) UpsertTaskProgress(ctx context.Context, p TaskProgress) error {
	res, err := sqlx.NamedExecContext(ctx, r.q,
		`UPDATE progression
		 SET status = :status, unlocked = :unlocked, lesson_id = :lesson_id, module_id = :module_id
		 WHERE user_id = :user_id AND task_id = :task_id`, p)
	if err != nil {
		return wrap("update task progress", err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return wrap("update task progress", err)
	}
	_, err = r.insert(ctx, "insert task progress",
		`INSERT INTO progression (user_id, module_id, lesson_id, task_id, status, unlocked)
		 VALUES (:user_id, :module_id, :lesson_id, :task_id, :status, :unlocked)`, p)
	return err
}

// GetLessonProgress returns the lesson-level row for (userID, lessonID).
func (r *Repo) GetLessonProgress(ctx context.Context, userID, lessonID int64) (*LessonProgress, error) {
	var p LessonProgress
	ok, err := r.get(ctx, "get lesson progress", &p,
		`SELECT `+progressCols+`, COALESCE(status, 'not_started') AS status
		 FROM progression WHERE user_id = ? AND lesson_id = ? AND task_id IS NULL
		 ORDER BY id LIMIT 1`, userID, lessonID)
	if !ok {
		return nil, err
	}
	return &p, nil
}

// UpsertLessonProgress writes the lesson-level row for (p.UserID, p.LessonID).
func (r *Repo) UpsertLessonProgress(ctx context.Context, p LessonProgress) error {
	res, err := sqlx.NamedExecContext(ctx, r.q,
		`UPDATE progression SET status = :status, module_id = :module_id
		 WHERE user_id = :user_id AND lesson_id = :lesson_id AND task_id IS NULL`, p)
	if err != nil {
		return wrap("update lesson progress", err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return wrap("update lesson progress", err)
	}
	_, err = r.insert(ctx, "insert lesson progress",
		`INSERT INTO progression (user_id, module_id, lesson_id, status, unlocked)
		 VALUES (:user_id, :module_id, :lesson_id, :status, 1)`, p)
	return err
}

// DeleteProgress removes every progression row of a user.
func (r *Repo) DeleteProgress(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM progression WHERE user_id = ?`, userID)
	if err != nil {
		return 0, wrap("delete progress", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("delete progress", err)
}

const completedExpr = `COALESCE(SUM(EXISTS (
	SELECT 1 FROM progression p
	WHERE p.user_id = ? AND p.task_id = t.id AND p.status = 'completed'
)), 0)`

// LessonCounts counts a lesson's tasks and how many the user completed.
func (r *Repo) LessonCounts(ctx context.Context, lessonID, userID int64) (Counts, error) {
	var c Counts
	_, err := r.get(ctx, "lesson counts", &c,
		`SELECT COUNT(*) AS total, `+completedExpr+` AS completed
		 FROM tasks t WHERE t.lesson_id = ?`, userID, lessonID)
	return c, err
}

// ModuleCounts counts the tasks under a module's lessons and how many the
// user completed.
func (r *Repo) ModuleCounts(ctx context.Context, moduleID, userID int64) (Counts, error) {
	var c Counts
	_, err := r.get(ctx, "module counts", &c,
		`SELECT COUNT(*) AS total, `+completedExpr+` AS completed
		 FROM tasks t JOIN lessons l ON l.id = t.lesson_id
		 WHERE l.module_id = ?`, userID, moduleID)
	return c, err
}

// TaskCounts counts every task and how many the user completed.
func (r *Repo) TaskCounts(ctx context.Context, userID int64) (Counts, error) {
	var c Counts
	_, err := r.get(ctx, "task counts", &c,
		`SELECT COUNT(*) AS total, `+completedExpr+` AS completed FROM tasks t`, userID)
	return c, err
}

// AppendAttempt stores a submission. ID and CreatedAt are filled in when empty.
func (r *Repo) AppendAttempt(ctx context.Context, a *Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := sqlx.NamedExecContext(ctx, r.q,
		`INSERT INTO attempts (id, user_id, task_id, success, input, message, created_at)
		 VALUES (:id, :user_id, :task_id, :success, :input, :message, :created_at)`, a)
	return wrap("append attempt", err)
}

// ListAttempts returns the user's most recent attempts, newest first.
// A non-positive limit returns all of them.
func (r *Repo) ListAttempts(ctx context.Context, userID int64, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = -1
	}
	var out []Attempt
	err := sqlx.SelectContext(ctx, r.q, &out,
		`SELECT id, user_id, task_id, success, input, message, created_at
		 FROM attempts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	return out, wrap("list attempts", err)
}

// DeleteAttempts removes every attempt of a user.
func (r *Repo) DeleteAttempts(ctx context.Context, userID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM attempts WHERE user_id = ?`, userID)
	return wrap("delete attempts", err)
}
