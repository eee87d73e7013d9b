package store

import "time"

// TaskType selects how a task is presented and validated.
type TaskType string

const (
	TypeTheory   TaskType = "theory"
	TypeQuiz     TaskType = "quiz"
	TypeTyping   TaskType = "typing"
	TypeExercise TaskType = "exercise"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TypeTheory, TypeQuiz, TypeTyping, TypeExercise:
		return true
	}
	return false
}

// Status is the per-user state stored in a progression row.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Module is a top-level content grouping, ordered by ID.
type Module struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// Lesson belongs to a module and holds an ordered set of tasks.
type Lesson struct {
	ID          int64  `db:"id"`
	ModuleID    int64  `db:"module_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

// Task is the unit of unlock and completion tracking. Content is only
// meaningful for theory tasks.
type Task struct {
	ID          int64    `db:"id"`
	LessonID    int64    `db:"lesson_id"`
	Name        string   `db:"name"`
	Type        TaskType `db:"task_type"`
	Description string   `db:"description"`
	Content     string   `db:"content"`
}

// Quiz is a lesson's question and expected answer.
type Quiz struct {
	ID       int64  `db:"id"`
	LessonID int64  `db:"lesson_id"`
	Question string `db:"question"`
	Answer   string `db:"answer"`
}

// Typing is a lesson's text to copy.
type Typing struct {
	ID       int64  `db:"id"`
	LessonID int64  `db:"lesson_id"`
	Text     string `db:"text"`
}

// Exercise is a lesson's coding prompt and reference solution.
type Exercise struct {
	ID       int64  `db:"id"`
	LessonID int64  `db:"lesson_id"`
	Prompt   string `db:"prompt"`
	Solution string `db:"solution"`
}

// TaskProgress is one (user, task) progression row.
type TaskProgress struct {
	UserID   int64  `db:"user_id"`
	ModuleID int64  `db:"module_id"`
	LessonID int64  `db:"lesson_id"`
	TaskID   int64  `db:"task_id"`
	Status   Status `db:"status"`
	Unlocked bool   `db:"unlocked"`
}

// LessonProgress is a lesson-level progression row (task_id IS NULL).
type LessonProgress struct {
	UserID   int64  `db:"user_id"`
	ModuleID int64  `db:"module_id"`
	LessonID int64  `db:"lesson_id"`
	Status   Status `db:"status"`
}

// Attempt records one validated submission.
type Attempt struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	TaskID    int64     `db:"task_id"`
	Success   bool      `db:"success"`
	Input     string    `db:"input"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// Counts holds a completed/total pair of task counts.
type Counts struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
}
