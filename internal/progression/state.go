package progression

import "github.com/abhisek/pylearn/internal/store"

// LessonState is the derived accessibility of a lesson.
type LessonState string

const (
	LessonLocked     LessonState = "locked"
	LessonInProgress LessonState = "in_progress"
	LessonCompleted  LessonState = "completed"
)

// TaskState is a user's standing on one task.
type TaskState struct {
	Status   store.Status
	Unlocked bool
}

// Completed reports whether the task is done.
func (s TaskState) Completed() bool {
	return s.Status == store.StatusCompleted
}

// Transition records a progression change for logging and display.
type Transition struct {
	TaskID       int64
	From         store.Status
	To           store.Status
	UnlockedNext int64 // 0 when nothing was unlocked
	LessonDone   bool
}
