// Package stats rolls task completion up into lesson, module and global
// percentages.
package stats

import (
	"context"
	"fmt"
	"math"

	"github.com/abhisek/pylearn/internal/store"
)

// Progress is a completed/total pair with its rounded percentage.
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// Complete reports whether every counted task is done. An empty scope is
// never complete.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Fraction returns Completed/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

// Percent rounds completed/total*100 half away from zero. It returns 0
// when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func fromCounts(c store.Counts) Progress {
	return Progress{Completed: c.Completed, Total: c.Total, Percent: Percent(c.Completed, c.Total)}
}

// LessonProgress counts the lesson's completed tasks for the user.
func LessonProgress(ctx context.Context, r *store.Repo, lessonID, userID int64) (Progress, error) {
	c, err := r.LessonCounts(ctx, lessonID, userID)
	if err != nil {
		return Progress{}, fmt.Errorf("lesson %d progress: %w", lessonID, err)
	}
	return fromCounts(c), nil
}

// ModuleProgress counts completed tasks across all lessons of the module.
func ModuleProgress(ctx context.Context, r *store.Repo, moduleID, userID int64) (Progress, error) {
	c, err := r.ModuleCounts(ctx, moduleID, userID)
	if err != nil {
		return Progress{}, fmt.Errorf("module %d progress: %w", moduleID, err)
	}
	return fromCounts(c), nil
}

// LessonCompleted reports whether the user finished the lesson. A stored
// lesson-level completed row is authoritative, so retrying a task later
// does not reopen the lesson. Without one, every task must be completed
// and the lesson must have at least one task.
func LessonCompleted(ctx context.Context, r *store.Repo, lessonID, userID int64) (bool, error) {
	row, err := r.GetLessonProgress(ctx, userID, lessonID)
	if err != nil {
		return false, fmt.Errorf("lesson %d status: %w", lessonID, err)
	}
	if row != nil && row.Status == store.StatusCompleted {
		return true, nil
	}
	p, err := LessonProgress(ctx, r, lessonID, userID)
	if err != nil {
		return false, err
	}
	return p.Complete(), nil
}

// Global summarizes a user's progress over the whole catalog.
type Global struct {
	TotalModules     int `json:"total_modules"`
	CompletedModules int `json:"completed_modules"`
	TotalLessons     int `json:"total_lessons"`
	CompletedLessons int `json:"completed_lessons"`
	TotalTasks       int `json:"total_tasks"`
	CompletedTasks   int `json:"completed_tasks"`
	GlobalPercent    int `json:"global_percent"`
}

// GlobalProgress computes the user's catalog-wide counts. Run it inside a
// single read transaction so all counts come from one snapshot.
func GlobalProgress(ctx context.Context, r *store.Repo, userID int64) (Global, error) {
	var g Global

	tasks, err := r.TaskCounts(ctx, userID)
	if err != nil {
		return g, err
	}
	g.TotalTasks = tasks.Total
	g.CompletedTasks = tasks.Completed
	g.GlobalPercent = Percent(tasks.Completed, tasks.Total)

	modules, err := r.ListModules(ctx)
	if err != nil {
		return g, err
	}
	g.TotalModules = len(modules)
	for _, m := range modules {
		p, err := ModuleProgress(ctx, r, m.ID, userID)
		if err != nil {
			return g, err
		}
		if p.Complete() {
			g.CompletedModules++
		}
	}

	lessons, err := r.ListAllLessons(ctx)
	if err != nil {
		return g, err
	}
	g.TotalLessons = len(lessons)
	for _, l := range lessons {
		done, err := LessonCompleted(ctx, r, l.ID, userID)
		if err != nil {
			return g, err
		}
		if done {
			g.CompletedLessons++
		}
	}
	return g, nil
}

// Service runs the aggregations against a store, one snapshot per call.
type Service struct {
	st *store.Store
}

// NewService creates a Service backed by st.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// LessonProgress returns the user's progress through one lesson.
func (s *Service) LessonProgress(ctx context.Context, lessonID, userID int64) (Progress, error) {
	var p Progress
	err := s.st.View(ctx, func(r *store.Repo) error {
		var err error
		p, err = LessonProgress(ctx, r, lessonID, userID)
		return err
	})
	return p, err
}

// ModuleProgress returns the user's progress through one module.
func (s *Service) ModuleProgress(ctx context.Context, moduleID, userID int64) (Progress, error) {
	var p Progress
	err := s.st.View(ctx, func(r *store.Repo) error {
		var err error
		p, err = ModuleProgress(ctx, r, moduleID, userID)
		return err
	})
	return p, err
}

// GlobalProgress returns the user's catalog-wide summary.
func (s *Service) GlobalProgress(ctx context.Context, userID int64) (Global, error) {
	var g Global
	err := s.st.View(ctx, func(r *store.Repo) error {
		var err error
		g, err = GlobalProgress(ctx, r, userID)
		return err
	})
	return g, err
}
