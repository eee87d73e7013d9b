package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/store"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List modules with unlock state and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		modules, err := e.engine.Modules(cmd.Context(), e.userID)
		if err != nil {
			return fmt.Errorf("list modules: %w", err)
		}
		if len(modules) == 0 {
			fmt.Println("No modules found.")
			return nil
		}

		fmt.Printf("%-5s  %-36s  %-8s  %s\n", "ID", "Name", "Access", "Progress")
		fmt.Println(strings.Repeat("─", 70))
		for _, m := range modules {
			access := "🔓"
			if !m.Unlocked {
				access = "🔒"
			}
			fmt.Printf("%-5d  %-36s  %-8s  %3d%% (%d/%d)\n",
				m.ID, truncate(m.Name, 36), access, m.Progress.Percent, m.Progress.Completed, m.Progress.Total)
		}
		return nil
	},
}

var lessonsCmd = &cobra.Command{
	Use:   "lessons <module-id>",
	Short: "List the lessons of a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		moduleID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		lessons, err := e.engine.Lessons(cmd.Context(), moduleID, e.userID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		if len(lessons) == 0 {
			fmt.Printf("No lessons in module %d.\n", moduleID)
			return nil
		}

		fmt.Printf("%-5s  %-36s  %-12s  %s\n", "ID", "Name", "State", "Progress")
		fmt.Println(strings.Repeat("─", 72))
		for _, l := range lessons {
			fmt.Printf("%-5d  %-36s  %-12s  %3d%%\n",
				l.ID, truncate(l.Name, 36), lessonStateLabel(l.State), l.Progress.Percent)
		}
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks <lesson-id>",
	Short: "List the tasks of a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		tasks, err := e.engine.Tasks(cmd.Context(), lessonID, e.userID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Printf("No tasks in lesson %d.\n", lessonID)
			return nil
		}

		fmt.Printf("%-5s  %-30s  %-9s  %-12s  %s\n", "ID", "Name", "Type", "Status", "Access")
		fmt.Println(strings.Repeat("─", 72))
		for _, t := range tasks {
			fmt.Printf("%-5d  %-30s  %-9s  %-12s  %s\n",
				t.ID, truncate(t.Name, 30), t.Type, t.Status, taskIcon(t.TaskState))
		}
		return nil
	},
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func lessonStateLabel(s progression.LessonState) string {
	switch s {
	case progression.LessonCompleted:
		return "✓ terminée"
	case progression.LessonInProgress:
		return "en cours"
	default:
		return "🔒"
	}
}

func taskIcon(s progression.TaskState) string {
	switch {
	case s.Status == store.StatusCompleted:
		return "✓"
	case s.Status == store.StatusFailed:
		return "✗"
	case s.Unlocked:
		return "🔓"
	default:
		return "🔒"
	}
}
