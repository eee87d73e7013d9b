package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pylearn/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		c, err := e.engine.TaskContent(ctx, taskID)
		if err != nil {
			return fmt.Errorf("load task: %w", err)
		}
		if c == nil {
			return fmt.Errorf("task %d not found", taskID)
		}
		state, err := e.engine.TaskStatus(ctx, taskID, e.userID)
		if err != nil {
			return fmt.Errorf("task status: %w", err)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:      %d\n", c.Task.ID)
		fmt.Printf("Name:    %s\n", c.Task.Name)
		fmt.Printf("Type:    %s\n", c.Task.Type)
		fmt.Printf("Status:  %s %s\n", state.Status, taskIcon(state))
		if c.Task.Description != "" {
			fmt.Printf("\n%s\n", c.Task.Description)
		}
		fmt.Println(sep)

		if !state.Unlocked && !state.Completed() {
			fmt.Println("🔒 Cette tâche est verrouillée.")
			return nil
		}

		switch c.Task.Type {
		case store.TypeTheory:
			fmt.Println(c.Task.Content)
		case store.TypeQuiz:
			if c.Quiz != nil {
				fmt.Println(c.Quiz.Question)
			}
		case store.TypeTyping:
			if c.Typing != nil {
				fmt.Println("Recopiez exactement :")
				fmt.Println(c.Typing.Text)
			}
		case store.TypeExercise:
			if c.Exercise != nil {
				fmt.Println(c.Exercise.Prompt)
			}
		}
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit <task-id>",
	Short: "Submit an answer for a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		input, err := submissionInput(cmd)
		if err != nil {
			return err
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.validator.Validate(cmd.Context(), taskID, e.userID, input)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		fmt.Println(res.Message)
		if res.NotFound || res.Locked {
			return fmt.Errorf("submission rejected")
		}
		if res.UnlockNext {
			fmt.Println("Tâche suivante débloquée.")
		}
		return nil
	},
}

// submissionInput reads the answer from --answer, --file, or stdin when
// --file is "-".
func submissionInput(cmd *cobra.Command) (string, error) {
	answer, _ := cmd.Flags().GetString("answer")
	file, _ := cmd.Flags().GetString("file")
	switch {
	case answer != "" && file != "":
		return "", fmt.Errorf("use --answer or --file, not both")
	case file == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(b), nil
	default:
		return answer, nil
	}
}

func init() {
	submitCmd.Flags().String("answer", "", "Answer text (quiz letter, typed text, or code)")
	submitCmd.Flags().String("file", "", "Read the answer from a file (- for stdin)")
}
