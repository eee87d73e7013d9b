package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		attempts, err := e.store.Repo().ListAttempts(cmd.Context(), e.userID, limit)
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No submissions yet.")
			return nil
		}

		fmt.Printf("%-19s  %-6s  %-3s  %s\n", "Timestamp", "Task", "OK", "Message")
		fmt.Println(strings.Repeat("─", 80))
		for _, a := range attempts {
			ok := "✓"
			if !a.Success {
				ok = "✗"
			}
			fmt.Printf("%-19s  %-6d  %-3s  %s\n",
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.TaskID, ok, truncate(a.Message, 48))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of submissions to show (0 for all)")
}
