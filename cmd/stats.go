package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pylearn/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		g, err := e.stats.GlobalProgress(ctx, e.userID)
		if err != nil {
			return fmt.Errorf("global progress: %w", err)
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		fmt.Printf("Modules terminés:  %d/%d\n", g.CompletedModules, g.TotalModules)
		fmt.Printf("Leçons terminées:  %d/%d\n", g.CompletedLessons, g.TotalLessons)
		fmt.Printf("Tâches terminées:  %d/%d\n", g.CompletedTasks, g.TotalTasks)
		fmt.Printf("Progression:       %d%%\n", g.GlobalPercent)

		modules, err := e.engine.Modules(ctx, e.userID)
		if err != nil {
			return fmt.Errorf("list modules: %w", err)
		}
		fmt.Println()
		fmt.Println(strings.Repeat("─", 70))
		for _, m := range modules {
			label := fmt.Sprintf("%-36s", truncate(m.Name, 36))
			fmt.Println(components.NewProgressBar(label, m.Progress, true, 70).View())
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print statistics as JSON")
}
