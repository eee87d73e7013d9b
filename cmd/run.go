package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/pylearn/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{
		Store:     e.store,
		Engine:    e.engine,
		Validator: e.validator,
		Stats:     e.stats,
		UserID:    e.userID,
		Logger:    e.log,
	})
}
