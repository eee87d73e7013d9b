package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pylearn/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import course content from a JSON or XLSX catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		if template != "" {
			if err := catalog.WriteTemplate(template); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Println("Template written to", template)
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("a catalog file is required (or --template <out.xlsx>)")
		}

		c, err := catalog.Load(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := catalog.Apply(cmd.Context(), e.store, c)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Printf("Imported %d modules, %d lessons, %d tasks (%d payloads).\n",
			res.Modules, res.Lessons, res.Tasks, res.Payloads)
		return nil
	},
}

func init() {
	importCmd.Flags().String("template", "", "Write an XLSX template to this path instead of importing")
}
