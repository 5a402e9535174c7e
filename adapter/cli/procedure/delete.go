package procedure

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [procedure-id]",
	Short: "Delete a procedure",
	Long: `Delete a procedure from the flow.

Every job is replanned through the shortened flow immediately.

Examples:
  taktline procedure delete 2`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteProcedureHandler == nil {
			fmt.Println("Procedure management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		procedureID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid procedure ID: %w", err)
		}

		deleteProcedureCmd := commands.DeleteProcedureCommand{
			ProcedureID: procedureID,
		}

		result, err := app.DeleteProcedureHandler.Handle(cmd.Context(), deleteProcedureCmd)
		if err != nil {
			return fmt.Errorf("failed to delete procedure: %w", err)
		}

		fmt.Printf("Procedure deleted: %d\n", procedureID)
		cli.PrintRegeneration(result.Regeneration)
		return nil
	},
}
