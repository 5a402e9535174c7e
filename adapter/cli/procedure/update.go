package procedure

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var (
	updateSequence    int
	updateName        string
	updateDescription string
	updateHours       int
	updateManpower    int
	updateProd        bool
	updateStore       bool
)

var updateCmd = &cobra.Command{
	Use:   "update [procedure-id]",
	Short: "Update a procedure",
	Long: `Update the properties of an existing procedure.

Changing the sequence, planned time, or manpower replans every job.

Examples:
  taktline procedure update 2 --hours 16
  taktline procedure update 2 --sequence 15
  taktline procedure update 2 --name "Welding & grinding" --manpower 3`,
	Aliases: []string{"edit", "modify"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateProcedureHandler == nil {
			fmt.Println("Procedure management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		procedureID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid procedure ID: %w", err)
		}

		updateProcedureCmd := commands.UpdateProcedureCommand{
			ProcedureID: procedureID,
		}

		// Check if any flags were provided
		flagsProvided := false

		if cmd.Flags().Changed("sequence") {
			updateProcedureCmd.Sequence = &updateSequence
			flagsProvided = true
		}

		if cmd.Flags().Changed("name") {
			updateProcedureCmd.Name = &updateName
			flagsProvided = true
		}

		if cmd.Flags().Changed("description") {
			updateProcedureCmd.Description = &updateDescription
			flagsProvided = true
		}

		if cmd.Flags().Changed("hours") {
			updateProcedureCmd.PlannedTime = &updateHours
			flagsProvided = true
		}

		if cmd.Flags().Changed("manpower") {
			updateProcedureCmd.PlannedManpower = &updateManpower
			flagsProvided = true
		}

		if cmd.Flags().Changed("prod") {
			updateProcedureCmd.IsProd = &updateProd
			flagsProvided = true
		}

		if cmd.Flags().Changed("store") {
			updateProcedureCmd.IsStore = &updateStore
			flagsProvided = true
		}

		if !flagsProvided {
			return fmt.Errorf("no updates provided - use flags like --sequence, --name, --hours, --manpower, --prod, or --store")
		}

		result, err := app.UpdateProcedureHandler.Handle(cmd.Context(), updateProcedureCmd)
		if err != nil {
			return fmt.Errorf("failed to update procedure: %w", err)
		}

		fmt.Printf("Procedure updated: %d\n", procedureID)
		cli.PrintRegeneration(result.Regeneration)
		return nil
	},
}

func init() {
	updateCmd.Flags().IntVarP(&updateSequence, "sequence", "s", 0, "New position in the flow")
	updateCmd.Flags().StringVarP(&updateName, "name", "n", "", "New name for the procedure")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description for the procedure")
	updateCmd.Flags().IntVar(&updateHours, "hours", 0, "New planned working time in hours")
	updateCmd.Flags().IntVarP(&updateManpower, "manpower", "m", 0, "New planned number of workers")
	updateCmd.Flags().BoolVar(&updateProd, "prod", false, "Procedure runs in the production hall")
	updateCmd.Flags().BoolVar(&updateStore, "store", false, "Procedure runs in the storage area")
}
