package procedure

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var (
	sequence    int
	hours       int
	manpower    int
	isProd      bool
	isStore     bool
	description string
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new procedure",
	Long: `Create a new procedure in the flow.

The sequence number places the procedure in the flow; every job is
replanned through the changed flow immediately.

Examples:
  taktline procedure create "Welding" --sequence 10 --hours 12 --manpower 2
  taktline procedure create "Quality check" --sequence 40 --hours 2 --manpower 1
  taktline procedure create "Storage prep" --sequence 50 --hours 4 --prod=false --store`,
	Aliases: []string{"add"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateProcedureHandler == nil {
			fmt.Println("Procedure management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		name := args[0]

		createCmd := commands.CreateProcedureCommand{
			Sequence:        sequence,
			Name:            name,
			Description:     description,
			PlannedTime:     hours,
			PlannedManpower: manpower,
			IsProd:          isProd,
			IsStore:         isStore,
		}

		result, err := app.CreateProcedureHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create procedure: %w", err)
		}

		fmt.Printf("Procedure created: %d\n", result.ProcedureID)
		fmt.Printf("  name: %s\n", name)
		fmt.Printf("  sequence: %d\n", sequence)
		fmt.Printf("  planned: %dh x %d workers\n", hours, manpower)
		cli.PrintRegeneration(result.Regeneration)

		return nil
	},
}

func init() {
	createCmd.Flags().IntVarP(&sequence, "sequence", "s", 0, "position in the flow (lower runs first)")
	createCmd.Flags().IntVar(&hours, "hours", 0, "planned working time in hours")
	createCmd.Flags().IntVarP(&manpower, "manpower", "m", 1, "planned number of workers")
	createCmd.Flags().BoolVar(&isProd, "prod", true, "procedure runs in the production hall")
	createCmd.Flags().BoolVar(&isStore, "store", false, "procedure runs in the storage area")
	createCmd.Flags().StringVar(&description, "description", "", "procedure description")
	_ = createCmd.MarkFlagRequired("sequence")
}
