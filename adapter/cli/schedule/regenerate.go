package schedule

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate the schedule",
	Long: `Throw away the current schedule and replan every job from scratch.

Mutations regenerate on their own; run this after changing the data
outside taktline or to confirm the board is current.

Examples:
  taktline schedule regenerate`,
	Aliases: []string{"regen"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RegenerateScheduleHandler == nil {
			fmt.Println("Schedule regeneration requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		result, err := app.RegenerateScheduleHandler.Handle(cmd.Context(), commands.RegenerateScheduleCommand{})
		if err != nil {
			return fmt.Errorf("failed to regenerate schedule: %w", err)
		}

		cli.PrintRegeneration(result)
		return nil
	},
}
