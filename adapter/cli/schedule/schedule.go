package schedule

import (
	"github.com/spf13/cobra"
)

// Cmd is the schedule command group
var Cmd = &cobra.Command{
	Use:   "schedule",
	Short: "View and regenerate the production schedule",
	Long: `Show the planning board, regenerate it, and review past regenerations.

The schedule is derived state. It is rebuilt from the jobs and the
procedure flow on every change; regenerate only forces that rebuild by
hand.`,
	Aliases: []string{"sched"},
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(regenerateCmd)
	Cmd.AddCommand(checkCmd)
	Cmd.AddCommand(historyCmd)
}
