package procedure

import (
	"github.com/spf13/cobra"
)

// Cmd is the procedure command group
var Cmd = &cobra.Command{
	Use:   "procedure",
	Short: "Manage the procedure flow",
	Long: `Create, list, update, and delete the procedures every job runs through.

Procedures form a single global flow ordered by sequence number. Each
job is planned through the full flow, one schedule entry per procedure.`,
	Aliases: []string{"proc"},
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}
