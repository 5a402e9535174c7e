package job

import (
	"github.com/spf13/cobra"
)

// Cmd is the job command group
var Cmd = &cobra.Command{
	Use:   "job",
	Short: "Manage production jobs",
	Long:  `Create, list, update, and delete the jobs on the production schedule.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}
