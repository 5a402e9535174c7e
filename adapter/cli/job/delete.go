package job

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete a job",
	Long: `Delete a job and free its slots on the schedule.

The remaining jobs are replanned immediately.

Examples:
  taktline job delete 3`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteJobHandler == nil {
			fmt.Println("Job management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		jobID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job ID: %w", err)
		}

		deleteJobCmd := commands.DeleteJobCommand{
			JobID: jobID,
		}

		result, err := app.DeleteJobHandler.Handle(cmd.Context(), deleteJobCmd)
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}

		fmt.Printf("Job deleted: %d\n", jobID)
		cli.PrintRegeneration(result.Regeneration)
		return nil
	},
}
