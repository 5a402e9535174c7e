package job

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var (
	updateName        string
	updateDescription string
	updateDeadline    string
	updateTime        string
)

var updateCmd = &cobra.Command{
	Use:   "update [job-id]",
	Short: "Update a job",
	Long: `Update the properties of an existing job.

Changing the deadline replans the whole schedule.

Examples:
  taktline job update 3 --name "Hull 14 rev B"
  taktline job update 3 --deadline 2026-06-28
  taktline job update 3 --deadline 2026-06-28 --time 12:00`,
	Aliases: []string{"edit", "modify"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateJobHandler == nil {
			fmt.Println("Job management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		jobID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job ID: %w", err)
		}

		updateJobCmd := commands.UpdateJobCommand{
			JobID: jobID,
		}

		// Check if any flags were provided
		flagsProvided := false

		if cmd.Flags().Changed("name") {
			updateJobCmd.Name = &updateName
			flagsProvided = true
		}

		if cmd.Flags().Changed("description") {
			updateJobCmd.Description = &updateDescription
			flagsProvided = true
		}

		if cmd.Flags().Changed("deadline") {
			date, err := parseDate(updateDeadline)
			if err != nil {
				return err
			}
			updateJobCmd.DeadlineDate = &date
			flagsProvided = true
		}

		if cmd.Flags().Changed("time") {
			timeOfDay, err := parseTimeOfDay(updateTime)
			if err != nil {
				return err
			}
			updateJobCmd.DeadlineTime = &timeOfDay
			flagsProvided = true
		}

		if !flagsProvided {
			return fmt.Errorf("no updates provided - use flags like --name, --description, --deadline, or --time")
		}

		result, err := app.UpdateJobHandler.Handle(cmd.Context(), updateJobCmd)
		if err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}

		fmt.Printf("Job updated: %d\n", jobID)
		cli.PrintRegeneration(result.Regeneration)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateName, "name", "n", "", "New name for the job")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description for the job")
	updateCmd.Flags().StringVar(&updateDeadline, "deadline", "", "New deadline date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateTime, "time", "", "New deadline time of day (HH:MM)")
}
