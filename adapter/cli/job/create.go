package job

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/commands"
)

var (
	description  string
	deadlineDate string
	deadlineTime string
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new job",
	Long: `Create a new job and plan it into the schedule.

The whole schedule is regenerated immediately, so the new job shows up
on the board together with every other job.

Examples:
  taktline job create "Hull 14" --deadline 2026-06-14
  taktline job create "Hull 15" --deadline 2026-06-20 --time 12:00
  taktline job create "Rework 3" --deadline 2026-07-01 --description "warranty repair"`,
	Aliases: []string{"add"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateJobHandler == nil {
			fmt.Println("Job management requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		name := args[0]

		date, err := parseDate(deadlineDate)
		if err != nil {
			return err
		}
		timeOfDay, err := parseTimeOfDay(deadlineTime)
		if err != nil {
			return err
		}

		createCmd := commands.CreateJobCommand{
			Name:         name,
			Description:  description,
			DeadlineDate: date,
			DeadlineTime: timeOfDay,
		}

		result, err := app.CreateJobHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		fmt.Printf("Job created: %d\n", result.JobID)
		fmt.Printf("  name: %s\n", name)
		fmt.Printf("  deadline: %s %s\n", date.Format("2006-01-02"), deadlineTime)
		cli.PrintRegeneration(result.Regeneration)

		return nil
	},
}

// parseDate parses a YYYY-MM-DD calendar date.
func parseDate(s string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline date format (use YYYY-MM-DD): %w", err)
	}
	return parsed, nil
}

// parseTimeOfDay converts an HH:MM string into an offset from midnight.
func parseTimeOfDay(s string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid deadline time format (use HH:MM): %w", err)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func init() {
	createCmd.Flags().StringVar(&deadlineDate, "deadline", "", "deadline date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&deadlineTime, "time", "17:00", "deadline time of day (HH:MM)")
	createCmd.Flags().StringVar(&description, "description", "", "job description")
	_ = createCmd.MarkFlagRequired("deadline")
}
