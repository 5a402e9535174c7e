package schedule

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the stored schedule",
	Long: `Audit the stored schedule against its invariants.

Every job must hold exactly one entry per procedure, every entry's span
must contain exactly its planned working hours once lunch gaps and
Sundays are subtracted, and no two entries may occupy the same procedure
team at overlapping times. The audit also reports jobs that carry no
entries and jobs projected to finish after their completion target.

Examples:
  taktline schedule check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CheckScheduleHandler == nil {
			fmt.Println("Schedule checking requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		result, err := app.CheckScheduleHandler.Handle(cmd.Context(), queries.CheckScheduleQuery{})
		if err != nil {
			return fmt.Errorf("failed to check schedule: %w", err)
		}

		if result.JobsChecked == 0 {
			fmt.Println("No jobs on the board.")
			return nil
		}

		fmt.Printf("Checked %d jobs, %d entries.\n", result.JobsChecked, result.EntriesChecked)

		if result.Clean() {
			fmt.Println("No violations found.")
		} else {
			fmt.Printf("Found %d violation(s):\n", len(result.Violations))
			for _, v := range result.Violations {
				fmt.Printf("  [%s] job %d, procedure %d: %s\n", v.Kind, v.JobID, v.ProcedureID, v.Detail)
			}
		}

		for _, id := range result.AtRiskJobIDs {
			fmt.Printf("  warning: job %d finishes after its completion target\n", id)
		}
		for _, id := range result.UnplannedJobIDs {
			fmt.Printf("  warning: job %d has no schedule entries\n", id)
		}

		return nil
	},
}
