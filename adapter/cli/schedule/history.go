package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past regenerations",
	Long: `Show the regeneration log, newest first.

Each record names what triggered the rebuild, how long it took, and
which jobs came out unschedulable or late.

Examples:
  taktline schedule history
  taktline schedule history --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListRegenerationsHandler == nil {
			fmt.Println("Schedule history requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		records, err := app.ListRegenerationsHandler.Handle(cmd.Context(), queries.ListRegenerationsQuery{
			Limit: historyLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list regenerations: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No regenerations recorded yet.")
			return nil
		}

		fmt.Printf("Regenerations (%d):\n", len(records))
		fmt.Println(strings.Repeat("-", 70))

		for _, r := range records {
			fmt.Printf("%s  %-20s %d jobs, %d entries, %s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.TriggeredBy,
				r.JobsPlanned,
				r.EntriesWritten,
				r.Duration.Round(time.Millisecond),
			)
			if len(r.UnschedulableJobIDs) > 0 {
				fmt.Printf("    unschedulable jobs: %v\n", r.UnschedulableJobIDs)
			}
			if len(r.LateJobIDs) > 0 {
				fmt.Printf("    late jobs: %v\n", r.LateJobIDs)
			}
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "maximum records to show (default 20)")
}
