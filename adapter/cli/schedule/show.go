package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

var (
	fromDate string
	toDate   string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the planning board",
	Long: `Show the planning board, one job after another in deadline order.

Without flags the whole schedule is shown. A window limits the output
to entries touching that date range; jobs outside the window appear
without entries.

Examples:
  taktline schedule show
  taktline schedule show --from 2026-06-01 --to 2026-06-07`,
	Aliases: []string{"board"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetScheduleBoardHandler == nil {
			fmt.Println("Schedule viewing requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		query := queries.GetScheduleBoardQuery{}

		if fromDate != "" {
			from, err := time.Parse("2006-01-02", fromDate)
			if err != nil {
				return fmt.Errorf("invalid from date format (use YYYY-MM-DD): %w", err)
			}
			query.From = from
		}
		if toDate != "" {
			to, err := time.Parse("2006-01-02", toDate)
			if err != nil {
				return fmt.Errorf("invalid to date format (use YYYY-MM-DD): %w", err)
			}
			// Window end is inclusive of the named day.
			query.To = to.AddDate(0, 0, 1)
		}

		board, err := app.GetScheduleBoardHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to load schedule board: %w", err)
		}

		if len(board.Jobs) == 0 {
			fmt.Println("No jobs on the board. Create one with: taktline job create \"Job name\" --deadline YYYY-MM-DD")
			return nil
		}

		fmt.Printf("Planning board (%d jobs):\n", len(board.Jobs))
		fmt.Println(strings.Repeat("=", 70))

		for _, j := range board.Jobs {
			fmt.Printf("[%d] %s%s\n", j.JobID, j.JobName, jobStatus(j))
			fmt.Printf("    deadline %s | completion target %s\n",
				j.DeadlineAt.Format("2006-01-02 15:04"),
				j.CompletionTarget.Format("2006-01-02 15:04"),
			)
			if !j.ProjectedEnd.IsZero() {
				fmt.Printf("    projected end %s\n", j.ProjectedEnd.Format("2006-01-02 15:04"))
			}
			for _, e := range j.Entries {
				fmt.Printf("    %3d. %-28s %s - %s\n",
					e.Sequence,
					e.ProcedureName,
					e.Start.Format("Mon 2006-01-02 15:04"),
					e.End.Format("Mon 2006-01-02 15:04"),
				)
			}
			fmt.Println(strings.Repeat("-", 70))
		}

		return nil
	},
}

func jobStatus(j queries.JobBoardDTO) string {
	switch {
	case j.Unplanned:
		return " [UNPLANNED]"
	case j.AtRisk:
		return " [AT RISK]"
	default:
		return ""
	}
}

func init() {
	showCmd.Flags().StringVar(&fromDate, "from", "", "window start date (YYYY-MM-DD)")
	showCmd.Flags().StringVar(&toDate, "to", "", "window end date (YYYY-MM-DD, inclusive)")
}
