package job

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Long: `List all jobs in planning priority order, earliest deadline first.

Examples:
  taktline job list
  taktline job ls`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListJobsHandler == nil {
			fmt.Println("Job listing requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		jobs, err := app.ListJobsHandler.Handle(cmd.Context(), queries.ListJobsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		if len(jobs) == 0 {
			fmt.Println("No jobs found. Create one with: taktline job create \"Job name\" --deadline YYYY-MM-DD")
			return nil
		}

		fmt.Printf("Jobs (%d):\n", len(jobs))
		fmt.Println(strings.Repeat("-", 70))

		for _, j := range jobs {
			fmt.Printf("[%d] %s | deadline %s\n", j.ID, j.Name, j.DeadlineAt.Format("2006-01-02 15:04"))
			if j.Description != "" {
				fmt.Printf("    %s\n", j.Description)
			}
		}

		return nil
	},
}
