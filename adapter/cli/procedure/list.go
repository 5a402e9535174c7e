package procedure

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taktline/taktline/adapter/cli"
	"github.com/taktline/taktline/internal/planning/application/queries"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List procedures",
	Long: `List the procedure flow in sequence order.

Examples:
  taktline procedure list
  taktline procedure ls`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListProceduresHandler == nil {
			fmt.Println("Procedure listing requires database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		result, err := app.ListProceduresHandler.Handle(cmd.Context(), queries.ListProceduresQuery{})
		if err != nil {
			return fmt.Errorf("failed to list procedures: %w", err)
		}

		if len(result.Procedures) == 0 {
			fmt.Println("No procedures found. Create one with: taktline procedure create \"Procedure name\" --sequence 10")
			return nil
		}

		fmt.Printf("Procedures (%d):\n", len(result.Procedures))
		fmt.Println(strings.Repeat("-", 70))

		for _, p := range result.Procedures {
			fmt.Printf("%3d. %-30s %3dh x %d %s\n",
				p.Sequence,
				p.Name,
				p.PlannedTime,
				p.PlannedManpower,
				areaMarker(p.IsProd, p.IsStore),
			)
			if p.Description != "" {
				fmt.Printf("     ID: %d | %s\n", p.ID, p.Description)
			} else {
				fmt.Printf("     ID: %d\n", p.ID)
			}
		}

		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("Total flow time: %dh per job\n", result.TotalPlannedTime)

		return nil
	},
}

func areaMarker(isProd, isStore bool) string {
	switch {
	case isProd && isStore:
		return "[prod+store]"
	case isProd:
		return "[prod]"
	case isStore:
		return "[store]"
	default:
		return "[-]"
	}
}
