package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taktline/taktline/internal/planning/application/commands"
)

// PrintRegeneration reports the outcome of a schedule regeneration. Every
// mutation regenerates the whole schedule, so all command groups share
// this output.
func PrintRegeneration(result *commands.RegenerateScheduleResult) {
	if result == nil {
		return
	}

	fmt.Printf("Schedule regenerated: %d jobs planned, %d entries written.\n",
		result.JobsPlanned, result.EntriesWritten)

	if len(result.UnschedulableJobIDs) > 0 {
		fmt.Printf("  warning: no schedule fits for job(s) %s\n", formatIDs(result.UnschedulableJobIDs))
	}
	if len(result.LateJobIDs) > 0 {
		fmt.Printf("  warning: job(s) %s finish after their deadline\n", formatIDs(result.LateJobIDs))
	}
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
