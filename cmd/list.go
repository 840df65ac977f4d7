package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
)

var listWeeks int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent timesheets and their entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listWeeks, "weeks", 4, "Number of timesheets to show")
}

func runList(cmd *cobra.Command, args []string) error {
	if listWeeks < 1 {
		return fmt.Errorf("--weeks must be at least 1")
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return listTimesheets(cmd.Context(), s, newConsole(cmd), listWeeks)
}

var entryHeaders = []string{"Date", "Start", "End", "Breaks", "Reference"}

// listTimesheets prints the newest n timesheets, each as a header line and a
// table of its entries.
func listTimesheets(ctx context.Context, r naturalhr.TimesheetReader, con *console.Console, n int) error {
	timesheets, err := r.Timesheets(ctx, "")
	if err != nil {
		return err
	}
	if len(timesheets) == 0 {
		con.Println("No timesheets found.")
		return nil
	}

	naturalhr.SortByWeek(timesheets)
	if len(timesheets) > n {
		timesheets = timesheets[:n]
	}

	for _, ts := range timesheets {
		con.Echo(console.Blue, fmt.Sprintf("%s %s %s", ts.Week, ts.Status, ts.Hours))
		entries, err := r.Entries(ctx, ts)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Date, e.Start, e.End, e.Breaks, e.Reference})
		}
		con.PrintTable(entryHeaders, rows)
	}
	return nil
}
