package cmd

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/model"
)

var timeOffCmd = &cobra.Command{
	Use:   "show-time-off",
	Short: "Show your leave and working from home requests",
	Args:  cobra.NoArgs,
	RunE:  runTimeOff,
}

func runTimeOff(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return showTimeOff(cmd.Context(), s, newConsole(cmd))
}

type timeOffLister interface {
	TimeOff(ctx context.Context) ([]model.TimeOff, error)
}

var timeOffHeaders = []string{"Type", "Start", "End", "Days", "Approved", "State"}

// showTimeOff prints requests newest first. Dates are ISO so they sort as
// strings.
func showTimeOff(ctx context.Context, p timeOffLister, con *console.Console) error {
	items, err := p.TimeOff(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		con.Println("No time off found.")
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartDate > items[j].StartDate
	})

	rows := make([][]string, 0, len(items))
	for _, t := range items {
		rows = append(rows, []string{t.LeaveType, t.StartDate, t.EndDate, t.Days, t.Approved, t.State})
	}
	con.PrintTable(timeOffHeaders, rows)
	return nil
}
