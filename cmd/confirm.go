package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Submit complete draft timesheets for approval",
	Long: `confirm submits every draft timesheet whose hours make a full week.
On the first of the month every draft is submitted.`,
	Args: cobra.NoArgs,
	RunE: runConfirm,
}

func runConfirm(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return confirmTimesheets(cmd.Context(), s, newConsole(cmd), cfg.NaturalHR.FullWeek, time.Now())
}

type draftConfirmer interface {
	Timesheets(ctx context.Context, status string) ([]model.Timesheet, error)
	ConfirmTimesheet(ctx context.Context, ts model.Timesheet, weekTotal int64) error
}

// shouldConfirm reports whether a timesheet is ready to submit on today.
func shouldConfirm(ts model.Timesheet, fullWeek string, today time.Time) bool {
	if ts.Status != model.StatusDraft {
		return false
	}
	return ts.Hours == fullWeek || today.Day() == 1
}

func confirmTimesheets(ctx context.Context, p draftConfirmer, con *console.Console, fullWeek string, today time.Time) error {
	drafts, err := p.Timesheets(ctx, model.StatusDraft)
	if err != nil {
		return err
	}

	confirmed := 0
	for _, ts := range drafts {
		if !shouldConfirm(ts, fullWeek, today) {
			continue
		}
		con.Echo(console.Blue, fmt.Sprintf("%s %s %s", ts.Week, ts.Status, ts.Hours))
		con.Echo(console.Yellow, fmt.Sprintf("%+v", ts))
		if err := p.ConfirmTimesheet(ctx, ts, naturalhr.WeekTotal(ts)); err != nil {
			return fmt.Errorf("confirming timesheet for %s: %w", ts.Week, err)
		}
		con.Echo(console.Green, "Confirmed timesheet for "+ts.Week)
		confirmed++
	}
	if confirmed == 0 {
		con.Println("No draft timesheets ready to confirm.")
	}
	return nil
}
