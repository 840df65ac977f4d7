package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve pending working from home requests and timesheets",
	Args:  cobra.NoArgs,
	RunE:  runApprove,
}

func runApprove(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return approveWorkflow(cmd.Context(), s, newConsole(cmd))
}

type approver interface {
	Workflow(ctx context.Context) ([]model.WorkflowItem, error)
	Approve(ctx context.Context, item model.WorkflowItem) error
}

// approveWorkflow shows WFH requests, then timesheets, asking about each one.
func approveWorkflow(ctx context.Context, p approver, con *console.Console) error {
	items, err := p.Workflow(ctx)
	if err != nil {
		return err
	}

	var wfh, timesheets []model.WorkflowItem
	for _, it := range items {
		switch it.Kind {
		case model.WorkflowWFH:
			wfh = append(wfh, it)
		case model.WorkflowTimesheet:
			timesheets = append(timesheets, it)
		}
	}
	if len(wfh) == 0 && len(timesheets) == 0 {
		con.Println("Nothing to approve.")
		return nil
	}

	if len(wfh) > 0 {
		rows := make([][]string, 0, len(wfh))
		for _, it := range wfh {
			rows = append(rows, []string{it.Name, it.WFHDate})
		}
		con.PrintTable([]string{"Name", "Date"}, rows)
		for _, it := range wfh {
			if err := approveOne(ctx, p, con, it, fmt.Sprintf("Approve WFH for %s on %s?", it.Name, it.WFHDate)); err != nil {
				return err
			}
		}
	}

	if len(timesheets) > 0 {
		rows := make([][]string, 0, len(timesheets))
		for _, it := range timesheets {
			rows = append(rows, []string{it.Name, it.Week, timecalc.FormatDuration(it.WeekTotal)})
		}
		con.PrintTable([]string{"Name", "Week", "Hours"}, rows)
		for _, it := range timesheets {
			if err := approveOne(ctx, p, con, it, fmt.Sprintf("Approve timesheet for %s, week %s?", it.Name, it.Week)); err != nil {
				return err
			}
		}
	}
	return nil
}

func approveOne(ctx context.Context, p approver, con *console.Console, it model.WorkflowItem, question string) error {
	ok, err := con.Confirm(question)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := p.Approve(ctx, it); err != nil {
		return fmt.Errorf("approving %s for %s: %w", it.Kind, it.Name, err)
	}
	con.Echo(console.Green, "Approved "+string(it.Kind)+" for "+it.Name)
	return nil
}
