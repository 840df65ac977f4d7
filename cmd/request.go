package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

var requestCmd = &cobra.Command{
	Use:   "request Leave|WFH START END",
	Short: "Request leave or working from home",
	Long: `request submits a leave or working from home request for the days from
START to END inclusive, both given as YYYY-MM-DD. The duration counts
workdays under the configured public holiday calendar.`,
	Example:   "  synthetic request WFH 2026-03-02 2026-03-03",
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"Leave", "WFH"},
	RunE:      runRequest,
}

func runRequest(cmd *cobra.Command, args []string) error {
	holidays, err := timecalc.Calendar(cfg.NaturalHR.HolidayCalendar)
	if err != nil {
		return err
	}
	req, err := buildTimeOffRequest(args[0], args[1], args[2], holidays)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return requestTimeOff(cmd.Context(), s, newConsole(cmd), req)
}

// buildTimeOffRequest validates the command arguments. The employee id is
// filled in later from the portal.
func buildTimeOffRequest(kind, start, end string, holidays *cal.BusinessCalendar) (naturalhr.TimeOffRequest, error) {
	switch {
	case strings.EqualFold(kind, "Leave"):
		kind = "Leave"
	case strings.EqualFold(kind, "WFH"):
		kind = "WFH"
	default:
		return naturalhr.TimeOffRequest{}, fmt.Errorf("unknown request type %q: want Leave or WFH", kind)
	}

	from, err := time.ParseInLocation(timecalc.ISODate, start, time.Local)
	if err != nil {
		return naturalhr.TimeOffRequest{}, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", start)
	}
	to, err := time.ParseInLocation(timecalc.ISODate, end, time.Local)
	if err != nil {
		return naturalhr.TimeOffRequest{}, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", end)
	}
	if to.Before(from) {
		return naturalhr.TimeOffRequest{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	days := timecalc.Workdays(holidays, from, to)
	if days == 0 {
		return naturalhr.TimeOffRequest{}, fmt.Errorf("no workdays between %s and %s", start, end)
	}
	return naturalhr.TimeOffRequest{
		Type:  kind,
		Start: from.Format(timecalc.PortalDate),
		End:   to.Format(timecalc.PortalDate),
		Days:  days,
	}, nil
}

type timeOffRequester interface {
	EmployeeID(ctx context.Context) (string, error)
	RequestTimeOff(ctx context.Context, r naturalhr.TimeOffRequest) error
}

func requestTimeOff(ctx context.Context, p timeOffRequester, con *console.Console, req naturalhr.TimeOffRequest) error {
	id, err := p.EmployeeID(ctx)
	if err != nil {
		return err
	}
	req.EmployeeID = id
	if err := p.RequestTimeOff(ctx, req); err != nil {
		return fmt.Errorf("requesting %s: %w", req.Type, err)
	}
	con.Echo(console.Green, fmt.Sprintf("Requested %s from %s to %s (%d day(s))", req.Type, req.Start, req.End, req.Days))
	return nil
}
