package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
)

// fakePortal is an in-memory portal session.
type fakePortal struct {
	timesheets []model.Timesheet
	entries    map[string][]model.ScrapedEntry
	refs       []string
	timeOff    []model.TimeOff
	items      []model.WorkflowItem
	employeeID string
	// rejectRef makes AddEntry fail for entries with this reference.
	rejectRef string

	added     []model.Entry
	confirmed map[string]int64
	requests  []naturalhr.TimeOffRequest
	approved  []model.WorkflowItem
}

func (f *fakePortal) Timesheets(_ context.Context, status string) ([]model.Timesheet, error) {
	var out []model.Timesheet
	for _, ts := range f.timesheets {
		if status == "" || ts.Status == status {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (f *fakePortal) Entries(_ context.Context, ts model.Timesheet) ([]model.ScrapedEntry, error) {
	return f.entries[ts.Week], nil
}

func (f *fakePortal) References(context.Context) ([]string, error) {
	return f.refs, nil
}

func (f *fakePortal) AddEntry(_ context.Context, e model.Entry) error {
	if f.rejectRef != "" && e.Reference == f.rejectRef {
		return errors.New("rejected by portal")
	}
	f.added = append(f.added, e)
	return nil
}

func (f *fakePortal) ConfirmTimesheet(_ context.Context, ts model.Timesheet, weekTotal int64) error {
	if f.confirmed == nil {
		f.confirmed = map[string]int64{}
	}
	f.confirmed[ts.Week] = weekTotal
	return nil
}

func (f *fakePortal) TimeOff(context.Context) ([]model.TimeOff, error) {
	return f.timeOff, nil
}

func (f *fakePortal) EmployeeID(context.Context) (string, error) {
	return f.employeeID, nil
}

func (f *fakePortal) RequestTimeOff(_ context.Context, r naturalhr.TimeOffRequest) error {
	f.requests = append(f.requests, r)
	return nil
}

func (f *fakePortal) Workflow(context.Context) ([]model.WorkflowItem, error) {
	return f.items, nil
}

func (f *fakePortal) Approve(_ context.Context, item model.WorkflowItem) error {
	f.approved = append(f.approved, item)
	return nil
}

// testConsole returns a console that answers with input and records output.
func testConsole(input string) (*console.Console, *bytes.Buffer) {
	var out bytes.Buffer
	return console.New(&out, strings.NewReader(input)), &out
}

func day(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", iso, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
