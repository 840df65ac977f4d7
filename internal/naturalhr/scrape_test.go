package naturalhr

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tiliavir/synthetic/internal/model"
)

func TestParseTimesheets(t *testing.T) {
	doc := mustDoc(t, timesheetIndexHTML)

	all := parseTimesheets(doc, "")
	if len(all) != 3 {
		t.Fatalf("parseTimesheets = %d rows, want 3", len(all))
	}
	want := model.Timesheet{
		Week:   "23/02/2026",
		Status: "Draft",
		Hours:  "40h 0m",
		Links: []string{
			"/hr/self-service/timesheets/timesheet-view?id=2",
			"/hr/self-service/timesheets/timesheet-confirm?id=2",
		},
	}
	if diff := cmp.Diff(want, all[1]); diff != "" {
		t.Errorf("draft row mismatch (-want +got):\n%s", diff)
	}

	approved := parseTimesheets(doc, model.StatusApproved)
	if len(approved) != 2 {
		t.Errorf("approved = %d rows, want 2", len(approved))
	}
	for _, ts := range approved {
		if ts.Status != model.StatusApproved {
			t.Errorf("status filter let through %q", ts.Status)
		}
	}
}

func TestParseEntries(t *testing.T) {
	got := parseEntries(mustDoc(t, approvedWeekHTML), "16/02/2026")
	want := []model.ScrapedEntry{
		{Week: "16/02/2026", Date: "16/02/2026", Start: "09:00", End: "18:00", Breaks: "60", Reference: "Quidco BAU"},
		{Week: "16/02/2026", Date: "20/02/2026", Start: "09:00", End: "17:00", Breaks: "60", Reference: "Quidco BAU"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseEntries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReferences(t *testing.T) {
	got := parseReferences(mustDoc(t, timesheetAddHTML))
	want := []string{"Quidco BAU", "V3 BAU", "Holiday"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseReferences mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimeOff(t *testing.T) {
	got, err := parseTimeOff(mustDoc(t, timeOffHTML))
	if err != nil {
		t.Fatalf("parseTimeOff: %v", err)
	}
	want := []model.TimeOff{
		{LeaveType: "Leave", StartDate: "2026-03-02", EndDate: "2026-03-03", Days: "2", Approved: "Approved", State: "Taken"},
		{LeaveType: "WFH", StartDate: "2026-03-10", EndDate: "2026-03-10", Days: "1", Approved: "Declined", State: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseTimeOff mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimeOffBadDate(t *testing.T) {
	doc := mustDoc(t, `<table><tr><th>a</th></tr><tr><th>b</th></tr>
<tr><td>Leave</td><td>soon</td><td>later</td><td>2</td><td>days</td><td>Approved</td><td>Taken</td></tr></table>`)
	if _, err := parseTimeOff(doc); err == nil {
		t.Error("expected error for unparseable dates")
	}
}

func TestParseEmployeeID(t *testing.T) {
	if got := parseEmployeeID(mustDoc(t, timeOffAddHTML)); got != "4711" {
		t.Errorf("parseEmployeeID = %q, want 4711", got)
	}
	if got := parseEmployeeID(mustDoc(t, "<form></form>")); got != "" {
		t.Errorf("parseEmployeeID on empty form = %q", got)
	}
}

func TestParseWorkflow(t *testing.T) {
	items := parseWorkflow(mustDoc(t, workflowHTML))
	if len(items) != 2 {
		t.Fatalf("parseWorkflow = %d items, want 2", len(items))
	}
	if items[0].Link != "/hr/workflow/timesheet-approve?id=9" || len(items[0].Words) != 5 {
		t.Errorf("timesheet item = %+v", items[0])
	}
	if items[1].Link != "/hr/workflow/time-off-approve?id=4" {
		t.Errorf("wfh item link = %q, want the last link", items[1].Link)
	}
}

func TestTimesheetApproval(t *testing.T) {
	sum := parseWorkflow(mustDoc(t, workflowHTML))[0]
	item, err := timesheetApproval(sum, mustDoc(t, timesheetApproveHTML))
	if err != nil {
		t.Fatalf("timesheetApproval: %v", err)
	}
	want := model.WorkflowItem{
		Kind:      model.WorkflowTimesheet,
		Name:      "Jane Doe",
		Week:      "23/02/2026",
		WeekTotal: 144000,
		Link:      "/hr/workflow/timesheet-approve?id=9",
		Payload: map[string]string{
			"wb":           "23/02/2026",
			"weekTotal":    "144000",
			"emp_id":       "12",
			"emp_comments": "",
			"mgr_comments": "",
			"approve":      "",
		},
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Errorf("timesheetApproval mismatch (-want +got):\n%s", diff)
	}
}

func TestTimesheetApprovalBadTotal(t *testing.T) {
	sum := workflowSummary{Link: "/x", Words: []string{"a", "b", "c", "d", "e"}}
	if _, err := timesheetApproval(sum, mustDoc(t, "<form></form>")); err == nil {
		t.Error("expected error without weekTotal")
	}
}

func TestWFHApproval(t *testing.T) {
	sum := parseWorkflow(mustDoc(t, workflowHTML))[1]
	item, err := wfhApproval(sum, mustDoc(t, wfhApproveHTML))
	if err != nil {
		t.Fatalf("wfhApproval: %v", err)
	}
	want := model.WorkflowItem{
		Kind:    model.WorkflowWFH,
		Name:    "John Smith",
		WFHDate: "05/03/2026",
		Link:    "/hr/workflow/time-off-approve?id=4",
		Payload: map[string]string{
			"id":           "4",
			"status":       "approve",
			"comments":     "",
			"mgr_comments": "",
			"approve":      "",
		},
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Errorf("wfhApproval mismatch (-want +got):\n%s", diff)
	}
}

func TestWFHApprovalShortSummary(t *testing.T) {
	sum := workflowSummary{Link: "/x", Words: []string{"only", "three", "words"}}
	if _, err := wfhApproval(sum, mustDoc(t, wfhApproveHTML)); err == nil {
		t.Error("expected error for a short summary")
	}
}
