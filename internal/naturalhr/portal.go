package naturalhr

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

// Portal paths.
const (
	pathHome         = "/hr/"
	pathTimesheetAdd = "/hr/self-service/timesheets/timesheet-add"
	pathTimesheets   = "/hr/self-service/timesheets/index"
	pathTimeOff      = "/hr/self-service/time-off"
	pathTimeOffAdd   = "/hr/self-service/time-off-add"
	pathWorkflow     = "/hr/workflow-view"
)

// Link kinds on a timesheet row.
const (
	LinkView    = "timesheet-view"
	LinkConfirm = "timesheet-confirm"
)

// FullWeekSeconds is sent as weekTotal when a timesheet's hours can't be read.
const FullWeekSeconds = 40 * 60 * 60

// References lists the work references the timesheet form accepts.
func (s *Session) References(ctx context.Context) ([]string, error) {
	doc, err := s.Page(ctx, pathTimesheetAdd)
	if err != nil {
		return nil, fmt.Errorf("fetching references: %w", err)
	}
	return parseReferences(doc), nil
}

// Timesheets lists the timesheet index, optionally only those with status.
func (s *Session) Timesheets(ctx context.Context, status string) ([]model.Timesheet, error) {
	doc, err := s.Page(ctx, pathTimesheets)
	if err != nil {
		return nil, fmt.Errorf("fetching timesheets: %w", err)
	}
	return parseTimesheets(doc, status), nil
}

// Entries lists the lines of one timesheet.
func (s *Session) Entries(ctx context.Context, ts model.Timesheet) ([]model.ScrapedEntry, error) {
	link := ts.Link(LinkView)
	if link == "" {
		return nil, fmt.Errorf("timesheet %s has no view link", ts.Week)
	}
	doc, err := s.Page(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetching timesheet %s: %w", ts.Week, err)
	}
	return parseEntries(doc, ts.Week), nil
}

// AddEntry submits one timesheet line.
func (s *Session) AddEntry(ctx context.Context, e model.Entry) error {
	return s.Post(ctx, pathTimesheetAdd, EntryForm(e))
}

// EntryForm is the timesheet-add payload for e.
func EntryForm(e model.Entry) map[string]string {
	return map[string]string{
		"week_beginning": e.Week.Format(timecalc.WeekBeginning),
		"date":           e.Date.Format(timecalc.EntryDate),
		"start":          e.Start,
		"end":            e.End,
		"breaks":         e.Breaks,
		"reference":      e.Reference,
		"comments":       e.Comments,
		"billable":       "",
		"submit_ts":      "",
	}
}

// ConfirmTimesheet submits a draft timesheet for approval. weekTotal is in
// seconds.
func (s *Session) ConfirmTimesheet(ctx context.Context, ts model.Timesheet, weekTotal int64) error {
	link := ts.Link(LinkConfirm)
	if link == "" {
		return fmt.Errorf("timesheet %s has no confirm link", ts.Week)
	}
	return s.Post(ctx, link, map[string]string{
		"wb":           ts.Week,
		"weekTotal":    strconv.FormatInt(weekTotal, 10),
		"check":        "1",
		"emp_comments": "",
		"submit":       "",
	})
}

// WeekTotal converts a timesheet's hours string to seconds, falling back to
// a full week when the portal prints something unexpected.
func WeekTotal(ts model.Timesheet) int64 {
	sec, err := timecalc.ParseHours(ts.Hours)
	if err != nil || sec <= 0 {
		log.Debug().Str("week", ts.Week).Str("hours", ts.Hours).Msg("unreadable hours, assuming a full week")
		return FullWeekSeconds
	}
	return sec
}

// TimeOff lists the user's leave and WFH requests.
func (s *Session) TimeOff(ctx context.Context) ([]model.TimeOff, error) {
	doc, err := s.Page(ctx, pathTimeOff)
	if err != nil {
		return nil, fmt.Errorf("fetching time off: %w", err)
	}
	return parseTimeOff(doc)
}

// ErrNoEmployeeID is returned when the time-off form has no emp_id field.
var ErrNoEmployeeID = errors.New("no employee id field found")

// EmployeeID reads the user's employee id from the time-off form.
func (s *Session) EmployeeID(ctx context.Context) (string, error) {
	doc, err := s.Page(ctx, pathTimeOffAdd)
	if err != nil {
		return "", fmt.Errorf("fetching time-off form: %w", err)
	}
	id := parseEmployeeID(doc)
	if id == "" {
		return "", ErrNoEmployeeID
	}
	return id, nil
}

// TimeOffRequest is a leave or WFH request to submit.
type TimeOffRequest struct {
	EmployeeID string
	// Type is "Leave" or "WFH".
	Type string
	// Start and End are inclusive dates.
	Start, End string
	// Days is the number of business days requested.
	Days int
}

// TimeOffForm is the time-off-add payload for r.
func TimeOffForm(r TimeOffRequest) (map[string]string, error) {
	form := map[string]string{
		"emp_id":     r.EmployeeID,
		"start_date": r.Start,
		"end_date":   r.End,
		"duration":   strconv.Itoa(r.Days),
		"submit":     "",
	}
	switch r.Type {
	case "Leave":
		form["time_off_type"] = "Home Emergency"
		form["comments"] = "Annual Leave"
	case "WFH":
		form["time_off_type"] = "Working From Home"
		form["comments"] = ""
	default:
		return nil, fmt.Errorf("unknown time off type %q (want Leave or WFH)", r.Type)
	}
	return form, nil
}

// RequestTimeOff submits a time-off request.
func (s *Session) RequestTimeOff(ctx context.Context, r TimeOffRequest) error {
	form, err := TimeOffForm(r)
	if err != nil {
		return err
	}
	return s.Post(ctx, pathTimeOffAdd, form)
}

// Workflow lists the approvals waiting for the user as a manager. Items
// that can't be read are logged and skipped.
func (s *Session) Workflow(ctx context.Context) ([]model.WorkflowItem, error) {
	doc, err := s.Page(ctx, pathWorkflow)
	if err != nil {
		return nil, fmt.Errorf("fetching workflow: %w", err)
	}

	var items []model.WorkflowItem
	for _, sum := range parseWorkflow(doc) {
		log.Debug().Str("link", sum.Link).Strs("words", sum.Words).Msg("workflow item")
		page, err := s.Page(ctx, sum.Link)
		if err != nil {
			return nil, fmt.Errorf("fetching approval page: %w", err)
		}

		var item model.WorkflowItem
		if len(sum.Words) == 5 {
			item, err = timesheetApproval(sum, page)
		} else {
			item, err = wfhApproval(sum, page)
		}
		if err != nil {
			log.Warn().Err(err).Msg("skipping workflow item")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Approve submits an approval form.
func (s *Session) Approve(ctx context.Context, item model.WorkflowItem) error {
	return s.Post(ctx, item.Link, item.Payload)
}
