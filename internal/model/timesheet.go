package model

import (
	"strings"
	"time"
)

// Timesheet is one row of the portal's timesheet index.
type Timesheet struct {
	Week   string   `json:"week"`
	Status string   `json:"status"`
	Hours  string   `json:"hours"`
	Links  []string `json:"links"`
}

// Portal timesheet statuses.
const (
	StatusDraft    = "Draft"
	StatusApproved = "Approved"
)

// Link returns the first link containing kind, e.g. "timesheet-view", or ""
// when the row has no such action.
func (t Timesheet) Link(kind string) string {
	for _, l := range t.Links {
		if strings.Contains(l, kind) {
			return l
		}
	}
	return ""
}

// ScrapedEntry is a timesheet line as printed on a timesheet-view page.
type ScrapedEntry struct {
	Week      string `json:"week"`
	Date      string `json:"date"`
	Start     string `json:"start_time"`
	End       string `json:"end_time"`
	Breaks    string `json:"breaks"`
	Reference string `json:"reference"`
}

// Entry is a timesheet line about to be submitted. Times are HHMM strings and
// Breaks is in minutes, as the portal's add form expects.
type Entry struct {
	Week      time.Time `json:"week"`
	Date      time.Time `json:"date"`
	Start     string    `json:"start_time"`
	End       string    `json:"end_time"`
	Breaks    string    `json:"breaks"`
	Reference string    `json:"reference"`
	Comments  string    `json:"comments"`
}

// TimeOff is one leave or working-from-home request.
type TimeOff struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      string `json:"number_of_days"`
	Approved  string `json:"approved"`
	State     string `json:"state"`
}

// WorkflowKind distinguishes the approval items a manager sees.
type WorkflowKind string

const (
	WorkflowTimesheet WorkflowKind = "timesheet"
	WorkflowWFH       WorkflowKind = "wfh"
)

// WorkflowItem is a pending approval together with the form payload that
// approves it.
type WorkflowItem struct {
	Kind    WorkflowKind
	Name    string
	Week    string
	WFHDate string
	// WeekTotal is the submitted time in seconds, for timesheets.
	WeekTotal int64
	Link      string
	Payload   map[string]string
}
