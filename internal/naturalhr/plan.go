package naturalhr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

// ErrNoApprovedTimesheet is returned when there is no approved week to
// continue from.
var ErrNoApprovedTimesheet = errors.New("no approved timesheet found")

// ErrNoReference is reported for an entry that has no project reference.
var ErrNoReference = errors.New("no reference")

// SortByWeek orders timesheets by week beginning, newest first. Rows with an
// unreadable week sort last.
func SortByWeek(timesheets []model.Timesheet) {
	sort.SliceStable(timesheets, func(i, j int) bool {
		a, errA := timecalc.ParsePortalDate(timesheets[i].Week)
		b, errB := timecalc.ParsePortalDate(timesheets[j].Week)
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		}
		return a.After(b)
	})
}

// LastApproved returns the approved timesheet with the latest week.
func LastApproved(timesheets []model.Timesheet) (model.Timesheet, error) {
	var approved []model.Timesheet
	for _, ts := range timesheets {
		if ts.Status == model.StatusApproved {
			approved = append(approved, ts)
		}
	}
	if len(approved) == 0 {
		return model.Timesheet{}, ErrNoApprovedTimesheet
	}
	SortByWeek(approved)
	return approved[0], nil
}

// MissingDays returns the weekdays after last up to and including until that
// are not already booked. booked is keyed by ISO date.
func MissingDays(last, until time.Time, booked map[string]bool) []time.Time {
	var days []time.Time
	for _, d := range timecalc.Weekdays(last.AddDate(0, 0, 1), until) {
		if booked[d.Format(timecalc.ISODate)] {
			continue
		}
		days = append(days, d)
	}
	return days
}

// TimesheetReader is the part of a Session that reads timesheets.
type TimesheetReader interface {
	Timesheets(ctx context.Context, status string) ([]model.Timesheet, error)
	Entries(ctx context.Context, ts model.Timesheet) ([]model.ScrapedEntry, error)
}

// Gap describes the days still missing from the portal.
type Gap struct {
	LastApproved     model.Timesheet
	LastApprovedDate time.Time
	Days             []time.Time
}

// FindGap locates the last approved day and lists the weekdays after it, up
// to until, that have no entries in any later timesheet.
func FindGap(ctx context.Context, r TimesheetReader, until time.Time) (Gap, error) {
	timesheets, err := r.Timesheets(ctx, "")
	if err != nil {
		return Gap{}, err
	}
	last, err := LastApproved(timesheets)
	if err != nil {
		return Gap{}, err
	}
	entries, err := r.Entries(ctx, last)
	if err != nil {
		return Gap{}, err
	}
	if len(entries) == 0 {
		return Gap{}, fmt.Errorf("approved timesheet %s has no entries", last.Week)
	}
	lastDate, err := timecalc.ParsePortalDate(entries[len(entries)-1].Date)
	if err != nil {
		return Gap{}, err
	}

	lastWeek, err := timecalc.ParsePortalDate(last.Week)
	if err != nil {
		return Gap{}, fmt.Errorf("approved timesheet week: %w", err)
	}
	booked := map[string]bool{}
	for _, ts := range timesheets {
		week, err := timecalc.ParsePortalDate(ts.Week)
		if err != nil || !week.After(lastWeek) {
			continue
		}
		later, err := r.Entries(ctx, ts)
		if err != nil {
			return Gap{}, err
		}
		for _, e := range later {
			if d, err := timecalc.ParsePortalDate(e.Date); err == nil {
				booked[d.Format(timecalc.ISODate)] = true
			}
		}
	}

	days := MissingDays(lastDate, until, booked)
	log.Debug().
		Time("last_approved_date", lastDate).
		Time("until", until).
		Int("booked", len(booked)).
		Int("missing", len(days)).
		Msg("timesheet gap")
	return Gap{LastApproved: last, LastApprovedDate: lastDate, Days: days}, nil
}

// EntryAdder is the part of a Session that submits timesheet lines.
type EntryAdder interface {
	AddEntry(ctx context.Context, e model.Entry) error
}

// SubmitOptions configures a submit run. Added and Failed, when set, are
// called as each entry is sent or rejected.
type SubmitOptions struct {
	DryRun bool
	Added  func(e model.Entry)
	Failed func(e model.Entry, err error)
}

// SubmitResult holds counters for a submit run.
type SubmitResult struct {
	Added   int
	Errors  int
	Skipped int
}

// SubmitEntries posts entries in order and stops at the first one that
// cannot be added, leaving the rest unsent. An entry without a reference
// fails with ErrNoReference, in dry runs too.
func SubmitEntries(ctx context.Context, a EntryAdder, entries []model.Entry, opts SubmitOptions) SubmitResult {
	var result SubmitResult
	for i, e := range entries {
		var err error
		switch {
		case e.Reference == "":
			err = ErrNoReference
		case !opts.DryRun:
			err = a.AddEntry(ctx, e)
		}
		if err != nil {
			log.Debug().Err(err).Time("date", e.Date).Str("start", e.Start).Msg("entry rejected")
			if opts.Failed != nil {
				opts.Failed(e, err)
			}
			result.Errors++
			result.Skipped = len(entries) - i - 1
			return result
		}
		if opts.Added != nil {
			opts.Added(e)
		}
		result.Added++
	}
	return result
}
