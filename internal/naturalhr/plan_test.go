package naturalhr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timecalc.ParsePortalDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func isoDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(timecalc.ISODate))
	}
	return out
}

func TestSortByWeek(t *testing.T) {
	ts := []model.Timesheet{
		{Week: "09/02/2026"},
		{Week: "garbage"},
		{Week: "23/02/2026"},
		{Week: "16/02/2026"},
	}
	SortByWeek(ts)

	var got []string
	for _, x := range ts {
		got = append(got, x.Week)
	}
	want := []string{"23/02/2026", "16/02/2026", "09/02/2026", "garbage"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortByWeek mismatch (-want +got):\n%s", diff)
	}
}

func TestLastApproved(t *testing.T) {
	ts := []model.Timesheet{
		{Week: "09/02/2026", Status: model.StatusApproved},
		{Week: "23/02/2026", Status: model.StatusDraft},
		{Week: "16/02/2026", Status: model.StatusApproved},
	}
	got, err := LastApproved(ts)
	if err != nil {
		t.Fatal(err)
	}
	if got.Week != "16/02/2026" {
		t.Errorf("LastApproved = %s, want 16/02/2026", got.Week)
	}
	// The input order is left alone.
	if ts[0].Week != "09/02/2026" {
		t.Errorf("LastApproved reordered its input")
	}

	if _, err := LastApproved(ts[1:2]); !errors.Is(err, ErrNoApprovedTimesheet) {
		t.Errorf("error = %v, want ErrNoApprovedTimesheet", err)
	}
}

func TestMissingDays(t *testing.T) {
	tests := []struct {
		name   string
		last   string
		until  string
		booked map[string]bool
		want   []string
	}{
		{
			name:  "rest of week",
			last:  "24/02/2026",
			until: "27/02/2026",
			want:  []string{"2026-02-25", "2026-02-26", "2026-02-27"},
		},
		{
			name:  "over a weekend",
			last:  "27/02/2026",
			until: "03/03/2026",
			want:  []string{"2026-03-02", "2026-03-03"},
		},
		{
			name:   "booked days skipped",
			last:   "20/02/2026",
			until:  "24/02/2026",
			booked: map[string]bool{"2026-02-23": true},
			want:   []string{"2026-02-24"},
		},
		{
			name:  "nothing missing",
			last:  "27/02/2026",
			until: "27/02/2026",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isoDays(MissingDays(mustDate(t, tt.last), mustDate(t, tt.until), tt.booked))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MissingDays mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindGap(t *testing.T) {
	_, s := newTestSession(t)

	gap, err := FindGap(context.Background(), s, mustDate(t, "27/02/2026"))
	if err != nil {
		t.Fatalf("FindGap: %v", err)
	}
	if gap.LastApproved.Week != "16/02/2026" {
		t.Errorf("LastApproved = %s", gap.LastApproved.Week)
	}
	if !gap.LastApprovedDate.Equal(mustDate(t, "20/02/2026")) {
		t.Errorf("LastApprovedDate = %s", gap.LastApprovedDate)
	}
	// 23/02 is already in the draft timesheet.
	want := []string{"2026-02-24", "2026-02-25", "2026-02-26", "2026-02-27"}
	if diff := cmp.Diff(want, isoDays(gap.Days)); diff != "" {
		t.Errorf("gap days mismatch (-want +got):\n%s", diff)
	}
}

type stubReader struct {
	timesheets []model.Timesheet
	entries    map[string][]model.ScrapedEntry
	err        error
}

func (r stubReader) Timesheets(context.Context, string) ([]model.Timesheet, error) {
	return r.timesheets, r.err
}

func (r stubReader) Entries(_ context.Context, ts model.Timesheet) ([]model.ScrapedEntry, error) {
	return r.entries[ts.Week], nil
}

func TestFindGapErrors(t *testing.T) {
	until := mustDate(t, "27/02/2026")
	tests := []struct {
		name string
		r    stubReader
	}{
		{"index fails", stubReader{err: errors.New("boom")}},
		{"nothing approved", stubReader{timesheets: []model.Timesheet{{Week: "23/02/2026", Status: model.StatusDraft}}}},
		{"approved week is empty", stubReader{timesheets: []model.Timesheet{{Week: "16/02/2026", Status: model.StatusApproved}}}},
		{"approved week unreadable", stubReader{
			timesheets: []model.Timesheet{{Week: "garbage", Status: model.StatusApproved}},
			entries:    map[string][]model.ScrapedEntry{"garbage": {{Date: "20/02/2026", Start: "09:00", End: "17:00"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FindGap(context.Background(), tt.r, until); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

type recordingAdder struct {
	added []model.Entry
	fail  string
}

func (a *recordingAdder) AddEntry(_ context.Context, e model.Entry) error {
	if e.Reference == a.fail {
		return errors.New("rejected")
	}
	a.added = append(a.added, e)
	return nil
}

func TestSubmitEntries(t *testing.T) {
	week := mustDate(t, "23/02/2026")
	day := mustDate(t, "27/02/2026")
	ok := model.Entry{Week: week, Date: day, Start: "0900", End: "1700", Breaks: "60", Reference: "V3 BAU"}
	noRef := model.Entry{Week: week, Date: day, Start: "1700", End: "1800", Breaks: "0"}
	broken := model.Entry{Week: week, Date: day, Start: "1800", End: "1900", Breaks: "0", Reference: "Broken"}
	late := model.Entry{Week: week, Date: day, Start: "1900", End: "2000", Breaks: "0", Reference: "Quidco BAU"}

	tests := []struct {
		name      string
		entries   []model.Entry
		dryRun    bool
		wantSent  int
		want      SubmitResult
		wantError error
	}{
		{"all good", []model.Entry{ok, late}, false, 2, SubmitResult{Added: 2}, nil},
		{"stops at rejected entry", []model.Entry{ok, broken, late}, false, 1, SubmitResult{Added: 1, Errors: 1, Skipped: 1}, nil},
		{"stops at missing reference", []model.Entry{noRef, ok}, false, 0, SubmitResult{Errors: 1, Skipped: 1}, ErrNoReference},
		{"dry run sends nothing", []model.Entry{ok, broken, late}, true, 0, SubmitResult{Added: 3}, nil},
		{"dry run still needs a reference", []model.Entry{ok, noRef, late}, true, 0, SubmitResult{Added: 1, Errors: 1, Skipped: 1}, ErrNoReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adder := &recordingAdder{fail: "Broken"}
			var added []string
			var failures []error
			res := SubmitEntries(context.Background(), adder, tt.entries, SubmitOptions{
				DryRun: tt.dryRun,
				Added:  func(e model.Entry) { added = append(added, e.Start) },
				Failed: func(_ model.Entry, err error) { failures = append(failures, err) },
			})

			if len(adder.added) != tt.wantSent {
				t.Errorf("sent %d entries, want %d", len(adder.added), tt.wantSent)
			}
			if res != tt.want {
				t.Errorf("result = %+v, want %+v", res, tt.want)
			}
			if len(added) != tt.want.Added || len(failures) != tt.want.Errors {
				t.Errorf("callbacks: %d added, %d failed; want %d, %d", len(added), len(failures), tt.want.Added, tt.want.Errors)
			}
			if tt.wantError != nil && (len(failures) == 0 || !errors.Is(failures[0], tt.wantError)) {
				t.Errorf("failures = %v, want %v", failures, tt.wantError)
			}
		})
	}
}

func TestSubmitEntriesNilCallbacks(t *testing.T) {
	e := model.Entry{Date: mustDate(t, "27/02/2026"), Start: "0900", End: "1700"}
	res := SubmitEntries(context.Background(), &recordingAdder{}, []model.Entry{e}, SubmitOptions{})
	if res.Errors != 1 {
		t.Errorf("result = %+v, want one error", res)
	}
}
