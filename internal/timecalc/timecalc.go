package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts used by the portal and the standup notes.
const (
	// PortalDate is how the portal prints dates, e.g. "27/02/2026".
	PortalDate = "02/01/2006"
	// WeekBeginning is the short form the timesheet-add form wants.
	WeekBeginning = "02/01/06"
	// EntryDate is the add form's date value, e.g. "Fri27/02/2026".
	EntryDate = "Mon02/01/2006"
	// ISODate names standup notes and keys the reference store.
	ISODate = "2006-01-02"
)

// ParsePortalDate parses a dd/mm/yyyy date in the local timezone.
func ParsePortalDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(PortalDate, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse portal date %q: %w", s, err)
	}
	return t, nil
}

// ReformatPortalDate turns dd/mm/yyyy into yyyy-mm-dd.
func ReformatPortalDate(s string) (string, error) {
	t, err := ParsePortalDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(ISODate), nil
}

// FormatDuration formats seconds the way the portal prints hours: "40h 0m",
// "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// ParseHours is the inverse of FormatDuration for portal hour strings such as
// "40h 0m" or "37h 30m".
func ParseHours(s string) (int64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty hours value")
	}
	var total int64
	for _, f := range fields {
		if len(f) < 2 {
			return 0, fmt.Errorf("cannot parse hours %q", s)
		}
		n, err := strconv.ParseInt(f[:len(f)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse hours %q: %w", s, err)
		}
		switch f[len(f)-1] {
		case 'h':
			total += n * 3600
		case 'm':
			total += n * 60
		case 's':
			total += n
		default:
			return 0, fmt.Errorf("cannot parse hours %q: unknown unit in %q", s, f)
		}
	}
	return total, nil
}

// WeekStart returns 00:00 on the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	return StartOfDay(t.AddDate(0, 0, -(wd - 1)))
}

// Weekdays returns every Monday to Friday in [from, to], both inclusive, at
// the start of the day.
func Weekdays(from, to time.Time) []time.Time {
	var days []time.Time
	end := StartOfDay(to)
	for d := StartOfDay(from); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
