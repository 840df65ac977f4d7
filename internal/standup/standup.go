// Package standup reads the daily markdown standup notes and turns them into
// timesheet entries.
//
// A note lives at <dir>/YYYY-MM-DD.md. Its first line is a heading; the rest
// is the day's summary and becomes the entry comment.
package standup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

// ErrMissingNote is returned when a day has no standup note.
var ErrMissingNote = errors.New("missing standup")

// References assigned by the note rules.
const (
	RefHoliday        = "Holiday"
	RefOffIll         = "Off ill"
	RefOffProjectWork = "Off Project Work"
)

// Note is one day's standup file.
type Note struct {
	Day  time.Time
	Path string
	// Raw is the file content with trailing whitespace removed.
	Raw string
	// Summary is Raw without its heading line.
	Summary string
}

// Path returns where the note for day lives.
func Path(dir string, day time.Time) string {
	return filepath.Join(dir, day.Format(timecalc.ISODate)+".md")
}

// Load reads the note for day.
func Load(dir string, day time.Time) (Note, error) {
	path := Path(dir, day)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Note{}, fmt.Errorf("%w:\n\t%s", ErrMissingNote, path)
	}
	if err != nil {
		return Note{}, fmt.Errorf("reading standup %s: %w", path, err)
	}

	raw := strings.TrimRight(string(data), " \t\r\n")
	summary := ""
	if i := strings.Index(raw, "\n"); i >= 0 {
		summary = raw[i+1:]
	}
	return Note{Day: day, Path: path, Raw: raw, Summary: summary}, nil
}

// Entries derives the timesheet entries for the note's day. Entries without
// a reference still need one chosen.
func (n Note) Entries() []model.Entry {
	week := timecalc.WeekStart(n.Day)
	entry := func(start, end, breaks, ref, comments string) model.Entry {
		return model.Entry{
			Week:      week,
			Date:      n.Day,
			Start:     start,
			End:       end,
			Breaks:    breaks,
			Reference: ref,
			Comments:  comments,
		}
	}

	switch n.Summary {
	case "Annual Leave", "Public Holiday":
		return []model.Entry{entry("0900", "1700", "0", RefHoliday, n.Summary)}
	case "Off sick":
		return []model.Entry{entry("0900", "1700", "0", RefOffIll, n.Summary)}
	}

	if n.Day.Weekday() == time.Friday {
		return []model.Entry{
			entry("0900", "1700", "60", "", n.Summary),
			entry("1700", "1800", "0", RefOffProjectWork, "Tips and clips."),
		}
	}
	return []model.Entry{entry("0900", "1800", "60", "", n.Summary)}
}

// Render formats the note as styled terminal markdown.
func (n Note) Render(width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(n.Raw)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", n.Path, err)
	}
	return out, nil
}
