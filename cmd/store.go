package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/model"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
	"github.com/Tiliavir/synthetic/internal/standup"
	"github.com/Tiliavir/synthetic/internal/storage"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

var (
	storeDryRun bool
	storeUntil  string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Add timesheet entries for every day since the last approved one",
	Long: `store finds the last day of the newest approved timesheet and books every
weekday after it, up to yesterday, from that day's standup note.

Days that need a reference and have none stored are asked for interactively.
Chosen references are remembered in the standup directory.`,
	Args: cobra.NoArgs,
	RunE: runStore,
}

func init() {
	storeCmd.Flags().BoolVar(&storeDryRun, "dry-run", false, "Print planned entries without submitting them")
	storeCmd.Flags().StringVar(&storeUntil, "until", "", "Last day to book (YYYY-MM-DD); defaults to yesterday")
}

func runStore(cmd *cobra.Command, args []string) error {
	until, err := parseDay("until", storeUntil, time.Now().AddDate(0, 0, -1))
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	return storeTimesheets(cmd.Context(), s, newConsole(cmd), storeOptions{
		Dir:      cfg.Standup.Dir,
		Until:    until,
		DryRun:   storeDryRun,
		Defaults: cfg.NaturalHR.DefaultReferences,
	})
}

// storePortal is what store needs from a portal session.
type storePortal interface {
	naturalhr.TimesheetReader
	naturalhr.EntryAdder
	References(ctx context.Context) ([]string, error)
}

type storeOptions struct {
	Dir      string
	Until    time.Time
	DryRun   bool
	Defaults []string
}

func storeTimesheets(ctx context.Context, p storePortal, con *console.Console, opts storeOptions) error {
	gap, err := naturalhr.FindGap(ctx, p, opts.Until)
	if err != nil {
		return err
	}
	if len(gap.Days) == 0 {
		con.Echo(console.Green, "Timesheets are up to date.")
		return nil
	}
	con.Echo(console.Blue, fmt.Sprintf("Last approved entry %s, %d day(s) to book",
		gap.LastApprovedDate.Format(timecalc.ISODate), len(gap.Days)))

	refs, err := storage.LoadReferences(opts.Dir)
	if err != nil {
		return err
	}

	chooser := console.NewChooser(con, opts.Defaults)
	var offered []string
	choose := func() (string, error) {
		if offered == nil {
			var err error
			if offered, err = p.References(ctx); err != nil {
				return "", err
			}
		}
		return chooser.Choose(offered)
	}

	var entries []model.Entry
	for _, day := range gap.Days {
		note, err := standup.Load(opts.Dir, day)
		if err != nil {
			return err
		}
		printNote(con, note)

		for _, e := range note.Entries() {
			if e.Reference == "" {
				e.Reference = refs.Lookup(day)
			}
			if e.Reference == "" {
				if e.Reference, err = choose(); err != nil {
					return err
				}
			}
			entries = append(entries, e)
		}
	}

	refs.Remember(entries)
	if opts.DryRun {
		log.Debug().Int("references", len(refs)).Msg("dry run, reference store not saved")
	} else if err := storage.SaveReferences(opts.Dir, refs); err != nil {
		return err
	}

	res := naturalhr.SubmitEntries(ctx, p, entries, naturalhr.SubmitOptions{
		DryRun: opts.DryRun,
		Added: func(e model.Entry) {
			con.Echo(console.Green, "Added timesheet entry for "+e.Date.Format(timecalc.EntryDate))
			con.Echo(console.Yellow, fmt.Sprintf("  %s-%s, %s min break, %s", e.Start, e.End, e.Breaks, e.Reference))
		},
		Failed: func(e model.Entry, err error) {
			con.Echo(console.Red, fmt.Sprintf("Error adding %s %s-%s: %v", e.Date.Format(timecalc.EntryDate), e.Start, e.End, err))
		},
	})
	prefix := ""
	if opts.DryRun {
		prefix = "[dry-run] "
	}
	con.Println(fmt.Sprintf("%sAdded: %d, Errors: %d, Skipped: %d", prefix, res.Added, res.Errors, res.Skipped))
	if res.Errors > 0 {
		return fmt.Errorf("stopped after %d timesheet entries, %d not sent", res.Added, res.Errors+res.Skipped)
	}
	return nil
}

// printNote shows a standup note as rendered markdown, or raw when rendering
// fails.
func printNote(con *console.Console, note standup.Note) {
	con.Echo(console.Blue, note.Day.Format("Monday 2 January 2006"))
	out, err := note.Render(con.Width())
	if err != nil {
		log.Warn().Err(err).Msg("rendering standup")
		con.Println(note.Raw)
		return
	}
	fmt.Fprint(con.Out(), out)
}
