package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/slackpost"
	"github.com/Tiliavir/synthetic/internal/standup"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

var (
	standupDate string
	standupYes  bool
)

var standupCmd = &cobra.Command{
	Use:   "standup",
	Short: "Show a day's standup note and post it to Slack",
	Args:  cobra.NoArgs,
	RunE:  runStandup,
}

func init() {
	standupCmd.Flags().StringVar(&standupDate, "date", "", "Day of the note (YYYY-MM-DD); defaults to today")
	standupCmd.Flags().BoolVarP(&standupYes, "yes", "y", false, "Post without asking")
}

func runStandup(cmd *cobra.Command, args []string) error {
	day, err := parseDay("date", standupDate, time.Now())
	if err != nil {
		return err
	}
	note, err := standup.Load(cfg.Standup.Dir, day)
	if err != nil {
		return err
	}
	con := newConsole(cmd)
	printNote(con, note)

	poster, err := slackpost.New(cfg.Slack)
	if err != nil {
		return err
	}
	return postStandup(cmd.Context(), con, note, standupYes, poster)
}

type messagePoster interface {
	Post(ctx context.Context, text string) error
}

func postStandup(ctx context.Context, con *console.Console, note standup.Note, yes bool, p messagePoster) error {
	if !yes {
		ok, err := con.Confirm("Post this standup to Slack?")
		if err != nil {
			return err
		}
		if !ok {
			con.Println("Not posted.")
			return nil
		}
	}
	if err := p.Post(ctx, slackpost.StandupMessage(note.Day, note.Summary)); err != nil {
		return err
	}
	con.Echo(console.Green, "Posted standup for "+note.Day.Format(timecalc.ISODate))
	return nil
}
