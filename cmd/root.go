package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/synthetic/internal/config"
	"github.com/Tiliavir/synthetic/internal/console"
	"github.com/Tiliavir/synthetic/internal/naturalhr"
	"github.com/Tiliavir/synthetic/internal/timecalc"
)

var (
	debug         bool
	configPath    string
	sessionCookie string

	// cfg is loaded once per invocation before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "synthetic",
	Short: "synthetic – timesheets, time off and standups for Natural HR",
	Long: `synthetic fills in Natural HR timesheets from daily standup notes,
confirms complete weeks, requests leave and working from home, approves
your reports' requests and posts standups to Slack.

It reuses the session of a browser that is logged in to Natural HR.
Settings live in ~/.synthetic/config.json.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log portal requests and decisions")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.synthetic/config.json)")
	rootCmd.PersistentFlags().StringVar(&sessionCookie, "session", "", "Natural HR session cookie value")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(timeOffCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(standupCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	log.Debug().
		Str("portal", cfg.NaturalHR.BaseURL).
		Str("standups", cfg.Standup.Dir).
		Msg("config loaded")
	return nil
}

// openSession connects to the portal. The --session flag wins over the
// environment and config file, which win over Chrome.
func openSession(ctx context.Context) (*naturalhr.Session, error) {
	return naturalhr.NewSession(ctx, naturalhr.Options{
		BaseURL:        cfg.NaturalHR.BaseURL,
		CookieName:     cfg.NaturalHR.CookieName,
		Cookie:         sessionCookieValue(sessionCookie, cfg.NaturalHR),
		ChromeCookieDB: cfg.NaturalHR.ChromeCookieDB,
	})
}

// sessionCookieValue picks the flag value over the loaded config, which
// already has the environment applied. Empty means read Chrome.
func sessionCookieValue(flag string, c config.NaturalHRConfig) string {
	if flag != "" {
		return flag
	}
	return c.SessionCookie
}

func newConsole(cmd *cobra.Command) *console.Console {
	return console.New(cmd.OutOrStdout(), cmd.InOrStdin())
}

// parseDay reads a YYYY-MM-DD flag value, returning def when it is empty.
func parseDay(flag, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return timecalc.StartOfDay(def), nil
	}
	d, err := time.ParseInLocation(timecalc.ISODate, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value %q: want YYYY-MM-DD", flag, value)
	}
	return d, nil
}
