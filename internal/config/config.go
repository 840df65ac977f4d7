package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration for synthetic, stored in ~/.synthetic/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	NaturalHR NaturalHRConfig `json:"naturalhr"`
	Standup   StandupConfig   `json:"standup"`
	Slack     SlackConfig     `json:"slack"`
}

// NaturalHRConfig holds the portal location and how to find a session.
type NaturalHRConfig struct {
	// BaseURL is the portal root, without a trailing slash.
	BaseURL string `json:"base_url"`
	// CookieName is the name of the PHP session cookie.
	CookieName string `json:"cookie_name"`
	// SessionCookie pins a session value instead of reading it from Chrome.
	SessionCookie string `json:"session_cookie"`
	// ChromeCookieDB overrides the Chrome "Cookies" database location.
	ChromeCookieDB string `json:"chrome_cookie_db"`
	// DefaultReferences are offered before the full reference list.
	DefaultReferences []string `json:"default_references"`
	// FullWeek is the hours string of a complete week, as the portal prints it.
	FullWeek string `json:"full_week"`
	// HolidayCalendar selects the public holidays used for leave durations.
	HolidayCalendar string `json:"holiday_calendar"`
}

// StandupConfig locates the daily standup notes.
type StandupConfig struct {
	Dir string `json:"dir"`
}

// SlackConfig holds where standups are posted. Webhook wins over token.
type SlackConfig struct {
	WebhookURL string `json:"webhook_url"`
	Token      string `json:"token"`
	Channel    string `json:"channel"`
}

const (
	DefaultBaseURL         = "https://www.naturalhr.net"
	DefaultCookieName      = "PHPSESSID"
	DefaultFullWeek        = "40h 0m"
	DefaultHolidayCalendar = "za"
	// DefaultStandupDir is relative to the home directory.
	DefaultStandupDir = "Work/standups"
)

// DefaultReferences is the short list shown when choosing a reference.
var DefaultReferences = []string{"Quidco BAU", "V3 BAU"}

// Env overrides, applied after the file is read.
const (
	EnvStandupDir      = "SYNTHETIC_STANDUP_DIR"
	EnvSession         = "NATURALHR_SESSION"
	EnvSlackWebhookURL = "SLACK_WEBHOOK_URL"
	EnvSlackToken      = "SLACK_TOKEN"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		NaturalHR: NaturalHRConfig{
			BaseURL:           DefaultBaseURL,
			CookieName:        DefaultCookieName,
			DefaultReferences: append([]string(nil), DefaultReferences...),
			FullWeek:          DefaultFullWeek,
			HolidayCalendar:   DefaultHolidayCalendar,
		},
		Standup: StandupConfig{Dir: defaultStandupDir()},
	}
}

func defaultStandupDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultStandupDir
	}
	return filepath.Join(home, DefaultStandupDir)
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// synthetic configuration – ~/.synthetic/config.json
//
// All settings are optional. Empty values fall back to the built-in defaults.
{
  // ── NaturalHR portal ─────────────────────────────────────────────────────
  "naturalhr": {
    "base_url": "https://www.naturalhr.net",
    "cookie_name": "PHPSESSID",

    // Leave empty to read the session from Chrome after logging in there.
    // NATURALHR_SESSION or --session take precedence over this value.
    "session_cookie": "",

    // Path to Chrome's "Cookies" database. Empty = default profile.
    "chrome_cookie_db": "",

    // References listed first when a standup day needs one.
    "default_references": ["Quidco BAU", "V3 BAU"],

    // Draft timesheets with exactly these hours are confirmed.
    "full_week": "40h 0m",

    // Public holiday calendar for leave durations: "za" or "gb".
    "holiday_calendar": "za"
  },

  // ── Standup notes ────────────────────────────────────────────────────────
  // One markdown file per day named YYYY-MM-DD.md. Overridden by
  // SYNTHETIC_STANDUP_DIR.
  "standup": {
    "dir": ""
  },

  // ── Slack standup posting ────────────────────────────────────────────────
  // Either an incoming webhook, or a bot token plus channel.
  "slack": {
    "webhook_url": "",
    "token": "",
    "channel": ""
  }
}
`

// FilePath returns the path to ~/.synthetic/config.json.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".synthetic", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults on first
// run. An empty path means ~/.synthetic/config.json.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return withEnv(defaultConfig()), err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return withEnv(defaultConfig()), nil
	}
	if err != nil {
		return withEnv(defaultConfig()), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return withEnv(defaultConfig()), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return withEnv(cfg), nil
}

// Parse decodes a commented config document and fills zero-value fields with
// the built-in defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Config{}, err
	}

	def := defaultConfig()
	if cfg.NaturalHR.BaseURL == "" {
		cfg.NaturalHR.BaseURL = def.NaturalHR.BaseURL
	}
	if cfg.NaturalHR.CookieName == "" {
		cfg.NaturalHR.CookieName = def.NaturalHR.CookieName
	}
	if len(cfg.NaturalHR.DefaultReferences) == 0 {
		cfg.NaturalHR.DefaultReferences = def.NaturalHR.DefaultReferences
	}
	if cfg.NaturalHR.FullWeek == "" {
		cfg.NaturalHR.FullWeek = def.NaturalHR.FullWeek
	}
	if cfg.NaturalHR.HolidayCalendar == "" {
		cfg.NaturalHR.HolidayCalendar = def.NaturalHR.HolidayCalendar
	}
	if cfg.Standup.Dir == "" {
		cfg.Standup.Dir = def.Standup.Dir
	}
	return cfg, nil
}

func withEnv(cfg Config) Config {
	if v := os.Getenv(EnvStandupDir); v != "" {
		cfg.Standup.Dir = v
	}
	if v := os.Getenv(EnvSession); v != "" {
		cfg.NaturalHR.SessionCookie = v
	}
	if v := os.Getenv(EnvSlackWebhookURL); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv(EnvSlackToken); v != "" {
		cfg.Slack.Token = v
	}
	return cfg
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
