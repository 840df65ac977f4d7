// Package console prints coloured status lines and ASCII tables, and asks
// the user questions.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Colour names accepted by Echo.
const (
	Blue   = "4"
	Green  = "2"
	Yellow = "3"
	Red    = "1"
)

// ErrAborted is returned when input ends before a question is answered.
var ErrAborted = errors.New("aborted")

// Console couples an output writer with a line-based input.
type Console struct {
	out      io.Writer
	raw      io.Reader
	in       *bufio.Reader
	renderer *lipgloss.Renderer
	// interactive is set when both streams are terminals.
	interactive bool
}

// New returns a Console writing to out and reading answers from in.
func New(out io.Writer, in io.Reader) *Console {
	return &Console{
		out:         out,
		raw:         in,
		in:          bufio.NewReader(in),
		renderer:    lipgloss.NewRenderer(out),
		interactive: isTerminal(out) && isTerminal(in),
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Out is the console's writer.
func (c *Console) Out() io.Writer {
	return c.out
}

// Width returns the terminal width, or 80 when output is not a terminal.
func (c *Console) Width() int {
	if f, ok := c.out.(*os.File); ok && isTerminal(f) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// Echo prints message in bold colour.
func (c *Console) Echo(colour string, message any) {
	style := c.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(colour))
	fmt.Fprintln(c.out, style.Render(fmt.Sprint(message)))
}

// Println prints a plain line.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Table renders rows under headers as an ASCII table.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

// PrintTable writes an ASCII table followed by a newline.
func (c *Console) PrintTable(headers []string, rows [][]string) {
	fmt.Fprintln(c.out, Table(headers, rows))
}

// ask runs a single huh field. On a terminal the field is interactive.
// Otherwise it runs in accessible mode, fed the next input line, which the
// caller has already normalised.
func (c *Console) ask(field huh.Field, line string) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithOutput(c.out)
	if c.interactive {
		err := form.WithInput(c.raw).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return form.WithAccessible(true).WithInput(strings.NewReader(line + "\n")).Run()
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
		// Last answer without a trailing newline.
	case errors.Is(err, io.EOF):
		fmt.Fprintln(c.out)
		return "", ErrAborted
	default:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func validInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("'%s' is not a valid integer", s)
	}
	return nil
}

// PromptInt asks for an integer until one is given. def is used for an
// empty answer when hasDefault is set.
func (c *Console) PromptInt(text string, def int, hasDefault bool) (int, error) {
	title := text
	if hasDefault {
		title = fmt.Sprintf("%s [%d]", text, def)
	}
	for {
		var answer, line string
		input := huh.NewInput().Title(title).Value(&answer)
		if c.interactive {
			input.Validate(func(s string) error {
				if s == "" && hasDefault {
					return nil
				}
				return validInt(s)
			})
		} else {
			var err error
			if line, err = c.readLine(); err != nil {
				return 0, err
			}
		}
		if err := c.ask(input, line); err != nil {
			return 0, err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			if hasDefault {
				return def, nil
			}
			continue
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintf(c.out, "Error: '%s' is not a valid integer.\n", answer)
			continue
		}
		return n, nil
	}
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (c *Console) Confirm(text string) (bool, error) {
	var yes bool
	line := "n"
	if !c.interactive {
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			line = "y"
		}
	}
	confirm := huh.NewConfirm().
		Title(text).
		Affirmative("Yes").
		Negative("No").
		Value(&yes)
	if err := c.ask(confirm, line); err != nil {
		return false, err
	}
	return yes, nil
}
