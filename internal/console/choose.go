package console

import (
	"fmt"
	"strings"
)

// ShowAll is the answer that lists every reference.
const ShowAll = -1

// Chooser asks which work reference a day belongs to, remembering the last
// answer as the next default.
type Chooser struct {
	c        *Console
	defaults map[string]bool
	last     int
	hasLast  bool
}

// NewChooser returns a Chooser that lists defaults first.
func NewChooser(c *Console, defaults []string) *Chooser {
	d := make(map[string]bool, len(defaults))
	for _, ref := range defaults {
		d[ref] = true
	}
	return &Chooser{c: c, defaults: d}
}

// Choose prompts until a valid index into refs is entered.
func (ch *Chooser) Choose(refs []string) (string, error) {
	if len(refs) == 0 {
		return "", fmt.Errorf("the portal offered no references")
	}
	const text = "Choose a reference (-1 to display references)"
	for {
		var idx int
		var err error
		if ch.hasLast {
			idx, err = ch.c.PromptInt(text, ch.last, true)
		} else {
			ch.c.Println(listRefs(refs, ch.defaults))
			idx, err = ch.c.PromptInt(text, 0, false)
		}
		if err != nil {
			return "", err
		}

		switch {
		case idx == ShowAll:
			ch.c.Println(listRefs(refs, nil))
		case idx < 0 || idx >= len(refs):
			ch.c.Echo(Red, "That is not a valid reference selection.")
		default:
			ch.last, ch.hasLast = idx, true
			return refs[idx], nil
		}
	}
}

// listRefs renders "[i] ref" pairs, limited to only when it is non-nil.
func listRefs(refs []string, only map[string]bool) string {
	var parts []string
	for i, ref := range refs {
		if only != nil && !only[ref] {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", i, ref))
	}
	return strings.Join(parts, " ")
}
