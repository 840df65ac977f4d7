package timecalc

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/za"
)

// Calendar returns a Monday to Friday business calendar carrying the public
// holidays of the named country ("za", "gb" or "none").
func Calendar(name string) (*cal.BusinessCalendar, error) {
	c := cal.NewBusinessCalendar()
	switch strings.ToLower(name) {
	case "za", "":
		c.AddHoliday(za.Holidays...)
	case "gb":
		c.AddHoliday(gb.Holidays...)
	case "none":
	default:
		return nil, fmt.Errorf("unknown holiday calendar %q (want za, gb or none)", name)
	}
	return c, nil
}

// Workdays counts the business days in [from, to], both inclusive. It returns
// 0 when to is before from.
func Workdays(c *cal.BusinessCalendar, from, to time.Time) int {
	n := 0
	end := StartOfDay(to)
	for d := StartOfDay(from); !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkday(d) {
			n++
		}
	}
	return n
}
