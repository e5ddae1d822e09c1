package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/rateplan"
)

// Render produces the plain text report: one section per stay, one block
// per entry, in evaluation order. The output is deterministic for the
// same input.
func (r *Result) Render() string {
	var b strings.Builder

	lastStay := -1
	for _, entry := range r.Entries {
		if entry.StayIndex != lastStay {
			if lastStay >= 0 {
				b.WriteString("\n")
			}
			b.WriteString(r.stayHeading(r.Stays[entry.StayIndex]))
			b.WriteString("\n")
			lastStay = entry.StayIndex
		}
		b.WriteString("\n")
		r.renderEntry(&b, entry)
	}

	return b.String()
}

func (r *Result) stayHeading(stay rateplan.Stay) string {
	heading := fmt.Sprintf("stay %q: %s starting %s, %s",
		stay.Name, plural(stay.Nights(), "night"), stay.Arrival, plural(stay.Adults, "adult"))
	if len(stay.Children) > 0 {
		heading += fmt.Sprintf(" and %s (ages: %s)", plural(len(stay.Children), "child"), joinAges(stay.Children))
	}
	return heading
}

func (r *Result) renderEntry(b *strings.Builder, entry Entry) {
	if entry.Kind == KindWarning {
		fmt.Fprintf(b, "warning: %s skipped (%s)\n", crumb(entry), entry.Reason)
		return
	}

	b.WriteString(crumb(entry))
	b.WriteString("\n")

	switch entry.Kind {
	case KindDenied:
		fmt.Fprintf(b, "denied by booking rules (%s)\n", entry.Reason)

	case KindNoMatch:
		nm := entry.Match.NoMatch
		reason := "no rate matched the date/LOS"
		if nm.Kind == rateplan.OccupancyMismatch {
			reason = "a rate matched the date/LOS, but not the occupation"
		}
		fmt.Fprintf(b, "no match, the first night that didn't match was %s (%s)\n", nm.Date, reason)

	case KindMatch:
		for _, line := range entry.Match.Lines {
			fmt.Fprintf(b, "%v %s for %s (%s) ", r.Currency, line.Amount, line.Date, plural(line.Nights, "night"))
			if line.FreeNight {
				b.WriteString("matched by free night discount")
			} else {
				fmt.Fprintf(b, "matched by rate[%d] (%s ... %s)", line.RateIndex, line.RateStart, line.RateEnd)
			}
			if line.FamilyApplied {
				fmt.Fprintf(b, " + family discount (%s paying", plural(len(line.PayingChildren), "child"))
				if len(line.PayingChildren) > 0 {
					fmt.Fprintf(b, ", ages: %s", joinAges(line.PayingChildren))
				}
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n")
		fmt.Fprintf(b, "%v %s", r.Currency, entry.Match.Total)
		if entry.Match.Suspicious() {
			b.WriteString(" (THIS SHOULD NOT be SHOWN TO THE CUSTOMER)")
		}
		b.WriteString("\n")
	}
}

// crumb renders the path to the combination the entry belongs to, as deep
// as the entry reaches.
func crumb(entry Entry) string {
	s := fmt.Sprintf("message file %q", entry.Message)
	if entry.RatePlanCode != "" {
		s += fmt.Sprintf(" -> rate plan code %q", entry.RatePlanCode)
	}
	if entry.InvTypeCode != "" {
		s += fmt.Sprintf(" -> rates with inv type code %q", entry.InvTypeCode)
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	if noun == "child" {
		return fmt.Sprintf("%d children", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinAges(ages []int) string {
	parts := make([]string, len(ages))
	for i, age := range ages {
		parts[i] = strconv.Itoa(age)
	}
	return strings.Join(parts, ", ")
}
