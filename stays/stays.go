// Package stays parses the stay list input: one candidate stay per line,
//
//	name, arrival, departure, adults[, child age, child age, ...]
//
// Lines starting with # are comments. Lines that do not parse or violate
// the stay invariants are skipped, not fatal; the caller decides what to
// do when nothing parses at all.
package stays

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/rateplan"
)

var (
	commentRe = regexp.MustCompile(`^\s*#`)
	lineRe    = regexp.MustCompile(`^\s*([a-zA-Z0-9_]+)\s*,\s*(\d{4}-\d{2}-\d{2})\s*,\s*(\d{4}-\d{2}-\d{2})\s*,\s*(\d{1,2})\s*([\s,0-9]*)$`)
	ageRe     = regexp.MustCompile(`^\s*(\d{1,2})\s*$`)
)

// Parse reads stay records from the given text. Invalid lines are
// dropped silently, like unknown lines in any forgiving list format.
func Parse(input string) []rateplan.Stay {
	var out []rateplan.Stay

	for _, line := range strings.Split(input, "\n") {
		if commentRe.MatchString(line) {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		arrival, err := caldate.Parse(m[2])
		if err != nil {
			continue
		}
		departure, err := caldate.Parse(m[3])
		if err != nil {
			continue
		}
		if caldate.Diff(arrival, departure) <= 0 {
			continue
		}

		adults, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}

		children, ok := parseAges(m[5])
		if !ok {
			continue
		}

		if adults+len(children) == 0 { // no zero occupation
			continue
		}

		out = append(out, rateplan.Stay{
			Name:      m[1],
			Arrival:   arrival,
			Departure: departure,
			Adults:    adults,
			Children:  children,
		})
	}

	return out
}

// parseAges parses the trailing child age list. The tail either is blank
// or starts with a comma followed by comma-separated ages.
func parseAges(tail string) ([]int, bool) {
	parts := strings.Split(tail, ",")
	if strings.TrimSpace(parts[0]) != "" {
		return nil, false
	}
	var ages []int
	for _, part := range parts[1:] {
		m := ageRe.FindStringSubmatch(part)
		if m == nil {
			return nil, false
		}
		age, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, false
		}
		ages = append(ages, age)
	}
	return ages, true
}
