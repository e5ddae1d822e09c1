// Package rateplan implements the AlpineBits rate plan validation and
// pricing engine: structural prechecking of rate plan messages, offer
// parsing, booking rule evaluation and the night-by-night rate matching
// and cost computation.
//
// All amounts are EUR after taxes, per the AlpineBits standard. Every
// failure is a value: validation problems come back as errors, a booking
// rule that forbids a stay comes back as a Denial, and a stay no rate can
// price comes back as a NoMatch.
package rateplan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
)

// Stay is one candidate stay to price: an arrival/departure interval,
// the number of adults and the ages of the accompanying children.
// It is immutable during evaluation.
type Stay struct {
	Name      string
	Arrival   caldate.Date
	Departure caldate.Date
	Adults    int
	Children  []int
}

// Nights returns the length of the stay in nights.
func (s Stay) Nights() int {
	return caldate.Diff(s.Arrival, s.Departure)
}

// Validate checks the stay invariants: valid ordered dates, non-negative
// counts and ages, at least one guest.
func (s Stay) Validate() error {
	if s.Arrival.IsZero() {
		return &ValidationError{Field: "Arrival", Message: "cannot be zero"}
	}
	if s.Departure.IsZero() {
		return &ValidationError{Field: "Departure", Message: "cannot be zero"}
	}
	if s.Nights() < 1 {
		return &ValidationError{Field: "Departure", Message: "must be after Arrival"}
	}
	if s.Adults < 0 {
		return &ValidationError{Field: "Adults", Message: "cannot be negative"}
	}
	for _, age := range s.Children {
		if age < 0 {
			return &ValidationError{Field: "Children", Message: "ages cannot be negative"}
		}
	}
	if s.Adults+len(s.Children) < 1 {
		return &ValidationError{Field: "Adults", Message: "stay must have at least one guest"}
	}
	return nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// Cents is a price in integer euro cents, the result of rounding a
// computed amount half-up at two decimals.
type Cents int64

// roundCents rounds half-up on the value scaled by 100, matching
// Math.round semantics for the amounts the engine computes.
func roundCents(v float64) Cents {
	return Cents(math.Floor(v*100.0 + 0.5))
}

// String renders the amount with exactly two decimal digits.
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Denial is a first-class negative outcome: a booking rule legitimately
// forbids the stay. It is not an error.
type Denial struct {
	Reason string
}

// NoMatchKind distinguishes the two ways the rate walk can fail.
type NoMatchKind int

const (
	// NoRateCoveredDate: no rate's validity interval and length-of-stay
	// shape covered the failing day.
	NoRateCoveredDate NoMatchKind = iota
	// OccupancyMismatch: a rate covered the day but its occupancy pricing
	// had no entry for the stay's guests.
	OccupancyMismatch
)

// NoMatch reports the first night of the walk that could not be priced.
type NoMatch struct {
	Date caldate.Date
	Kind NoMatchKind
	// RateIndex is the index of the rate that covered the date when Kind
	// is OccupancyMismatch, -1 otherwise.
	RateIndex int
}

// NightLine is one itemized line of a priced stay: the block of nights
// starting at Date, covered by the rate at RateIndex, at Amount.
type NightLine struct {
	Date      caldate.Date
	Nights    int
	Amount    Cents
	FreeNight bool
	RateIndex int
	RateStart caldate.Date
	RateEnd   caldate.Date
	// FamilyApplied is set when the family offer waived children for this
	// block; PayingChildren then holds the ages that still pay.
	FamilyApplied  bool
	PayingChildren []int
}

// MatchResult is the outcome of MatchRates: either an itemized cost
// report (Lines, Total) or a NoMatch explanation.
type MatchResult struct {
	Lines   []NightLine
	Total   Cents
	NoMatch *NoMatch
}

// Matched reports whether every night of the stay was priced.
func (m *MatchResult) Matched() bool {
	return m.NoMatch == nil
}

// Suspicious reports whether the priced total is zero or negative, an
// outcome that must not be surfaced to an end customer.
func (m *MatchResult) Suspicious() bool {
	return m.Matched() && m.Total <= 0
}

var positiveIntRe = regexp.MustCompile(`^\d+$`)

// isPositiveInt reports whether s is a non-empty digit string with a
// non-zero value ("0" and "000" are not positive).
func isPositiveInt(s string) bool {
	if !positiveIntRe.MatchString(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

func parsePositiveInt(s string) (int, bool) {
	if !isPositiveInt(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseNumeric accepts any decimal number, the "must be numeric"
// attribute contract.
func parseNumeric(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
