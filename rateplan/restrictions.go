package rateplan

import (
	"fmt"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// The DOW attribute names AlpineBits uses, indexed Sunday=0 .. Saturday=6.
var dowAttrs = [7]string{"Sun", "Mon", "Tue", "Weds", "Thur", "Fri", "Sat"}

type bookingRule struct {
	node  *ota.Node
	start caldate.Date
	end   caldate.Date
}

// CheckRestrictions evaluates the booking rules of a rate plan against a
// stay: generic rules (no Code attribute) and rules specific to the given
// room type code. It returns a Denial when a rule forbids the stay, an
// error when rule data is malformed, and (nil, nil) when the stay is
// permitted.
//
// Semantics, in order:
//  1. no day of the stay before the departure day may be closed by a
//     master restriction status,
//  2. rules covering the arrival day gate length of stay and arrival
//     day-of-week,
//  3. rules covering the departure day (inclusive) gate departure
//     day-of-week.
func CheckRestrictions(doc *ota.Document, rpcode, code string, stay Stay) (*Denial, error) {
	rp := planNode(doc, rpcode)

	var generic, specific []*ota.Node
	if rp != nil {
		for _, rules := range rp.Children("BookingRules") {
			for _, rule := range rules.Children("BookingRule") {
				ruleCode, present := rule.Attr("Code")
				switch {
				case !present:
					generic = append(generic, rule)
				case ruleCode == code:
					specific = append(specific, rule)
				}
			}
		}
	}

	kinds := []struct {
		name  string
		nodes []*ota.Node
	}{
		{"generic", generic},
		{"specific", specific},
	}

	// Interval integrity per kind: valid ordered dates, no overlaps.
	parsed := make([][]bookingRule, len(kinds))
	for k, kind := range kinds {
		for _, node := range kind.nodes {
			start := node.AttrValue("Start")
			end := node.AttrValue("End")
			if !caldate.IsValid(start) || !caldate.IsValid(end) {
				return nil, fmt.Errorf("missing or invalid Start or End dates for some %s booking rule", kind.name)
			}
			s, _ := caldate.Parse(start)
			e, _ := caldate.Parse(end)
			if caldate.Diff(s, e) < 0 {
				return nil, fmt.Errorf("End date < Start date for some %s booking rule", kind.name)
			}
			parsed[k] = append(parsed[k], bookingRule{node: node, start: s, end: e})
		}
		for i := range parsed[k] {
			for j := range parsed[k] {
				if i == j {
					continue
				}
				if caldate.Overlaps(parsed[k][i].start, parsed[k][i].end, parsed[k][j].start, parsed[k][j].end) {
					return nil, fmt.Errorf("intervals overlap for some %s booking rule", kind.name)
				}
			}
		}
	}

	// Context marker: generic rules carry no CodeContext, specific rules
	// must say CodeContext="ROOMTYPE".
	for _, rule := range generic {
		if _, present := rule.Attr("CodeContext"); present {
			return nil, fmt.Errorf("a generic booking rule has the CodeContext attribute")
		}
	}
	for _, rule := range specific {
		if rule.AttrValue("CodeContext") != "ROOMTYPE" {
			return nil, fmt.Errorf("a specific booking rule is missing CodeContext=\"ROOMTYPE\"")
		}
	}

	// Master restriction status: each day of the stay, excluding the
	// departure day, must not be closed by an applicable rule.
	for dt := stay.Arrival; caldate.Diff(dt, stay.Departure) > 0; dt = dt.AddDays(1) {
		for _, rules := range parsed {
			for _, rule := range rules {
				if !caldate.Between(rule.start, rule.end, dt) {
					continue
				}
				for _, child := range rule.node.AllChildren() {
					if child.Name() != "RestrictionStatus" {
						continue
					}
					if child.AttrValue("Restriction") != "Master" {
						return nil, fmt.Errorf("RestrictionStatus element: expected Restriction=\"Master\" attribute")
					}
					switch child.AttrValue("Status") {
					case "Close":
						return &Denial{Reason: fmt.Sprintf("a booking rule has restriction status closed for %s", dt)}, nil
					case "Open":
					default:
						return nil, fmt.Errorf("RestrictionStatus element: expected Status=\"Open\" or Status=\"Close\" attribute")
					}
				}
			}
		}
	}

	length := stay.Nights()

	for _, rules := range parsed {
		for _, rule := range rules {

			// Arrival day: length of stay bounds and arrival DOW of any rule
			// covering the arrival day must be satisfied.
			if caldate.Between(rule.start, rule.end, stay.Arrival) {
				for _, child := range rule.node.AllChildren() {
					switch child.Name() {
					case "LengthsOfStay":
						for _, los := range child.Children("LengthOfStay") {
							t, ok := parsePositiveInt(los.AttrValue("Time"))
							if !ok {
								return nil, fmt.Errorf("LengthOfStay element: no attribute Time with positive integer value")
							}
							timeUnit := los.AttrValue("TimeUnit")
							minMax := los.AttrValue("MinMaxMessageType")
							switch {
							case timeUnit == "Day" && minMax == "SetMinLOS":
								if length < t {
									return &Denial{Reason: "a booking rule forbids this stay (LOS too short)"}, nil
								}
							case timeUnit == "Day" && minMax == "SetMaxLOS":
								if length > t {
									return &Denial{Reason: "a booking rule forbids this stay (LOS too long)"}, nil
								}
							default:
								return nil, fmt.Errorf("LengthOfStay element: expected TimeUnit=\"Day\" and MinMaxMessageType=\"SetMinLOS\" or \"SetMaxLOS\"")
							}
						}
					case "DOW_Restrictions":
						for _, dow := range child.Children("ArrivalDaysOfWeek") {
							denial, err := checkDOW(dow, "ArrivalDaysOfWeek", stay.Arrival.Weekday())
							if denial != nil || err != nil {
								return denial, err
							}
						}
					}
				}
			}

			// Departure day: the departure DOW of any rule covering the
			// departure day must be satisfied. Unlike the nightly closure
			// check this interval test includes the departure day.
			if caldate.Between(rule.start, rule.end, stay.Departure) {
				for _, child := range rule.node.AllChildren() {
					if child.Name() != "DOW_Restrictions" {
						continue
					}
					for _, dow := range child.Children("DepartureDaysOfWeek") {
						denial, err := checkDOW(dow, "DepartureDaysOfWeek", stay.Departure.Weekday())
						if denial != nil || err != nil {
							return denial, err
						}
					}
				}
			}
		}
	}

	return nil, nil
}

// checkDOW validates one ArrivalDaysOfWeek or DepartureDaysOfWeek
// element. All seven weekday attributes must be present with values "0",
// "1", "false" or "true"; the flag for the given weekday must be truthy.
func checkDOW(dow *ota.Node, element string, weekday int) (*Denial, error) {
	restriction := "ArrivalDaysOfWeek restriction"
	if element == "DepartureDaysOfWeek" {
		restriction = "DepartureDaysOfWeek restriction"
	}
	for n, name := range dowAttrs {
		v := dow.AttrValue(name)
		switch v {
		case "0", "1", "false", "true":
		default:
			return nil, fmt.Errorf("%s element: expected attributes Sun, Mon, Tue, Weds, Thur, Fri and Sat with values \"0\", \"1\", \"false\" or \"true\"", element)
		}
		if n == weekday && v != "1" && v != "true" {
			return &Denial{Reason: fmt.Sprintf("a booking rule forbids this stay (%s)", restriction)}, nil
		}
	}
	return nil, nil
}
