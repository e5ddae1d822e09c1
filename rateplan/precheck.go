package rateplan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// PrecheckMessage validates the RatePlan elements of a rate plan message
// and returns their RatePlanCode values in document order. It fails if a
// code is missing, contains an apostrophe, is duplicated, or if the
// message holds no rate plans at all.
//
// The apostrophe rule is kept for message parity with the original
// conformance tool; codes are never interpolated into queries here.
func PrecheckMessage(doc *ota.Document) ([]string, error) {
	seen := make(map[string]bool)
	var codes []string

	for i, rp := range doc.RatePlans() {
		code := rp.AttrValue("RatePlanCode")
		if code == "" {
			return nil, fmt.Errorf("RatePlan[%d] is missing the essential attribute RatePlanCode", i)
		}
		if strings.Contains(code, "'") {
			return nil, fmt.Errorf("RatePlan[%d] has a RatePlanCode that contains an apostrophe", i)
		}
		if seen[code] {
			return nil, errors.New("the RatePlanCode values are not unique")
		}
		seen[code] = true
		codes = append(codes, code)
	}

	if len(codes) == 0 {
		return nil, errors.New("no rate plans found")
	}
	return codes, nil
}

// planNode returns the RatePlan element with the given code, or nil.
func planNode(doc *ota.Document, rpcode string) *ota.Node {
	for _, rp := range doc.RatePlans() {
		if rp.AttrValue("RatePlanCode") == rpcode {
			return rp
		}
	}
	return nil
}

// planRates returns the Rates/Rate elements of a rate plan in document
// order.
func planRates(doc *ota.Document, rpcode string) []*ota.Node {
	rp := planNode(doc, rpcode)
	if rp == nil {
		return nil
	}
	var out []*ota.Node
	for _, rates := range rp.Children("Rates") {
		out = append(out, rates.Children("Rate")...)
	}
	return out
}

// PrecheckRates validates the Rate elements of the given rate plan and
// returns the distinct InvTypeCode values in document order. Every Rate
// must carry InvTypeCode, Start and End; dates must be valid and ordered;
// UnitMultiplier must be a positive integer and is only legal together
// with RateTimeUnit="Day".
func PrecheckRates(doc *ota.Document, rpcode string) ([]string, error) {
	seen := make(map[string]bool)
	var codes []string

	for i, rate := range planRates(doc, rpcode) {
		icode := rate.AttrValue("InvTypeCode")
		start := rate.AttrValue("Start")
		end := rate.AttrValue("End")
		timeUnit := rate.AttrValue("RateTimeUnit")
		multiplier := rate.AttrValue("UnitMultiplier")

		if icode == "" || start == "" || end == "" {
			return nil, fmt.Errorf("Rate[%d] does not define all essential attributes InvTypeCode, Start, End", i)
		}
		if strings.Contains(icode, "'") {
			return nil, fmt.Errorf("Rate[%d] has an InvTypeCode that contains an apostrophe", i)
		}
		if !caldate.IsValid(start) || !caldate.IsValid(end) {
			return nil, fmt.Errorf("Rate[%d] has invalid Start or End dates", i)
		}
		s, _ := caldate.Parse(start)
		e, _ := caldate.Parse(end)
		if caldate.Diff(s, e) < 0 {
			return nil, fmt.Errorf("Rate[%d] has End date < Start date", i)
		}
		if multiplier != "" && !isPositiveInt(multiplier) {
			return nil, fmt.Errorf("Rate[%d] is invalid (UnitMultiplier is not a positive integer)", i)
		}
		if multiplier != "" && timeUnit != "Day" {
			return nil, fmt.Errorf("Rate[%d] is invalid (for rates with UnitMultiplier, RateTimeUnit must be set to \"Day\")", i)
		}
		if multiplier == "" && timeUnit != "" {
			return nil, fmt.Errorf("Rate[%d] is invalid (RateTimeUnit may only be used when also UnitMultiplier is used)", i)
		}

		if !seen[icode] {
			seen[icode] = true
			codes = append(codes, icode)
		}
	}

	if len(codes) == 0 {
		return nil, errors.New("no rates found")
	}
	return codes, nil
}
