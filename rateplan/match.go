package rateplan

import (
	"errors"
	"fmt"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/caldate"
	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// stayRate is one Rate element of the room type being matched, with its
// validity interval and block size parsed once up front. Pricing is
// validated lazily on the first night the rate covers and memoized, so
// a rate that never matches a night is never price-validated, and a rate
// that matches many nights is validated once.
type stayRate struct {
	start caldate.Date
	end   caldate.Date
	mult  int

	node        *ota.Node
	pricing     *ratePricing
	pricingErr  error
	pricingDone bool
}

func (r *stayRate) price(stay Stay, family *FamilyOffer) (costResult, error) {
	if !r.pricingDone {
		r.pricing, r.pricingErr = parseRatePricing(r.node)
		r.pricingDone = true
	}
	if r.pricingErr != nil {
		return costResult{}, r.pricingErr
	}
	return r.pricing.cost(stay, family)
}

// MatchRates walks the stay night by night against the rates of the
// given rate plan and room type code, and returns either the itemized
// cost report or a NoMatch explanation for the first failing night.
//
// For each day the rates are scanned in document order and the first one
// wins whose interval covers the day, whose block of UnitMultiplier days
// ends within the rate's own interval (with a one-day tolerance for the
// final day) and does not run past the departure. This is a first-match
// policy: rate ordering in the message matters.
//
// A free nights offer applies only to rates with a block size of one and
// only when the whole stay is at least NightsRequired long. Its position
// counter advances once per such night and wraps at the pattern length;
// it is shared across the whole stay, never reset at rate boundaries.
func MatchRates(doc *ota.Document, rpcode, itcode string, stay Stay, offers Offers) (*MatchResult, error) {
	var rates []*stayRate
	for _, node := range planRates(doc, rpcode) {
		if node.AttrValue("InvTypeCode") != itcode {
			continue
		}
		s, err := caldate.Parse(node.AttrValue("Start"))
		if err != nil {
			return nil, err
		}
		e, err := caldate.Parse(node.AttrValue("End"))
		if err != nil {
			return nil, err
		}
		mult := 1
		if raw := node.AttrValue("UnitMultiplier"); raw != "" {
			m, ok := parsePositiveInt(raw)
			if !ok {
				return nil, fmt.Errorf("rate has invalid UnitMultiplier (%s)", raw)
			}
			mult = m
		}
		rates = append(rates, &stayRate{start: s, end: e, mult: mult, node: node})
	}

	// Within one rate plan and room type the rate validity intervals must
	// not overlap, checked pairwise regardless of order.
	for i := range rates {
		for j := range rates {
			if i == j {
				continue
			}
			if caldate.Overlaps(rates[i].start, rates[i].end, rates[j].start, rates[j].end) {
				return nil, errors.New("rate intervals overlap")
			}
		}
	}

	var lines []NightLine
	var total Cents
	freeNightIndex := 0

	for dt := stay.Arrival; caldate.Diff(dt, stay.Departure) > 0; {

		matched := false
		considered := -1
		var cost costResult
		var rate *stayRate

		for r, rt := range rates {
			if caldate.Between(rt.start, rt.end, dt) &&
				caldate.Diff(dt.AddDays(rt.mult), rt.end) >= -1 &&
				caldate.Diff(dt.AddDays(rt.mult), stay.Departure) >= 0 {
				// rate dates fit, now check occupancy and cost
				c, err := rt.price(stay, offers.Family)
				if err != nil {
					return nil, err
				}
				considered = r
				cost = c
				rate = rt
				matched = c.matched
				break
			}
		}

		if !matched {
			kind := OccupancyMismatch
			if considered < 0 {
				kind = NoRateCoveredDate
			}
			return &MatchResult{NoMatch: &NoMatch{Date: dt, Kind: kind, RateIndex: considered}}, nil
		}

		price := cost.amount
		freeNight := false
		if rate.mult == 1 && offers.FreeNights != nil && offers.FreeNights.NightsRequired <= stay.Nights() {
			if freeNightIndex >= len(offers.FreeNights.DiscountPattern) {
				freeNightIndex = 0
			}
			if offers.FreeNights.DiscountPattern[freeNightIndex] == '1' {
				price = 0
				freeNight = true
			}
			freeNightIndex++
		}

		total += price
		lines = append(lines, NightLine{
			Date:           dt,
			Nights:         rate.mult,
			Amount:         price,
			FreeNight:      freeNight,
			RateIndex:      considered,
			RateStart:      rate.start,
			RateEnd:        rate.end,
			FamilyApplied:  cost.familyApplied,
			PayingChildren: cost.payingChildren,
		})

		dt = dt.AddDays(rate.mult)
	}

	return &MatchResult{Lines: lines, Total: total}, nil
}
