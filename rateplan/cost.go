package rateplan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// ErrInternal guards the cost engine's catch-all branch. With the
// validations in place it must never be returned; a test pins this down.
var ErrInternal = errors.New("oops - this shouldn't happen")

// adultAge is the OTA maximum qualifying age; adults are thrown into the
// age pool at this value when guests overflow the standard occupancy.
const adultAge = 999

type baseAmount struct {
	guests int
	amount float64
}

type additionalAmount struct {
	amount float64
	minAge int
	maxAge int
}

// ratePricing is the validated pricing of one Rate element. std is the
// standard occupancy, the maximum NumberOfGuests over the base entries;
// std == 0 means the rate has no base entries and can price nothing.
type ratePricing struct {
	base       []baseAmount
	additional []additionalAmount
	std        int
}

// parseRatePricing validates the BaseByGuestAmt and
// AdditionalGuestAmount sets of a Rate element into a typed record.
// A rate without base entries is legal and simply never matches.
func parseRatePricing(rate *ota.Node) (*ratePricing, error) {
	baseNodes := rate.Descendants("BaseByGuestAmt")
	if len(baseNodes) == 0 {
		return &ratePricing{}, nil
	}

	p := &ratePricing{}

	guestsSeen := make(map[int]bool)
	for _, n := range baseNodes {
		guests, ok := parsePositiveInt(n.AttrValue("NumberOfGuests"))
		if !ok {
			return nil, errors.New("BaseByGuestAmt attribute NumberOfGuests is not defined or invalid (must be a positive int)")
		}
		if guestsSeen[guests] {
			return nil, errors.New("BaseByGuestAmt attribute NumberOfGuests is not unique inside the same BaseByGuestAmts")
		}
		guestsSeen[guests] = true
		amount, ok := parseNumeric(n.AttrValue("AmountAfterTax"))
		if !ok {
			return nil, errors.New("BaseByGuestAmt attribute AmountAfterTax is not defined or invalid (must be numeric)")
		}
		if guests > p.std {
			p.std = guests
		}
		p.base = append(p.base, baseAmount{guests: guests, amount: amount})
	}

	bandsSeen := make(map[[2]int]bool)
	for _, n := range rate.Descendants("AdditionalGuestAmount") {
		amount, ok := parseNumeric(n.AttrValue("Amount"))
		if !ok {
			return nil, errors.New("AdditionalGuestAmount attribute Amount is not defined or invalid (must be numeric)")
		}

		minAge := 0
		if raw := n.AttrValue("MinAge"); raw != "" {
			v, ok := parsePositiveInt(raw)
			if !ok || v > 999 {
				return nil, errors.New("AdditionalGuestAmount attribute MinAge is invalid (allowed values are 1 ... 999 (OTA))")
			}
			minAge = v
		}
		maxAge := 1000
		if raw := n.AttrValue("MaxAge"); raw != "" {
			v, ok := parsePositiveInt(raw)
			if !ok || v > 999 {
				return nil, errors.New("AdditionalGuestAmount attribute MaxAge is invalid (allowed values are 1 ... 999 (OTA))")
			}
			maxAge = v
		}
		if minAge > maxAge {
			return nil, fmt.Errorf("AdditionalGuestAmount attributes MinAge and MaxAge are inconsistent (MinAge = %d, MaxAge = %d)", minAge, maxAge)
		}
		band := [2]int{maxAge, minAge}
		if bandsSeen[band] {
			return nil, errors.New("AdditionalGuestAmount attributes MinAge and MaxAge are not unique inside the same AdditionalGuestAmounts")
		}
		bandsSeen[band] = true

		p.additional = append(p.additional, additionalAmount{amount: amount, minAge: minAge, maxAge: maxAge})
	}

	return p, nil
}

type costResult struct {
	matched        bool
	amount         Cents
	familyApplied  bool
	payingChildren []int
}

// cost prices one rate for the stay's occupancy.
//
// The family discount is applied here, not at the stay level: only 100
// percent discounts exist today, but any future scheme that depends on
// other cost components could only be computed at this point.
//
// With tot = adults + paying children and std the standard occupancy:
// tot <= std requires the exact BaseByGuestAmt for tot guests (children
// pay as adults, no interpolation across tiers); tot > std merges
// everyone into one age pool, has the std oldest pay the base price for
// std guests and fits the rest into the cheapest AdditionalGuestAmount
// band covering their age.
func (p *ratePricing) cost(stay Stay, family *FamilyOffer) (costResult, error) {
	var res costResult

	if p.std == 0 {
		return res, nil // no base entries, no match
	}

	paying := familyDiscount(stay.Children, family)
	if len(paying) != len(stay.Children) {
		res.familyApplied = true
		res.payingChildren = paying
	}

	tot := stay.Adults + len(paying)

	if tot <= p.std {
		for _, b := range p.base {
			if b.guests == tot {
				res.matched = true
				res.amount = roundCents(b.amount)
				return res, nil
			}
		}
		return res, nil // no match
	}

	if tot > p.std {
		pool := make([]int, 0, tot)
		for i := 0; i < stay.Adults; i++ {
			pool = append(pool, adultAge)
		}
		pool = append(pool, paying...)
		sort.Ints(pool)

		sum := 0.0
		for _, b := range p.base {
			if b.guests == p.std {
				sum += b.amount
				break
			}
		}

		// the std oldest pay the base amount, the rest go into bands
		pool = pool[:len(pool)-p.std]

		for _, age := range pool {
			// Bands may overlap (a catch-all adult band is common); the
			// cheapest applicable price wins.
			cheapest, found := 0.0, false
			for _, a := range p.additional {
				if age >= a.minAge && age < a.maxAge {
					if !found || a.amount < cheapest {
						cheapest = a.amount
						found = true
					}
				}
			}
			if !found {
				return costResult{familyApplied: res.familyApplied, payingChildren: res.payingChildren}, nil // no match
			}
			sum += cheapest
		}

		res.matched = true
		res.amount = roundCents(sum)
		return res, nil
	}

	return costResult{}, ErrInternal
}

// familyDiscount returns the ages of the children that still pay after
// applying the family offer: if at least MinCount children are younger
// than MaxAge, the youngest min(LastQualifyingPosition, count) are
// removed. The input slice is never mutated.
func familyDiscount(children []int, family *FamilyOffer) []int {
	if family == nil {
		return children
	}

	qualifying := 0
	for _, age := range children {
		if age < family.MaxAge {
			qualifying++
		}
	}
	if qualifying < family.MinCount {
		return children
	}

	paying := append([]int(nil), children...)
	remove := family.LastQualifyingPosition
	if qualifying < remove {
		remove = qualifying
	}
	for i := 0; i < remove; i++ {
		paying = removeMin(paying)
	}
	return paying
}

// removeMin removes the first occurrence of the minimum value.
func removeMin(ages []int) []int {
	if len(ages) == 0 {
		return ages
	}
	minIdx := 0
	for i, v := range ages {
		if v < ages[minIdx] {
			minIdx = i
		}
	}
	out := make([]int, 0, len(ages)-1)
	out = append(out, ages[:minIdx]...)
	return append(out, ages[minIdx+1:]...)
}
