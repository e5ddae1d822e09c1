package rateplan

import (
	"fmt"
	"strings"

	"github.com/tis-innovation-park/alpinebits-rateplan-test-app/ota"
)

// FreeNightsOffer is a multi-night discount that waives payment for
// specific nights of the stay, per a repeating pattern of '0' and '1'
// characters. AlpineBits only allows the canonical pattern of
// NightsRequired-NightsDiscounted zeros followed by NightsDiscounted
// ones, at 100 percent.
type FreeNightsOffer struct {
	Percent          int
	NightsRequired   int
	NightsDiscounted int
	DiscountPattern  string
}

// FamilyOffer waives payment for a bounded number of qualifying young
// children: among the stay's children younger than MaxAge, if at least
// MinCount qualify, the youngest min(LastQualifyingPosition, count) go
// free.
type FamilyOffer struct {
	Percent                 int
	AgeQualifyingCode       int
	MaxAge                  int
	FirstQualifyingPosition int
	LastQualifyingPosition  int
	MinCount                int
}

// Offers holds the at-most-one offer of each kind a rate plan may carry.
type Offers struct {
	FreeNights *FreeNightsOffer
	Family     *FamilyOffer
}

// offerNodes returns the Offers/Offer elements of a rate plan in
// document order.
func offerNodes(doc *ota.Document, rpcode string) []*ota.Node {
	rp := planNode(doc, rpcode)
	if rp == nil {
		return nil
	}
	var out []*ota.Node
	for _, offers := range rp.Children("Offers") {
		out = append(out, offers.Children("Offer")...)
	}
	return out
}

// ParseOffers locates and validates the Offer elements of a rate plan.
// An Offer with one Discount child and no Guest child is a free nights
// offer; one Discount and one Guest child is a family offer; anything
// else fails. At most two Offer elements are allowed, one slot per kind
// (a second offer of the same kind overwrites the first).
func ParseOffers(doc *ota.Document, rpcode string) (Offers, error) {
	var offers Offers

	nodes := offerNodes(doc, rpcode)
	if len(nodes) == 0 {
		return offers, nil
	}
	if len(nodes) > 2 {
		return Offers{}, fmt.Errorf("more than two Offer elements")
	}

	for i, offer := range nodes {
		discounts := offer.Children("Discount")
		var guests []*ota.Node
		for _, g := range offer.Children("Guests") {
			guests = append(guests, g.Children("Guest")...)
		}

		switch {
		case len(discounts) == 1 && len(guests) == 0:
			fn, err := parseFreeNights(discounts[0], i)
			if err != nil {
				return Offers{}, err
			}
			offers.FreeNights = fn

		case len(discounts) == 1 && len(guests) == 1:
			fam, err := parseFamily(discounts[0], guests[0], i)
			if err != nil {
				return Offers{}, err
			}
			offers.Family = fam

		default:
			return Offers{}, fmt.Errorf("Offer[%d] has unexpected number of Discount/Guest children - was expecting 1/0 or 1/1", i)
		}
	}

	return offers, nil
}

func parseFreeNights(discount *ota.Node, i int) (*FreeNightsOffer, error) {
	if !isPercent100(discount.AttrValue("Percent")) {
		return nil, fmt.Errorf("Offer[%d]/Discount: attribute Percent is either missing or not set to 100", i)
	}

	required, okReq := parsePositiveInt(discount.AttrValue("NightsRequired"))
	discounted, okDis := parsePositiveInt(discount.AttrValue("NightsDiscounted"))
	pattern := discount.AttrValue("DiscountPattern")
	if !okReq || !okDis || pattern == "" {
		return nil, fmt.Errorf("Offer[%d]/Discount: attributes NightsRequired, NightsDiscounted or DiscountPattern are either missing or not positive integer values", i)
	}
	if discounted >= required {
		return nil, fmt.Errorf("Offer[%d]/Discount: NightsDiscounted cannot be >= NightsRequired", i)
	}
	if pattern != strings.Repeat("0", required-discounted)+strings.Repeat("1", discounted) {
		return nil, fmt.Errorf("Offer[%d]/Discount: inconsistency between NightsRequired, NightsDiscounted and DiscountPattern", i)
	}

	return &FreeNightsOffer{
		Percent:          100,
		NightsRequired:   required,
		NightsDiscounted: discounted,
		DiscountPattern:  pattern,
	}, nil
}

func parseFamily(discount, guest *ota.Node, i int) (*FamilyOffer, error) {
	if !isPercent100(discount.AttrValue("Percent")) {
		return nil, fmt.Errorf("Offer[%d]/Discount: attribute Percent is either missing or not set to 100", i)
	}

	first, ok := parsePositiveInt(guest.AttrValue("FirstQualifyingPosition"))
	if !ok || first != 1 {
		return nil, fmt.Errorf("Offer[%d]/Guests/Guest: attribute FirstQualifyingPosition is either missing or not set to 1", i)
	}

	// MinCount is not mandatory, it defaults to 1.
	minCount := 1
	if raw, present := guest.Attr("MinCount"); present {
		n, ok := parsePositiveInt(raw)
		if !ok {
			return nil, fmt.Errorf("Offer[%d]/Guests/Guest: attribute MinCount is not a positive integer value", i)
		}
		minCount = n
	}

	ageCode, okCode := parsePositiveInt(guest.AttrValue("AgeQualifyingCode"))
	maxAge, okAge := parsePositiveInt(guest.AttrValue("MaxAge"))
	last, okLast := parsePositiveInt(guest.AttrValue("LastQualifyingPosition"))
	if !okCode || !okAge || !okLast {
		return nil, fmt.Errorf("Offer[%d]/Guests/Guest: attributes AgeQualifyingCode, MaxAge or LastQualifyingPosition are either missing or not positive integer values", i)
	}

	return &FamilyOffer{
		Percent:                 100,
		AgeQualifyingCode:       ageCode,
		MaxAge:                  maxAge,
		FirstQualifyingPosition: 1,
		LastQualifyingPosition:  last,
		MinCount:                minCount,
	}, nil
}

func isPercent100(s string) bool {
	v, ok := parseNumeric(s)
	return ok && v == 100
}
