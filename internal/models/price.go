package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceType enumerates how a property price is expressed.
type PriceType string

const (
	PriceTypeSale          PriceType = "sale"
	PriceTypeRent          PriceType = "rent"
	PriceTypeRentWeekly    PriceType = "rent_weekly"
	PriceTypeRentMonthly   PriceType = "rent_monthly"
	PriceTypeRentYearly    PriceType = "rent_yearly"
	PriceTypeOffersAbove   PriceType = "offers_above"
	PriceTypeOffersBetween PriceType = "offers_between"
	PriceTypeEnquire       PriceType = "enquire"
	PriceTypeContact       PriceType = "contact"
	PriceTypeCall          PriceType = "call"
	PriceTypeTBA           PriceType = "tba"
	PriceTypeNegotiable    PriceType = "negotiable"
	PriceTypeFixed         PriceType = "fixed"
)

// PriceOnRequest is shown whenever no displayable amount or label exists.
const PriceOnRequest = "Price on request"

// Price describes how a property is priced and how that price is displayed.
type Price struct {
	PriceType  PriceType `bson:"price_type" json:"price_type"`
	Amount     *float64  `bson:"amount,omitempty" json:"amount,omitempty"`
	RangeMin   *float64  `bson:"range_min,omitempty" json:"range_min,omitempty"`
	RangeMax   *float64  `bson:"range_max,omitempty" json:"range_max,omitempty"`
	Label      string    `bson:"label,omitempty" json:"label,omitempty"`
	HideAmount bool      `bson:"hide_amount" json:"hide_amount"`
	// NoSearchRank excludes the listing from price-based search ranking on
	// portals that support it. Not transmitted in the export document.
	NoSearchRank bool `bson:"no_search_rank" json:"no_search_rank"`
}

// Validate checks internal consistency of the price record.
func (p *Price) Validate() error {
	if p.PriceType == PriceTypeOffersBetween {
		if p.RangeMin == nil || p.RangeMax == nil {
			return fmt.Errorf("price type %q requires both range_min and range_max", p.PriceType)
		}
		if *p.RangeMax <= *p.RangeMin {
			return fmt.Errorf("range_max (%.2f) must be greater than range_min (%.2f)", *p.RangeMax, *p.RangeMin)
		}
	}
	return nil
}

// DisplayValue resolves the price to the string shown to buyers and sent
// to the syndication network.
//
// Rules, in order: a hidden amount shows the label (or "Price on request");
// an offers-between price with both bounds shows the formatted range; a
// present amount is shown with an "Offers above" prefix or a rent
// recurrence suffix where the type calls for one; otherwise the label
// (or "Price on request") is used.
func (p *Price) DisplayValue() string {
	if p == nil {
		return PriceOnRequest
	}

	if p.HideAmount {
		if p.Label != "" {
			return p.Label
		}
		return PriceOnRequest
	}

	if p.PriceType == PriceTypeOffersBetween && p.RangeMin != nil && p.RangeMax != nil {
		return fmt.Sprintf("%s - %s", FormatAmount(*p.RangeMin), FormatAmount(*p.RangeMax))
	}

	if p.Amount != nil {
		formatted := FormatAmount(*p.Amount)
		switch p.PriceType {
		case PriceTypeOffersAbove:
			return "Offers above " + formatted
		case PriceTypeRentWeekly:
			return formatted + " p/w"
		case PriceTypeRentMonthly:
			return formatted + " p/m"
		case PriceTypeRentYearly:
			return formatted + " p/a"
		default:
			return formatted
		}
	}

	if p.Label != "" {
		return p.Label
	}
	return PriceOnRequest
}

// FormatAmount renders a monetary amount as "$1,234,567.89".
func FormatAmount(amount float64) string {
	fixed := strconv.FormatFloat(amount, 'f', 2, 64)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	dot := strings.IndexByte(fixed, '.')
	whole, frac := fixed[:dot], fixed[dot:]

	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	sb.WriteByte('$')
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	sb.WriteString(frac)
	return sb.String()
}
