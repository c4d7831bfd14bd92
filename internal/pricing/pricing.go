// Package pricing contains the pure money calculations of the storefront:
// delivery fees, store-points valuation and authoritative order totals.
// All amounts are in kobo.
package pricing

import (
	"strings"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

// KoboPerPoint is the fixed conversion rate for redeemed store points.
const KoboPerPoint = 100

const supportedCountry = "nigeria"

// Flat delivery fees per state, kobo. Unlisted states ship at the default rate
// only if present here; anything unknown costs nothing (quoted manually instead).
var deliveryFees = map[string]int64{
	"lagos":        150000,
	"ogun":         200000,
	"oyo":          250000,
	"abuja":        300000,
	"fct":          300000,
	"rivers":       350000,
	"kano":         400000,
	"kaduna":       400000,
	"enugu":        350000,
	"anambra":      350000,
	"delta":        300000,
	"edo":          300000,
	"akwa ibom":    350000,
	"cross river":  350000,
	"abia":         350000,
	"imo":          350000,
	"osun":         250000,
	"ondo":         250000,
	"ekiti":        250000,
	"kwara":        300000,
	"plateau":      400000,
	"borno":        450000,
	"sokoto":       450000,
	"niger":        350000,
	"benue":        350000,
	"bayelsa":      400000,
}

func normalizeRegion(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DeliveryFee returns the flat delivery fee for a region/country pair.
// The lookup is case-insensitive and whitespace-tolerant; unknown pairs
// are a valid zero-fee outcome, not an error.
func DeliveryFee(region, country string) int64 {
	if normalizeRegion(country) != supportedCountry {
		return 0
	}
	return deliveryFees[normalizeRegion(region)]
}

// StorePointsValue converts redeemed points into a kobo discount at the fixed
// rate. Negative input counts as zero points redeemed.
func StorePointsValue(points int) int64 {
	if points <= 0 {
		return 0
	}
	return int64(points) * KoboPerPoint
}

// OrderTotals is the single authoritative breakdown of an order's money figures.
type OrderTotals struct {
	Subtotal       int64
	DeliveryFee    int64
	PointsDiscount int64
	GrandTotal     int64
	// StoredMismatch is set when the order carried a stored total that
	// diverges from the recomputed grand total by more than one kobo.
	StoredMismatch bool
}

// Totals recomputes an order's figures from its line items. The subtotal is
// never taken from a stored field; the delivery fee is zero for pickup orders
// and otherwise derived from the delivery state/country; the discount never
// exceeds the subtotal plus fee.
func Totals(o *model.Order) OrderTotals {
	var t OrderTotals
	if o == nil {
		return t
	}

	for _, it := range o.Items {
		if it.Quantity <= 0 || it.UnitPrice <= 0 {
			continue
		}
		t.Subtotal += it.UnitPrice * int64(it.Quantity)
	}

	if !o.Delivery.Pickup {
		region := o.Delivery.State
		if region == "" {
			region = o.Delivery.City
		}
		t.DeliveryFee = DeliveryFee(region, o.Delivery.Country)
	}

	t.PointsDiscount = StorePointsValue(o.PointsRedeemed)
	if max := t.Subtotal + t.DeliveryFee; t.PointsDiscount > max {
		t.PointsDiscount = max
	}

	t.GrandTotal = t.Subtotal + t.DeliveryFee - t.PointsDiscount

	if o.StoredTotal != nil {
		diff := *o.StoredTotal - t.GrandTotal
		if diff < -1 || diff > 1 {
			t.StoredMismatch = true
		}
	}

	return t
}
