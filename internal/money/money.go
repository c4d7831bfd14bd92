// Package money renders stored kobo amounts in the shop's display currencies.
package money

import (
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency is a supported display currency code.
type Currency string

const (
	NGN Currency = "NGN"
	USD Currency = "USD"
	GBP Currency = "GBP"
	EUR Currency = "EUR"
)

var symbols = map[Currency]string{
	NGN: "₦",
	USD: "$",
	GBP: "£",
	EUR: "€",
}

// DefaultRates returns the built-in conversion rates, expressed as units of the
// target currency per one naira. Real deployments override these from
// configuration at startup.
func DefaultRates() map[Currency]decimal.Decimal {
	return map[Currency]decimal.Decimal{
		NGN: decimal.NewFromInt(1),
		USD: decimal.RequireFromString("0.00065"),
		GBP: decimal.RequireFromString("0.00051"),
		EUR: decimal.RequireFromString("0.00060"),
	}
}

// Formatter renders kobo amounts in the currently selected display currency.
// The selection is process-wide and switchable at runtime; Format never fails,
// an unknown selection falls back to naira.
type Formatter struct {
	mu      sync.RWMutex
	current Currency
	rates   map[Currency]decimal.Decimal
	printer *message.Printer
}

// NewFormatter creates a formatter with naira selected. Missing or
// non-positive rates for a currency disable it (formatting falls back to NGN).
func NewFormatter(rates map[Currency]decimal.Decimal) *Formatter {
	clean := make(map[Currency]decimal.Decimal, len(rates))
	for c, r := range rates {
		if r.IsPositive() {
			clean[c] = r
		}
	}
	clean[NGN] = decimal.NewFromInt(1)

	return &Formatter{
		current: NGN,
		rates:   clean,
		printer: message.NewPrinter(language.English),
	}
}

// SetCurrency switches the display currency. Unknown or unconfigured
// currencies are ignored.
func (f *Formatter) SetCurrency(c Currency) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rates[c]; ok {
		f.current = c
	}
}

// Currency returns the currently selected display currency.
func (f *Formatter) Currency() Currency {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Format renders a kobo amount in the selected display currency.
func (f *Formatter) Format(kobo int64) string {
	return f.FormatIn(kobo, f.Currency())
}

// FormatIn renders a kobo amount in the given currency, converting through the
// configured rate. It never fails: unknown currencies render as naira.
func (f *Formatter) FormatIn(kobo int64, c Currency) string {
	f.mu.RLock()
	rate, ok := f.rates[c]
	f.mu.RUnlock()
	if !ok {
		c = NGN
		rate = decimal.NewFromInt(1)
	}

	naira := decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100))
	amount, _ := naira.Mul(rate).Round(2).Float64()

	return f.printer.Sprintf("%s%v", symbols[c],
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
