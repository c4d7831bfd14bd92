// Package validation contains input validation for storefront forms.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
)

// ErrValidation is the base error for all failed input checks. Wrapped errors
// carry the offending field.
var ErrValidation = errors.New("validation failed")

func fieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// ValidCouponPercent reports whether a discount percentage is usable.
// Zero and out-of-range values are rejected.
func ValidCouponPercent(p int) bool {
	return p >= 1 && p <= 100
}

// ValidEmail performs a minimal shape check on an email address.
func ValidEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t")
}

// NormalizePhone strips formatting from a phone number and returns the bare
// digits, converting a leading 0 to the Nigerian country code. The second
// return is false when too few digits remain.
func NormalizePhone(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		digits = "234" + digits[1:]
	}
	if len(digits) < 10 {
		return "", false
	}
	return digits, true
}

// ValidateDeliveryDetails checks the fields required before an order can be
// placed. Pickup orders only need a name and phone.
func ValidateDeliveryDetails(d model.DeliveryDetails) error {
	if strings.TrimSpace(d.FullName) == "" {
		return fieldError("full_name", "is required")
	}
	if _, ok := NormalizePhone(d.Phone); !ok {
		return fieldError("phone", "is not a valid phone number")
	}
	if d.Pickup {
		return nil
	}
	if strings.TrimSpace(d.Address) == "" {
		return fieldError("address", "is required")
	}
	if strings.TrimSpace(d.State) == "" {
		return fieldError("state", "is required")
	}
	if strings.TrimSpace(d.Country) == "" {
		return fieldError("country", "is required")
	}
	return nil
}

// ValidateCoupon checks a coupon before it is created or updated.
func ValidateCoupon(c model.Coupon) error {
	if strings.TrimSpace(c.Code) == "" {
		return fieldError("code", "is required")
	}
	if !ValidCouponPercent(c.Percent) {
		return fieldError("percent", "must be between 1 and 100")
	}
	return nil
}

// ValidateBespokeRequest checks a custom-order enquiry form.
func ValidateBespokeRequest(r model.BespokeRequest) error {
	if strings.TrimSpace(r.FullName) == "" {
		return fieldError("full_name", "is required")
	}
	if !ValidEmail(r.Email) {
		return fieldError("email", "is not a valid address")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fieldError("description", "is required")
	}
	if r.Budget < 0 {
		return fieldError("budget", "must not be negative")
	}
	return nil
}
