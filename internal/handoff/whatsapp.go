// Package handoff builds the WhatsApp deep links used for human-mediated
// order confirmation.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/pricing"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/validation"
)

// WhatsAppURL builds a wa.me link opening a chat with the business number,
// pre-filled with the given message.
func WhatsAppURL(phone, message string) (string, error) {
	digits, ok := validation.NormalizePhone(phone)
	if !ok {
		return "", fmt.Errorf("invalid whatsapp number %q", phone)
	}

	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + digits,
		RawQuery: url.Values{"text": {message}}.Encode(),
	}
	return u.String(), nil
}

// OrderMessage composes the confirmation text for an order draft.
func OrderMessage(o *model.Order, f *money.Formatter) string {
	var b strings.Builder

	b.WriteString("Hello, I would like to confirm my order")
	if o.Reference != "" {
		b.WriteString(" " + o.Reference)
	}
	b.WriteString(":\n")

	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %dx %s (%s)\n", it.Quantity, it.Name, f.Format(it.UnitPrice))
	}

	t := pricing.Totals(o)
	fmt.Fprintf(&b, "Total: %s", f.Format(t.GrandTotal))

	if o.Delivery.Pickup {
		b.WriteString("\nPickup in store")
	} else if o.Delivery.State != "" {
		fmt.Fprintf(&b, "\nDelivery to %s, %s", o.Delivery.State, o.Delivery.Country)
	}

	return b.String()
}
