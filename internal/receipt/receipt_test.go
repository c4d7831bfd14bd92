package receipt

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/pricing"
)

func testLetterhead() Letterhead {
	return Letterhead{
		BusinessName: "Hide & Luxe",
		Address:      "4 Tannery Close, Lagos",
		Phone:        "+234 803 000 0000",
		Email:        "orders@hideluxe.example",
	}
}

func testOrder() *model.Order {
	paidAt := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:        "ord-123",
		Reference: "A7X9KQ2M",
		UserEmail: "ada@example.com",
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Oxblood satchel", UnitPrice: 4500000, Quantity: 1},
			{ProductID: "p2", Name: "Card holder", UnitPrice: 800000, Quantity: 2},
		},
		Delivery: model.DeliveryDetails{
			FullName: "Ada Obi",
			Phone:    "08031234567",
			Address:  "12 Marina Rd",
			City:     "Ikeja",
			State:    "Lagos",
			Country:  "Nigeria",
		},
		Payment: model.PaymentDetails{
			TxRef:  "tx-rcpt",
			TxID:   "998877",
			PaidAt: &paidAt,
		},
		Status:         model.OrderStatusPaid,
		PointsRedeemed: 100,
		CreatedAt:      time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
	}
}

func TestBuild_TotalsInvariant(t *testing.T) {
	f := money.NewFormatter(money.DefaultRates())
	r := NewRenderer(testLetterhead(), f)
	o := testOrder()

	rec := r.Build(o)
	tot := pricing.Totals(o)

	if rec.GrandTotal != f.Format(tot.Subtotal+tot.DeliveryFee-tot.PointsDiscount) {
		t.Fatalf("GrandTotal = %q, want formatted S+D-P", rec.GrandTotal)
	}
	if rec.Subtotal != f.Format(6100000) {
		t.Fatalf("Subtotal = %q", rec.Subtotal)
	}
	if rec.PointsDiscount != f.Format(10000) {
		t.Fatalf("PointsDiscount = %q", rec.PointsDiscount)
	}
}

func TestBuild_Fields(t *testing.T) {
	f := money.NewFormatter(money.DefaultRates())
	r := NewRenderer(testLetterhead(), f)

	rec := r.Build(testOrder())

	if rec.OrderDate != "10 Mar 2025" {
		t.Fatalf("OrderDate = %q", rec.OrderDate)
	}
	if rec.ExpectedDelivery != "17 Mar 2025" {
		t.Fatalf("ExpectedDelivery = %q, want order date + 7 days", rec.ExpectedDelivery)
	}
	if rec.PaymentDate != "10 Mar 2025" {
		t.Fatalf("PaymentDate = %q", rec.PaymentDate)
	}
	if !strings.Contains(rec.Address, "12 Marina Rd") || !strings.Contains(rec.Address, "Lagos") {
		t.Fatalf("Address = %q", rec.Address)
	}
	if len(rec.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(rec.Items))
	}
	if rec.Items[1].LineTotal != f.Format(1600000) {
		t.Fatalf("line total = %q", rec.Items[1].LineTotal)
	}
}

func TestBuild_PickupAddress(t *testing.T) {
	r := NewRenderer(testLetterhead(), money.NewFormatter(money.DefaultRates()))
	o := testOrder()
	o.Delivery.Pickup = true

	rec := r.Build(o)
	if rec.Address != "Pickup in store" {
		t.Fatalf("Address = %q", rec.Address)
	}
	if rec.DeliveryFee != "₦0.00" {
		t.Fatalf("pickup DeliveryFee = %q, want zero", rec.DeliveryFee)
	}
}

func TestRender_PDFWithoutImages(t *testing.T) {
	r := NewRenderer(testLetterhead(), money.NewFormatter(money.DefaultRates()))

	doc := r.Render(testOrder())

	if doc.ContentType != "application/pdf" {
		t.Fatalf("ContentType = %q, want application/pdf", doc.ContentType)
	}
	if doc.Filename != "receipt-A7X9KQ2M.pdf" {
		t.Fatalf("Filename = %q", doc.Filename)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Fatalf("data does not start with %%PDF")
	}
}

func TestRender_PDFWithThumbnail(t *testing.T) {
	r := NewRenderer(testLetterhead(), money.NewFormatter(money.DefaultRates()))
	r.SetImageFetcher(func(url string) ([]byte, error) {
		var buf bytes.Buffer
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})

	o := testOrder()
	o.Items[0].ImageURL = "https://cdn.example/thumb.png"

	doc := r.Render(o)
	if doc.ContentType != "application/pdf" {
		t.Fatalf("ContentType = %q, want application/pdf", doc.ContentType)
	}
}

func TestRender_ImageFailureFallsBackToJSON(t *testing.T) {
	f := money.NewFormatter(money.DefaultRates())
	r := NewRenderer(testLetterhead(), f)
	r.SetImageFetcher(func(url string) ([]byte, error) {
		return nil, errors.New("image load failed")
	})

	o := testOrder()
	o.Items[0].ImageURL = "https://cdn.example/broken.png"

	doc := r.Render(o)

	if doc.ContentType != "application/json" {
		t.Fatalf("ContentType = %q, want application/json fallback", doc.ContentType)
	}
	if doc.Filename != "receipt-A7X9KQ2M.json" {
		t.Fatalf("Filename = %q", doc.Filename)
	}

	var rec Receipt
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		t.Fatalf("fallback is not valid JSON: %v", err)
	}
	if rec.OrderID != "ord-123" || rec.TxRef != "tx-rcpt" {
		t.Fatalf("fallback missing identifiers: %+v", rec)
	}
	if rec.GrandTotal == "" {
		t.Fatalf("fallback missing total amount")
	}
}

func TestBuild_SubtotalRecomputedWhenStoredTotalPresent(t *testing.T) {
	f := money.NewFormatter(money.DefaultRates())
	r := NewRenderer(testLetterhead(), f)

	o := testOrder()
	bogus := int64(1)
	o.StoredTotal = &bogus

	rec := r.Build(o)
	tot := pricing.Totals(o)
	if rec.GrandTotal != f.Format(tot.GrandTotal) {
		t.Fatalf("stored total must not override recomputation: %q", rec.GrandTotal)
	}
}
