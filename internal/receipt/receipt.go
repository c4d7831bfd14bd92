// Package receipt turns a resolved order record into a downloadable document.
package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/model"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/money"
	"github.com/dev-olayemi/hide-luxe-legacy-sub000/internal/pricing"
)

// deliveryOffset is added to the order date to estimate delivery.
const deliveryOffset = 7 * 24 * time.Hour

// Letterhead is the business block printed at the top of every receipt.
type Letterhead struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Website      string `json:"website,omitempty"`
}

// Item is a single line on the receipt.
type Item struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Receipt is a value object composed from an order at render time; it is not
// a stored entity.
type Receipt struct {
	Letterhead       Letterhead `json:"letterhead"`
	OrderID          string     `json:"order_id"`
	Reference        string     `json:"reference"`
	TxRef            string     `json:"tx_ref,omitempty"`
	TxID             string     `json:"transaction_id,omitempty"`
	OrderDate        string     `json:"order_date"`
	PaymentDate      string     `json:"payment_date,omitempty"`
	ExpectedDelivery string     `json:"expected_delivery"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email,omitempty"`
	CustomerPhone    string     `json:"customer_phone,omitempty"`
	Address          string     `json:"address"`
	Pickup           bool       `json:"pickup"`
	Items            []Item     `json:"items"`
	Subtotal         string     `json:"subtotal"`
	DeliveryFee      string     `json:"delivery_fee"`
	PointsDiscount   string     `json:"points_discount,omitempty"`
	GrandTotal       string     `json:"grand_total"`
}

// Document is a rendered receipt ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Renderer builds receipts for resolved orders. imageFetch is swappable so
// tests can force image failures; the default fetches over HTTP.
type Renderer struct {
	letterhead Letterhead
	formatter  *money.Formatter
	imageFetch func(url string) ([]byte, error)
}

// NewRenderer creates a renderer with the given letterhead and formatter.
func NewRenderer(letterhead Letterhead, formatter *money.Formatter) *Renderer {
	return &Renderer{
		letterhead: letterhead,
		formatter:  formatter,
		imageFetch: fetchImage,
	}
}

// SetImageFetcher replaces the thumbnail loader.
func (r *Renderer) SetImageFetcher(fn func(url string) ([]byte, error)) {
	r.imageFetch = fn
}

func fetchImage(url string) ([]byte, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Build composes the receipt value object from an order. Money figures come
// from the authoritative recomputation, never from the stored total alone.
func (r *Renderer) Build(o *model.Order) *Receipt {
	t := pricing.Totals(o)

	rec := &Receipt{
		Letterhead:       r.letterhead,
		OrderID:          o.ID,
		Reference:        o.Reference,
		TxRef:            o.Payment.TxRef,
		TxID:             o.Payment.TxID,
		OrderDate:        formatDate(o.CreatedAt),
		ExpectedDelivery: formatDate(o.CreatedAt.Add(deliveryOffset)),
		CustomerName:     o.Delivery.FullName,
		CustomerEmail:    o.UserEmail,
		CustomerPhone:    o.Delivery.Phone,
		Pickup:           o.Delivery.Pickup,
		Subtotal:         r.formatter.Format(t.Subtotal),
		DeliveryFee:      r.formatter.Format(t.DeliveryFee),
		GrandTotal:       r.formatter.Format(t.GrandTotal),
	}

	if o.Payment.PaidAt != nil {
		rec.PaymentDate = formatDate(*o.Payment.PaidAt)
	}
	if t.PointsDiscount > 0 {
		rec.PointsDiscount = r.formatter.Format(t.PointsDiscount)
	}

	if o.Delivery.Pickup {
		rec.Address = "Pickup in store"
	} else {
		rec.Address = joinNonEmpty(o.Delivery.Address, o.Delivery.City, o.Delivery.State, o.Delivery.Country)
	}

	for _, it := range o.Items {
		rec.Items = append(rec.Items, Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: r.formatter.Format(it.UnitPrice),
			LineTotal: r.formatter.Format(it.UnitPrice * int64(it.Quantity)),
			ImageURL:  it.ImageURL,
		})
	}

	return rec
}

// Render produces the downloadable document for an order: PDF when possible,
// otherwise a JSON export of the same logical fields. Any failure in the PDF
// path, including a panic inside the PDF library, triggers the fallback.
func (r *Renderer) Render(o *model.Order) Document {
	rec := r.Build(o)

	pdfData, err := r.renderPDF(rec)
	if err == nil {
		return Document{
			Filename:    "receipt-" + filenameStem(rec) + ".pdf",
			ContentType: "application/pdf",
			Data:        pdfData,
		}
	}

	return r.renderJSON(rec)
}

func filenameStem(rec *Receipt) string {
	if rec.Reference != "" {
		return rec.Reference
	}
	if rec.OrderID != "" {
		return rec.OrderID
	}
	return rec.TxRef
}

func (r *Renderer) renderJSON(rec *Receipt) Document {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		// A receipt of plain strings cannot fail to marshal; keep the page
		// alive regardless.
		data = []byte("{}")
	}
	return Document{
		Filename:    "receipt-" + filenameStem(rec) + ".json",
		ContentType: "application/json",
		Data:        data,
	}
}

func (r *Renderer) renderPDF(rec *Receipt) (data []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf renderer panic: %v", p)
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(rec.Letterhead.BusinessName))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{rec.Letterhead.Address, rec.Letterhead.Phone, rec.Letterhead.Email, rec.Letterhead.Website} {
		if line == "" {
			continue
		}
		pdf.Cell(0, 5, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Receipt "+rec.Reference))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	details := [][2]string{
		{"Order", rec.OrderID},
		{"Order date", rec.OrderDate},
		{"Payment date", rec.PaymentDate},
		{"Expected delivery", rec.ExpectedDelivery},
		{"Transaction ref", rec.TxRef},
		{"Transaction id", rec.TxID},
		{"Customer", rec.CustomerName},
		{"Email", rec.CustomerEmail},
		{"Phone", rec.CustomerPhone},
		{"Deliver to", rec.Address},
	}
	for _, d := range details {
		if d[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, tr(d[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(d[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 7, "", "B", 0, "L", false, 0, "")
	pdf.CellFormat(70, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i, it := range rec.Items {
		if it.ImageURL != "" {
			if err := r.embedThumbnail(pdf, it.ImageURL, i); err != nil {
				return nil, fmt.Errorf("embed thumbnail: %w", err)
			}
		} else {
			pdf.CellFormat(20, 14, "", "", 0, "L", false, 0, "")
		}
		pdf.CellFormat(70, 14, tr(it.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 14, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 14, tr(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 14, tr(it.LineTotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", rec.Subtotal},
		{"Delivery", rec.DeliveryFee},
	}
	if rec.PointsDiscount != "" {
		totals = append(totals, [2]string{"Points discount", "-" + rec.PointsDiscount})
	}
	totals = append(totals, [2]string{"Grand total", rec.GrandTotal})

	for i, t := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(145, 6, tr(t[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, tr(t[1]), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) embedThumbnail(pdf *gofpdf.Fpdf, url string, index int) error {
	data, err := r.imageFetch(url)
	if err != nil {
		return err
	}

	var imageType string
	switch http.DetectContentType(data) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return fmt.Errorf("unsupported image type for %s", url)
	}

	name := fmt.Sprintf("thumb-%d", index)
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	x, y := pdf.GetXY()
	pdf.ImageOptions(name, x+1, y+1, 12, 12, false, opts, 0, "")
	pdf.SetXY(x+20, y)
	return nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}
