// Package invoice renders paid orders as A4 PDF invoices.
package invoice

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/orders"
)

const (
	margin    = 18.0
	lineH     = 6.0
	colQty    = 110.0
	colPrice  = 135.0
	colTotal  = 165.0
	pageRight = 210.0 - margin
)

// Number is the customer-facing invoice number: INV- and the last eight
// characters of the order id, upper-cased.
func Number(orderID string) string {
	id := orderID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "INV-" + strings.ToUpper(id)
}

func FileName(orderID string) string { return "invoice-" + orderID + ".pdf" }

type Renderer struct {
	// Compress deflates page streams. Tests turn it off to inspect text.
	Compress bool
}

func money(d decimal.Decimal) string { return "Rs " + d.StringFixed(2) }

func (r Renderer) Render(w io.Writer, o orders.Order) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle("Invoice "+Number(o.ID), true)
	pdf.SetCreationDate(o.CreatedAt)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) { pdf.CellFormat(0, lineH, tr(s), "", 1, "L", false, 0, "") }

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	text("Invoice No: " + Number(o.ID))
	text("Order ID: " + o.ID)
	text("Order Date: " + o.CreatedAt.Format("02 Jan 2006 15:04 MST"))
	text("Payment Method: " + string(o.PaymentMethod))
	text("Payment Status: " + string(o.PaymentStatus))
	if o.PaymentID != "" {
		text("Payment Ref: " + o.PaymentID)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	text("Bill To")
	pdf.SetFont("Helvetica", "", 11)
	email := "-"
	if o.Customer != nil && o.Customer.Email != "" {
		email = o.Customer.Email
	}
	a := o.Address
	text(orDash(a.FullName))
	text(email)
	text(fmt.Sprintf("%s, %s", a.AddressLine, a.City))
	text(fmt.Sprintf("%s - %s", a.State, a.Pincode))
	text("Phone: " + orDash(a.Phone))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	text("Items")
	pdf.SetFont("Helvetica", "B", 11)
	row(pdf, "Product", "Qty", "Price", "Total")
	rule(pdf)

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range o.Items {
		title := it.Title
		if title == "" {
			title = "Product"
		}
		row(pdf, tr(title), fmt.Sprint(it.Quantity), money(it.Price), money(it.LineTotal()))
	}
	rule(pdf)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, lineH, "Grand Total: "+money(o.TotalAmount), "", 1, "R", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, lineH, "Thank you for shopping with us.", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", o.ID, err)
	}
	return nil
}

func row(pdf *fpdf.Fpdf, product, qty, price, total string) {
	pdf.CellFormat(colQty-margin, lineH, truncate(pdf, product, colQty-margin-2), "", 0, "L", false, 0, "")
	pdf.CellFormat(colPrice-colQty, lineH, qty, "", 0, "L", false, 0, "")
	pdf.CellFormat(colTotal-colPrice, lineH, price, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineH, total, "", 1, "L", false, 0, "")
}

func rule(pdf *fpdf.Fpdf) {
	y := pdf.GetY() + 1
	pdf.SetDrawColor(203, 213, 225)
	pdf.Line(margin, y, pageRight, y)
	pdf.Ln(2)
}

// truncate shortens s with an ellipsis so it fits in width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
