// Package invoice renders a stored sale as a text view or a PDF document.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/shopspring/decimal"
)

// Line is one rendered product line.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// Invoice is a sale in display form.
type Invoice struct {
	Ref      string
	Number   string
	Customer string
	Email    string
	Phone    string
	Date     time.Time
	HasDate  bool
	Lines    []Line
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Notes    string
}

// FromSale converts s. Lines whose product was deleted keep their price and
// are named "Deleted product".
func FromSale(s domain.Sale) Invoice {
	inv := Invoice{
		Ref:      s.Ref(),
		Number:   s.InvoiceNumber,
		Customer: s.CustomerName,
		Email:    s.CustomerEmail,
		Phone:    s.CustomerPhone,
		Subtotal: decimal.NewFromFloat(s.Subtotal),
		Discount: decimal.NewFromFloat(s.DiscountAmount),
		Tax:      decimal.NewFromFloat(s.TaxAmount),
		Total:    decimal.NewFromFloat(s.Total),
		Notes:    strings.TrimSpace(s.Notes),
	}
	inv.Date, inv.HasDate = domain.ParseDate(s.Date)

	for _, l := range s.Products {
		name := "Deleted product"
		if l.Product != nil {
			name = l.Product.Name
		}
		price := decimal.NewFromFloat(l.Price)
		inv.Lines = append(inv.Lines, Line{
			Name:      name,
			Quantity:  l.Quantity,
			UnitPrice: price,
			Amount:    price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return inv
}

// DateLabel formats the sale date, or "-" when unknown.
func (inv Invoice) DateLabel() string {
	if !inv.HasDate {
		return "-"
	}
	return inv.Date.Format("Jan 2, 2006 15:04")
}

// Filename is a filesystem-safe name for the exported PDF.
func (inv Invoice) Filename() string {
	base := inv.Number
	if base == "" {
		base = inv.Ref
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return fmt.Sprintf("INVOICE_%s.pdf", b.String())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
