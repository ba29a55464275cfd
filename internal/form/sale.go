package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNoItems is reported when a sale with a valid header has no line items.
var ErrNoItems = errors.New("At least one product is required.")

// Sale header field keys.
const (
	FieldCustomerName  = "customer_name"
	FieldInvoiceNumber = "invoice_number"
	FieldCustomerPhone = "customer_phone"
	FieldCustomerEmail = "customer_email"
	FieldDate          = "date"
)

// SaleDateLayout is how sale dates are typed, in local time.
const SaleDateLayout = "2006-01-02 15:04"

// LineItem is one product line of a sale being built.
type LineItem struct {
	ProductRef string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	// Stock is the available quantity when the product was picked, 0 if unknown.
	Stock int
}

// Amount is quantity times unit price.
func (l LineItem) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineFromProduct starts a line of quantity 1 at the product's list price.
func LineFromProduct(p domain.Product) LineItem {
	return LineItem{
		ProductRef: strconv.Itoa(p.ID),
		Name:       p.Name,
		Quantity:   1,
		UnitPrice:  decimal.NewFromFloat(p.Price),
		Stock:      p.Stock,
	}
}

// SuggestionLabel renders a search hit, e.g. "Widget - $50 - 5 in stock".
func SuggestionLabel(p domain.Product) string {
	return fmt.Sprintf("%s - $%s - %d in stock", p.Name, decimal.NewFromFloat(p.Price).String(), p.Stock)
}

// lines is an ordered set of line items keyed by product.
type lines []LineItem

func (ls lines) index(ref string) int {
	for i, l := range ls {
		if l.ProductRef == ref {
			return i
		}
	}
	return -1
}

// add appends p or, when already present, bumps its quantity.
func (ls lines) add(p domain.Product) lines {
	line := LineFromProduct(p)
	if i := ls.index(line.ProductRef); i >= 0 {
		ls[i].Quantity++
		return ls
	}
	return append(ls, line)
}

func (ls lines) remove(ref string) lines {
	i := ls.index(ref)
	if i < 0 {
		return ls
	}
	return append(ls[:i], ls[i+1:]...)
}

func (ls lines) payload() []domain.SaleLinePayload {
	out := make([]domain.SaleLinePayload, 0, len(ls))
	for _, l := range ls {
		out = append(out, domain.SaleLinePayload{
			Product:  l.ProductRef,
			Quantity: l.Quantity,
			Price:    l.UnitPrice.InexactFloat64(),
		})
	}
	return out
}

// SaleDraft is the new-sale form: a header plus ordered line items.
type SaleDraft struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	InvoiceNumber string
	Date          time.Time
	Notes         string

	Pricing Pricing
	items   lines
	dateErr string
}

// NewSaleDraft returns an empty draft dated now.
func NewSaleDraft(p Pricing, now time.Time) *SaleDraft {
	return &SaleDraft{Pricing: p, Date: now}
}

// Items returns a copy of the line items.
func (d *SaleDraft) Items() []LineItem {
	return append([]LineItem(nil), d.items...)
}

// AddProduct adds a line for p, or increments its quantity if already present.
func (d *SaleDraft) AddProduct(p domain.Product) {
	d.items = d.items.add(p)
}

// SetQuantity changes line i's quantity, clamped to at least 1.
func (d *SaleDraft) SetQuantity(i, qty int) {
	if i < 0 || i >= len(d.items) {
		return
	}
	d.items[i].Quantity = max(1, qty)
}

// SetUnitPrice changes line i's price, clamped to at least 0.
func (d *SaleDraft) SetUnitPrice(i int, price decimal.Decimal) {
	if i < 0 || i >= len(d.items) {
		return
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	d.items[i].UnitPrice = price
}

// SetDate parses s as SaleDateLayout in local time. An unparsable value keeps
// the previous date and fails validation.
func (d *SaleDraft) SetDate(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		d.dateErr = "Date is required"
		return
	}
	t, err := time.ParseInLocation(SaleDateLayout, s, time.Local)
	if err != nil {
		d.dateErr = "Date must be YYYY-MM-DD HH:MM"
		return
	}
	d.Date = t
	d.dateErr = ""
}

// RemoveItem drops line i.
func (d *SaleDraft) RemoveItem(i int) {
	if i < 0 || i >= len(d.items) {
		return
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
}

// Totals derives the draft's totals under its pricing.
func (d *SaleDraft) Totals() Totals {
	return d.Pricing.Compute(d.items)
}

// Validate checks the header first. Only when every header field is present is
// the item count checked, yielding ErrNoItems.
func (d *SaleDraft) Validate() error {
	fe := domain.FieldErrors{}
	if strings.TrimSpace(d.CustomerName) == "" {
		fe.Add(FieldCustomerName, "Customer name is required")
	}
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		fe.Add(FieldInvoiceNumber, "Invoice number is required")
	}
	if strings.TrimSpace(d.CustomerPhone) == "" {
		fe.Add(FieldCustomerPhone, "Invoice phone is required")
	}
	if strings.TrimSpace(d.CustomerEmail) == "" {
		fe.Add(FieldCustomerEmail, "Invoice email is required")
	}
	if d.dateErr != "" {
		fe.Add(FieldDate, d.dateErr)
	}
	if err := fe.Err(); err != nil {
		return err
	}
	if len(d.items) == 0 {
		return ErrNoItems
	}
	return nil
}

// Payload builds the sale transaction body.
func (d *SaleDraft) Payload() domain.SalePayload {
	t := d.Pricing.Rounded(d.Totals())
	return domain.SalePayload{
		CustomerName:   strings.TrimSpace(d.CustomerName),
		InvoiceNumber:  strings.TrimSpace(d.InvoiceNumber),
		CustomerEmail:  strings.TrimSpace(d.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(d.CustomerPhone),
		Date:           d.Date.UTC().Format(time.RFC3339),
		Notes:          d.Notes,
		Products:       d.items.payload(),
		Subtotal:       t.Subtotal.InexactFloat64(),
		DiscountAmount: t.Discount.InexactFloat64(),
		TaxAmount:      t.Tax.InexactFloat64(),
		Total:          t.Total.InexactFloat64(),
	}
}

// DefaultPOSCustomer names walk-in point-of-sale customers.
const DefaultPOSCustomer = "POS Customer"

// Cart is the point-of-sale basket.
type Cart struct {
	Pricing Pricing
	// Now stamps checkouts.
	Now   func() time.Time
	items lines
}

// NewCart returns an empty cart.
func NewCart(p Pricing) *Cart {
	return &Cart{Pricing: p, Now: time.Now}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []LineItem {
	return append([]LineItem(nil), c.items...)
}

// Add puts one unit of p in the cart.
func (c *Cart) Add(p domain.Product) {
	c.items = c.items.add(p)
}

// SetQuantity changes the quantity of ref. Below 1 removes the line.
func (c *Cart) SetQuantity(ref string, qty int) {
	i := c.items.index(ref)
	if i < 0 {
		return
	}
	if qty < 1 {
		c.items = c.items.remove(ref)
		return
	}
	c.items[i].Quantity = qty
}

// Remove drops ref from the cart.
func (c *Cart) Remove(ref string) {
	c.items = c.items.remove(ref)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.items {
		n += l.Quantity
	}
	return n
}

// Totals derives the cart totals under its pricing.
func (c *Cart) Totals() Totals {
	return c.Pricing.Compute(c.items)
}

// Validate reports ErrNoItems for an empty cart.
func (c *Cart) Validate() error {
	if len(c.items) == 0 {
		return ErrNoItems
	}
	return nil
}

// Payload builds a walk-in sale stamped now with a POS-<millis> invoice number.
func (c *Cart) Payload() domain.SalePayload {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	t := c.Pricing.Rounded(c.Totals())
	return domain.SalePayload{
		CustomerName:   DefaultPOSCustomer,
		InvoiceNumber:  fmt.Sprintf("POS-%d", now.UnixMilli()),
		Date:           now.UTC().Format(time.RFC3339),
		Notes:          DefaultPOSCustomer,
		Products:       c.items.payload(),
		Subtotal:       t.Subtotal.InexactFloat64(),
		DiscountAmount: t.Discount.InexactFloat64(),
		TaxAmount:      t.Tax.InexactFloat64(),
		Total:          t.Total.InexactFloat64(),
	}
}
