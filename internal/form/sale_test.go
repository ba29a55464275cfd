package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 10, 16, 9, 30, 0, 0, time.UTC)

// fakeSender records every payload it is asked to send.
type fakeSender struct {
	sent []domain.SalePayload
	err  error
}

func (f *fakeSender) send(_ context.Context, p domain.SalePayload) error {
	f.sent = append(f.sent, p)
	return f.err
}

func newSaleSubmitter(f *fakeSender, q *notify.Queue) *Submitter[domain.SalePayload] {
	return NewSubmitter(f.send, q, Messages{Success: "Invoice created successfully", FailurePrefix: "Transaction failed"}, nil)
}

func filledDraft() *SaleDraft {
	d := NewSaleDraft(SalePricing(), fixedNow)
	d.CustomerName = "Charlie"
	d.InvoiceNumber = "INV-100"
	d.CustomerEmail = "charlie@example.com"
	d.CustomerPhone = "999-888"
	return d
}

// TestEmptyHeaderFieldErrors verifies four distinct field messages and no send.
func TestEmptyHeaderFieldErrors(t *testing.T) {
	sender := &fakeSender{}
	q := notify.NewQueue()
	sub := newSaleSubmitter(sender, q)

	d := NewSaleDraft(SalePricing(), fixedNow)
	d.AddProduct(widget())
	err := sub.Submit(context.Background(), d, nil)

	var fe domain.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.FieldErrors{
		FieldCustomerName:  "Customer name is required",
		FieldInvoiceNumber: "Invoice number is required",
		FieldCustomerPhone: "Invoice phone is required",
		FieldCustomerEmail: "Invoice email is required",
	}, fe)
	assert.Empty(t, sender.sent)
	assert.Empty(t, q.Drain(), "field errors render inline")
}

// TestNoItemsNotifies verifies a valid header with no lines notifies once and sends nothing.
func TestNoItemsNotifies(t *testing.T) {
	sender := &fakeSender{}
	q := notify.NewQueue()
	sub := newSaleSubmitter(sender, q)

	err := sub.Submit(context.Background(), filledDraft(), nil)
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Empty(t, sender.sent)

	notices := q.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelError, notices[0].Level)
	assert.Equal(t, "At least one product is required.", notices[0].Msg)
}

func TestNoItemsCheckedOnlyAfterHeader(t *testing.T) {
	d := NewSaleDraft(SalePricing(), fixedNow)
	d.CustomerName = "Charlie"

	err := d.Validate()
	var fe domain.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Len(t, fe, 3)
	assert.NotErrorIs(t, err, ErrNoItems)
}

func TestSubmitSaleSuccess(t *testing.T) {
	sender := &fakeSender{}
	q := notify.NewQueue()
	sub := newSaleSubmitter(sender, q)

	d := filledDraft()
	d.AddProduct(domain.Product{ID: 20, Name: "Gadget", Price: 25, Stock: 10})
	d.SetQuantity(0, 2)
	d.SetUnitPrice(0, decimal.NewFromInt(30))

	var order []string
	err := sub.Submit(context.Background(), d, func() { order = append(order, "navigate") })
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	p := sender.sent[0]
	assert.Equal(t, "Charlie", p.CustomerName)
	assert.Equal(t, "INV-100", p.InvoiceNumber)
	assert.Equal(t, "charlie@example.com", p.CustomerEmail)
	assert.Equal(t, "999-888", p.CustomerPhone)
	assert.Equal(t, []domain.SaleLinePayload{{Product: "20", Quantity: 2, Price: 30}}, p.Products)
	assert.Equal(t, 60.0, p.Subtotal)
	assert.Equal(t, 6.0, p.DiscountAmount)
	assert.InDelta(t, 4.2, p.TaxAmount, 1e-9)
	assert.InDelta(t, 58.2, p.Total, 1e-9)
	assert.Equal(t, "2024-10-16T09:30:00Z", p.Date)

	notices := q.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelSuccess, notices[0].Level)
	assert.Equal(t, []string{"navigate"}, order)
}

func TestSubmitSaleFailureKeepsValues(t *testing.T) {
	sender := &fakeSender{err: &domain.ServerError{Status: 500, Message: "Server error"}}
	q := notify.NewQueue()
	sub := newSaleSubmitter(sender, q)

	d := filledDraft()
	d.AddProduct(domain.Product{ID: 30, Name: "Device", Price: 15, Stock: 3})

	navigated := false
	err := sub.Submit(context.Background(), d, func() { navigated = true })
	require.Error(t, err)

	assert.Len(t, sender.sent, 1)
	assert.False(t, navigated)
	notices := q.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "Transaction failed: Server error", notices[0].Msg)

	assert.Equal(t, "Charlie", d.CustomerName)
	require.Len(t, d.Items(), 1)
	assert.Equal(t, "Device", d.Items()[0].Name)
	assert.False(t, sub.InFlight())
}

func TestSubmitRejectsConcurrentSend(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	sub := NewSubmitter(func(context.Context, domain.SalePayload) error {
		close(started)
		<-release
		return nil
	}, nil, Messages{}, nil)

	d := filledDraft()
	d.AddProduct(widget())

	done := make(chan error, 1)
	go func() { done <- sub.Submit(context.Background(), d, nil) }()
	<-started

	assert.True(t, sub.InFlight())
	assert.ErrorIs(t, sub.Submit(context.Background(), d, nil), ErrInFlight)
	close(release)
	assert.NoError(t, <-done)
}

func TestSaleDraftLineEditing(t *testing.T) {
	d := NewSaleDraft(SalePricing(), fixedNow)
	d.AddProduct(widget())
	d.AddProduct(widget())
	require.Len(t, d.Items(), 1, "adding the same product bumps its quantity")
	assert.Equal(t, 2, d.Items()[0].Quantity)

	d.SetQuantity(0, 0)
	assert.Equal(t, 1, d.Items()[0].Quantity, "quantity is at least 1")
	d.SetUnitPrice(0, decimal.NewFromInt(-5))
	assert.True(t, d.Items()[0].UnitPrice.IsZero(), "price is at least 0")

	d.SetQuantity(5, 3)
	d.RemoveItem(5)
	assert.Len(t, d.Items(), 1)
}

func TestSaleDraftSetDate(t *testing.T) {
	d := filledDraft()
	d.AddProduct(widget())

	d.SetDate("16/10/2024")
	var fe domain.FieldErrors
	require.True(t, errors.As(d.Validate(), &fe))
	assert.Equal(t, domain.FieldErrors{FieldDate: "Date must be YYYY-MM-DD HH:MM"}, fe)
	assert.Equal(t, fixedNow, d.Date, "a bad value keeps the previous date")

	d.SetDate("")
	require.True(t, errors.As(d.Validate(), &fe))
	assert.Equal(t, "Date is required", fe[FieldDate])

	d.SetDate("2024-10-20 14:05")
	require.NoError(t, d.Validate())
	want := time.Date(2024, 10, 20, 14, 5, 0, 0, time.Local)
	assert.True(t, want.Equal(d.Date))
	assert.Equal(t, want.UTC().Format(time.RFC3339), d.Payload().Date)
}

func TestSuggestionLabel(t *testing.T) {
	assert.Equal(t, "Widget - $50 - 5 in stock", SuggestionLabel(widget()))
	assert.Equal(t, "Pen - $1.25 - 0 in stock", SuggestionLabel(domain.Product{Name: "Pen", Price: 1.25}))
}

func TestCartOperations(t *testing.T) {
	c := NewCart(POSPricing())
	c.Add(widget())
	c.Add(widget())
	c.Add(domain.Product{ID: 11, Name: "Gizmo", Price: 10, Stock: 2})
	assert.Equal(t, 3, c.Count())

	c.SetQuantity("10", 5)
	assert.Equal(t, 6, c.Count())

	c.SetQuantity("11", 0)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "Widget", c.Items()[0].Name)

	c.Remove("10")
	assert.Zero(t, c.Count())
	assert.ErrorIs(t, c.Validate(), ErrNoItems)

	c.Add(widget())
	c.Clear()
	assert.Empty(t, c.Items())
}

func TestCartPayload(t *testing.T) {
	c := NewCart(POSPricing())
	c.Now = func() time.Time { return fixedNow }
	c.Add(domain.Product{ID: 1, Name: "Tea", Price: 20})
	c.Add(domain.Product{ID: 1, Name: "Tea", Price: 20})
	c.Add(domain.Product{ID: 2, Name: "Cake", Price: 20})

	p := c.Payload()
	assert.Equal(t, "POS Customer", p.CustomerName)
	assert.Equal(t, "POS Customer", p.Notes)
	assert.Equal(t, "POS-1729071000000", p.InvoiceNumber)
	assert.Equal(t, 60.0, p.Subtotal)
	assert.Equal(t, 5.0, p.DiscountAmount)
	assert.Equal(t, 6.0, p.TaxAmount)
	assert.Equal(t, 61.0, p.Total)
	assert.Equal(t, []domain.SaleLinePayload{
		{Product: "1", Quantity: 2, Price: 20},
		{Product: "2", Quantity: 1, Price: 20},
	}, p.Products)
}

func TestEmptyCartSubmitNotifies(t *testing.T) {
	q := notify.NewQueue()
	sent := 0
	sub := NewSubmitter(func(context.Context, domain.SalePayload) error { sent++; return nil }, q,
		Messages{Success: "Invoice and stock updated successfully!", FailurePrefix: "Transaction failed"}, nil)

	err := sub.Submit(context.Background(), NewCart(POSPricing()), nil)
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Zero(t, sent)
	notices := q.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, "At least one product is required.", notices[0].Msg)
}
