// Package domain defines the normalized record types of the POS content API.
// These types represent the dashboard's concepts independent of the JSON envelope
// the API wraps them in.
package domain

import (
	"strconv"
	"time"
)

// Pagination is the page metadata returned with every list response.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// PageResult is one page of rows plus its pagination metadata.
// It is replaced wholesale on every fetch, never patched.
type PageResult[T any] struct {
	Rows       []T
	Pagination Pagination
}

// Image is an uploaded media asset attached to a product.
type Image struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Category groups products.
type Category struct {
	ID          int    `json:"id"`
	DocumentID  string `json:"documentId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is an inventory item that can be sold.
type Product struct {
	ID          int       `json:"id"`
	DocumentID  string    `json:"documentId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Barcode     string    `json:"barcode"`
	Category    *Category `json:"category,omitempty"`
	Image       *Image    `json:"image,omitempty"`
}

// InvoiceLine is one product line of a stored sale.
type InvoiceLine struct {
	ID       int      `json:"id"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Product  *Product `json:"product,omitempty"`
}

// Sale is a stored invoice.
type Sale struct {
	ID             int           `json:"id"`
	DocumentID     string        `json:"documentId"`
	InvoiceNumber  string        `json:"invoice_number"`
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  string        `json:"customer_phone"`
	CustomerEmail  string        `json:"customer_email"`
	Date           string        `json:"date,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	Products       []InvoiceLine `json:"products,omitempty"`
	Subtotal       float64       `json:"subtotal"`
	DiscountAmount float64       `json:"discount_amount"`
	TaxAmount      float64       `json:"tax_amount"`
	Total          float64       `json:"total"`
}

// Ref returns the identifier used in resource URLs, preferring the document ID.
func (s Sale) Ref() string { return refOf(s.DocumentID, s.ID) }

// Ref returns the identifier used in resource URLs, preferring the document ID.
func (p Product) Ref() string { return refOf(p.DocumentID, p.ID) }

// Ref returns the identifier used in resource URLs, preferring the document ID.
func (c Category) Ref() string { return refOf(c.DocumentID, c.ID) }

// SummaryPeriod names one of the rolling windows reported by the sales summary endpoint.
type SummaryPeriod string

const (
	PeriodWeek      SummaryPeriod = "week"
	PeriodTwoWeeks  SummaryPeriod = "two-weeks"
	PeriodMonth     SummaryPeriod = "month"
	PeriodLastMonth SummaryPeriod = "last-month"
)

// SummaryPeriods lists the periods in display order.
var SummaryPeriods = []SummaryPeriod{PeriodWeek, PeriodTwoWeeks, PeriodMonth, PeriodLastMonth}

// SalesSummary aggregates sales over one period.
type SalesSummary struct {
	Period        SummaryPeriod `json:"period"`
	StartDate     string        `json:"startDate"`
	EndDate       string        `json:"endDate"`
	Count         int           `json:"count"`
	TotalSales    float64       `json:"totalSales"`
	TotalTax      float64       `json:"totalTax"`
	TotalDiscount float64       `json:"totalDiscount"`
	TotalRevenue  float64       `json:"totalRevenue"`
}

// ChartPoint is one day of the revenue chart.
type ChartPoint struct {
	ID         int     `json:"id"`
	DocumentID string  `json:"documentId"`
	Date       string  `json:"date"`
	Total      float64 `json:"total"`
}

// User is the account returned by the login endpoint.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func refOf(documentID string, id int) string {
	if documentID != "" {
		return documentID
	}
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// dateLayouts are the timestamp shapes the API is known to emit.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses an API timestamp. The zero time and false are returned for
// empty or unrecognized values.
func ParseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
