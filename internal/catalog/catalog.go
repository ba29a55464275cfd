// Package catalog declares the list screens of the dashboard: their endpoints,
// filter policies, page sizes and notification wording.
package catalog

import (
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/h0rv/posdash/internal/listview"
	"github.com/h0rv/posdash/internal/mutation"
)

// Screen is a list screen's declaration.
type Screen struct {
	Key     string
	Title   string
	Path    string
	List    listview.Config
	Deletes mutation.Messages
}

// salesFields are the sales list's filters. Phone and email must match exactly.
var salesFields = []listview.FieldPolicy{
	{Field: "invoice_number", Label: "Invoice", Placeholder: "Filter by invoice number...", Match: listview.Equals},
	{Field: "customer_name", Label: "Customer", Placeholder: "Filter by customer name...", Match: listview.Contains},
	{Field: "customer_phone", Label: "Phone", Placeholder: "Filter by phone...", Match: listview.Equals},
	{Field: "customer_email", Label: "Email", Placeholder: "Filter by email...", Match: listview.Equals},
	{Field: "date", Label: "Date", Match: listview.DayRange},
}

// reportFields are the report screens' filters. Phone and email match partially.
var reportFields = []listview.FieldPolicy{
	{Field: "invoice_number", Label: "Invoice", Placeholder: "Filter by invoice number...", Match: listview.Equals},
	{Field: "customer_name", Label: "Customer", Placeholder: "Filter by customer name...", Match: listview.Contains},
	{Field: "customer_phone", Label: "Phone", Placeholder: "Filter by phone...", Match: listview.Contains},
	{Field: "customer_email", Label: "Email", Placeholder: "Filter by email...", Match: listview.Contains},
}

var saleDeletes = mutation.DefaultMessages

var reportDeletes = mutation.Messages{
	Success: "Sale deleted successfully",
	Failure: "Failed to delete sales record",
}

// newestFirst orders sales by date, latest first.
func newestFirst() *listview.Sort {
	return &listview.Sort{Field: "date", Dir: listview.Desc}
}

// Sales is the full sales list.
func Sales(pageSizes []int, defaultSize int) Screen {
	return Screen{
		Key:   "sales",
		Title: "Sales",
		Path:  gateway.PathSales,
		List: listview.Config{
			Name:            "sales",
			Fields:          salesFields,
			DefaultSort:     newestFirst(),
			PageSizes:       pageSizes,
			DefaultPageSize: defaultSize,
			FailureMessage:  "Failed to fetch sales data",
		},
		Deletes: saleDeletes,
	}
}

// WeeklySales lists sales of the current week, Sunday first.
func WeeklySales(pageSizes []int, defaultSize int) Screen {
	return Screen{
		Key:   "weekly",
		Title: "Weekly Sales",
		Path:  gateway.PathSales,
		List: listview.Config{
			Name:            "weekly-sales",
			Fields:          reportFields,
			DefaultSort:     newestFirst(),
			PageSizes:       pageSizes,
			DefaultPageSize: defaultSize,
			WindowField:     "date",
			Window:          listview.WindowWeek,
			FailureMessage:  "Failed to fetch sales",
		},
		Deletes: reportDeletes,
	}
}

// MonthlySales lists sales of the current calendar month.
func MonthlySales(pageSizes []int, defaultSize int) Screen {
	return Screen{
		Key:   "monthly",
		Title: "Monthly Sales",
		Path:  gateway.PathSales,
		List: listview.Config{
			Name:            "monthly-sales",
			Fields:          reportFields,
			DefaultSort:     newestFirst(),
			PageSizes:       pageSizes,
			DefaultPageSize: defaultSize,
			WindowField:     "date",
			Window:          listview.WindowMonth,
			FailureMessage:  "Failed to fetch sales",
		},
		Deletes: reportDeletes,
	}
}

// Products lists inventory with category and image populated.
func Products(pageSizes []int, defaultSize int) Screen {
	return Screen{
		Key:   "products",
		Title: "Products",
		Path:  gateway.PathProducts,
		List: listview.Config{
			Name: "products",
			Fields: []listview.FieldPolicy{
				{Field: "name", Label: "Name", Placeholder: "Filter by name...", Match: listview.Contains},
				{Field: "barcode", Label: "Barcode", Placeholder: "Filter by barcode...", Match: listview.Equals},
				{Field: "category", Label: "Category", Placeholder: "Category id", Match: listview.Relation},
			},
			PageSizes:       pageSizes,
			DefaultPageSize: defaultSize,
			Populate:        []string{"category", "image"},
			FailureMessage:  "Failed to fetch products",
		},
		Deletes: mutation.Messages{
			Success: "Product deleted successfully",
			Failure: "Failed to delete product",
		},
	}
}

// Categories lists product categories.
func Categories(pageSizes []int, defaultSize int) Screen {
	return Screen{
		Key:   "categories",
		Title: "Categories",
		Path:  gateway.PathCategories,
		List: listview.Config{
			Name: "categories",
			Fields: []listview.FieldPolicy{
				{Field: "name", Label: "Name", Placeholder: "Filter by name...", Match: listview.Contains},
				{Field: "description", Label: "Description", Placeholder: "Filter by description...", Match: listview.Contains},
			},
			PageSizes:       pageSizes,
			DefaultPageSize: defaultSize,
			FailureMessage:  "Failed to fetch categories",
		},
		Deletes: mutation.DefaultMessages,
	}
}

// All returns every list screen in menu order.
func All(pageSizes []int, defaultSize int) []Screen {
	return []Screen{
		Sales(pageSizes, defaultSize),
		MonthlySales(pageSizes, defaultSize),
		WeeklySales(pageSizes, defaultSize),
		Products(pageSizes, defaultSize),
		Categories(pageSizes, defaultSize),
	}
}

// Find returns the screen with key.
func Find(screens []Screen, key string) (Screen, bool) {
	for _, s := range screens {
		if s.Key == key {
			return s, true
		}
	}
	return Screen{}, false
}
