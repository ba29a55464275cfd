package catalog

import (
	"testing"
	"time"

	"github.com/h0rv/posdash/internal/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sizes = []int{10, 25, 50}

func encode(t *testing.T, s Screen, filters map[string]string) map[string]string {
	t.Helper()
	now := time.Date(2024, 10, 16, 12, 0, 0, 0, time.UTC)
	v := listview.Encode(s.List, listview.ListQuery{Page: 1, PageSize: 10, Filters: filters}, now)
	out := map[string]string{}
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}

func TestSalesPolicies(t *testing.T) {
	q := encode(t, Sales(sizes, 10), map[string]string{
		"invoice_number": "INV-001",
		"customer_name":  "Bob",
		"customer_phone": "555",
		"customer_email": "bob@example.com",
	})

	assert.Equal(t, "INV-001", q["filters[invoice_number][$eqi]"])
	assert.Equal(t, "Bob", q["filters[customer_name][$containsi]"])
	assert.Equal(t, "555", q["filters[customer_phone][$eqi]"])
	assert.Equal(t, "bob@example.com", q["filters[customer_email][$eqi]"])
	assert.NotContains(t, q, "filters[date][$gte]", "sales list has no fixed window")
}

func TestReportPolicies(t *testing.T) {
	q := encode(t, WeeklySales(sizes, 10), map[string]string{"customer_phone": "555"})
	assert.Equal(t, "555", q["filters[customer_phone][$containsi]"])
	assert.Equal(t, "2024-10-13T00:00:00.000Z", q["filters[date][$gte]"])
	assert.Equal(t, "2024-10-20T00:00:00.000Z", q["filters[date][$lt]"])

	m := encode(t, MonthlySales(sizes, 10), nil)
	assert.Equal(t, "2024-10-01T00:00:00.000Z", m["filters[date][$gte]"])
	assert.Equal(t, "2024-11-01T00:00:00.000Z", m["filters[date][$lt]"])
}

func TestProductPolicies(t *testing.T) {
	q := encode(t, Products(sizes, 10), map[string]string{"name": "tea", "barcode": "123", "category": "4"})
	assert.Equal(t, "tea", q["filters[name][$containsi]"])
	assert.Equal(t, "123", q["filters[barcode][$eqi]"])
	assert.Equal(t, "4", q["filters[category][id][$eqi]"])
	assert.Equal(t, "category", q["populate[0]"])
	assert.Equal(t, "image", q["populate[1]"])
}

func TestAllAndFind(t *testing.T) {
	all := All(sizes, 25)
	require.Len(t, all, 5)
	for _, s := range all {
		assert.NotEmpty(t, s.List.FailureMessage, s.Key)
		assert.NotEmpty(t, s.Deletes.Success, s.Key)
		assert.Equal(t, 25, s.List.DefaultPageSize)
	}

	s, ok := Find(all, "products")
	require.True(t, ok)
	assert.Equal(t, "/api/products", s.Path)

	_, ok = Find(all, "nope")
	assert.False(t, ok)
}

func TestSalesOpenNewestFirst(t *testing.T) {
	want := &listview.Sort{Field: "date", Dir: listview.Desc}
	for _, s := range []Screen{Sales(sizes, 10), WeeklySales(sizes, 10), MonthlySales(sizes, 10)} {
		assert.Equal(t, want, s.List.DefaultSort, s.Key)
	}
	assert.Nil(t, Products(sizes, 10).List.DefaultSort)

	s := Sales(sizes, 10)
	v := listview.Encode(s.List, listview.ListQuery{Page: 1, PageSize: 10, Sort: s.List.DefaultSort}, time.Now())
	assert.Equal(t, "date:desc", v.Get("sort"))
}
