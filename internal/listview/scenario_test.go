package listview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNextPageAgainstAPI drives the controller through the real gateway
// against a two-page sales collection.
func TestNextPageAgainstAPI(t *testing.T) {
	var mu sync.Mutex
	var pages []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pagination[page]")
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()

		pageNum, _ := strconv.Atoi(page)
		invoice := "INV-001"
		if page == "2" {
			invoice = "INV-002"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "documentId": "d-" + invoice, "invoice_number": invoice, "customer_name": "Alice"}},
			"meta": map[string]any{"pagination": map[string]any{"page": pageNum, "pageSize": 10, "pageCount": 2, "total": 2}},
		})
	}))
	defer srv.Close()

	client := gateway.New(srv.URL)
	c := New[domain.Sale](salesConfig(), client.Sales(), notify.NewQueue(), WithContext(context.Background()))
	defer c.Close()

	require.True(t, c.Load().Do())
	require.Len(t, c.State().Rows(), 1)
	assert.Equal(t, "INV-001", c.State().Rows()[0].InvoiceNumber)

	require.True(t, c.NextPage().Do())

	mu.Lock()
	assert.Equal(t, []string{"1", "2"}, pages, "exactly one additional request for page 2")
	mu.Unlock()

	rows := c.State().Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-002", rows[0].InvoiceNumber)
	assert.Nil(t, c.NextPage(), "no page after the last")
}
