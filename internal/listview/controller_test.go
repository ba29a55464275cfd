package listview

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher records every query and answers with respond.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []url.Values
	respond func(q url.Values) (domain.PageResult[domain.Sale], error)
}

func (f *fakeFetcher) Fetch(_ context.Context, q url.Values) (domain.PageResult[domain.Sale], error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return pageOf(q, "INV-001"), nil
	}
	return respond(q)
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// pageOf builds a one-page result echoing the requested pagination.
func pageOf(q url.Values, invoices ...string) domain.PageResult[domain.Sale] {
	page, _ := strconv.Atoi(q.Get("pagination[page]"))
	size, _ := strconv.Atoi(q.Get("pagination[pageSize]"))
	rows := make([]domain.Sale, 0, len(invoices))
	for i, inv := range invoices {
		rows = append(rows, domain.Sale{ID: i + 1, DocumentID: "doc-" + inv, InvoiceNumber: inv})
	}
	return domain.PageResult[domain.Sale]{
		Rows:       rows,
		Pagination: domain.Pagination{Page: page, PageSize: size, PageCount: 3, Total: 25},
	}
}

// salesConfig mirrors the sales list screen's field policies.
func salesConfig() Config {
	return Config{
		Name: "sales",
		Fields: []FieldPolicy{
			{Field: "invoice_number", Label: "Invoice", Match: Equals},
			{Field: "customer_name", Label: "Customer", Match: Contains},
			{Field: "customer_phone", Label: "Phone", Match: Equals},
			{Field: "customer_email", Label: "Email", Match: Equals},
			{Field: "date", Label: "Date", Match: DayRange},
		},
		PageSizes:       []int{10, 25, 50},
		DefaultPageSize: 10,
		FailureMessage:  "Failed to fetch sales data",
	}
}

func newSalesController(t *testing.T) (*Controller[domain.Sale], *fakeFetcher, *notify.Queue) {
	t.Helper()
	f := &fakeFetcher{}
	q := notify.NewQueue()
	c := New[domain.Sale](salesConfig(), f, q)
	t.Cleanup(c.Close)
	return c, f, q
}

func TestNewDefaults(t *testing.T) {
	c, f, _ := newSalesController(t)

	assert.Equal(t, StatusIdle, c.State().Status)
	q := c.Query()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Empty(t, q.Filters)
	assert.Zero(t, f.count())
}

func TestLoadTransitions(t *testing.T) {
	c, f, _ := newSalesController(t)

	req := c.Load()
	assert.Equal(t, StatusLoading, c.State().Status, "loading is entered synchronously")
	assert.Nil(t, c.State().Rows())

	require.True(t, req.Do())
	st := c.State()
	assert.Equal(t, StatusSuccess, st.Status)
	require.Len(t, st.Rows(), 1)
	assert.Equal(t, "INV-001", st.Rows()[0].InvoiceNumber)
	assert.Equal(t, 1, f.count())
}

// TestSetPageSizeResetsPage verifies a page size change returns to page 1 and fetches with the new size.
func TestSetPageSizeResetsPage(t *testing.T) {
	for _, size := range []int{10, 25, 50} {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			c, f, _ := newSalesController(t)
			c.SetPage(3).Do()

			req, err := c.SetPageSize(size)
			require.NoError(t, err)
			assert.Equal(t, 1, c.Query().Page)

			require.True(t, req.Do())
			assert.Equal(t, 2, f.count())
			assert.Equal(t, "1", f.last().Get("pagination[page]"))
			assert.Equal(t, strconv.Itoa(size), f.last().Get("pagination[pageSize]"))
		})
	}
}

func TestSetPageSizeRejectsUnknownSize(t *testing.T) {
	c, f, _ := newSalesController(t)
	c.SetPage(2).Do()

	req, err := c.SetPageSize(30)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
	assert.Nil(t, req)
	assert.Equal(t, 2, c.Query().Page)
	assert.Equal(t, 10, c.Query().PageSize)
	assert.Equal(t, StatusSuccess, c.State().Status)
	assert.Equal(t, 1, f.count())
}

// TestFilterCommitResetsPage verifies both applying and clearing a filter return to page 1.
func TestFilterCommitResetsPage(t *testing.T) {
	c, f, _ := newSalesController(t)

	c.SetPage(3).Do()
	req, err := c.SetFilter("customer_name", "Bob")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Query().Page)
	req.Do()
	assert.Equal(t, "1", f.last().Get("pagination[page]"))

	c.SetPage(2).Do()
	req, err = c.SetFilter("customer_name", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Query().Page)
	assert.NotContains(t, c.Query().Filters, "customer_name")
	req.Do()
	assert.Empty(t, f.last().Get("filters[customer_name][$containsi]"))
}

func TestSetFilterUnknownField(t *testing.T) {
	c, f, _ := newSalesController(t)

	req, err := c.SetFilter("total", "10")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Nil(t, req)
	assert.Zero(t, f.count())
	assert.Equal(t, StatusIdle, c.State().Status)
}

func TestSetFilterRejectsBadDate(t *testing.T) {
	c, _, _ := newSalesController(t)

	_, err := c.SetFilter("date", "10/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, c.Filter("date"))
}

// TestFilterSerialisation verifies each field policy produces its declared predicate.
func TestFilterSerialisation(t *testing.T) {
	c, f, _ := newSalesController(t)

	req, err := c.SetFilter("customer_name", "Bob")
	require.NoError(t, err)
	req.Do()
	q := f.last()
	assert.Equal(t, "Bob", q.Get("filters[customer_name][$containsi]"))
	assert.Empty(t, q.Get("filters[customer_name][$eqi]"))

	req, err = c.SetFilter("invoice_number", "INV-001")
	require.NoError(t, err)
	req.Do()
	q = f.last()
	assert.Equal(t, "INV-001", q.Get("filters[invoice_number][$eqi]"))
	assert.Empty(t, q.Get("filters[invoice_number][$containsi]"))
	assert.Equal(t, "Bob", q.Get("filters[customer_name][$containsi]"), "filters accumulate")

	req, err = c.SetFilter("date", "2024-10-01")
	require.NoError(t, err)
	req.Do()
	q = f.last()
	assert.Equal(t, "2024-10-01T00:00:00.000Z", q.Get("filters[date][$gte]"))
	assert.Equal(t, "2024-10-02T00:00:00.000Z", q.Get("filters[date][$lt]"))
}

// TestLastIssuedFetchWins verifies an older response resolving after a newer one never replaces it.
func TestLastIssuedFetchWins(t *testing.T) {
	c, f, n := newSalesController(t)

	release := make(chan struct{})
	f.respond = func(q url.Values) (domain.PageResult[domain.Sale], error) {
		if q.Get("pagination[page]") == "1" {
			<-release
			return pageOf(q, "INV-001"), nil
		}
		return pageOf(q, "INV-002"), nil
	}

	first := c.Load()
	done := make(chan bool, 1)
	go func() { done <- first.Do() }()

	require.Eventually(t, func() bool { return f.count() == 1 }, time.Second, time.Millisecond)

	second := c.SetPage(2)
	require.True(t, second.Do())

	close(release)
	assert.False(t, <-done, "superseded response is dropped")

	st := c.State()
	assert.Equal(t, StatusSuccess, st.Status)
	require.Len(t, st.Rows(), 1)
	assert.Equal(t, "INV-002", st.Rows()[0].InvoiceNumber)
	assert.Empty(t, n.Drain())
}

func TestStaleFailureDoesNotNotify(t *testing.T) {
	c, f, n := newSalesController(t)

	f.respond = func(q url.Values) (domain.PageResult[domain.Sale], error) {
		if q.Get("pagination[page]") == "1" {
			return domain.PageResult[domain.Sale]{}, errors.New("boom")
		}
		return pageOf(q, "INV-002"), nil
	}

	first := c.Load()
	second := c.SetPage(2)
	require.True(t, second.Do())
	assert.False(t, first.Do())

	assert.Equal(t, StatusSuccess, c.State().Status)
	assert.Empty(t, n.Drain())
}

func TestFetchFailureNotifiesOnce(t *testing.T) {
	c, f, n := newSalesController(t)
	c.Load().Do()
	require.Len(t, c.State().Rows(), 1)

	f.respond = func(url.Values) (domain.PageResult[domain.Sale], error) {
		return domain.PageResult[domain.Sale]{}, &domain.NetworkError{Op: "GET /api/sales", Err: errors.New("refused")}
	}
	require.True(t, c.Refetch().Do())

	st := c.State()
	assert.Equal(t, StatusFailure, st.Status)
	assert.Empty(t, st.Rows(), "rows are not kept after a failure")
	var ne *domain.NetworkError
	assert.True(t, errors.As(st.Err, &ne))

	notices := n.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelError, notices[0].Level)
	assert.Equal(t, "Failed to fetch sales data", notices[0].Msg)
	assert.Equal(t, 2, f.count(), "no automatic retry")
}

func TestCloseDropsInFlightResponse(t *testing.T) {
	c, f, n := newSalesController(t)

	var seenCtx context.Context
	f.respond = func(q url.Values) (domain.PageResult[domain.Sale], error) {
		return domain.PageResult[domain.Sale]{}, errors.New("late")
	}
	wrapped := FetcherFunc[domain.Sale](func(ctx context.Context, q url.Values) (domain.PageResult[domain.Sale], error) {
		seenCtx = ctx
		return f.Fetch(ctx, q)
	})
	c.fetcher = wrapped

	req := c.Load()
	c.Close()
	assert.False(t, req.Do())
	require.NotNil(t, seenCtx)
	assert.ErrorIs(t, seenCtx.Err(), context.Canceled)
	assert.Empty(t, n.Drain())

	assert.Nil(t, c.Refetch(), "a closed controller issues nothing")
	assert.Equal(t, 1, f.count())
}

func TestPageNavigation(t *testing.T) {
	c, f, _ := newSalesController(t)

	assert.Nil(t, c.PrevPage(), "already on page 1")
	assert.Nil(t, c.LastPage(), "page count unknown before the first fetch")

	c.Load().Do()
	c.NextPage().Do()
	assert.Equal(t, 2, c.Query().Page)

	c.LastPage().Do()
	assert.Equal(t, 3, c.Query().Page)
	assert.Nil(t, c.NextPage(), "page count is 3")

	c.PrevPage().Do()
	assert.Equal(t, 2, c.Query().Page)
	c.FirstPage().Do()
	assert.Equal(t, 1, c.Query().Page)
	assert.Nil(t, c.FirstPage())

	c.SetPage(-4).Do()
	assert.Equal(t, 1, c.Query().Page)
	assert.Equal(t, "Page 1 of 3", c.PageLabel())
	assert.Equal(t, 6, f.count())
}

func TestNextPageNeedsKnownPageCount(t *testing.T) {
	c, f, n := newSalesController(t)
	f.respond = func(url.Values) (domain.PageResult[domain.Sale], error) {
		return domain.PageResult[domain.Sale]{}, errors.New("connection refused")
	}

	assert.Nil(t, c.NextPage(), "nothing loaded yet")
	c.Load().Do()
	for range 3 {
		assert.Nil(t, c.NextPage())
	}
	assert.Equal(t, 1, c.Query().Page)
	assert.Equal(t, "Page 1", c.PageLabel())
	assert.Equal(t, 1, f.count())
	assert.Len(t, n.Drain(), 1)

	f.respond = func(url.Values) (domain.PageResult[domain.Sale], error) {
		return domain.PageResult[domain.Sale]{Rows: []domain.Sale{}}, nil
	}
	c.Refetch().Do()
	assert.Nil(t, c.NextPage(), "an empty result has no next page")
}

func TestClearFiltersAndSort(t *testing.T) {
	c, f, _ := newSalesController(t)

	r, err := c.SetFilter("customer_name", "Bob")
	require.NoError(t, err)
	r.Do()
	c.SetSort("date", Desc).Do()
	assert.Equal(t, "date:desc", f.last().Get("sort"))
	assert.Equal(t, "Bob", f.last().Get("filters[customer_name][$containsi]"))

	c.SetPage(2).Do()
	c.ClearFilters().Do()
	assert.Equal(t, 1, c.Query().Page)
	assert.Empty(t, c.Query().Filters)
	assert.Empty(t, f.last().Get("filters[customer_name][$containsi]"))
	assert.Equal(t, "date:desc", f.last().Get("sort"), "sort survives clearing filters")

	c.SetSort("", Asc).Do()
	assert.Empty(t, f.last().Get("sort"))
}

func TestSummary(t *testing.T) {
	c, f, _ := newSalesController(t)
	assert.Equal(t, "No Rows To Show", c.Summary())

	f.respond = func(q url.Values) (domain.PageResult[domain.Sale], error) {
		return pageOf(q, "INV-011", "INV-012", "INV-013"), nil
	}
	c.SetPage(2).Do()
	assert.Equal(t, "Showing 11 to 13 of 25 rows", c.Summary())

	f.respond = func(q url.Values) (domain.PageResult[domain.Sale], error) {
		return pageOf(q), nil
	}
	c.Refetch().Do()
	assert.Equal(t, "No Rows To Show", c.Summary())
}

func TestStateIsACopy(t *testing.T) {
	c, _, _ := newSalesController(t)
	c.Load().Do()

	st := c.State()
	st.Result.Rows[0].InvoiceNumber = "mutated"
	assert.Equal(t, "INV-001", c.State().Rows()[0].InvoiceNumber)

	q := c.Query()
	q.Filters["customer_name"] = "x"
	assert.Empty(t, c.Filter("customer_name"))
}

func TestConfigNormalised(t *testing.T) {
	c := New[domain.Sale](Config{DefaultPageSize: 7}, &fakeFetcher{}, nil)
	defer c.Close()

	assert.Equal(t, DefaultPageSizes, c.Config().PageSizes)
	assert.Equal(t, 10, c.Query().PageSize)
	assert.Equal(t, "Failed to fetch data", c.Config().FailureMessage)
}
