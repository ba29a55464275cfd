package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/h0rv/posdash/internal/domain"
)

// Resource paths of the content API.
const (
	PathSales            = "/api/sales"
	PathProducts         = "/api/products"
	PathCategories       = "/api/categories"
	PathSaleTransactions = "/api/sale-transactions"
	PathSalesSummary     = "/api/sales/summary/"
	PathChartData        = "/api/sales/chartData/"
	PathLogin            = "/api/auth/local"
	PathRegister         = "/api/auth/local/register"
)

// Collection is a typed view of one list endpoint. It satisfies the fetcher
// and deleter contracts of the list and mutation packages.
type Collection[T any] struct {
	client *Client
	path   string
}

// NewCollection binds a collection path to c.
func NewCollection[T any](c *Client, path string) *Collection[T] {
	return &Collection[T]{client: c, path: path}
}

// Path returns the collection's resource path.
func (r *Collection[T]) Path() string { return r.path }

// Fetch lists one page using the already serialised query.
func (r *Collection[T]) Fetch(ctx context.Context, query url.Values) (domain.PageResult[T], error) {
	return List[T](ctx, r.client, r.path, query)
}

// Delete removes the record addressed by ref (document id or numeric id).
func (r *Collection[T]) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("failed to delete from %s: empty id", r.path)
	}
	_, err := r.client.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(ref), nil, nil)
	return err
}

// Sales returns the sales collection.
func (c *Client) Sales() *Collection[domain.Sale] {
	return NewCollection[domain.Sale](c, PathSales)
}

// Products returns the products collection.
func (c *Client) Products() *Collection[domain.Product] {
	return NewCollection[domain.Product](c, PathProducts)
}

// Categories returns the categories collection.
func (c *Client) Categories() *Collection[domain.Category] {
	return NewCollection[domain.Category](c, PathCategories)
}

// AllCategories lists every category, for pickers and the POS sidebar.
func (c *Client) AllCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("pagination[pageSize]", "100")
	res, err := List[domain.Category](ctx, c, PathCategories, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return res.Rows, nil
}

// SearchProducts returns products whose name contains term, optionally limited
// to one category id. Images are populated for display.
func (c *Client) SearchProducts(ctx context.Context, term string, categoryID int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("populate[0]", "image")
	if term != "" {
		q.Set("filters[name][$containsi]", term)
	}
	if categoryID != 0 {
		q.Set("filters[category][id][$eqi]", strconv.Itoa(categoryID))
	}
	res, err := List[domain.Product](ctx, c, PathProducts, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return res.Rows, nil
}

// GetSale fetches one sale with its product lines and their images.
func (c *Client) GetSale(ctx context.Context, ref string) (*domain.Sale, error) {
	q := url.Values{}
	q.Set("populate[products][populate][product][populate]", "image")

	var sale domain.Sale
	if _, err := c.getData(ctx, PathSales+"/"+url.PathEscape(ref), q, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// CreateSale posts a sale transaction. The API decrements stock as part of it.
func (c *Client) CreateSale(ctx context.Context, p domain.SalePayload) (*domain.Sale, error) {
	var sale domain.Sale
	if err := c.sendData(ctx, http.MethodPost, PathSaleTransactions, p, &sale); err != nil {
		return nil, err
	}
	if sale.ID == 0 && sale.DocumentID == "" {
		return nil, fmt.Errorf("failed to create sale: response has no id")
	}
	return &sale, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, p domain.ProductPayload) (*domain.Product, error) {
	var out domain.Product
	if err := c.sendData(ctx, http.MethodPost, PathProducts, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces the product addressed by ref.
func (c *Client) UpdateProduct(ctx context.Context, ref string, p domain.ProductPayload) (*domain.Product, error) {
	var out domain.Product
	if err := c.sendData(ctx, http.MethodPut, PathProducts+"/"+url.PathEscape(ref), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, p domain.CategoryPayload) (*domain.Category, error) {
	var out domain.Category
	if err := c.sendData(ctx, http.MethodPost, PathCategories, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory replaces the category addressed by ref.
func (c *Client) UpdateCategory(ctx context.Context, ref string, p domain.CategoryPayload) (*domain.Category, error) {
	var out domain.Category
	if err := c.sendData(ctx, http.MethodPut, PathCategories+"/"+url.PathEscape(ref), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalesSummary returns the rolling period summaries keyed by period.
func (c *Client) SalesSummary(ctx context.Context) (map[domain.SummaryPeriod]domain.SalesSummary, error) {
	out := map[domain.SummaryPeriod]domain.SalesSummary{}
	if _, err := c.getData(ctx, PathSalesSummary, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChartData returns daily revenue points. The endpoint replies with a bare array.
func (c *Client) ChartData(ctx context.Context) ([]domain.ChartPoint, error) {
	raw, err := c.do(ctx, http.MethodGet, PathChartData, nil, nil)
	if err != nil {
		return nil, err
	}
	var points []domain.ChartPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("failed to decode chart data: %w", err)
	}
	return points, nil
}

// Login exchanges credentials for a session. The token is not stored on c.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	return c.session(ctx, PathLogin, creds)
}

// Register creates an account and returns its first session. The token is
// not stored on c.
func (c *Client) Register(ctx context.Context, r domain.Registration) (*domain.Session, error) {
	return c.session(ctx, PathRegister, r)
}

func (c *Client) session(ctx context.Context, path string, body any) (*domain.Session, error) {
	raw, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if s.JWT == "" {
		return nil, fmt.Errorf("session response contained no token")
	}
	return &s, nil
}
