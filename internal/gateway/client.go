// Package gateway is the single outbound client for the POS content API.
// It owns the base URL, token attachment, request IDs, outbound rate limiting
// and the normalisation of API errors into the domain error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h0rv/posdash/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the content API over REST.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit caps outbound requests at perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken replaces the bearer token, e.g. after a login.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// envelope is the {data, meta} wrapper around every content API response.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination *domain.Pagination `json:"pagination"`
	} `json:"meta"`
}

// apiErrorBody is the {error:{status,name,message}} body of a failed request.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends one request and returns the raw response body of a 2xx reply.
// Any other outcome is returned as a NetworkError, ServerError or NotFoundError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.NetworkError{Op: op, Err: err}
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request %s: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" && path != PathLogin && path != PathRegister {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("op", op), zap.String("request_id", requestID), zap.Error(err))
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.log.Debug("request",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, normaliseError(path, resp.StatusCode, data)
	}
	return data, nil
}

// normaliseError maps a non-2xx response to the domain error taxonomy,
// surfacing the API's own message when the body carries one.
func normaliseError(path string, status int, body []byte) error {
	var parsed apiErrorBody
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = parsed.Error.Message
	}

	if status == http.StatusNotFound {
		return &domain.NotFoundError{Resource: resourceName(path), Message: msg}
	}
	return &domain.ServerError{Status: status, Message: msg}
}

func resourceName(path string) string {
	p := strings.TrimPrefix(path, "/api/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

// getData fetches path and decodes the envelope's data field into out.
func (c *Client) getData(ctx context.Context, path string, query url.Values, out any) (*domain.Pagination, error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", path, err)
		}
	}
	return env.Meta.Pagination, nil
}

// sendData wraps payload in {data: ...}, sends it and decodes the reply's data into out.
func (c *Client) sendData(ctx context.Context, method, path string, payload, out any) error {
	raw, err := c.do(ctx, method, path, nil, map[string]any{"data": payload})
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return errors.New("response contained no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", path, err)
	}
	return nil
}

// List fetches one page of a collection. PageCount is derived from Total when
// the server omits it.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (domain.PageResult[T], error) {
	var rows []T
	pg, err := c.getData(ctx, path, query, &rows)
	if err != nil {
		return domain.PageResult[T]{}, err
	}

	result := domain.PageResult[T]{Rows: rows}
	if pg != nil {
		result.Pagination = *pg
	}
	if result.Pagination.PageSize == 0 {
		result.Pagination.PageSize = atoiDefault(query.Get("pagination[pageSize]"), len(rows))
	}
	if result.Pagination.Page == 0 {
		result.Pagination.Page = atoiDefault(query.Get("pagination[page]"), 1)
	}
	if pg == nil {
		result.Pagination.Total = len(rows)
	}
	if result.Pagination.PageCount == 0 && result.Pagination.PageSize > 0 {
		result.Pagination.PageCount = (result.Pagination.Total + result.Pagination.PageSize - 1) / result.Pagination.PageSize
	}
	if result.Rows == nil {
		result.Rows = []T{}
	}
	return result, nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
