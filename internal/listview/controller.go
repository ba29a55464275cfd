// Package listview implements the query-and-state controller shared by every
// paginated, filterable list screen, plus the per-column filter presenter.
//
// State changes (page, page size, filters, sort) are applied synchronously and
// return a Request; running the Request performs the fetch. Only the most
// recently issued Request may update state, so responses that arrive out of
// order or after Close are dropped without notifying.
package listview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/notify"
	"go.uber.org/zap"
)

var (
	// ErrInvalidPageSize indicates a page size outside the configured options.
	ErrInvalidPageSize = errors.New("page size not offered")
	// ErrUnknownField indicates a filter on a field with no declared policy.
	ErrUnknownField = errors.New("unknown filter field")
	// ErrInvalidDate indicates a day filter value that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// DefaultPageSizes are offered when a Config names none.
var DefaultPageSizes = []int{10, 25, 50}

// Config parametrises a controller for one screen.
type Config struct {
	// Name identifies the screen in logs.
	Name            string
	Fields          []FieldPolicy
	PageSizes       []int
	DefaultPageSize int
	Populate        []string
	DefaultSort     *Sort
	// WindowField and Window restrict every request to a fixed reporting range.
	WindowField string
	Window      Window
	// FailureMessage is the notification shown when a fetch fails.
	FailureMessage string
	Now            func() time.Time
}

// Policy returns the declared policy of field.
func (c Config) Policy(field string) (FieldPolicy, bool) {
	for _, p := range c.Fields {
		if p.Field == field {
			return p, true
		}
	}
	return FieldPolicy{}, false
}

func (c Config) normalised() Config {
	if len(c.PageSizes) == 0 {
		c.PageSizes = DefaultPageSizes
	}
	c.PageSizes = slices.Clone(c.PageSizes)
	if !slices.Contains(c.PageSizes, c.DefaultPageSize) {
		c.DefaultPageSize = c.PageSizes[0]
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.FailureMessage == "" {
		c.FailureMessage = "Failed to fetch data"
	}
	return c
}

// Status tags a FetchState.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "idle"
	}
}

// FetchState is the outcome of the latest fetch. Result is meaningful only on
// StatusSuccess and Err only on StatusFailure.
type FetchState[T any] struct {
	Status Status
	Result domain.PageResult[T]
	Err    error
}

// Rows returns the rows to display. Nothing is shown while loading or after a failure.
func (s FetchState[T]) Rows() []T {
	if s.Status != StatusSuccess {
		return nil
	}
	return s.Result.Rows
}

// Fetcher retrieves one page for an already serialised query.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, query url.Values) (domain.PageResult[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, query url.Values) (domain.PageResult[T], error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context, query url.Values) (domain.PageResult[T], error) {
	return f(ctx, query)
}

// Request performs one issued fetch and reports whether its result was applied.
type Request func() bool

// Do runs r. A nil Request does nothing.
func (r Request) Do() bool {
	if r == nil {
		return false
	}
	return r()
}

// Controller owns the query and fetch state of one list screen.
type Controller[T any] struct {
	cfg     Config
	fetcher Fetcher[T]
	notify  notify.Notifier
	log     *zap.Logger

	mu        sync.Mutex
	query     ListQuery
	state     FetchState[T]
	seq       uint64
	pageCount int
	closed    bool

	ctx       context.Context
	cancel    context.CancelFunc
	reqCancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	log *zap.Logger
	ctx context.Context
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *controllerOptions) { o.log = l }
}

// WithContext sets the parent context of every fetch.
func WithContext(ctx context.Context) Option {
	return func(o *controllerOptions) { o.ctx = ctx }
}

// New creates a controller in the Idle state with default query values.
func New[T any](cfg Config, fetcher Fetcher[T], n notify.Notifier, opts ...Option) *Controller[T] {
	o := controllerOptions{log: zap.NewNop(), ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if n == nil {
		n = notify.Discard
	}

	cfg = cfg.normalised()
	ctx, cancel := context.WithCancel(o.ctx)

	c := &Controller[T]{
		cfg:     cfg,
		fetcher: fetcher,
		notify:  n,
		log:     o.log.With(zap.String("list", cfg.Name)),
		query: ListQuery{
			Page:     1,
			PageSize: cfg.DefaultPageSize,
			Filters:  map[string]string{},
		},
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.DefaultSort != nil {
		s := *cfg.DefaultSort
		c.query.Sort = &s
	}
	return c
}

// Config returns the controller's normalised configuration.
func (c *Controller[T]) Config() Config { return c.cfg }

// State returns a copy of the current fetch state.
func (c *Controller[T]) State() FetchState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Result.Rows = slices.Clone(s.Result.Rows)
	return s
}

// Query returns a copy of the committed query.
func (c *Controller[T]) Query() ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}

// Filter returns the committed value of field, or "".
func (c *Controller[T]) Filter(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Filters[field]
}

// Load issues the initial fetch of a freshly mounted screen.
func (c *Controller[T]) Load() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issueLocked()
}

// Refetch re-issues the current query unchanged.
func (c *Controller[T]) Refetch() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issueLocked()
}

// SetPage moves to page n, clamped to at least 1.
func (c *Controller[T]) SetPage(n int) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Page = max(1, n)
	return c.issueLocked()
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller[T]) SetPageSize(n int) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.cfg.PageSizes, n) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	c.query.PageSize = n
	c.query.Page = 1
	return c.issueLocked(), nil
}

// SetFilter commits value for field and returns to page 1. An empty value
// removes the filter.
func (c *Controller[T]) SetFilter(field, value string) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	policy, ok := c.cfg.Policy(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	value = strings.TrimSpace(value)
	if value != "" && policy.Match == DayRange && !ValidDay(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	if value == "" {
		delete(c.query.Filters, field)
	} else {
		c.query.Filters[field] = value
	}
	c.query.Page = 1
	return c.issueLocked(), nil
}

// ClearFilters removes every filter and returns to page 1.
func (c *Controller[T]) ClearFilters() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Filters = map[string]string{}
	c.query.Page = 1
	return c.issueLocked()
}

// SetSort orders by field and returns to page 1. An empty field clears sorting.
func (c *Controller[T]) SetSort(field string, dir SortDir) Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if field == "" {
		c.query.Sort = nil
	} else {
		c.query.Sort = &Sort{Field: field, Dir: dir}
	}
	c.query.Page = 1
	return c.issueLocked()
}

// NextPage advances one page. It returns nil when the page count is unknown
// or already on the last page.
func (c *Controller[T]) NextPage() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pageCount < 1 || c.query.Page >= c.pageCount {
		return nil
	}
	c.query.Page++
	return c.issueLocked()
}

// PrevPage goes back one page. It returns nil on page 1.
func (c *Controller[T]) PrevPage() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query.Page <= 1 {
		return nil
	}
	c.query.Page--
	return c.issueLocked()
}

// FirstPage jumps to page 1. It returns nil when already there.
func (c *Controller[T]) FirstPage() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query.Page == 1 {
		return nil
	}
	c.query.Page = 1
	return c.issueLocked()
}

// LastPage jumps to the last known page. It returns nil when the page count is
// unknown or already reached.
func (c *Controller[T]) LastPage() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pageCount < 1 || c.query.Page == c.pageCount {
		return nil
	}
	c.query.Page = c.pageCount
	return c.issueLocked()
}

// Close cancels any in-flight fetch. Later responses are ignored and later
// state changes issue no fetch.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancel()
}

// Summary describes the visible row range, e.g. "Showing 11 to 20 of 42 rows".
func (c *Controller[T]) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != StatusSuccess || len(c.state.Result.Rows) == 0 {
		return "No Rows To Show"
	}
	pg := c.state.Result.Pagination
	first := (pg.Page-1)*pg.PageSize + 1
	last := (pg.Page-1)*pg.PageSize + len(c.state.Result.Rows)
	return fmt.Sprintf("Showing %d to %d of %d rows", first, last, pg.Total)
}

// PageLabel renders the position as "Page 2 of 5".
func (c *Controller[T]) PageLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pageCount < 1 {
		return fmt.Sprintf("Page %d", c.query.Page)
	}
	return fmt.Sprintf("Page %d of %d", c.query.Page, c.pageCount)
}

// issueLocked moves to Loading and returns the Request for the current query.
// Any previously issued request is superseded and its context cancelled.
func (c *Controller[T]) issueLocked() Request {
	if c.closed {
		return nil
	}
	c.seq++
	seq := c.seq

	if c.reqCancel != nil {
		c.reqCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.reqCancel = cancel

	c.state = FetchState[T]{Status: StatusLoading}
	query := Encode(c.cfg, c.query, c.cfg.Now())

	return func() bool {
		defer cancel()
		res, err := c.fetcher.Fetch(ctx, query)
		return c.apply(seq, res, err)
	}
}

func (c *Controller[T]) apply(seq uint64, res domain.PageResult[T], err error) bool {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.log.Debug("dropping stale response", zap.Uint64("seq", seq))
		return false
	}

	if err != nil {
		c.state = FetchState[T]{Status: StatusFailure, Err: err}
		msg := c.cfg.FailureMessage
		c.mu.Unlock()

		c.log.Warn("fetch failed", zap.Error(err))
		c.notify.Error(msg)
		return true
	}

	if res.Rows == nil {
		res.Rows = []T{}
	}
	c.state = FetchState[T]{Status: StatusSuccess, Result: res}
	c.pageCount = res.Pagination.PageCount
	c.mu.Unlock()
	return true
}
