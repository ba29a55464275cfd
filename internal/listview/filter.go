package listview

import (
	"fmt"
	"strings"
)

// FilterTarget is the controller side of a column filter.
type FilterTarget interface {
	SetFilter(field, value string) (Request, error)
	Filter(field string) string
}

// ColumnFilter is the draft editor of one filterable column. A draft is seeded
// from the committed value on Open and reaches the controller only on Apply or
// Clear.
type ColumnFilter struct {
	target FilterTarget
	policy FieldPolicy

	open  bool
	draft string
}

// NewColumnFilter creates a closed filter editor for policy's column.
func NewColumnFilter(target FilterTarget, policy FieldPolicy) *ColumnFilter {
	return &ColumnFilter{target: target, policy: policy}
}

// ColumnFilters returns one closed editor per declared field, in declaration order.
func (c *Controller[T]) ColumnFilters() []*ColumnFilter {
	out := make([]*ColumnFilter, 0, len(c.cfg.Fields))
	for _, p := range c.cfg.Fields {
		out = append(out, NewColumnFilter(c, p))
	}
	return out
}

// Field returns the filtered field name.
func (f *ColumnFilter) Field() string { return f.policy.Field }

// Label returns the column header.
func (f *ColumnFilter) Label() string {
	if f.policy.Label != "" {
		return f.policy.Label
	}
	return f.policy.Field
}

// Placeholder returns the hint shown in an empty editor.
func (f *ColumnFilter) Placeholder() string {
	if f.policy.Placeholder != "" {
		return f.policy.Placeholder
	}
	if f.policy.Match == DayRange {
		return "YYYY-MM-DD"
	}
	return fmt.Sprintf("Filter by %s...", strings.ToLower(f.Label()))
}

// IsDate reports whether the column takes a day value.
func (f *ColumnFilter) IsDate() bool { return f.policy.Match == DayRange }

// IsOpen reports whether the editor is open.
func (f *ColumnFilter) IsOpen() bool { return f.open }

// Draft returns the uncommitted value.
func (f *ColumnFilter) Draft() string { return f.draft }

// Active reports whether the column has a committed value.
func (f *ColumnFilter) Active() bool { return f.target.Filter(f.policy.Field) != "" }

// Open starts editing with the committed value as the draft.
func (f *ColumnFilter) Open() {
	f.draft = f.target.Filter(f.policy.Field)
	f.open = true
}

// SetDraft replaces the draft. It has no effect while closed.
func (f *ColumnFilter) SetDraft(v string) {
	if !f.open {
		return
	}
	f.draft = v
}

// Apply commits the draft and closes. An invalid day value keeps the editor
// open and returns ErrInvalidDate. Applying a closed editor does nothing.
func (f *ColumnFilter) Apply() (Request, error) {
	if !f.open {
		return nil, nil
	}
	value := strings.TrimSpace(f.draft)
	if value != "" && f.policy.Match == DayRange && !ValidDay(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	req, err := f.target.SetFilter(f.policy.Field, value)
	if err != nil {
		return nil, err
	}
	f.open = false
	f.draft = ""
	return req, nil
}

// Cancel discards the draft and closes without touching committed state.
func (f *ColumnFilter) Cancel() {
	f.open = false
	f.draft = ""
}

// Clear commits an empty value immediately, open or not.
func (f *ColumnFilter) Clear() (Request, error) {
	req, err := f.target.SetFilter(f.policy.Field, "")
	if err != nil {
		return nil, err
	}
	f.open = false
	f.draft = ""
	return req, nil
}
