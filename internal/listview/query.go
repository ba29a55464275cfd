package listview

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MatchMode is the predicate a filter value serialises to.
type MatchMode int

const (
	// Contains is a case-insensitive substring match ($containsi).
	Contains MatchMode = iota
	// Equals is a case-insensitive exact match ($eqi).
	Equals
	// DayRange matches one UTC calendar day given as YYYY-MM-DD ($gte / $lt).
	DayRange
	// Relation matches a related record's id ([id][$eqi]).
	Relation
)

// FieldPolicy declares how one filterable column is matched and labelled.
type FieldPolicy struct {
	Field       string
	Label       string
	Placeholder string
	Match       MatchMode
}

// Window is a fixed reporting range applied to every request of a screen.
type Window int

const (
	WindowNone Window = iota
	// WindowWeek is the current week, starting Sunday.
	WindowWeek
	// WindowMonth is the current calendar month.
	WindowMonth
)

// SortDir is a sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Sort orders a list by one field.
type Sort struct {
	Field string
	Dir   SortDir
}

// DateLayout is the accepted format of day filter values.
const DateLayout = "2006-01-02"

// isoLayout matches the millisecond UTC timestamps the API expects in range filters.
const isoLayout = "2006-01-02T15:04:05.000Z"

// ListQuery is the committed query state of one list screen.
type ListQuery struct {
	Page     int
	PageSize int
	Filters  map[string]string
	Sort     *Sort
}

func (q ListQuery) clone() ListQuery {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	if q.Sort != nil {
		s := *q.Sort
		out.Sort = &s
	}
	return out
}

// Encode serialises q under cfg's field policies. Pagination is always present;
// filters follow their declared MatchMode; now anchors the reporting window.
func Encode(cfg Config, q ListQuery, now time.Time) url.Values {
	v := url.Values{}
	v.Set("pagination[page]", strconv.Itoa(q.Page))
	v.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))

	for _, p := range cfg.Fields {
		value, ok := q.Filters[p.Field]
		if !ok || value == "" {
			continue
		}
		switch p.Match {
		case Contains:
			v.Set(fmt.Sprintf("filters[%s][$containsi]", p.Field), value)
		case Equals:
			v.Set(fmt.Sprintf("filters[%s][$eqi]", p.Field), value)
		case Relation:
			v.Set(fmt.Sprintf("filters[%s][id][$eqi]", p.Field), value)
		case DayRange:
			day, err := time.Parse(DateLayout, value)
			if err != nil {
				continue
			}
			setRange(v, p.Field, day, day.AddDate(0, 0, 1))
		}
	}

	if cfg.Window != WindowNone && cfg.WindowField != "" {
		start, end := windowBounds(cfg.Window, now)
		setRange(v, cfg.WindowField, start, end)
	}

	for i, rel := range cfg.Populate {
		v.Set(fmt.Sprintf("populate[%d]", i), rel)
	}

	if q.Sort != nil && q.Sort.Field != "" {
		dir := q.Sort.Dir
		if dir == "" {
			dir = Asc
		}
		v.Set("sort", q.Sort.Field+":"+string(dir))
	}
	return v
}

func setRange(v url.Values, field string, start, end time.Time) {
	v.Set(fmt.Sprintf("filters[%s][$gte]", field), start.UTC().Format(isoLayout))
	v.Set(fmt.Sprintf("filters[%s][$lt]", field), end.UTC().Format(isoLayout))
}

// windowBounds returns the half-open range [start, end) of w containing now,
// in now's location.
func windowBounds(w Window, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch w {
	case WindowWeek:
		start := midnight.AddDate(0, 0, -int(now.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case WindowMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return midnight, midnight
	}
}

// ValidDay reports whether s is a YYYY-MM-DD date.
func ValidDay(s string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(s))
	return err == nil
}
