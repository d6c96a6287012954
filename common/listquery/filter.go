// Package listquery derives the visible, ordered view of a record list from
// filter and sort criteria. Everything here is a pure function of its inputs
// and cheap enough to rerun on every keystroke of a search box.
package listquery

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// All is the categorical sentinel that matches every record.
const All = "ALL"

// Predicate reports whether a record belongs in the filtered view.
// A nil Predicate matches everything.
type Predicate[T any] func(T) bool

// Filter returns the records matching every predicate, in input order.
// The input slice is never modified.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchesAll(it, preds) {
			out = append(out, it)
		}
	}
	return out
}

func matchesAll[T any](it T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(it) {
			return false
		}
	}
	return true
}

// Text matches records where any of fields contains term, ignoring case.
// An empty or blank term matches everything.
func Text[T any](term string, fields ...func(T) string) Predicate[T] {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	fold := cases.Fold()
	needle := fold.String(term)
	return func(it T) bool {
		for _, f := range fields {
			if strings.Contains(fold.String(f(it)), needle) {
				return true
			}
		}
		return false
	}
}

// Category matches records whose field equals value exactly. The All
// sentinel and the empty string impose no constraint.
func Category[T any](value string, field func(T) string) Predicate[T] {
	if value == "" || value == All {
		return nil
	}
	return func(it T) bool {
		return field(it) == value
	}
}

// Bounds is an inclusive numeric range. A nil bound is unconstrained.
type Bounds struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// ParseBounds parses optional min and max strings. Blank strings leave the
// corresponding side open.
func ParseBounds(min, max string) (Bounds, error) {
	var b Bounds
	var err error
	if b.Min, err = parseBound(min); err != nil {
		return Bounds{}, fmt.Errorf("invalid minimum %q: %w", min, err)
	}
	if b.Max, err = parseBound(max); err != nil {
		return Bounds{}, fmt.Errorf("invalid maximum %q: %w", max, err)
	}
	return b, nil
}

func parseBound(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Open reports whether neither side is constrained.
func (b Bounds) Open() bool {
	return b.Min == nil && b.Max == nil
}

// Range matches records whose field lies within b, inclusive.
func Range[T any](b Bounds, field func(T) decimal.Decimal) Predicate[T] {
	if b.Open() {
		return nil
	}
	return func(it T) bool {
		v := field(it)
		if b.Min != nil && v.LessThan(*b.Min) {
			return false
		}
		if b.Max != nil && v.GreaterThan(*b.Max) {
			return false
		}
		return true
	}
}

// DatePrefix matches records whose timestamp, rendered as RFC 3339 in UTC,
// starts with prefix. "2024-03-05" selects that whole UTC day.
func DatePrefix[T any](prefix string, field func(T) time.Time) Predicate[T] {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	return func(it T) bool {
		ts := field(it)
		if ts.IsZero() {
			return false
		}
		return strings.HasPrefix(ts.UTC().Format(time.RFC3339), prefix)
	}
}
