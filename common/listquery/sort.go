package listquery

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the single active (field, direction) pair of a list.
type SortState struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// ParseSortState builds a SortState from request parameters. Anything other
// than "desc" sorts ascending. A leading "-" on field also means descending.
func ParseSortState(field, dir string) SortState {
	field = strings.TrimSpace(field)
	if rest, ok := strings.CutPrefix(field, "-"); ok {
		return SortState{Field: rest, Direction: Desc}
	}
	if strings.EqualFold(dir, string(Desc)) {
		return SortState{Field: field, Direction: Desc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Toggle returns the state after the user selects field: the same field
// flips direction, a different field starts ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Key extracts a sortable value from a record. Exactly one of Text or
// Numeric should be set.
type Key[T any] struct {
	Text    func(T) string
	Numeric func(T) decimal.Decimal
}

// Keys maps sortable field names to their extractors.
type Keys[T any] map[string]Key[T]

// Sort returns a stably sorted copy of items according to state. Text keys
// are compared with a case-insensitive collator for locale; numeric keys are
// compared as decimals. An empty or unknown field returns an unsorted copy.
func Sort[T any](items []T, state SortState, keys Keys[T], locale language.Tag) []T {
	out := slices.Clone(items)
	key, ok := keys[state.Field]
	if !ok {
		return out
	}

	var cmp func(a, b T) int
	switch {
	case key.Numeric != nil:
		cmp = func(a, b T) int {
			return key.Numeric(a).Cmp(key.Numeric(b))
		}
	case key.Text != nil:
		col := collate.New(locale, collate.IgnoreCase)
		cmp = func(a, b T) int {
			return col.CompareString(key.Text(a), key.Text(b))
		}
	default:
		return out
	}

	if state.Direction == Desc {
		asc := cmp
		cmp = func(a, b T) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Page returns items[offset:offset+limit], clamped to the slice bounds.
// A non-positive limit returns everything from offset.
func Page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
