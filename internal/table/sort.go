package table

import (
	"fmt"
	"slices"
	"strings"
)

// Direction is the sort order applied on top of a column comparison.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection accepts asc/ascending and desc/descending. Empty means
// ascending.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", raw)
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

func (d Direction) apply(c int) int {
	if d == Descending {
		return -c
	}
	return c
}

// SortState is the caller-owned (key, direction) pair for a table.
type SortState struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle selects key: the current key flips direction, a new key starts
// ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		return SortState{Key: key, Direction: s.normalized().Direction.Toggle()}
	}
	return SortState{Key: key, Direction: Ascending}
}

func (s SortState) normalized() SortState {
	if s.Direction != Descending {
		s.Direction = Ascending
	}
	return s
}

// Sort returns a stably ordered copy of records. Equal keys keep their input
// order in both directions; records is never modified.
func Sort[T any](records []T, column Column[T], direction Direction, collation Collation) []T {
	out := make([]T, len(records))
	copy(out, records)
	if column.compare == nil || len(out) < 2 {
		return out
	}
	strs := collation.Comparer()
	slices.SortStableFunc(out, func(a, b T) int {
		return direction.apply(column.compare(strs, a, b))
	})
	return out
}

// SortBy resolves state.Key in columns and sorts. Unknown keys keep input order.
func SortBy[T any](records []T, columns ColumnSet[T], state SortState, collation Collation) []T {
	column, _ := columns.Lookup(state.Key)
	return Sort(records, column, state.normalized().Direction, collation)
}
