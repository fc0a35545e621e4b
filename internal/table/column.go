package table

import (
	"fmt"
	"strings"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

// SortKey names a sortable column. The empty key keeps input order.
type SortKey string

// SortNone leaves records in their input order.
const SortNone SortKey = ""

// Column binds a sort key to a typed comparison over records of type T.
// The zero Column compares everything as equal.
type Column[T any] struct {
	key     SortKey
	compare func(strs StringComparer, a, b T) int
}

// Key returns the column's sort key.
func (c Column[T]) Key() SortKey {
	return c.key
}

// StringColumn compares the extracted text under the active collation.
// Empty strings sort first.
func StringColumn[T any](key SortKey, value func(T) string) Column[T] {
	return Column[T]{key: key, compare: func(strs StringComparer, a, b T) int {
		return strs(value(a), value(b))
	}}
}

// TimeColumn compares extracted timestamps; invalid ones sort last.
func TimeColumn[T any](key SortKey, value func(T) domain.Timestamp) Column[T] {
	return Column[T]{key: key, compare: func(_ StringComparer, a, b T) int {
		return CompareTime(value(a), value(b))
	}}
}

// IntColumn compares extracted counts.
func IntColumn[T any](key SortKey, value func(T) int) Column[T] {
	return Column[T]{key: key, compare: func(_ StringComparer, a, b T) int {
		return CompareInt(value(a), value(b))
	}}
}

// ColumnSet is the closed set of sortable columns for one view.
type ColumnSet[T any] struct {
	columns []Column[T]
}

// NewColumnSet builds a set; keys must be unique.
func NewColumnSet[T any](columns ...Column[T]) ColumnSet[T] {
	return ColumnSet[T]{columns: columns}
}

// Lookup returns the column for key. SortNone and unknown keys report false.
func (s ColumnSet[T]) Lookup(key SortKey) (Column[T], bool) {
	if key == SortNone {
		return Column[T]{}, false
	}
	for _, c := range s.columns {
		if c.key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Keys lists the sortable keys in declaration order.
func (s ColumnSet[T]) Keys() []SortKey {
	keys := make([]SortKey, 0, len(s.columns))
	for _, c := range s.columns {
		keys = append(keys, c.key)
	}
	return keys
}

// ParseKey resolves raw to a known key, ignoring case. Empty input is SortNone.
func (s ColumnSet[T]) ParseKey(raw string) (SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortNone, nil
	}
	for _, c := range s.columns {
		if strings.EqualFold(string(c.key), raw) {
			return c.key, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q", raw)
}
