package table

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spec-kit/queue-dashboard/internal/domain"
)

// Collation selects the fixed string ordering used for text columns.
type Collation string

const (
	// CollationEnglish orders text with the Unicode Collation Algorithm
	// tailored for English, independent of the host locale.
	CollationEnglish Collation = "en"
	// CollationBinary orders text by raw bytes (case-sensitive).
	CollationBinary Collation = "binary"
)

// ParseCollation maps a config value to a Collation. Empty means English.
func ParseCollation(raw string) (Collation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "en", "english":
		return CollationEnglish, nil
	case "binary", "bytes":
		return CollationBinary, nil
	}
	return "", fmt.Errorf("unknown collation %q", raw)
}

// StringComparer compares two strings and returns -1, 0 or 1.
type StringComparer func(a, b string) int

// Comparer returns a fresh comparer for the collation. English collators keep
// scratch buffers, so one must not be shared across goroutines.
func (c Collation) Comparer() StringComparer {
	if c == CollationBinary {
		return strings.Compare
	}
	return collate.New(language.English).CompareString
}

// CompareTime orders timestamps; invalid values sort last.
func CompareTime(a, b domain.Timestamp) int {
	return a.Compare(b)
}

// CompareInt orders counts numerically.
func CompareInt(a, b int) int {
	return cmp.Compare(a, b)
}
