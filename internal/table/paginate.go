package table

// DefaultPageSize is used when a caller supplies a non-positive page size.
const DefaultPageSize = 10

// Page is one slice of an ordered sequence plus pagination metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// TotalPages returns ceil(totalItems/pageSize), never less than 1.
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (totalItems + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate returns the requested page of seq, clamping the page number into
// [1, TotalPages]. Items is a copy and is never nil.
func Paginate[T any](seq []T, pageSize, requestedPage int) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages := TotalPages(len(seq), pageSize)
	page := clamp(requestedPage, 1, totalPages)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(seq) {
		start = len(seq)
	}
	if end > len(seq) {
		end = len(seq)
	}

	items := make([]T, end-start)
	copy(items, seq[start:end])
	return Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: len(seq),
	}
}

// PageState is the caller-owned pagination position. Current is 1-based.
type PageState struct {
	Current int `json:"current"`
	Size    int `json:"size"`
}

// Clamp constrains Current to [1, totalPages].
func (p PageState) Clamp(totalPages int) PageState {
	if totalPages < 1 {
		totalPages = 1
	}
	p.Current = clamp(p.Current, 1, totalPages)
	return p
}

// Prev moves back one page; on page 1 it stays put.
func (p PageState) Prev() PageState {
	p.Current = max(p.Current-1, 1)
	return p
}

// Next moves forward one page; on the last page it stays put.
func (p PageState) Next(totalPages int) PageState {
	if totalPages < 1 {
		totalPages = 1
	}
	p.Current = clamp(p.Current+1, 1, totalPages)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
