package dto

import (
	"github.com/spec-kit/queue-dashboard/internal/table"
	"github.com/spec-kit/queue-dashboard/internal/view"
)

// SortMeta echoes the sort state that produced a page. Clients send it back
// on the next request.
type SortMeta struct {
	Key       table.SortKey   `json:"key"`
	Direction table.Direction `json:"direction"`
	Available []table.SortKey `json:"available"`
}

// TableMeta describes a table page.
type TableMeta struct {
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	TotalItems int      `json:"total_items"`
	HasPrev    bool     `json:"has_prev"`
	HasNext    bool     `json:"has_next"`
	Sort       SortMeta `json:"sort"`
}

// TableResponse is the body of the paginated table endpoints.
type TableResponse[T any] struct {
	Data []T       `json:"data"`
	Meta TableMeta `json:"meta"`
}

// NewTableResponse wraps a computed page.
func NewTableResponse[T any](res view.Result[T], available []table.SortKey) TableResponse[T] {
	p := res.Page
	return TableResponse[T]{
		Data: p.Items,
		Meta: TableMeta{
			Page:       p.Page,
			PageSize:   p.PageSize,
			TotalPages: p.TotalPages,
			TotalItems: p.TotalItems,
			HasPrev:    p.HasPrev(),
			HasNext:    p.HasNext(),
			Sort: SortMeta{
				Key:       res.Sort.Key,
				Direction: res.Sort.Direction,
				Available: available,
			},
		},
	}
}
