package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-dashboard/internal/service"
	"github.com/spec-kit/queue-dashboard/internal/table"
	apperrors "github.com/spec-kit/queue-dashboard/pkg/util/errorutil"
)

// parseTableQuery reads sort, direction, toggle, page and page_size.
//
// Without a sort parameter the table's default sort applies; an empty sort
// parameter means input order. toggle is applied last, on top of the sort
// the client sent back.
func parseTableQuery[T any](c *fiber.Ctx, columns table.ColumnSet[T], fallback table.SortState) (service.TableQuery, error) {
	state := fallback
	args := c.Context().QueryArgs()

	if args.Has("sort") {
		key, err := columns.ParseKey(c.Query("sort"))
		if err != nil {
			return service.TableQuery{}, invalidSortKey(err, columns)
		}
		state = table.SortState{Key: key, Direction: table.Ascending}
	}
	if args.Has("direction") {
		dir, err := table.ParseDirection(c.Query("direction"))
		if err != nil {
			return service.TableQuery{}, apperrors.NewValidationError(err.Error(), map[string]any{
				"allowed": []table.Direction{table.Ascending, table.Descending},
			})
		}
		state.Direction = dir
	}
	if raw := c.Query("toggle"); raw != "" {
		key, err := columns.ParseKey(raw)
		if err != nil {
			return service.TableQuery{}, invalidSortKey(err, columns)
		}
		state = state.Toggle(key)
	}

	return service.TableQuery{
		Sort: state,
		Page: table.PageState{
			Current: parseInt(c.Query("page"), 1),
			Size:    parseInt(c.Query("page_size"), 0),
		},
	}, nil
}

// parseSort reads only the sort parameters, for whole-table exports.
func parseSort[T any](c *fiber.Ctx, columns table.ColumnSet[T], fallback table.SortState) (table.SortState, error) {
	q, err := parseTableQuery(c, columns, fallback)
	return q.Sort, err
}

func invalidSortKey[T any](err error, columns table.ColumnSet[T]) error {
	return apperrors.NewValidationError(err.Error(), map[string]any{"allowed": columns.Keys()})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
