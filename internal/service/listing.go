package service

import (
	"fmt"
	"strings"

	"github.com/havirkesht/backend/internal/repo"
	"github.com/havirkesht/backend/internal/util"
)

type ListParams struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
	Search    string
}

type Page[T any] struct {
	Total int64
	Size  int
	Pages int
	Items []T
}

type sortSpec struct {
	columns map[string]string
	defCol  string
	defDesc bool
	// orderOnDefault applies SortOrder to defCol when SortBy is empty.
	orderOnDefault bool
}

// listQuery validates p against the sortable columns. When SortBy is empty
// the default column applies.
func listQuery(p ListParams, spec sortSpec) (repo.ListQuery, int, error) {
	if p.Page < 0 || p.Size < 0 || p.Size > util.MaxPageSize {
		return repo.ListQuery{}, 0, fmt.Errorf("%w: page must be >= 1 and size between 1 and %d", ErrValidation, util.MaxPageSize)
	}

	order := strings.ToLower(p.SortOrder)
	if order != "" && order != "asc" && order != "desc" {
		return repo.ListQuery{}, 0, fmt.Errorf("%w: sort_order must be asc or desc", ErrValidation)
	}

	col, desc := spec.defCol, spec.defDesc
	switch {
	case p.SortBy != "":
		c, ok := spec.columns[p.SortBy]
		if !ok {
			return repo.ListQuery{}, 0, fmt.Errorf("%w: %q", ErrInvalidSort, p.SortBy)
		}
		col, desc = c, order == "desc"
	case spec.orderOnDefault && order != "":
		desc = order == "desc"
	}

	_, size, offset := util.Calculate(p.Page, p.Size)
	return repo.ListQuery{
		Offset: offset,
		Limit:  size,
		Column: col,
		Desc:   desc,
		Search: strings.TrimSpace(p.Search),
	}, size, nil
}

func newPage[T any](total int64, size int, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Total: total, Size: size, Pages: util.Pages(total, size), Items: items}
}
