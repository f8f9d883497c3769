package product

import (
	pkgpagination "github.com/angelmondragon/sagaflow-backend/pkg/pagination"
)

type ListParams struct {
	ActiveOnly bool
	pkgpagination.Params
}

type ListResult struct {
	Items  []ProductDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	activeOnly bool
	limit      int
	cursor     *pkgpagination.Cursor
}
