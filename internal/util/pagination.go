package util

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is the list metadata shared by the REST and GraphQL
// list responses.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// Normalize clamps page/limit to sane values before querying.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	return page, limit
}

// Offset converts a normalized page/limit pair into a query offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// Paginate computes metadata for a page of a list with total items.
func Paginate(page, limit int, total int64) Pagination {
	page, limit = Normalize(page, limit)
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  int64(page)*int64(limit) < total,
		HasPrevPage:  page > 1,
	}
}
