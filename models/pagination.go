package models

// Pagination is the listing envelope shared by every paginated endpoint
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
	Limit int   `json:"limit"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}
