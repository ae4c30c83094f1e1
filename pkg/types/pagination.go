package types

type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// NewPagination считает число страниц по общему количеству записей.
func NewPagination(total uint64, page, limit int) Pagination {
	p := Pagination{TotalCount: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return p
}
