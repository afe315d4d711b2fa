package model

// PagedResult carries one page of results together with paging metadata.
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
}

// TotalPages returns the number of pages the result set spans.
func (p *PagedResult[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	pages := int(p.TotalCount) / p.PageSize
	if int(p.TotalCount)%p.PageSize != 0 {
		pages++
	}
	return pages
}
