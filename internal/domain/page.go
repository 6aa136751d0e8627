package domain

// Page describes one page of a paginated listing.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"pageSize"`
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// NormalizePage clamps page to >= 1 and size to [1, maxSize], using
// defaultSize when size is not positive.
func NormalizePage(page, size, defaultSize, maxSize int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: page, Size: size}
}

// TotalPages returns the number of pages needed for total items.
func (p Page) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPageResult wraps items fetched for p out of total matches.
func NewPageResult[T any](items []T, p Page, total int) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Page:       p.Number,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}
