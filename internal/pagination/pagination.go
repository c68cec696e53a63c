// Package pagination provides the page metadata attached to list responses.
package pagination

// DefaultPerPage is used when a request does not specify a page size.
const DefaultPerPage = 20

// MaxPerPage caps a requested page size.
const MaxPerPage = 100

// Page describes one page of a larger result set.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// New computes page metadata for the given page number, page size and
// total row count. Page numbers are 1-based.
func New(page, perPage int, total int64) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total-1)/int64(perPage)) + 1
	}

	return Page{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Offset returns the row offset for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Clamp normalizes raw page/per_page query values.
func Clamp(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
