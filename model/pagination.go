package model

const (
	DefaultPageLimit  = 20
	DefaultPageOffset = 0
)

// Pagination describes where a page sits in a listing.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	PerPage         int  `json:"perPage"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	NextPage        *int `json:"nextPage"`
	PreviousPage    *int `json:"previousPage"`
}

// Page is a normalized limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage falls back to the defaults when limit is non-positive or offset is
// negative.
func NewPage(limit, offset, defaultLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = DefaultPageOffset
	}
	return Page{Limit: limit, Offset: offset}
}

// NewPagination computes page metadata for a window over total items. The
// page must already be normalized, limit is at least 1.
func NewPagination(page Page, total int64) Pagination {
	current := page.Offset/page.Limit + 1
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))

	p := Pagination{
		CurrentPage:     current,
		PerPage:         page.Limit,
		TotalPages:      totalPages,
		HasNextPage:     current < totalPages,
		HasPreviousPage: current > 1,
	}
	if p.HasNextPage {
		next := current + 1
		p.NextPage = &next
	}
	if p.HasPreviousPage {
		prev := current - 1
		p.PreviousPage = &prev
	}
	return p
}
