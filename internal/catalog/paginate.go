package catalog

import "github.com/evcraddock/realty/internal/property"

// DefaultPageSize is the number of properties on one results page.
const DefaultPageSize = 4

// Page is one window over a result set.
type Page struct {
	Items      []property.Property `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

// Paginate returns the requested page of items. page is clamped into
// [1, TotalPages] and TotalPages is at least 1; a non-positive pageSize
// means DefaultPageSize.
func Paginate(items []property.Property, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	window := make([]property.Property, 0, end-start)
	window = append(window, items[start:end]...)
	return Page{
		Items:      window,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }
