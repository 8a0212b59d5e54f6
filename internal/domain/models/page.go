package models

// Page is a single listing page with navigation metadata. NextPage and PrevPage
// are nil outside the [1, LastPage] range.
type Page struct {
	Data        []UserProfile `json:"data"`
	Total       int           `json:"total"`
	CurrentPage int           `json:"current_page"`
	NextPage    *int          `json:"next_page"`
	PrevPage    *int          `json:"prev_page"`
	LastPage    int           `json:"last_page"`
}

func NewPage(data []UserProfile, total, currentPage, perPage int) *Page {
	lastPage := (total + perPage - 1) / perPage

	page := &Page{
		Data:        data,
		Total:       total,
		CurrentPage: currentPage,
		LastPage:    lastPage,
	}

	if next := currentPage + 1; next <= lastPage {
		page.NextPage = &next
	}
	if prev := currentPage - 1; prev >= 1 {
		page.PrevPage = &prev
	}

	return page
}
