package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		current  int
		perPage  int
		lastPage int
		nextPage *int
		prevPage *int
	}{
		{name: "first of three", total: 25, current: 1, perPage: 10, lastPage: 3, nextPage: ptr(2), prevPage: nil},
		{name: "middle", total: 25, current: 2, perPage: 10, lastPage: 3, nextPage: ptr(3), prevPage: ptr(1)},
		{name: "last of three", total: 25, current: 3, perPage: 10, lastPage: 3, nextPage: nil, prevPage: ptr(2)},
		{name: "exact fit", total: 30, current: 3, perPage: 10, lastPage: 3, nextPage: nil, prevPage: ptr(2)},
		{name: "single page", total: 5, current: 1, perPage: 10, lastPage: 1, nextPage: nil, prevPage: nil},
		{name: "empty", total: 0, current: 1, perPage: 10, lastPage: 0, nextPage: nil, prevPage: nil},
		{name: "per page one", total: 3, current: 2, perPage: 1, lastPage: 3, nextPage: ptr(3), prevPage: ptr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(nil, tt.total, tt.current, tt.perPage)

			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.current, page.CurrentPage)
			assert.Equal(t, tt.lastPage, page.LastPage)
			assert.Equal(t, tt.nextPage, page.NextPage)
			assert.Equal(t, tt.prevPage, page.PrevPage)
		})
	}
}

func ptr(v int) *int { return &v }
