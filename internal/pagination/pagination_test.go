package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_EmptyResultSet(t *testing.T) {
	p := New(1, 20, 0)

	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestNew_ExactMultiple(t *testing.T) {
	p := New(2, 10, 20)

	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestNew_PartialLastPage(t *testing.T) {
	p := New(1, 10, 21)

	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)
}

func TestNew_HasNextIffMoreRowsRemain(t *testing.T) {
	// has_next must hold exactly when page*per_page < total
	for page := 1; page <= 5; page++ {
		p := New(page, 7, 23)
		assert.Equal(t, page*7 < 23, p.HasNext, "page %d", page)
	}
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, New(1, 20, 100).Offset())
	assert.Equal(t, 40, New(3, 20, 100).Offset())
}

func TestClamp(t *testing.T) {
	page, perPage := Clamp(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, perPage)

	_, perPage = Clamp(1, 5000)
	assert.Equal(t, MaxPerPage, perPage)
}
