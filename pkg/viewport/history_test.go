package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryBackAndForward(t *testing.T) {
	var h History
	assert.False(t, h.CanGoBack())
	assert.False(t, h.CanGoForward())

	// 0 -> 4 -> 9
	h.Visit(0)
	h.Visit(4)

	page, ok := h.Back(9)
	assert.True(t, ok)
	assert.Equal(t, 4, page)
	assert.True(t, h.CanGoForward())

	page, ok = h.Back(4)
	assert.True(t, ok)
	assert.Equal(t, 0, page)
	assert.False(t, h.CanGoBack())

	_, ok = h.Back(0)
	assert.False(t, ok)

	page, ok = h.Forward(0)
	assert.True(t, ok)
	assert.Equal(t, 4, page)

	page, ok = h.Forward(4)
	assert.True(t, ok)
	assert.Equal(t, 9, page)
	assert.False(t, h.CanGoForward())
}

func TestHistoryVisitDiscardsForward(t *testing.T) {
	var h History
	h.Visit(0)
	h.Visit(3)
	_, _ = h.Back(7)
	assert.True(t, h.CanGoForward())

	h.Visit(3)
	assert.False(t, h.CanGoForward())

	// the repeated visit is not stacked twice
	h.Visit(3)
	page, _ := h.Back(5)
	assert.Equal(t, 3, page)
	page, _ = h.Back(3)
	assert.Equal(t, 0, page)
	assert.False(t, h.CanGoBack())
}
