package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryBrowse(t *testing.T) {
	h := NewHistory(10)
	assert.Equal(t, "", h.Prev(), "empty history")

	h.Add("msg 1 hi")
	h.Add("status away")
	h.Add("status away")
	assert.Equal(t, 2, h.Len(), "repeat of the newest entry is dropped")

	assert.Equal(t, "status away", h.Prev())
	assert.Equal(t, "msg 1 hi", h.Prev())
	assert.Equal(t, "msg 1 hi", h.Prev(), "stops at the oldest")
	assert.Equal(t, "status away", h.Next())
	assert.Equal(t, "", h.Next())
	assert.Equal(t, "", h.Next())
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "c", h.Prev())
	assert.Equal(t, "b", h.Prev())
	assert.Equal(t, "b", h.Prev())
}

func TestHistoryAddRewinds(t *testing.T) {
	h := NewHistory(10)
	h.Add("a")
	h.Add("b")
	h.Prev()
	h.Prev()
	h.Add("b")
	assert.Equal(t, "b", h.Prev(), "cursor is back below the newest entry")
}
