package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", 1, 15},
		{"3", "20", 3, 20},
		{"0", "0", 1, 15},
		{"-2", "abc", 1, 15},
		{"x", "500", 1, 50},
		{"2", "1", 2, 1},
	}
	for _, tt := range tests {
		page, size := Pagination(tt.page, tt.size, 15, 50)
		assert.Equal(t, tt.wantPage, page, "page %q", tt.page)
		assert.Equal(t, tt.wantSize, size, "pagesize %q", tt.size)
	}
}
