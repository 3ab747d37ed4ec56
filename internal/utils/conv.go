package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ParseID parses a positive path id.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Pagination 解析 page / pagesize，非法值回落到默认值，pagesize 不超过 max
func Pagination(page, size string, defaultSize, maxSize int) (int, int) {
	p := StringToInt(page)
	if p < 1 {
		p = 1
	}
	s := StringToInt(size)
	if s < 1 {
		s = defaultSize
	}
	if s > maxSize {
		s = maxSize
	}
	return p, s
}
