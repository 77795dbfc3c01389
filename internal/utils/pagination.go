// Package utils holds small helpers shared by the HTTP and service layers.
package utils

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Page size bounds for list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPage reads the page and page_size query values. Missing or
// malformed values take the defaults; the rest are clamped to page >= 1
// and 1 <= page_size <= MaxPageSize.
func ClampPage(rawPage, rawSize string) (page, pageSize int) {
	page = max(intOr(rawPage, DefaultPage), 1)
	pageSize = min(max(intOr(rawSize, DefaultPageSize), 1), MaxPageSize)
	return page, pageSize
}

func intOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Offset is the number of rows before 1-based page.
func Offset(page, pageSize int) int {
	return max(page-1, 0) * pageSize
}

// TotalPages is ceil(total/pageSize), and 0 when there is nothing to page.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// Truncate trims s and cuts it to n runes, marking a cut with "…".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	switch {
	case n <= 0:
		return ""
	case utf8.RuneCountInString(s) <= n:
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n])) + "…"
}
