package utils

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", DefaultPage, DefaultPageSize},
		{"0", "0", 1, 1},
		{"-3", "-1", 1, 1},
		{"4", "500", 4, MaxPageSize},
		{"x", "y", DefaultPage, DefaultPageSize},
		{" 2", "10 ", DefaultPage, DefaultPageSize},
		{"0012", "99999999999999999999999", 12, DefaultPageSize},
		{"2", "10", 2, 10},
	}
	for _, tc := range tests {
		p, s := ClampPage(tc.page, tc.size)
		if p != tc.wantPage || s != tc.wantSize {
			t.Errorf("ClampPage(%q, %q) = (%d, %d); want (%d, %d)", tc.page, tc.size, p, s, tc.wantPage, tc.wantSize)
		}
	}
}

func TestOffset(t *testing.T) {
	tests := []struct{ page, size, want int }{
		{1, 20, 0},
		{3, 20, 40},
		{0, 20, 0},
		{-2, 20, 0},
		{2, 1, 1},
	}
	for _, tc := range tests {
		if got := Offset(tc.page, tc.size); got != tc.want {
			t.Errorf("Offset(%d, %d) = %d; want %d", tc.page, tc.size, got, tc.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{40, 20, 2},
		{41, 20, 3},
		{5, 0, 0},
		{-1, 20, 0},
	}
	for _, tc := range tests {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"  short  ", 10, "short"},
		{"abcdefghij", 4, "abcd…"},
		{"abcd", 4, "abcd"},
		{"ab  cdef", 3, "ab…"},
		{"नमस्ते दुनिया", 3, "नमस…"},
		{"x", 0, ""},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q; want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
