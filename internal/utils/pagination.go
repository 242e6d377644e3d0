// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageBounds returns the half-open slice range [start, end) of a 1-based page
// over total items, and the total number of pages. page and pageSize are
// clamped to at least 1; a page past the end yields an empty range.
//
// Example:
//
//	start, end, pages := utils.PageBounds(5, 2, 2) // 2, 4, 3
func PageBounds(total, page, pageSize int) (start, end, pages int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	pages = (total + pageSize - 1) / pageSize
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end, pages
}
