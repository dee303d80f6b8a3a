// Package utils holds small generic helpers shared by the HTTP layer.
package utils

import (
	"strconv"
	"strings"
)

// ParseLimit reads a "limit" query value. Empty, malformed and negative
// values yield def.
func ParseLimit(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Head returns at most n leading rows. n <= 0 means no limit.
func Head[T any](rows []T, n int) []T {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
