package shared

import (
	"strings"
)

// Placeholders returns the first n bind variables of dialect d starting at position start, separated by commas.
func Placeholders(d Dialect, start int, n int) string {
	s := make([]string, n)
	for i := 0; i < n; i++ {
		s[i] = d.Placeholder(start + i)
	}
	return strings.Join(s, ", ")
}

// Assignments returns "col1 = <bind>, col2 = <bind>" for cols using bind variables starting at position start.
func Assignments(d Dialect, start int, cols []string) string {
	s := make([]string, len(cols))
	for i, c := range cols {
		s[i] = c + " = " + d.Placeholder(start+i)
	}
	return strings.Join(s, ", ")
}
