// Package ectoken implements the hierarchical token algebra: normalization,
// ancestor testing, and the token meet used by every higher step.
package ectoken

import "strings"

// Norm normalizes a token under a taxonomy-wide case-sensitivity flag.
func Norm(token string, caseSensitive bool) string {
	if caseSensitive {
		return token
	}
	return strings.ToLower(token)
}

// Ancestor reports whether a is an ancestor of (or equal to) d, i.e. d is
// a itself or a descendant of a in the delimiter-separated hierarchy.
func Ancestor(a, d, delimiter string, caseSensitive bool) bool {
	na, nd := Norm(a, caseSensitive), Norm(d, caseSensitive)
	if na == nd {
		return true
	}
	return strings.HasPrefix(nd, na+delimiter)
}

// Meet computes the meet of two tokens for a single taxonomy key. ok is
// false when the meet is undefined (neither ancestor of the other and
// neither is the placeholder or equal).
func Meet(left, right, placeholder, delimiter string, caseSensitive bool) (result string, ok bool) {
	nLeft := Norm(left, caseSensitive)
	nRight := Norm(right, caseSensitive)
	nPlaceholder := Norm(placeholder, caseSensitive)

	switch {
	case nLeft == nPlaceholder:
		return right, true
	case nRight == nPlaceholder:
		return left, true
	case nLeft == nRight:
		return left, true
	case Ancestor(left, right, delimiter, caseSensitive):
		return right, true
	case Ancestor(right, left, delimiter, caseSensitive):
		return left, true
	default:
		return "", false
	}
}
