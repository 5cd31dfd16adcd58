// internals/helpers/tags/tags.go
package tags

import (
	"errors"
	"strings"
)

// Closed tag vocabulary. Kept in sync with the frontend filter dropdown.
const (
	CDL       = "CDL"
	Local     = "Local"
	Rush      = "Rush"
	NY        = "NY"
	ILL       = "ILL"
	NonRush   = "Non-Rush"
	Sensitive = "Sensitive"
	Reserve   = "Reserve"
	DVD       = "DVD"
)

// All lists every known tag, in display order.
var All = []string{CDL, Local, Rush, NY, ILL, NonRush, Sensitive, Reserve, DVD}

var ErrMalformed = errors.New("tags: malformed tag string")

// Encode renders a tag list as a single bracketed string: ["a","b"] -> "[a][b]".
// An empty list encodes to "[]".
func Encode(list []string) string {
	return "[" + strings.Join(list, "][") + "]"
}

// Decode splits a bracketed tag string back into its tokens.
// Legacy rows may hold junk, so a shape mismatch is a recoverable error,
// never a panic. "[]" decodes to an empty list.
func Decode(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, ErrMalformed
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return []string{}, nil
	}
	parts := strings.Split(inner, "][")
	for _, p := range parts {
		if strings.ContainsAny(p, "[]") {
			return nil, ErrMalformed
		}
	}
	return parts, nil
}

// Has reports whether the encoded string contains the exact bracketed token.
// The brackets are part of the test on purpose: a bare substring check would
// let "NY" match inside "NYC".
func Has(encoded, tag string) bool {
	return strings.Contains(encoded, "["+tag+"]")
}

// Token returns the bracketed form of a single tag, for LIKE patterns.
func Token(tag string) string {
	return "[" + tag + "]"
}

// WithCDL appends the CDL tag to an in-memory tag list when the row's
// cdl_flag is set and the tag is not already present. This is presentation
// enrichment only; the stored tags column is left untouched.
func WithCDL(list []string, cdlFlag bool) []string {
	if !cdlFlag {
		return list
	}
	for _, t := range list {
		if t == CDL {
			return list
		}
	}
	return append(list, CDL)
}
