// Package sanitize strips markup from text that may end up in client-facing
// response fields. Internal error detail is logged verbatim but never echoed
// to callers as HTML.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// Text returns the plain-text content of s with any markup removed. Plain
// strings pass through unchanged apart from whitespace normalization at tag
// boundaries.
func Text(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}
