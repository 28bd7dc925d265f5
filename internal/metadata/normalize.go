package metadata

import (
	"regexp"
	"strings"
	"unicode"
)

var multiSpace = regexp.MustCompile(` {2,}`)

// Bracket characters removed from transcripts outright.
const deleteChars = "()[]{}<>"

// NormalizeTranscript canonicalizes a raw transcript field:
// exotic whitespace (NBSP, ideographic space, tab, any Unicode space
// separator) becomes a plain space, runs of spaces collapse to one, one
// layer of symmetric surrounding double quotes is stripped, and bracket
// characters are removed.
func NormalizeTranscript(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r == ' ' || r == '　' || r == '\t':
			b.WriteRune(' ')
		case unicode.Is(unicode.Zs, r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	s = multiSpace.ReplaceAllString(b.String(), " ")
	s = strings.TrimSpace(s)

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(deleteChars, r) {
			return -1
		}

		return r
	}, s)

	return strings.TrimSpace(s)
}
