package pptx2md

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var reCRLF = regexp.MustCompile(`\r\n?`)

// normalizeText cleans a string read from the document before it is stored
// in a record:
// - Ensure valid UTF-8
// - Compose to NFC so equal text compares equal
// - Normalize line endings (CRLF -> LF); vertical tabs are soft breaks
// - Strip non-printable/control characters (keep \n, \t)
func normalizeText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = norm.NFC.String(s)

	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\v", "\n")

	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
