// Package text holds plain-text normalization helpers shared by the prompt
// pipeline. Both outbound prompts and generator responses pass through the
// same sanitizer so stored narratives never carry markup or control bytes.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	markdownPattern   = regexp.MustCompile("[*_`#>]+")
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips markup, collapses runs of whitespace, and removes
// non-printable characters. Newlines are preserved (paragraph structure
// matters to the generator) but never more than one blank line in a row.
func Sanitize(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = markdownPattern.ReplaceAllString(s, "")
	s = stripNonPrintable(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = blankLinePattern.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripNonPrintable removes control characters except newline
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s)
}

// Tokenize lowercases the input, splits it on non-letter boundaries, and
// keeps tokens longer than minLen runes. Order of first appearance is
// preserved; duplicates are dropped.
func Tokenize(s string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= minLen {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
