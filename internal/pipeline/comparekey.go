package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	structuralPunct = regexp.MustCompile(`[.,(){}\[\]\-]`)
	compactSpaces   = regexp.MustCompile(`\s+`)
)

// CompareKey reduces a display name to a loose key for grouping likely
// duplicates: "The Example Club Ltd" and "EXAMPLE CLUB" both become
// "example club". The key is only ever used for matching, never stored as
// an identifier.
func CompareKey(name string) string {
	s := norm.NFC.String(strings.ToLower(strings.TrimSpace(name)))
	s = structuralPunct.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "&" {
			out = append(out, "and")
			continue
		}
		tok = stripNonAlnum(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}

	if len(out) > 0 && out[0] == "the" {
		out = out[1:]
	}
	if n := len(out); n > 0 && (out[n-1] == "ltd" || out[n-1] == "limited") {
		out = out[:n-1]
	}

	key := normalizeCICSuffix(strings.Join(out, " "))
	return strings.TrimSpace(compactSpaces.ReplaceAllString(key, " "))
}

// normalizeCICSuffix folds the spelled-out "c i c" ending (what "C.I.C."
// becomes after punctuation stripping) into the canonical " cic" suffix.
func normalizeCICSuffix(key string) string {
	if strings.HasSuffix(key, " c i c") {
		return strings.TrimSuffix(key, " c i c") + " cic"
	}
	if key == "c i c" {
		return "cic"
	}
	return key
}

func stripNonAlnum(tok string) string {
	var b strings.Builder
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
