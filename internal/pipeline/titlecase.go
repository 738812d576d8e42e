package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// Punctuation stripped from a word before testing it against the exception
// sets. The output keeps the punctuation.
const wordTestPunct = "(){}<>."

var ordinalRe = regexp.MustCompile(`[0-9]+(st|nd|rd|th)`)

var vowelRe = regexp.MustCompile(`[AEIOUYaeiouy]`)

// Organisational suffixes kept exactly as written here.
var preserveWords = []string{"GAA", "Ltd", "CIC", "FC", "RFC"}

var lowercaseWords = map[string]struct{}{
	"a": {}, "an": {}, "of": {}, "the": {}, "is": {}, "or": {},
}

var uppercaseWords = map[string]struct{}{
	"UK": {}, "FM": {}, "YMCA": {}, "PTA": {}, "PTFA": {}, "NHS": {},
	"CIO": {}, "U3A": {}, "RAF": {}, "PFA": {}, "ADHD": {},
	"I": {}, "II": {}, "III": {}, "IV": {}, "V": {}, "VI": {}, "VII": {},
	"VIII": {}, "IX": {}, "X": {}, "XI": {},
	"AFC": {}, "CE": {},
}

// Short vowel-less words that must not fall through to the acronym rule.
var titledShortWords = map[string]struct{}{
	"st": {}, "mr": {}, "mrs": {}, "ms": {}, "ltd": {}, "dr": {},
	"cwm": {}, "clwb": {}, "drs": {},
}

var contractions = map[string]struct{}{
	"YOU'RE": {}, "DON'T": {}, "HAVEN'T": {},
}

// Small words the generic fallback lowercases. The function-word rule in
// the cascade only covers the words the exception policy keys on; this set
// covers the rest of conventional title casing.
var smallWords = map[string]struct{}{
	"and": {}, "as": {}, "at": {}, "but": {}, "by": {}, "en": {}, "for": {},
	"if": {}, "in": {}, "on": {}, "to": {}, "v": {}, "via": {}, "vs": {},
}

// wordRule is one step of the ordered exception cascade. word is the token
// as it appears in the input; test is the token stripped of wordTestPunct.
// A rule either claims the word (ok=true) or passes it down the table.
type wordRule struct {
	name  string
	apply func(word, test string) (out string, ok bool)
}

var wordRules []wordRule

// Assigned in init to break the initialization cycle between wordRules,
// applySplitRule and titlecaseWord.
func init() {
	wordRules = []wordRule{
		{"preserve-as-is", func(word, test string) (string, bool) {
			for _, p := range preserveWords {
				if strings.EqualFold(word, p) {
					return p, true
				}
			}
			return "", false
		}},
		{"function-words", func(word, test string) (string, bool) {
			if _, ok := lowercaseWords[strings.ToLower(test)]; ok {
				return strings.ToLower(word), true
			}
			return "", false
		}},
		{"abbreviations", func(word, test string) (string, bool) {
			if _, ok := uppercaseWords[strings.ToUpper(test)]; ok {
				return strings.ToUpper(word), true
			}
			return "", false
		}},
		{"short-honorifics", func(word, test string) (string, bool) {
			if _, ok := titledShortWords[strings.ToLower(test)]; ok {
				return capitalizeWord(word), true
			}
			return "", false
		}},
		{"ordinals", func(word, test string) (string, bool) {
			if ordinalRe.MatchString(strings.ToLower(test)) {
				return strings.ToLower(word), true
			}
			return "", false
		}},
		{"internal-punctuation", applySplitRule},
		{"no-vowels", func(word, test string) (string, bool) {
			if !vowelRe.MatchString(test) {
				return strings.ToUpper(word), true
			}
			return "", false
		}},
	}
}

// applySplitRule handles words with a dot, apostrophe or closing paren in
// the middle: each segment goes back through the cascade, with possessive
// 's and known contractions keeping their final segment lowercase.
func applySplitRule(word, test string) (string, bool) {
	for _, sep := range []string{".", "'", ")"} {
		parts := strings.Split(word, sep)
		if len(parts) < 2 {
			continue
		}

		last := len(parts) - 1
		_, contraction := contractions[strings.ToUpper(test)]
		if (sep == "'" && strings.EqualFold(parts[last], "s")) || contraction {
			out := make([]string, 0, len(parts))
			for _, p := range parts[:last] {
				out = append(out, titlecaseWord(p))
			}
			out = append(out, strings.ToLower(parts[last]))
			return strings.Join(out, sep), true
		}

		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, titlecaseWord(p))
		}
		return strings.Join(out, sep), true
	}
	return "", false
}

func titlecaseWord(word string) string {
	if word == "" {
		return word
	}
	test := strings.Trim(word, wordTestPunct)
	for _, rule := range wordRules {
		if out, ok := rule.apply(word, test); ok {
			return out
		}
	}
	return genericTitle(word, test)
}

// genericTitle is the cascade's fallback: conventional title casing, with
// small words lowered and every hyphen-separated segment capitalized.
func genericTitle(word, test string) string {
	if _, ok := smallWords[strings.ToLower(test)]; ok {
		return strings.ToLower(word)
	}
	if parts := strings.Split(word, "-"); len(parts) > 1 {
		for i, p := range parts {
			parts[i] = capitalizeWord(p)
		}
		return strings.Join(parts, "-")
	}
	return capitalizeWord(word)
}

// capitalizeWord lowercases the word and uppercases its first letter,
// leaving leading punctuation in place ("(WALES" -> "(Wales").
func capitalizeWord(word string) string {
	runes := []rune(strings.ToLower(word))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

// Titlecase canonicalizes a raw organisation name for display. Names that
// already mix upper and lowercase are assumed well-formed and returned
// unchanged; all-caps and all-lowercase names go through the per-word
// exception cascade, and the first character of the result is always
// uppercased.
func Titlecase(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	hasUpper, hasLower := false, false
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasUpper == hasLower {
		// mixed case, or no letters at all
		return s
	}

	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titlecaseWord(w)
	}
	out := []rune(strings.Join(words, " "))
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
