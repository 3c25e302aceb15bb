package classify

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and collapses whitespace so that
// predicates compare source vocabularies on equal footing.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// Term is a keyword matched as a substring of normalized text, with optional
// disqualifying neighbours. A term with a Pattern matches the pattern instead and
// has no disqualifiers.
type Term struct {
	Word    string
	Pattern *regexp.Regexp
	// NotAfter lists whole tokens that void a match when they immediately precede Word.
	NotAfter []string
	// NotBefore lists prefixes that void a match when they immediately follow Word,
	// after at most one separator.
	NotBefore []string
}

// Match reports whether text holds at least one qualifying occurrence of the term.
func (t Term) Match(text string) bool {
	if t.Pattern != nil {
		return t.Pattern.MatchString(text)
	}
	if t.Word == "" {
		return false
	}
	for start := 0; start <= len(text); {
		i := strings.Index(text[start:], t.Word)
		if i < 0 {
			return false
		}
		i += start
		if !t.voided(text, i) {
			return true
		}
		start = i + len(t.Word)
	}
	return false
}

func (t Term) voided(text string, at int) bool {
	if len(t.NotAfter) > 0 {
		before := text[:at]
		if strings.HasSuffix(before, " ") {
			tokens := strings.Fields(before)
			if len(tokens) > 0 && slices.Contains(t.NotAfter, tokens[len(tokens)-1]) {
				return true
			}
		}
	}

	if len(t.NotBefore) > 0 {
		after := text[at+len(t.Word):]
		if after != "" && strings.ContainsRune(" -/", rune(after[0])) {
			after = after[1:]
		}
		for _, next := range t.NotBefore {
			if strings.HasPrefix(after, next) {
				return true
			}
		}
	}
	return false
}

// Words builds plain terms with no disqualifiers.
func Words(words ...string) []Term {
	terms := make([]Term, 0, len(words))
	for _, w := range words {
		terms = append(terms, Term{Word: w})
	}
	return terms
}

// Pattern builds a term from a regular expression over normalized text.
func Pattern(expr string) Term {
	return Term{Pattern: regexp.MustCompile(expr)}
}

func matchAny(terms []Term, text string) bool {
	for _, t := range terms {
		if t.Match(text) {
			return true
		}
	}
	return false
}
