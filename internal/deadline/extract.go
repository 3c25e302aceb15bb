package deadline

import (
	"regexp"
	"strings"
	"time"
)

const (
	monthExpr = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	dayExpr   = `\d{1,2}(?:st|nd|rd|th)?`
	yearExpr  = `(?:,?\s+\d{4})?`
)

var phraseExpr = regexp.MustCompile(`(?i)` +
	`\b` + monthExpr + `\s+` + dayExpr + yearExpr + `\b` +
	`|\b` + dayExpr + `\s+(?:of\s+)?` + monthExpr + yearExpr + `\b` +
	`|\b\d{4}-\d{1,2}-\d{1,2}\b` +
	`|\b\d{1,2}/\d{1,2}(?:/\d{4}|/\d{2})?\b`)

var (
	ordinalExpr = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
	noiseExpr   = regexp.MustCompile(`\bof\b|[.,]`)
	septExpr    = regexp.MustCompile(`\bsept\b`)
)

// Phrase is a date-like substring found in free text.
type Phrase struct {
	Text   string
	Offset int
}

// Extract scans free text for date-like phrases, leftmost first. It is
// permissive: every phrase still has to survive a strict parse.
func Extract(text string) []Phrase {
	locs := phraseExpr.FindAllStringIndex(text, -1)
	phrases := make([]Phrase, 0, len(locs))
	for _, loc := range locs {
		phrases = append(phrases, Phrase{Text: text[loc[0]:loc[1]], Offset: loc[0]})
	}
	return phrases
}

// strictLayouts all require a day, a month and a year. Numeric dates are read
// month first; the day-first layouts only succeed when the first number exceeds 12.
var strictLayouts = []string{
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-1-2",
	"1/2/2006",
	"1/2/06",
	"1/2 2006",
	"2/1/2006",
	"2/1/06",
	"2/1 2006",
}

// ParseStrict accepts a phrase only when it names a complete calendar date.
func ParseStrict(phrase string) (time.Time, bool) {
	cleaned := clean(phrase)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clean(phrase string) string {
	s := strings.ToLower(phrase)
	s = ordinalExpr.ReplaceAllString(s, "$1")
	s = noiseExpr.ReplaceAllString(s, " ")
	s = septExpr.ReplaceAllString(s, "sep")
	return strings.Join(strings.Fields(s), " ")
}
