package deadline

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Sentinel stands for "no usable deadline"; it sorts after every real date.
var Sentinel = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Window is the plausible date range of one hiring cycle, lower bound inclusive and
// upper bound exclusive.
type Window struct {
	Lower        time.Time
	Upper        time.Time
	FallbackYear int
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Lower) && t.Before(w.Upper)
}

// Strategy is one named attempt at turning an extracted phrase into a date.
type Strategy struct {
	Name  string
	Parse func(phrase string) (time.Time, bool)
}

// Strict parses the phrase as it stands.
func Strict() Strategy {
	return Strategy{Name: "strict", Parse: ParseStrict}
}

// WithYear retries the phrase with year appended, for phrases such as "November 15".
func WithYear(year int) Strategy {
	suffix := " " + strconv.Itoa(year)
	return Strategy{
		Name: "fallback-year",
		Parse: func(phrase string) (time.Time, bool) {
			return ParseStrict(phrase + suffix)
		},
	}
}

// Inferencer picks the earliest credible deadline for a posting.
type Inferencer struct {
	window     Window
	year       int
	strategies []Strategy
}

// NewInferencer builds an inferencer trying the strict strategy, then the fallback year.
// A zero FallbackYear defaults to the year of the window's lower bound.
func NewInferencer(w Window) *Inferencer {
	year := w.FallbackYear
	if year == 0 {
		year = w.Lower.Year()
	}
	return &Inferencer{
		window:     w,
		year:       year,
		strategies: []Strategy{Strict(), WithYear(year)},
	}
}

// Infer returns the minimum of the free-text deadline and every structured field.
// It never fails: anything unreadable contributes the sentinel.
func (in *Inferencer) Infer(adText string, fields ...string) time.Time {
	best := in.FromText(adText)
	for _, f := range fields {
		if d := in.FromField(f); d.Before(best) {
			best = d
		}
	}
	return best
}

// FromField parses one structured deadline field. A field without a year, such as
// "Nov 15", takes the fallback year.
func (in *Inferencer) FromField(s string) time.Time {
	t, ok := lenient(s)
	if !ok {
		return Sentinel
	}
	if t.Year() != 0 {
		return t
	}
	d := time.Date(in.year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if d.Day() != t.Day() {
		return Sentinel
	}
	return d
}

// FromText extracts and reconciles candidate dates from free text.
func (in *Inferencer) FromText(text string) time.Time {
	if strings.TrimSpace(text) == "" {
		return Sentinel
	}

	var candidates []time.Time
	for _, phrase := range Extract(text) {
		if d, ok := in.resolve(phrase.Text); ok {
			candidates = append(candidates, d)
		}
	}
	return in.pick(candidates)
}

func (in *Inferencer) resolve(phrase string) (time.Time, bool) {
	for _, s := range in.strategies {
		if d, ok := s.Parse(phrase); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// pick prefers the earliest candidate inside the window, then the earliest overall.
func (in *Inferencer) pick(candidates []time.Time) time.Time {
	if len(candidates) == 0 {
		return Sentinel
	}
	slices.SortFunc(candidates, func(a, b time.Time) int { return a.Compare(b) })
	for _, c := range candidates {
		if in.window.Contains(c) {
			return c
		}
	}
	return candidates[0]
}

// Lenient parses a structured deadline field with a general-purpose parser,
// truncated to the calendar day. A field that names no year yields the sentinel.
func Lenient(s string) time.Time {
	t, ok := lenient(s)
	if !ok || t.Year() == 0 {
		return Sentinel
	}
	return t
}

func lenient(s string) (d time.Time, ok bool) {
	// dateparse can panic on some malformed inputs.
	defer func() {
		if recover() != nil {
			d, ok = time.Time{}, false
		}
	}()

	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// Format renders a deadline as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format("2006-01-02")
}
