package source

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/rules"
)

var (
	// ErrMissingID reports a row without its posting identifier.
	ErrMissingID = errors.New("posting id is missing")
	// ErrUnknownSource reports a profile name absent from the registry.
	ErrUnknownSource = errors.New("unknown source")
)

// Adapter maps one raw row into a posting. It always returns a usable posting; a
// non-nil error describes what had to be degraded.
type Adapter func(raw domain.RawRecord) (domain.Posting, error)

// Profile is everything that differs between export sources.
type Profile struct {
	Name string
	// SkipLines counts raw lines preceding the header.
	SkipLines int
	// HiddenColumns are raw columns left out of the verbose view.
	HiddenColumns []string
	// DisciplineList names the exclusion collection for this source's codes.
	DisciplineList string
	// CodesLabel prefixes the verbose columns describing discipline codes.
	CodesLabel string
	Vocabulary classify.Vocabulary
	Precedence rules.Precedence
	Adapt      Adapter
}

// Registry keeps profiles by name.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) {
	if r.profiles == nil {
		r.profiles = map[string]Profile{}
	}
	r.profiles[p.Name] = p
}

// Resolve returns a profile by name.
func (r *Registry) Resolve(name string) (Profile, error) {
	if p, ok := r.profiles[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrUnknownSource, name)
}

// Names lists registered profiles alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RowError decorates an adapter problem with its source and row.
type RowError struct {
	Source string
	Row    int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Source, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// openRank accepts "open" and "rank" joined by at most one character.
var openRank = []classify.Term{classify.Pattern(`open.?rank`)}

var codeSplitExpr = regexp.MustCompile(`,\s*|;\s*`)

// SplitCodes splits a comma- or semicolon-separated code list and normalizes each code.
func SplitCodes(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	parts := codeSplitExpr.Split(text, -1)
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := domain.NormalizeCode(p); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// countrySet normalizes, deduplicates and sorts countries, substituting the
// NO COUNTRY sentinel for an empty result.
func countrySet(countries []string) []string {
	set := make([]string, 0, len(countries))
	for _, c := range countries {
		c = domain.NormalizeCountry(c)
		if c != "" && !slices.Contains(set, c) {
			set = append(set, c)
		}
	}
	if len(set) == 0 {
		return []string{domain.NoCountry}
	}
	sort.Strings(set)
	return set
}

func lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
