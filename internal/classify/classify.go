package classify

import (
	"regexp"

	"PostingsCleaner/internal/domain"
)

var anyField = regexp.MustCompile(`any.field`)

var nonAcademic = Words("nonacademic", "non-academic")

// Vocabulary is the per-source table of rank keywords.
type Vocabulary struct {
	Postdoc       []Term
	Lecturer      []Term
	Assistant     []Term
	Associate     []Term
	FullProfessor []Term
	Visiting      []Term
	OpenRank      []Term
	// OpenRankAssistant extends open-rank postings to the assistant predicate as well.
	OpenRankAssistant bool
}

// Exclusions holds the normalized discipline and country lists for one source.
type Exclusions struct {
	codes     map[string]struct{}
	countries map[string]struct{}
}

// NewExclusions normalizes both lists once so lookups compare canonical forms.
func NewExclusions(codes, countries []string) Exclusions {
	ex := Exclusions{
		codes:     make(map[string]struct{}, len(codes)),
		countries: make(map[string]struct{}, len(countries)),
	}
	for _, c := range codes {
		ex.codes[domain.NormalizeCode(c)] = struct{}{}
	}
	for _, c := range countries {
		ex.countries[domain.NormalizeCountry(c)] = struct{}{}
	}
	return ex
}

// ExcludesCode reports whether code is on the discipline list.
func (e Exclusions) ExcludesCode(code string) bool {
	_, ok := e.codes[domain.NormalizeCode(code)]
	return ok
}

// ExcludesCountry reports whether country is on the country list.
func (e Exclusions) ExcludesCountry(country string) bool {
	_, ok := e.countries[domain.NormalizeCountry(country)]
	return ok
}

// Classifier evaluates every flag for a posting from its own fields and static lists.
type Classifier struct {
	vocab Vocabulary
	ex    Exclusions
}

// New binds a rank vocabulary to the exclusion lists.
func New(vocab Vocabulary, ex Exclusions) *Classifier {
	return &Classifier{vocab: vocab, ex: ex}
}

// Classify computes the flags; it has no side effects.
func (c *Classifier) Classify(p domain.Posting) domain.Flags {
	rank := Normalize(p.RankText)
	openRank := matchAny(c.vocab.OpenRank, rank)

	return domain.Flags{
		Academic:           !matchAny(nonAcademic, Normalize(p.Section)),
		Postdoc:            matchAny(c.vocab.Postdoc, rank),
		Lecturer:           matchAny(c.vocab.Lecturer, rank),
		Assistant:          matchAny(c.vocab.Assistant, rank) || (openRank && c.vocab.OpenRankAssistant),
		Associate:          matchAny(c.vocab.Associate, rank) || openRank,
		FullProfessor:      matchAny(c.vocab.FullProfessor, rank) || openRank,
		Visiting:           matchAny(c.vocab.Visiting, rank),
		BadCountry:         c.badCountry(p.Countries),
		ExcludedDiscipline: c.excludedDiscipline(p),
	}
}

func (c *Classifier) badCountry(countries []string) bool {
	for _, country := range countries {
		if c.ex.ExcludesCountry(country) {
			return true
		}
	}
	return false
}

// excludedDiscipline holds only when every listed code is excluded and the ad
// does not invite applicants from any field.
func (c *Classifier) excludedDiscipline(p domain.Posting) bool {
	if len(p.DisciplineCodes) == 0 {
		return false
	}
	for _, code := range p.DisciplineCodes {
		if !c.ex.ExcludesCode(code) {
			return false
		}
	}
	return !anyField.MatchString(Normalize(p.AdText))
}
