package source

import (
	"strings"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/rules"
)

// EJM export columns.
const (
	ejmID          = "Id"
	ejmTypes       = "Types"
	ejmInstitution = "Institution"
	ejmDepartment  = "Department"
	ejmURL         = "URL"
	ejmText        = "Ad text (in markdown format)"
	ejmCategories  = "Categories"
	ejmCountry     = "Country"
	ejmCloses      = "Date closes"
	ejmTarget      = "Target date"
	ejmDeadline    = "Deadline"
)

// EJMVocabulary reads ranks from the comma-separated position types.
var EJMVocabulary = classify.Vocabulary{
	Postdoc:       classify.Words("postdoc", "post-doc", "post doc"),
	Lecturer:      classify.Words("lect"),
	Assistant:     classify.Words("assistant"),
	Associate:     classify.Words("associate"),
	FullProfessor: classify.Words("full"),
	Visiting:      classify.Words("visit"),
	OpenRank:      openRank,
}

// EJM describes the EconJobMarket export, whose header sits on the second line.
func EJM() Profile {
	return Profile{
		Name:           "ejm",
		SkipLines:      1,
		DisciplineList: "ejmcats",
		CodesLabel:     "EJMCAT",
		Vocabulary:     EJMVocabulary,
		Precedence:     rules.LecturerIsSenior,
		Adapt:          adaptEJM,
	}
}

func adaptEJM(raw domain.RawRecord) (domain.Posting, error) {
	id := strings.TrimSpace(raw.Value(ejmID))

	p := domain.Posting{
		Source:          "ejm",
		Row:             raw.Row,
		ID:              id,
		Title:           raw.Value(ejmTypes),
		Institution:     raw.Value(ejmInstitution),
		Department:      raw.Value(ejmDepartment),
		Section:         raw.Value(ejmTypes),
		RankText:        raw.Value(ejmTypes),
		AdText:          raw.Value(ejmText),
		Countries:       EJMCountries(raw.Value(ejmCountry)),
		DisciplineCodes: SplitCodes(raw.Value(ejmCategories)),
		ExternalURL:     strings.TrimSpace(raw.Value(ejmURL)),
		DeadlineFields: []string{
			raw.Value(ejmCloses),
			raw.Value(ejmTarget),
			raw.Value(ejmDeadline),
		},
		Raw: raw,
	}

	if id == "" {
		return p, &RowError{Source: "ejm", Row: raw.Row, Err: ErrMissingID}
	}
	return p, nil
}

// EJMCountries wraps the single country cell; a blank cell yields NO COUNTRY.
func EJMCountries(text string) []string {
	return countrySet([]string{text})
}
