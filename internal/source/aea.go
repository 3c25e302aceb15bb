package source

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/rules"
)

// AEA export columns.
const (
	aeaID          = "jp_id"
	aeaTitle       = "jp_title"
	aeaInstitution = "jp_institution"
	aeaDepartment  = "jp_department"
	aeaText        = "jp_full_text"
	aeaSection     = "jp_section"
	aeaJEL         = "JEL_Classifications"
	aeaLocations   = "locations"
	aeaDeadline    = "Application_deadline"
)

// DefaultAEAListingURL is the JOE listing page; %s receives the posting id.
const DefaultAEAListingURL = "https://www.aeaweb.org/joe/listing.php?JOE_ID=2024-02_%s"

var (
	jelLineExpr   = regexp.MustCompile(`^(.*?) - .*`)
	upperLeadExpr = regexp.MustCompile(`^[A-Z\s]*`)
)

// AEAVocabulary reads ranks from the free-form posting title.
var AEAVocabulary = classify.Vocabulary{
	Postdoc:  classify.Words("postdoc", "post-doc", "post doc"),
	Lecturer: classify.Words("lecture", "teach"),
	Assistant: []classify.Term{
		{Word: "assistant", NotAfter: []string{"teaching"}},
	},
	Associate: []classify.Term{
		{Word: "associate", NotAfter: []string{"doc", "doctoral", "postdoctoral", "post-doctoral"}},
	},
	FullProfessor: []classify.Term{
		{Word: "full", NotBefore: []string{"time"}},
	},
	Visiting:          classify.Words("visiting"),
	OpenRank:          openRank,
	OpenRankAssistant: true,
}

// AEA describes the AEA JOE export. listingURL is a format string taking the posting id.
func AEA(listingURL string) Profile {
	if listingURL == "" {
		listingURL = DefaultAEAListingURL
	}
	return Profile{
		Name:           "aea",
		HiddenColumns:  []string{"joe_issue_ID", "jp_agency_insertion_num"},
		DisciplineList: "jel_codes",
		CodesLabel:     "JEL",
		Vocabulary:     AEAVocabulary,
		Precedence:     rules.LecturerAlwaysDiscards,
		Adapt: func(raw domain.RawRecord) (domain.Posting, error) {
			return adaptAEA(raw, listingURL)
		},
	}
}

func adaptAEA(raw domain.RawRecord, listingURL string) (domain.Posting, error) {
	var problems []error

	id := strings.TrimSpace(raw.Value(aeaID))
	link := ""
	if id == "" {
		problems = append(problems, ErrMissingID)
	} else {
		link = fmt.Sprintf(listingURL, id)
	}

	codes, malformed := AEACodes(raw.Value(aeaJEL))
	for _, line := range malformed {
		problems = append(problems, fmt.Errorf("unreadable JEL line %q", line))
	}

	p := domain.Posting{
		Source:          "aea",
		Row:             raw.Row,
		ID:              id,
		Title:           raw.Value(aeaTitle),
		Institution:     raw.Value(aeaInstitution),
		Department:      raw.Value(aeaDepartment),
		Section:         raw.Value(aeaSection),
		RankText:        raw.Value(aeaTitle),
		AdText:          raw.Value(aeaText),
		Countries:       AEACountries(raw.Value(aeaLocations)),
		DisciplineCodes: codes,
		ExternalURL:     link,
		DeadlineFields:  []string{raw.Value(aeaDeadline)},
		Raw:             raw,
	}

	if err := errors.Join(problems...); err != nil {
		return p, &RowError{Source: "aea", Row: raw.Row, Err: err}
	}
	return p, nil
}

// AEACodes reads one "CODE - description" entry per line. Lines without the
// separator are returned as malformed and skipped.
func AEACodes(text string) (codes []string, malformed []string) {
	codes = []string{}
	for _, line := range lines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := jelLineExpr.FindStringSubmatch(line)
		if m == nil {
			malformed = append(malformed, line)
			continue
		}
		if c := domain.NormalizeCode(m[1]); c != "" {
			codes = append(codes, c)
		}
	}
	return codes, malformed
}

// AEACountries reads one location per line. A fully upper-case line is a country on
// its own; otherwise the country is the upper-case lead minus the space and capital
// that start the city name ("UNITED KINGDOM London").
func AEACountries(text string) []string {
	var found []string
	for _, line := range lines(text) {
		lead := upperLeadExpr.FindString(line)
		if len(lead) == len(line) {
			found = append(found, line)
			continue
		}
		if len(lead) > 2 {
			found = append(found, lead[:len(lead)-2])
		}
	}
	return countrySet(found)
}
