package domain

import (
	"strings"
	"time"
)

// NoCountry marks a posting whose location could not be read.
const NoCountry = "NO COUNTRY"

// JOEWebApply is the link placeholder for postings applied to through the JOE web form.
const JOEWebApply = "JOEWEBAPPLY"

// DateLayout is the calendar format used for every deadline column.
const DateLayout = "2006-01-02"

// RawRecord is one ingested row, kept exactly as read.
type RawRecord struct {
	Row    int
	Header []string
	Values []string
}

// Field returns the cell under column name; ok is false when the column is absent or the cell is blank.
func (r RawRecord) Field(name string) (string, bool) {
	for i, col := range r.Header {
		if col != name {
			continue
		}
		if i >= len(r.Values) {
			return "", false
		}
		v := r.Values[i]
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	}
	return "", false
}

// Value returns the cell under column name or an empty string.
func (r RawRecord) Value(name string) string {
	v, _ := r.Field(name)
	return v
}

// Posting is the source-independent shape every adapter produces.
type Posting struct {
	Source      string
	Row         int
	ID          string
	Title       string
	Institution string
	Department  string
	// Section is the text academic status is read from.
	Section string
	// RankText is the text rank predicates are read from.
	RankText        string
	AdText          string
	Countries       []string
	DisciplineCodes []string
	ExternalURL     string
	DeadlineFields  []string
	Raw             RawRecord
}

// Flags are the classifier outputs for one posting.
type Flags struct {
	Academic           bool
	Postdoc            bool
	Lecturer           bool
	Assistant          bool
	Associate          bool
	FullProfessor      bool
	Visiting           bool
	BadCountry         bool
	ExcludedDiscipline bool
}

// Enrichment is what the optional page fetch adds to a posting.
type Enrichment struct {
	Link         string
	Instructions string
}

// Annotated carries a posting through the pipeline with every derived field attached.
type Annotated struct {
	Posting    Posting
	Flags      Flags
	Deadline   time.Time
	Discard    bool
	Enrichment Enrichment
}

// DeadlineDate renders the inferred deadline as YYYY-MM-DD.
func (a Annotated) DeadlineDate() string {
	return a.Deadline.Format(DateLayout)
}
