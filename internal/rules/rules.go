package rules

import "PostingsCleaner/internal/domain"

// Precedence selects how lecturer postings are weighed.
type Precedence int

const (
	// LecturerAlwaysDiscards treats a lecturer title like a bad discipline: academic lecturer
	// postings are discarded whatever other ranks they carry.
	LecturerAlwaysDiscards Precedence = iota
	// LecturerIsSenior groups lecturers with associate and full professors, so a junior
	// rank on the same posting keeps it.
	LecturerIsSenior
)

// String names the variant for logs.
func (p Precedence) String() string {
	switch p {
	case LecturerAlwaysDiscards:
		return "lecturer-always-discards"
	case LecturerIsSenior:
		return "lecturer-is-senior"
	default:
		return "unknown"
	}
}

// Decide returns the discard decision. A bad country always discards; every rank and
// discipline condition applies to academic postings only.
func Decide(p Precedence, f domain.Flags) bool {
	if f.BadCountry {
		return true
	}
	if !f.Academic {
		return false
	}

	senior := f.FullProfessor || f.Associate
	junior := f.Assistant || f.Postdoc

	switch p {
	case LecturerIsSenior:
		senior = senior || f.Lecturer
		return f.ExcludedDiscipline || f.Visiting || (senior && !junior)
	default:
		return f.ExcludedDiscipline || f.Visiting || f.Lecturer || (senior && !junior)
	}
}
