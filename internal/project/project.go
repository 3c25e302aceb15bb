package project

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/source"
	"PostingsCleaner/internal/table"
)

// Reporting schema.
const (
	ColSubmissionType = "Submission Type"
	ColDeadline       = "Letter Submission Deadline Date"
	ColStatus         = "Application Status"
	ColInstitution    = "Institution or Organization Name"
	ColDepartment     = "Department Name"
	ColJobID          = "Job ID #"
	ColJobTitle       = "Job Title"
	ColInstructions   = "Additional Instructions"
	ColAdLink         = "Ad Webpage Link"
	ColAcademic       = "ACADEMIC"
	ColDiscard        = "DISCARD"
)

// OutputColumns is the accepted view's header.
var OutputColumns = []string{
	ColSubmissionType, ColDeadline, ColStatus, ColInstitution, ColDepartment,
	ColJobID, ColJobTitle, ColInstructions, ColAdLink,
}

// Labels for the submission type column.
const (
	SubmissionAEA        = "AEA's JOE Submission"
	SubmissionInterfolio = "Interfolio Submission"
	SubmissionEJM        = "EconJobMarket Submission"
	SubmissionDirect     = "Direct email to be sent by Admin"
)

// Views are the four exports of one run.
type Views struct {
	Accepted  table.Table
	Discarded table.Table
	Academic  table.Table
	Verbose   table.Table
}

// Project partitions annotated records into the four views. header is the input's
// raw header, so views of an empty input keep the raw columns. Accepted, academic
// and verbose rows are sorted by deadline then department; discarded rows keep
// input order.
func Project(p source.Profile, header []string, records []domain.Annotated) Views {
	kept := make([]domain.Annotated, 0, len(records))
	for _, a := range records {
		if !a.Discard {
			kept = append(kept, a)
		}
	}
	slices.SortStableFunc(kept, func(a, b domain.Annotated) int {
		return compareRows(a.DeadlineDate(), a.Posting.Department, b.DeadlineDate(), b.Posting.Department)
	})

	views := Views{
		Accepted:  table.New(OutputColumns...),
		Academic:  table.New(OutputColumns...),
		Discarded: table.New(append(slices.Clone(header), ColAcademic)...),
	}

	for _, a := range kept {
		row := outputRow(a)
		views.Accepted.Append(row)
		if a.Flags.Academic {
			views.Academic.Append(row)
		}
	}

	for _, a := range records {
		if a.Discard {
			views.Discarded.Append(append(slices.Clone(a.Posting.Raw.Values), formatBool(a.Flags.Academic)))
		}
	}

	views.Verbose = verbose(p, header, kept)
	return views
}

func outputRow(a domain.Annotated) []string {
	return []string{
		SubmissionType(a.Enrichment.Link),
		a.DeadlineDate(),
		"",
		a.Posting.Institution,
		a.Posting.Department,
		a.Posting.ID,
		a.Posting.Title,
		a.Enrichment.Instructions,
		a.Posting.ExternalURL,
	}
}

func verbose(p source.Profile, header []string, kept []domain.Annotated) table.Table {
	raw := table.Table{Header: slices.Clone(header)}
	for _, a := range kept {
		raw.Append(a.Posting.Raw.Values)
	}
	raw = raw.Without(p.HiddenColumns...)

	label := p.CodesLabel
	if label == "" {
		label = strings.ToUpper(p.Name)
	}
	derived := []string{
		ColAcademic, "COUNTRIES", label + "_Codes", "BAD COUNTRY", "BAD " + label + " CODES",
		"POSTDOC", "LECTURER", "ASSISTANT PROF", "ASSOCIATE PROF", "FULL PROF", "VISITING",
		ColDiscard, "EARLIEST DATE", "AD WEBPAGE LINK", "APPLICATION INSTRUCTIONS",
		"APPLICATION LINK", "SUBMISSION TYPE",
	}

	out := table.New(append(slices.Clone(raw.Header), derived...)...)
	for i, a := range kept {
		f := a.Flags
		row := append(slices.Clone(raw.Rows[i]),
			formatBool(f.Academic),
			strings.Join(a.Posting.Countries, "; "),
			strings.Join(a.Posting.DisciplineCodes, "; "),
			formatBool(f.BadCountry),
			formatBool(f.ExcludedDiscipline),
			formatBool(f.Postdoc),
			formatBool(f.Lecturer),
			formatBool(f.Assistant),
			formatBool(f.Associate),
			formatBool(f.FullProfessor),
			formatBool(f.Visiting),
			formatBool(a.Discard),
			a.DeadlineDate(),
			a.Posting.ExternalURL,
			a.Enrichment.Instructions,
			a.Enrichment.Link,
			SubmissionType(a.Enrichment.Link),
		)
		out.Append(row)
	}
	return out
}

// Passthrough builds views for an already curated sheet. Nothing is discarded; the
// sheet must carry the deadline, department and ACADEMIC columns.
func Passthrough(raw table.Table) (Views, error) {
	for _, col := range []string{ColDeadline, ColDepartment, ColAcademic} {
		if raw.Index(col) < 0 {
			return Views{}, fmt.Errorf("passthrough: missing column %q", col)
		}
	}

	order := make([]int, len(raw.Rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareRows(
			raw.Cell(a, ColDeadline), raw.Cell(a, ColDepartment),
			raw.Cell(b, ColDeadline), raw.Cell(b, ColDepartment),
		)
	})
	sorted := table.Table{Header: raw.Header}
	for _, i := range order {
		sorted.Append(raw.Rows[i])
	}

	accepted := sorted.Without(ColAcademic)
	academic := table.New(accepted.Header...)
	for i := range sorted.Rows {
		if parseBool(sorted.Cell(i, ColAcademic)) {
			academic.Append(accepted.Rows[i])
		}
	}

	verboseView := table.New(append(slices.Clone(raw.Header), ColDiscard)...)
	for _, row := range sorted.Rows {
		verboseView.Append(append(slices.Clone(row), formatBool(false)))
	}

	return Views{
		Accepted:  accepted,
		Discarded: table.New(raw.Header...),
		Academic:  academic,
		Verbose:   verboseView,
	}, nil
}

// SubmissionType labels how an application is submitted, judged from its link.
func SubmissionType(link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return ""
	case link == domain.JOEWebApply:
		return SubmissionAEA
	}

	host := link
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "interfolio"):
		return SubmissionInterfolio
	case strings.Contains(host, "econjobmarket"):
		return SubmissionEJM
	case strings.Contains(host, "aea"):
		return SubmissionAEA
	default:
		return SubmissionDirect
	}
}

// compareRows orders by deadline, then department with empty departments last.
func compareRows(deadlineA, deptA, deadlineB, deptB string) int {
	if c := strings.Compare(deadlineA, deadlineB); c != 0 {
		return c
	}
	switch {
	case deptA == deptB:
		return 0
	case deptA == "":
		return 1
	case deptB == "":
		return -1
	default:
		return strings.Compare(deptA, deptB)
	}
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
