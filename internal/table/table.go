package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"PostingsCleaner/internal/domain"
)

// Table is a header plus rows of cells, held entirely in memory.
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds an empty table with the given header.
func New(header ...string) Table {
	return Table{Header: slices.Clone(header)}
}

// Index returns the position of column name or -1.
func (t Table) Index(name string) int {
	return slices.Index(t.Header, name)
}

// Cell returns row[col] or an empty string when either is out of range.
func (t Table) Cell(row int, name string) string {
	i := t.Index(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Append adds one row, padding or truncating it to the header width.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, fit(row, len(t.Header)))
}

// Records exposes every row as a RawRecord numbered from 1.
func (t Table) Records() []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		records = append(records, domain.RawRecord{
			Row:    i + 1,
			Header: t.Header,
			Values: row,
		})
	}
	return records
}

// Without returns a copy of t with the named columns removed.
func (t Table) Without(names ...string) Table {
	keep := make([]int, 0, len(t.Header))
	for i, col := range t.Header {
		if !slices.Contains(names, col) {
			keep = append(keep, i)
		}
	}
	out := Table{Header: make([]string, 0, len(keep))}
	for _, i := range keep {
		out.Header = append(out.Header, t.Header[i])
	}
	for _, row := range t.Rows {
		next := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				next = append(next, row[i])
			} else {
				next = append(next, "")
			}
		}
		out.Rows = append(out.Rows, next)
	}
	return out
}

// SameHeader reports whether both tables carry identical columns in the same order.
func SameHeader(a, b Table) bool {
	return slices.Equal(a.Header, b.Header)
}

// Decode reads a comma-delimited table with a header row after skipping skipLines raw lines.
// Invalid UTF-8 is replaced rather than rejected and short rows are padded.
func Decode(r io.Reader, skipLines int) (Table, error) {
	br := bufio.NewReader(r)
	for i := 0; i < skipLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return Table{}, fmt.Errorf("skip line %d: unexpected end of input", i+1)
			}
			return Table{}, fmt.Errorf("skip line %d: %w", i+1, err)
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("read header: empty input")
		}
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	t := New(sanitize(header)...)
	if len(t.Header) > 0 {
		t.Header[0] = strings.TrimPrefix(t.Header[0], "\ufeff")
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Append(sanitize(row))
	}
	return t, nil
}

// Encode writes t as comma-delimited UTF-8 with a header row.
func Encode(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(fit(row, len(t.Header))); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

func sanitize(fields []string) []string {
	for i, f := range fields {
		fields[i] = strings.ToValidUTF8(f, "\uFFFD")
	}
	return fields
}

func fit(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
