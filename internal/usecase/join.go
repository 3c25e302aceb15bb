package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"PostingsCleaner/internal/ports"
	"PostingsCleaner/internal/table"
)

// ErrSchemaMismatch reports join inputs whose headers differ.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Joiner concatenates previously produced output files.
type Joiner struct {
	store  ports.TableStore
	logger *slog.Logger
}

// NewJoiner wires the table store.
func NewJoiner(store ports.TableStore, logger *slog.Logger) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{store: store, logger: logger}
}

// Join writes the rows of every input, in argument order, to output. All inputs
// must carry identical headers; nothing is written otherwise.
func (j *Joiner) Join(ctx context.Context, output string, inputs ...string) error {
	if len(inputs) == 0 {
		return errors.New("join: no input files")
	}

	var (
		joined table.Table
		first  string
	)
	for i, path := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		t, err := j.store.Read(path, 0)
		if err != nil {
			return fmt.Errorf("join: %w", err)
		}
		if i == 0 {
			joined = table.New(t.Header...)
			first = path
		} else if !table.SameHeader(joined, t) {
			return fmt.Errorf("%w: %s and %s have different columns", ErrSchemaMismatch, first, path)
		}
		for _, row := range t.Rows {
			joined.Append(slices.Clone(row))
		}
		j.logger.Debug("joined input", "path", path, "rows", len(t.Rows))
	}

	if err := j.store.Write(output, joined); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	j.logger.Info("join finished", "output", output, "inputs", len(inputs), "rows", len(joined.Rows))
	return nil
}
