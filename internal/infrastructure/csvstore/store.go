package csvstore

import (
	"fmt"
	"os"
	"path/filepath"

	"PostingsCleaner/internal/ports"
	"PostingsCleaner/internal/table"
)

// Store reads and writes tables as CSV files on the local filesystem.
type Store struct{}

var _ ports.TableStore = Store{}

// Read loads the file at path, skipping skipLines lines before the header.
func (Store) Read(path string, skipLines int) (table.Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	t, err := table.Decode(fh, skipLines)
	if err != nil {
		return table.Table{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}

// Write replaces the file at path with t, creating parent directories as needed.
func (Store) Write(path string, t table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}

	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := table.Encode(fh, t); err != nil {
		_ = fh.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
