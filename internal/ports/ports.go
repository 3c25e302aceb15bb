package ports

import (
	"context"

	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/table"
)

// Enricher fetches a posting's external page and extracts application details.
type Enricher interface {
	Name() string
	// Prepare runs once before the first Enrich call (e.g. to log in).
	Prepare(ctx context.Context) error
	Enrich(ctx context.Context, posting domain.Posting) (domain.Enrichment, error)
}

// TableStore reads and writes whole delimited tables.
type TableStore interface {
	Read(path string, skipLines int) (table.Table, error)
	Write(path string, t table.Table) error
}

// Pauser waits between enrichment attempts.
type Pauser interface {
	Pause(ctx context.Context) error
}
