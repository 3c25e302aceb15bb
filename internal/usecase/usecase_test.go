package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/deadline"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/logging"
	"PostingsCleaner/internal/project"
	"PostingsCleaner/internal/source"
	"PostingsCleaner/internal/table"
)

const academic = "US: Full-Time Academic (Permanent, Tenure Track or Tenured)"

func aeaTable() table.Table {
	t := table.New("jp_id", "jp_title", "jp_institution", "jp_department", "jp_full_text",
		"jp_section", "JEL_Classifications", "locations", "Application_deadline", "joe_issue_ID")
	t.Append([]string{"1", "Assistant Professor", "MIT", "Economics", "Applications due November 15.", academic, "C1 - Econometrics", "USA", "", "x"})
	t.Append([]string{"2", "Associate Professor", "Yale", "Economics", "", academic, "Q1 - Agriculture", "USA", "", "x"})
	t.Append([]string{"", "Lecturer", "LSE", "Economics", "", academic, "", "UNITED KINGDOM London", "", "x"})
	t.Append([]string{"4", "Full Professor", "PKU", "Economics", "", "Full-Time Nonacademic", "", "CHINA", "", "x"})
	t.Append([]string{"5", "Postdoc", "Chicago", "Booth", "", academic, "", "USA", "2024-10-15", "x"})
	t.Append([]string{"6", "Economist", "Fed", "", "", "Full-Time Nonacademic", "", "USA", "", "x"})
	return t
}

type fakeEnricher struct {
	mu       sync.Mutex
	calls    map[string]int
	prepErr  error
	prepared bool
}

func (f *fakeEnricher) Name() string { return "fake" }

func (f *fakeEnricher) Prepare(context.Context) error {
	f.prepared = true
	return f.prepErr
}

func (f *fakeEnricher) Enrich(_ context.Context, p domain.Posting) (domain.Enrichment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[p.ID]++
	switch p.ID {
	case "1":
		if f.calls[p.ID] == 1 {
			return domain.Enrichment{}, errors.New("temporary failure")
		}
		return domain.Enrichment{Link: "https://apply.interfolio.com/1"}, nil
	case "5":
		return domain.Enrichment{Link: domain.JOEWebApply}, nil
	default:
		return domain.Enrichment{}, errors.New("page layout changed")
	}
}

type countingPauser struct {
	count int
}

func (c *countingPauser) Pause(ctx context.Context) error {
	c.count++
	return ctx.Err()
}

func newAEAPipeline(t *testing.T, enricher *fakeEnricher, pauser *countingPauser, logs *bytes.Buffer) *Pipeline {
	t.Helper()
	profile := source.AEA("")
	window := deadline.Window{
		Lower: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		Upper: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
	deps := PipelineDeps{
		Profile:    profile,
		Classifier: classify.New(profile.Vocabulary, classify.NewExclusions([]string{"q1"}, []string{"china"})),
		Inferencer: deadline.NewInferencer(window),
		Tries:      2,
		Logger:     logging.NewWithWriter(logs, "debug"),
	}
	if enricher != nil {
		deps.Enricher = enricher
	}
	if pauser != nil {
		deps.Pauser = pauser
	}
	return NewPipeline(deps)
}

func ids(t table.Table) []string {
	out := make([]string, 0, len(t.Rows))
	for i := range t.Rows {
		out = append(out, t.Cell(i, project.ColJobID))
	}
	return out
}

func TestPipelineRun(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	enricher := &fakeEnricher{}
	pauser := &countingPauser{}
	p := newAEAPipeline(t, enricher, pauser, &logs)

	res, err := p.Run(context.Background(), aeaTable())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Issues)
	assert.Equal(t, 3, res.Discarded)
	assert.Equal(t, 2, res.Enriched)
	assert.Equal(t, 5, pauser.count)
	assert.Equal(t, map[string]int{"1": 2, "5": 1, "6": 2}, enricher.calls)

	assert.Equal(t, []string{"5", "1", "6"}, ids(res.Views.Accepted))
	assert.Equal(t, []string{"5", "1"}, ids(res.Views.Academic))
	assert.Equal(t, "2024-10-15", res.Views.Accepted.Cell(0, project.ColDeadline))
	assert.Equal(t, "2024-11-15", res.Views.Accepted.Cell(1, project.ColDeadline))
	assert.Equal(t, "9999-12-31", res.Views.Accepted.Cell(2, project.ColDeadline))
	assert.Equal(t, project.SubmissionAEA, res.Views.Accepted.Cell(0, project.ColSubmissionType))
	assert.Equal(t, project.SubmissionInterfolio, res.Views.Accepted.Cell(1, project.ColSubmissionType))
	assert.Empty(t, res.Views.Accepted.Cell(2, project.ColSubmissionType))

	require.Len(t, res.Views.Discarded.Rows, 3)
	assert.Equal(t, "2", res.Views.Discarded.Cell(0, "jp_id"))
	assert.Equal(t, "", res.Views.Discarded.Cell(1, "jp_id"))
	assert.Equal(t, "4", res.Views.Discarded.Cell(2, "jp_id"))
	assert.Equal(t, "False", res.Views.Discarded.Cell(2, project.ColAcademic))

	assert.Less(t, res.Views.Verbose.Index("joe_issue_ID"), 0)
	assert.Len(t, res.Views.Verbose.Rows, 3)

	out := logs.String()
	assert.Contains(t, out, "row issue")
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "JOE_ID=2024-02_6")
}

func TestPipelineWithoutEnricher(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	p := newAEAPipeline(t, nil, nil, &logs)

	res, err := p.Run(context.Background(), aeaTable())
	require.NoError(t, err)
	assert.Zero(t, res.Enriched)
	assert.Len(t, res.Records, 6)
	for _, a := range res.Records {
		assert.Empty(t, a.Enrichment.Link)
	}
}

func TestPipelinePrepareFailureKeepsRunning(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	enricher := &fakeEnricher{prepErr: errors.New("login rejected")}
	p := newAEAPipeline(t, enricher, &countingPauser{}, &logs)

	res, err := p.Run(context.Background(), aeaTable())
	require.NoError(t, err)
	assert.True(t, enricher.prepared)
	assert.Zero(t, res.Enriched)
	assert.Empty(t, enricher.calls)
	assert.Contains(t, logs.String(), "enrichment disabled")
}

func TestPipelineCancelled(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	p := newAEAPipeline(t, &fakeEnricher{}, &countingPauser{}, &logs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, aeaTable())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineHeaderOnlyInput(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	p := newAEAPipeline(t, nil, nil, &logs)
	full := aeaTable()

	empty, err := p.Run(context.Background(), table.New(full.Header...))
	require.NoError(t, err)
	assert.Empty(t, empty.Records)
	assert.Equal(t, append(slices.Clone(full.Header), project.ColAcademic), empty.Views.Discarded.Header)
	assert.Equal(t, "jp_id", empty.Views.Verbose.Header[0])
	assert.Less(t, empty.Views.Verbose.Index("joe_issue_ID"), 0)

	res, err := p.Run(context.Background(), full)
	require.NoError(t, err)

	store := &memoryStore{tables: map[string]table.Table{
		"aea_discarded.csv":   res.Views.Discarded,
		"empty_discarded.csv": empty.Views.Discarded,
	}}
	j := NewJoiner(store, logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, j.Join(context.Background(), "all_discarded.csv", "aea_discarded.csv", "empty_discarded.csv"))
	assert.Len(t, store.tables["all_discarded.csv"].Rows, 3)
}

func TestPipelineIncompleteDeps(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(PipelineDeps{}).Run(context.Background(), table.New("a"))
	assert.Error(t, err)
}

type memoryStore struct {
	mu     sync.Mutex
	tables map[string]table.Table
}

func (m *memoryStore) Read(path string, _ int) (table.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[path]
	if !ok {
		return table.Table{}, fmt.Errorf("open %s: not found", path)
	}
	return t, nil
}

func (m *memoryStore) Write(path string, t table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[path] = t
	return nil
}

func TestJoinPreservesOrder(t *testing.T) {
	t.Parallel()

	store := &memoryStore{tables: map[string]table.Table{
		"aea.csv":    {Header: []string{"a", "b"}, Rows: [][]string{{"1", "x"}, {"2", "y"}}},
		"ejm.csv":    {Header: []string{"a", "b"}, Rows: [][]string{{"3", "z"}}},
		"manual.csv": {Header: []string{"a", "b"}},
	}}
	j := NewJoiner(store, logging.NewWithWriter(&bytes.Buffer{}, "error"))

	require.NoError(t, j.Join(context.Background(), "joined.csv", "aea.csv", "ejm.csv", "manual.csv"))
	assert.Equal(t, table.Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "x"}, {"2", "y"}, {"3", "z"}},
	}, store.tables["joined.csv"])
}

func TestJoinSchemaMismatch(t *testing.T) {
	t.Parallel()

	store := &memoryStore{tables: map[string]table.Table{
		"aea.csv": {Header: []string{"a", "b"}},
		"ejm.csv": {Header: []string{"b", "a"}},
	}}
	j := NewJoiner(store, nil)

	err := j.Join(context.Background(), "joined.csv", "aea.csv", "ejm.csv")
	require.ErrorIs(t, err, ErrSchemaMismatch)
	assert.True(t, strings.Contains(err.Error(), "aea.csv") && strings.Contains(err.Error(), "ejm.csv"))
	_, written := store.tables["joined.csv"]
	assert.False(t, written)

	assert.Error(t, j.Join(context.Background(), "joined.csv"))
	assert.Error(t, j.Join(context.Background(), "joined.csv", "missing.csv"))
}
