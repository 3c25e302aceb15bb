package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/deadline"
	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/ports"
	"PostingsCleaner/internal/project"
	"PostingsCleaner/internal/rules"
	"PostingsCleaner/internal/source"
	"PostingsCleaner/internal/table"
)

// PipelineDeps wires the per-source rules and the optional enricher into the pipeline.
type PipelineDeps struct {
	Profile    source.Profile
	Classifier *classify.Classifier
	Inferencer *deadline.Inferencer
	// Enricher is nil when page fetching is disabled.
	Enricher ports.Enricher
	Pauser   ports.Pauser
	// Tries bounds enrichment attempts per posting; values below 1 mean 1.
	Tries    int
	Progress io.Writer
	Logger   *slog.Logger
}

// Result is one run's views plus bookkeeping.
type Result struct {
	Views     project.Views
	Records   []domain.Annotated
	Issues    int
	Discarded int
	Enriched  int
}

// Pipeline implements the posting-cleaning workflow for one source.
type Pipeline struct {
	profile    source.Profile
	classifier *classify.Classifier
	inferencer *deadline.Inferencer
	enricher   ports.Enricher
	pauser     ports.Pauser
	tries      int
	progress   io.Writer
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tries := deps.Tries
	if tries < 1 {
		tries = 1
	}
	progress := deps.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{
		profile:    deps.Profile,
		classifier: deps.Classifier,
		inferencer: deps.Inferencer,
		enricher:   deps.Enricher,
		pauser:     deps.Pauser,
		tries:      tries,
		progress:   progress,
		logger:     logger,
	}
}

// Run annotates every row, optionally enriches the kept ones, and projects the views.
// Row-level problems are logged and counted; only cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context, raw table.Table) (Result, error) {
	if p.profile.Adapt == nil || p.classifier == nil || p.inferencer == nil {
		return Result{}, fmt.Errorf("pipeline %s: incomplete dependencies", p.profile.Name)
	}

	var res Result
	records := raw.Records()
	res.Records = make([]domain.Annotated, 0, len(records))

	for _, rec := range records {
		posting, err := p.profile.Adapt(rec)
		if err != nil {
			res.Issues++
			p.logger.Warn("row issue", "source", p.profile.Name, "row", rec.Row, "error", err)
		}
		res.Records = append(res.Records, p.annotate(posting))
	}

	if p.enricher != nil {
		n, err := p.enrichAll(ctx, res.Records)
		if err != nil {
			return Result{}, err
		}
		res.Enriched = n
	}

	for _, a := range res.Records {
		if a.Discard {
			res.Discarded++
		}
	}
	res.Views = project.Project(p.profile, raw.Header, res.Records)

	p.logger.Info("pipeline finished",
		"source", p.profile.Name,
		"rows", len(res.Records),
		"discarded", res.Discarded,
		"issues", res.Issues,
		"enriched", res.Enriched,
	)
	return res, nil
}

func (p *Pipeline) annotate(posting domain.Posting) domain.Annotated {
	flags := p.classifier.Classify(posting)
	return domain.Annotated{
		Posting:  posting,
		Flags:    flags,
		Deadline: p.inferencer.Infer(posting.AdText, posting.DeadlineFields...),
		Discard:  rules.Decide(p.profile.Precedence, flags),
	}
}

// enrichAll fills the enrichment of every kept record. A failed login disables
// enrichment for the run without failing it.
func (p *Pipeline) enrichAll(ctx context.Context, records []domain.Annotated) (int, error) {
	if err := p.enricher.Prepare(ctx); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		p.logger.Error("enrichment disabled", "enricher", p.enricher.Name(), "error", err)
		return 0, nil
	}

	var pending []int
	for i, a := range records {
		if !a.Discard && a.Posting.ExternalURL != "" {
			pending = append(pending, i)
		}
	}

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetDescription("fetching "+p.enricher.Name()+" pages"),
		progressbar.OptionShowCount(),
	)

	enriched := 0
	for _, i := range pending {
		e, ok, err := p.enrichOne(ctx, records[i].Posting)
		if err != nil {
			return enriched, err
		}
		if ok {
			records[i].Enrichment = e
			enriched++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return enriched, nil
}

// enrichOne tries up to p.tries times, pausing after every attempt.
func (p *Pipeline) enrichOne(ctx context.Context, posting domain.Posting) (domain.Enrichment, bool, error) {
	for attempt := 1; attempt <= p.tries; attempt++ {
		e, err := p.enricher.Enrich(ctx, posting)
		if err != nil {
			p.logger.Warn("enrichment failed",
				"url", posting.ExternalURL,
				"attempt", attempt,
				"error", err,
			)
		}
		if pErr := p.pause(ctx); pErr != nil {
			return domain.Enrichment{}, false, pErr
		}
		if err == nil {
			return e, true, nil
		}
	}
	return domain.Enrichment{}, false, nil
}

func (p *Pipeline) pause(ctx context.Context) error {
	if p.pauser == nil {
		return ctx.Err()
	}
	return p.pauser.Pause(ctx)
}
