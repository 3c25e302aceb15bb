package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"PostingsCleaner/internal/classify"
	"PostingsCleaner/internal/config"
	"PostingsCleaner/internal/deadline"
	"PostingsCleaner/internal/infrastructure/csvstore"
	"PostingsCleaner/internal/infrastructure/enrich"
	"PostingsCleaner/internal/logging"
	"PostingsCleaner/internal/ports"
	"PostingsCleaner/internal/project"
	"PostingsCleaner/internal/source"
	"PostingsCleaner/internal/table"
	"PostingsCleaner/internal/usecase"
)

// Targets are the four output directories of a run.
type Targets struct {
	Output    string
	Discarded string
	Academic  string
	Verbose   string
}

func (t Targets) validate() error {
	if t.Output == "" || t.Discarded == "" || t.Academic == "" || t.Verbose == "" {
		return errors.New("all four output directories are required")
	}
	return nil
}

// SourceRun describes one classified-source invocation.
type SourceRun struct {
	Source   string
	Input    string
	Targets  Targets
	GetLinks bool
	Tries    int
}

// Application wires configs to use cases.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	registry   *source.Registry
	store      ports.TableStore
	window     deadline.Window
	exclusions config.Exclusions
	progress   io.Writer
}

// New validates the configuration and loads the exclusion lists once. A missing
// exclusion document is fatal.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	window, err := cfg.Window.Bounds()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	exclusions, err := config.LoadExclusions(cfg.Exclusions.Path)
	if err != nil {
		return nil, err
	}

	registry := source.NewRegistry()
	registry.Register(source.AEA(cfg.Sources.AEA.ListingURL))
	registry.Register(source.EJM())

	baseLogger.Debug("application ready",
		"sources", registry.Names(),
		"window_lower", cfg.Window.Lower,
		"window_upper", cfg.Window.Upper,
		"excluded_countries", len(exclusions.Countries),
	)

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		registry:   registry,
		store:      csvstore.Store{},
		window:     window,
		exclusions: exclusions,
		progress:   os.Stderr,
	}, nil
}

// Sources lists the registered classified sources.
func (a *Application) Sources() []string {
	return a.registry.Names()
}

// RunSource cleans one export and writes its four views.
func (a *Application) RunSource(ctx context.Context, run SourceRun) (usecase.Result, error) {
	if err := run.Targets.validate(); err != nil {
		return usecase.Result{}, err
	}

	profile, err := a.registry.Resolve(run.Source)
	if err != nil {
		return usecase.Result{}, err
	}

	lists, err := a.exclusions.For(profile.DisciplineList)
	if err != nil {
		return usecase.Result{}, err
	}

	raw, err := a.store.Read(run.Input, profile.SkipLines)
	if err != nil {
		return usecase.Result{}, fmt.Errorf("read input: %w", err)
	}

	deps := usecase.PipelineDeps{
		Profile:    profile,
		Classifier: classify.New(profile.Vocabulary, lists),
		Inferencer: deadline.NewInferencer(a.window),
		Tries:      run.Tries,
		Progress:   a.progress,
		Logger:     a.logger.With("component", "pipeline."+profile.Name),
	}
	if run.GetLinks {
		enricher, err := a.enricher(profile.Name)
		if err != nil {
			return usecase.Result{}, err
		}
		deps.Enricher = enricher
		deps.Pauser = enrich.RandomPause{Min: a.cfg.Enrichment.DelayMin, Max: a.cfg.Enrichment.DelayMax}
	}

	res, err := usecase.NewPipeline(deps).Run(ctx, raw)
	if err != nil {
		return usecase.Result{}, err
	}

	name := profile.Name
	err = a.writeViews(res.Views, run.Targets, viewNames{
		accepted:  name + ".csv",
		discarded: name + "_discarded.csv",
		academic:  name + ".csv",
		verbose:   "verbose_" + name + ".csv",
	})
	return res, err
}

// RunManual passes a curated sheet through to the four views, named per person.
func (a *Application) RunManual(_ context.Context, person, input string, targets Targets) error {
	if err := targets.validate(); err != nil {
		return err
	}
	if person == "" || strings.ContainsAny(person, `/\`) {
		return fmt.Errorf("manual: invalid person name %q", person)
	}

	raw, err := a.store.Read(input, 0)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	views, err := project.Passthrough(raw)
	if err != nil {
		return err
	}

	a.logger.Info("manual sheet loaded", "person", person, "rows", len(raw.Rows))
	return a.writeViews(views, targets, viewNames{
		accepted:  "manual_" + person + ".csv",
		discarded: person + "_discarded.csv",
		academic:  "manual_" + person + ".csv",
		verbose:   "verbose_" + person + ".csv",
	})
}

// Join concatenates output files with identical headers.
func (a *Application) Join(ctx context.Context, output string, inputs ...string) error {
	return usecase.NewJoiner(a.store, a.logger.With("component", "join")).Join(ctx, output, inputs...)
}

func (a *Application) enricher(name string) (ports.Enricher, error) {
	client, err := enrich.NewClient(a.cfg.Enrichment.Timeout)
	if err != nil {
		return nil, err
	}

	switch name {
	case "aea":
		return enrich.NewAEAEnricher(client, a.cfg.Enrichment.UserAgent), nil
	case "ejm":
		creds, err := config.LoadCredentials(a.cfg.Credentials.Path)
		if err != nil {
			return nil, err
		}
		return enrich.NewEJMEnricher(client, a.cfg.Sources.EJM.LoginURL, creds.Email, creds.Password, a.cfg.Enrichment.UserAgent), nil
	default:
		return nil, fmt.Errorf("%w: no enricher for %s", source.ErrUnknownSource, name)
	}
}

type viewNames struct {
	accepted  string
	discarded string
	academic  string
	verbose   string
}

func (a *Application) writeViews(v project.Views, t Targets, names viewNames) error {
	outputs := []struct {
		path  string
		table table.Table
	}{
		{path: filepath.Join(t.Output, names.accepted), table: v.Accepted},
		{path: filepath.Join(t.Discarded, names.discarded), table: v.Discarded},
		{path: filepath.Join(t.Academic, names.academic), table: v.Academic},
		{path: filepath.Join(t.Verbose, names.verbose), table: v.Verbose},
	}

	for _, out := range outputs {
		if err := a.store.Write(out.path, out.table); err != nil {
			return fmt.Errorf("write view: %w", err)
		}
		a.logger.Debug("view written", "path", out.path, "rows", len(out.table.Rows))
	}
	return nil
}
