package swga

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bft-labs/swga/internal/adapters/exec"
	"github.com/bft-labs/swga/internal/adapters/fasta"
	"github.com/bft-labs/swga/internal/adapters/sqlstore"
	"github.com/bft-labs/swga/internal/app"
	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
	"github.com/bft-labs/swga/pkg/state"
)

type (
	// Primer is a candidate primer with its binding counts.
	Primer = domain.Primer
	// PrimerSet is a group of mutually compatible primers.
	PrimerSet = domain.PrimerSet
	// ScoredSet is a primer set with its background spacing quality.
	ScoredSet = domain.ScoredSet
	// Result summarizes a full run.
	Result = app.Result
	// ImportResult counts the k-mers imported by the count stage.
	ImportResult = app.ImportResult
	// GraphArtifact is a compatibility graph on disk and in memory.
	GraphArtifact = app.GraphArtifact
	// PruneResult reports what Prune removed.
	PruneResult = app.PruneResult
	// StageError tags a failure with the stage it happened in.
	StageError = domain.StageError
	// Stage names a pipeline stage.
	Stage = domain.Stage
)

// Errors returned by the pipeline. Match them with errors.Is.
var (
	ErrInvalidConfig         = domain.ErrInvalidConfig
	ErrAlreadyRunning        = domain.ErrAlreadyRunning
	ErrCounter               = domain.ErrCounter
	ErrEnumerator            = domain.ErrEnumerator
	ErrGraphConstraint       = domain.ErrGraphConstraint
	ErrPrimerNotInForeground = domain.ErrPrimerNotInForeground
)

// SetsResult is the outcome of the set search and scoring stages.
type SetsResult struct {
	Graph    *GraphArtifact
	Sets     []ScoredSet
	Seen     int
	Rejected int
}

// Pipeline is an swga pipeline bound to one configuration and database.
// Use New() to create one and Close() to release the database.
type Pipeline struct {
	config   Config
	logger   ports.Logger
	store    *sqlstore.Store
	manifest state.Repository
	pipeline *app.Pipeline

	mu sync.Mutex
}

// New creates a pipeline for cfg. It opens both genomes and the primer
// database; the external tools are not started until a stage runs.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = exec.NewRunner(exec.WithStderrLimit(cfg.StderrLimit))
	}
	logger := o.logger

	var rows []app.PrimerListRow
	if cfg.PrimerList != "" {
		var err error
		if rows, err = readPrimerList(cfg.PrimerList); err != nil {
			return nil, err
		}
	}

	fg, err := fasta.Open(cfg.FgGenome)
	if err != nil {
		return nil, fmt.Errorf("open foreground: %w", err)
	}
	bg, err := fasta.Open(cfg.BgGenome)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	store, err := sqlstore.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	manifest := state.NewFileRepository(cfg.WorkDir)
	c := app.Components{
		Counter: app.NewCounter(app.CounterConfig{
			Executable: cfg.Counter,
			Args:       cfg.CounterArgs,
			Dir:        cfg.WorkDir,
		}, o.runner, manifest, logger),
		Primers:   app.NewPrimerStore(store.Primers(), fg, bg, logger, cfg.ImportBatchSize),
		Indexer:   app.NewLocationIndexer(store.Locations(), logger),
		Locations: store.Locations(),
		Graphs: app.NewGraphBuilder(app.GraphConfig{
			Dir:             cfg.WorkDir,
			MaxHetdimerBind: cfg.MaxHetdimerBind,
		}, manifest, logger),
		Searcher: app.NewSetSearcher(app.SetSearchConfig{
			Executable: cfg.SetFinder,
			Args:       cfg.SetFinderArgs,
			MinSize:    cfg.MinSize,
			MaxSize:    cfg.MaxSize,
		}, o.runner, logger),
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	lifecycle := app.NewLifecycle(logger, emitter)

	pcfg := app.PipelineConfig{
		KmerMin:    cfg.KmerMin,
		KmerMax:    cfg.KmerMax,
		MinFgBind:  cfg.MinFgBind,
		MaxBgBind:  cfg.MaxBgBind,
		NumPrimers: cfg.NumPrimers,
		Strands:    cfg.Strands,
		PrimerList: rows,
		MaxSets:    cfg.MaxSets,
		Score: app.ScoreConfig{
			MinBgBindDist:  cfg.MinBgBindDist,
			Statistic:      cfg.Statistic,
			Strands:        cfg.Strands,
			BgGenomeLength: cfg.BgGenomeLen,
		},
	}

	return &Pipeline{
		config:   cfg,
		logger:   logger,
		store:    store,
		manifest: manifest,
		pipeline: app.NewPipeline(pcfg, fg, bg, c, lifecycle, logger),
	}, nil
}

func readPrimerList(path string) ([]app.PrimerListRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open primer list: %w", err)
	}
	defer f.Close()
	rows, err := app.ParsePrimerList(f)
	if err != nil {
		return nil, fmt.Errorf("primer list %s: %w", path, err)
	}
	return rows, nil
}

// Run executes every stage and returns the ranked sets.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pipeline.Run(ctx)
}

// Count runs the counter for every k in range on both genomes and imports
// the foreground k-mers. It is a no-op when a primer list is configured.
func (p *Pipeline) Count(ctx context.Context) (ImportResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.PrimerList != "" {
		p.logger.Info("primer list configured, nothing to count")
		return ImportResult{}, nil
	}
	res, err := p.pipeline.CountKmers(ctx)
	if err != nil {
		return res, err
	}
	return res, p.finish("count finished")
}

// Graph selects candidates, indexes their locations and builds the
// compatibility graph.
func (p *Pipeline) Graph(ctx context.Context) (*GraphArtifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	art, err := p.graph(ctx)
	if err != nil {
		return nil, err
	}
	return art, p.finish("graph finished")
}

// Sets runs everything after counting: candidate selection, location
// indexing, the graph, set search and scoring.
func (p *Pipeline) Sets(ctx context.Context) (SetsResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	art, err := p.graph(ctx)
	if err != nil {
		return SetsResult{}, err
	}
	sets, seen, rejected, err := p.pipeline.FindSets(ctx, art)
	if err != nil {
		return SetsResult{}, err
	}
	return SetsResult{Graph: art, Sets: sets, Seen: seen, Rejected: rejected}, p.finish("sets finished")
}

func (p *Pipeline) graph(ctx context.Context) (*GraphArtifact, error) {
	if p.pipeline.Lifecycle().Running() {
		return nil, ErrAlreadyRunning
	}
	primers, err := p.pipeline.SelectPrimers(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.pipeline.Locate(ctx, primers); err != nil {
		return nil, err
	}
	return p.pipeline.MakeGraph(ctx, primers)
}

func (p *Pipeline) finish(reason string) error {
	return p.pipeline.Lifecycle().TransitionTo(app.StateDone, reason)
}

// Prune deletes work directory artifacts that a later run would not trust,
// such as output left by an interrupted counter.
func (p *Pipeline) Prune(ctx context.Context) (PruneResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return app.Prune(ctx, p.config.WorkDir, p.manifest, p.logger)
}

// Status returns the current lifecycle state.
func (p *Pipeline) Status() State {
	return convertState(p.pipeline.Lifecycle().State())
}

// Close releases the primer database.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// WriteSets writes ranked sets as tab-separated lines:
// score, size, background sites and comma-joined sequences.
func WriteSets(w io.Writer, sets []ScoredSet) error {
	return app.WriteSets(w, sets)
}

// FailedStage returns the stage named by err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
