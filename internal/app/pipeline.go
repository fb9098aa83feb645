package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

// backgroundThreshold keeps every background k-mer so that rare background
// hits are not mistaken for absence.
const backgroundThreshold = 1

// PipelineConfig holds the run-level parameters. Component settings live in
// the component configs passed to their constructors.
type PipelineConfig struct {
	KmerMin int
	KmerMax int

	// MinFgBind is the foreground counter threshold and candidate floor.
	MinFgBind int

	// MaxBgBind caps candidate background hits. Negative disables.
	MaxBgBind int64

	// NumPrimers caps the candidates passed to the graph. 0 keeps all.
	NumPrimers int

	// Strands indexed in both genomes.
	Strands []domain.Strand

	// PrimerList replaces counting and candidate selection when non-empty.
	PrimerList []PrimerListRow

	// MaxSets is the number of ranked sets kept.
	MaxSets int

	Score ScoreConfig
}

// Components are the collaborators a pipeline drives.
type Components struct {
	Counter   *Counter
	Primers   *PrimerStore
	Indexer   *LocationIndexer
	Locations ports.LocationRepository
	Graphs    *GraphBuilder
	Searcher  *SetSearcher
}

// Result summarizes a run.
type Result struct {
	RunID      string
	Import     ImportResult
	Candidates int
	Graph      *GraphArtifact
	SetsSeen   int
	Rejected   int
	Sets       []domain.ScoredSet
	Duration   time.Duration
}

// Pipeline runs the stages in order: count, import, locate, graph, search
// and score. Writes finish before scoring reads.
type Pipeline struct {
	cfg       PipelineConfig
	fg        ports.Genome
	bg        ports.Genome
	c         Components
	lifecycle *Lifecycle
	logger    ports.Logger
}

// NewPipeline creates a pipeline over the foreground and background genomes.
func NewPipeline(cfg PipelineConfig, fg, bg ports.Genome, c Components, lifecycle *Lifecycle, logger ports.Logger) *Pipeline {
	if len(cfg.Strands) == 0 {
		cfg.Strands = []domain.Strand{domain.StrandForward}
	}
	return &Pipeline{cfg: cfg, fg: fg, bg: bg, c: c, lifecycle: lifecycle, logger: logger}
}

// Lifecycle returns the run state tracker.
func (p *Pipeline) Lifecycle() *Lifecycle {
	return p.lifecycle
}

// Run executes every stage. Failures are *domain.StageError.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	if p.lifecycle.Running() {
		return Result{}, domain.ErrAlreadyRunning
	}
	res := Result{RunID: uuid.NewString()}
	start := time.Now()
	p.logger.Info("pipeline starting", ports.String("run_id", res.RunID))

	if err := p.logGenomes(ctx); err != nil {
		return res, err
	}

	var err error
	if len(p.cfg.PrimerList) == 0 {
		if res.Import, err = p.CountKmers(ctx); err != nil {
			return res, err
		}
	}

	primers, err := p.SelectPrimers(ctx)
	if err != nil {
		return res, err
	}
	res.Candidates = len(primers)

	if err := p.Locate(ctx, primers); err != nil {
		return res, err
	}

	if res.Graph, err = p.MakeGraph(ctx, primers); err != nil {
		return res, err
	}

	sets, seen, rejected, err := p.FindSets(ctx, res.Graph)
	if err != nil {
		return res, err
	}
	res.Sets, res.SetsSeen, res.Rejected = sets, seen, rejected
	res.Duration = time.Since(start)

	if err := p.lifecycle.TransitionTo(StateDone, "pipeline finished"); err != nil {
		return res, err
	}
	p.logger.Info("pipeline finished",
		ports.String("run_id", res.RunID),
		ports.Int("candidates", res.Candidates),
		ports.Int("sets_seen", res.SetsSeen),
		ports.Int("sets_kept", len(res.Sets)),
		ports.Duration("duration", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) logGenomes(ctx context.Context) error {
	for _, g := range []struct {
		role   string
		genome ports.Genome
	}{{"foreground", p.fg}, {"background", p.bg}} {
		stats, err := g.genome.Stats(ctx)
		if err != nil {
			return domain.InStage(domain.StageCount, err)
		}
		p.logger.Info("genome",
			ports.String("role", g.role),
			ports.String("path", g.genome.Path()),
			ports.Int("records", stats.Records),
			ports.Int64("length", stats.Length),
		)
	}
	return nil
}

// CountKmers counts every k in range for both genomes and imports the
// foreground k-mers into the catalog.
func (p *Pipeline) CountKmers(ctx context.Context) (ImportResult, error) {
	if err := p.lifecycle.TransitionTo(StateCounting, "count k-mers"); err != nil {
		return ImportResult{}, err
	}
	for k := p.cfg.KmerMin; k <= p.cfg.KmerMax; k++ {
		if _, err := p.c.Counter.Count(ctx, p.fg, k, p.cfg.MinFgBind); err != nil {
			return ImportResult{}, p.lifecycle.Fail(err)
		}
		if _, err := p.c.Counter.Count(ctx, p.bg, k, backgroundThreshold); err != nil {
			return ImportResult{}, p.lifecycle.Fail(err)
		}
	}

	if err := p.lifecycle.TransitionTo(StateImporting, "import k-mers"); err != nil {
		return ImportResult{}, err
	}
	var total ImportResult
	for k := p.cfg.KmerMin; k <= p.cfg.KmerMax; k++ {
		fg, err := p.c.Counter.Open(ctx, p.fg, k, p.cfg.MinFgBind)
		if err != nil {
			return total, p.lifecycle.Fail(err)
		}
		bg, err := p.c.Counter.Open(ctx, p.bg, k, backgroundThreshold)
		if err != nil {
			_ = fg.Close()
			return total, p.lifecycle.Fail(err)
		}
		res, err := p.c.Primers.ImportKmers(ctx, fg, bg)
		if err != nil {
			return total, p.lifecycle.Fail(err)
		}
		total.Foreground += res.Foreground
		total.Existing += res.Existing
		total.Created += res.Created
	}
	return total, nil
}

// SelectPrimers returns the graph input: the resolved primer list when one
// is configured, otherwise the best candidates by ratio.
func (p *Pipeline) SelectPrimers(ctx context.Context) ([]domain.Primer, error) {
	if p.lifecycle.State() != StateImporting {
		if err := p.lifecycle.TransitionTo(StateImporting, "select primers"); err != nil {
			return nil, err
		}
	}

	var (
		primers []domain.Primer
		err     error
	)
	if len(p.cfg.PrimerList) > 0 {
		primers, err = p.c.Primers.Resolve(ctx, p.cfg.PrimerList)
	} else {
		primers, err = p.c.Primers.Candidates(ctx, domain.PrimerQuery{
			MinFgFreq: int64(p.cfg.MinFgBind),
			MaxBgFreq: p.cfg.MaxBgBind,
			Limit:     p.cfg.NumPrimers,
		})
	}
	if err != nil {
		return nil, p.lifecycle.Fail(err)
	}
	p.logger.Info("selected primers", ports.Int("count", len(primers)))
	return primers, nil
}

// Locate indexes primers in both genomes on the configured strands.
func (p *Pipeline) Locate(ctx context.Context, primers []domain.Primer) error {
	if err := p.lifecycle.TransitionTo(StateLocating, "locate primers"); err != nil {
		return err
	}
	for _, g := range []ports.Genome{p.fg, p.bg} {
		if err := p.c.Indexer.IndexAll(ctx, primers, g, p.cfg.Strands); err != nil {
			return p.lifecycle.Fail(err)
		}
	}
	return nil
}

// MakeGraph builds or reuses the compatibility graph for primers.
func (p *Pipeline) MakeGraph(ctx context.Context, primers []domain.Primer) (*GraphArtifact, error) {
	if err := p.lifecycle.TransitionTo(StateGraphing, "build graph"); err != nil {
		return nil, err
	}
	art, err := p.c.Graphs.Build(ctx, primers)
	if err != nil {
		return nil, p.lifecycle.Fail(err)
	}
	return art, nil
}

// FindSets runs the enumerator over art and ranks the sets that pass the
// spacing filter. It returns the ranked sets and how many sets were read
// and rejected.
func (p *Pipeline) FindSets(ctx context.Context, art *GraphArtifact) ([]domain.ScoredSet, int, int, error) {
	if err := p.lifecycle.TransitionTo(StateSearching, "search sets"); err != nil {
		return nil, 0, 0, err
	}

	cfg := p.cfg.Score
	if len(cfg.Strands) == 0 {
		cfg.Strands = p.cfg.Strands
	}
	if cfg.BgGenomeLength == 0 {
		stats, err := p.bg.Stats(ctx)
		if err != nil {
			return nil, 0, 0, p.lifecycle.Fail(err)
		}
		cfg.BgGenomeLength = stats.Length
	}
	scorer := NewSetScorer(cfg, p.c.Locations, p.bg.Identity(), p.logger)

	it, err := p.c.Searcher.Search(ctx, art)
	if err != nil {
		return nil, 0, 0, p.lifecycle.Fail(err)
	}
	filter := scorer.Filter(it)
	defer filter.Close()

	if err := p.lifecycle.TransitionTo(StateScoring, "score sets"); err != nil {
		return nil, 0, 0, err
	}
	sets, err := scorer.Rank(ctx, filter, p.cfg.MaxSets)
	if err != nil {
		if errors.Is(err, domain.ErrEnumerator) || errors.Is(err, domain.ErrGraphConstraint) {
			err = domain.InStage(domain.StageSets, err)
		}
		return nil, 0, 0, p.lifecycle.Fail(err)
	}
	seen, rejected := filter.Counts()
	p.logger.Info("scored sets",
		ports.Int("seen", seen),
		ports.Int("rejected", rejected),
		ports.Int("kept", len(sets)),
	)
	return sets, seen, rejected, nil
}
