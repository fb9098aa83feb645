package swga

import (
	"fmt"
	"path/filepath"

	"github.com/bft-labs/swga/internal/adapters/exec"
	"github.com/bft-labs/swga/internal/app"
	"github.com/bft-labs/swga/internal/domain"
)

// Strand selects which strand of a genome is searched.
type Strand = domain.Strand

const (
	StrandForward = domain.StrandForward
	StrandReverse = domain.StrandReverse
)

// Statistic selects how background spacing is summarized into a score.
type Statistic = app.Statistic

const (
	StatisticMin  = app.StatisticMin
	StatisticMean = app.StatisticMean
)

// Config holds the pipeline configuration.
type Config struct {
	// FgGenome and BgGenome are FASTA files, optionally gzip compressed.
	FgGenome string
	BgGenome string

	// WorkDir holds counter output, graph files and the artifact manifest.
	WorkDir string

	// Database is the primer database path. Default: WorkDir/primers.db
	Database string

	// PrimerList, when set, replaces counting and candidate selection.
	PrimerList string

	// Counter is the k-mer counter executable; CounterArgs its argument
	// template with {genome}, {k}, {out} and {threshold} placeholders.
	Counter     string
	CounterArgs []string

	KmerMin   int
	KmerMax   int
	MinFgBind int

	// MaxBgBind caps candidate background hits. Negative disables.
	MaxBgBind int64

	// NumPrimers caps the candidates passed to the graph. 0 keeps all.
	NumPrimers int

	// ImportBatchSize is the number of primers persisted per transaction.
	ImportBatchSize int

	Strands []Strand

	// MaxHetdimerBind is the longest complementary run two primers may share.
	MaxHetdimerBind int

	// SetFinder is the enumerator executable; SetFinderArgs its argument
	// template with {graph}, {nodes}, {min} and {max} placeholders.
	SetFinder     string
	SetFinderArgs []string
	MinSize       int
	MaxSize       int

	MinBgBindDist int64

	// BgGenomeLen overrides the measured background length. 0 measures.
	BgGenomeLen int64

	Statistic Statistic

	// MaxSets caps the ranked output and bounds the sets held in memory
	// while ranking. 0 uses the default; negative is invalid.
	MaxSets int

	// StderrLimit caps the bytes of external tool stderr kept for error
	// reports; the tail is kept. 0 uses 64 KiB, negative keeps everything.
	StderrLimit int
}

// DefaultConfig returns a Config with sensible default values.
// FgGenome and BgGenome must still be set.
func DefaultConfig() Config {
	return Config{
		WorkDir:         ".swga",
		Counter:         "dsk",
		CounterArgs:     app.DefaultCounterArgs,
		KmerMin:         5,
		KmerMax:         12,
		MinFgBind:       2,
		MaxBgBind:       -1,
		NumPrimers:      200,
		ImportBatchSize: app.DefaultImportBatchSize,
		Strands:         []Strand{StrandForward},
		MaxHetdimerBind: 3,
		SetFinder:       "set_finder",
		SetFinderArgs:   app.DefaultEnumeratorArgs,
		MinSize:         2,
		MaxSize:         7,
		Statistic:       StatisticMin,
		MaxSets:         10,
	}
}

// SetDefaults fills zero-valued fields that have a safe default.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.WorkDir == "" {
		c.WorkDir = d.WorkDir
	}
	if c.Database == "" {
		c.Database = filepath.Join(c.WorkDir, "primers.db")
	}
	if c.Counter == "" {
		c.Counter = d.Counter
	}
	if len(c.CounterArgs) == 0 {
		c.CounterArgs = d.CounterArgs
	}
	if c.ImportBatchSize <= 0 {
		c.ImportBatchSize = d.ImportBatchSize
	}
	if len(c.Strands) == 0 {
		c.Strands = d.Strands
	}
	if c.SetFinder == "" {
		c.SetFinder = d.SetFinder
	}
	if len(c.SetFinderArgs) == 0 {
		c.SetFinderArgs = d.SetFinderArgs
	}
	if c.Statistic == "" {
		c.Statistic = d.Statistic
	}
	if c.MaxSets == 0 {
		c.MaxSets = d.MaxSets
	}
	if c.StderrLimit == 0 {
		c.StderrLimit = exec.DefaultStderrLimit
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	switch {
	case c.FgGenome == "" || c.BgGenome == "":
		return configError("foreground and background genomes are required")
	case c.KmerMin <= 0 || c.KmerMax < c.KmerMin:
		return configError("k-mer range %d..%d", c.KmerMin, c.KmerMax)
	case c.MinFgBind <= 0:
		return configError("min fg bind must be positive")
	case c.NumPrimers < 0:
		return configError("num primers must not be negative")
	case c.MaxHetdimerBind < 0:
		return configError("max hetdimer bind must not be negative")
	case c.MinSize <= 0 || c.MaxSize < c.MinSize:
		return configError("set size range %d..%d", c.MinSize, c.MaxSize)
	case c.MinBgBindDist < 0 || c.BgGenomeLen < 0:
		return configError("score distances must not be negative")
	case c.MaxSets <= 0:
		return configError("max sets must be positive")
	}
	if _, err := app.ParseStatistic(string(c.Statistic)); err != nil {
		return err
	}
	return nil
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
