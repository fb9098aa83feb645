package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/swga/internal/app"
	"github.com/bft-labs/swga/internal/domain"
)

// DefaultWorkDir holds counter output, graph files, the artifact manifest
// and the primer database unless overridden.
const DefaultWorkDir = ".swga"

// Config holds CLI configuration for swga.
type Config struct {
	// [workspace]
	FgGenome   string
	BgGenome   string
	WorkDir    string
	Database   string
	PrimerList string
	LogLevel   string

	// [count_kmers]
	Counter   string
	KmerMin   int
	KmerMax   int
	MinFgBind int

	// [filter_primers]
	MaxBgBind  int64
	NumPrimers int

	// [locations]
	Strands string

	// [make_graph]
	MaxHetdimerBind int

	// [find_sets]
	SetFinder string
	MinSize   int
	MaxSize   int

	// [score_sets]
	MinBgBindDist int64
	BgGenomeLen   int64
	Statistic     string
	MaxSets       int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		WorkDir:         DefaultWorkDir,
		LogLevel:        "info",
		Counter:         "dsk",
		KmerMin:         5,
		KmerMax:         12,
		MinFgBind:       2,
		MaxBgBind:       -1,
		NumPrimers:      200,
		Strands:         "forward",
		MaxHetdimerBind: 3,
		SetFinder:       "set_finder",
		MinSize:         2,
		MaxSize:         7,
		Statistic:       string(app.StatisticMin),
		MaxSets:         10,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.FgGenome == "" {
		return invalid("fg-genome is required")
	}
	if c.BgGenome == "" {
		return invalid("bg-genome is required")
	}
	if c.WorkDir == "" {
		c.WorkDir = DefaultWorkDir
	}
	if c.Database == "" {
		c.Database = filepath.Join(c.WorkDir, "primers.db")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("log-level %q: %v", c.LogLevel, err)
	}

	if c.KmerMin <= 0 || c.KmerMax < c.KmerMin {
		return invalid("k-mer range %d..%d", c.KmerMin, c.KmerMax)
	}
	if c.MinFgBind <= 0 {
		return invalid("min-fg-bind must be positive")
	}
	if c.NumPrimers < 0 {
		return invalid("num-primers must not be negative")
	}
	if _, err := domain.ParseStrands(c.Strands); err != nil {
		return err
	}
	if c.MaxHetdimerBind < 0 {
		return invalid("max-hetdimer-bind must not be negative")
	}
	if c.MinSize <= 0 || c.MaxSize < c.MinSize {
		return invalid("set size range %d..%d", c.MinSize, c.MaxSize)
	}
	if c.MinBgBindDist < 0 || c.BgGenomeLen < 0 {
		return invalid("score distances must not be negative")
	}
	if _, err := app.ParseStatistic(c.Statistic); err != nil {
		return err
	}
	if c.MaxSets <= 0 {
		return invalid("max-sets must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value from a pointer if not nil and flag not changed.
// Zero and negative values are meaningful for these settings.
func (s *configSetter) setInt64(flag string, value *int64, dst *int64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}
