package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is the parameters file looked up in the working directory.
const DefaultConfigPath = "parameters.toml"

// FileConfig mirrors Config, one TOML table per pipeline stage.
type FileConfig struct {
	Workspace struct {
		FgGenome   string `toml:"fg_genome"`
		BgGenome   string `toml:"bg_genome"`
		WorkDir    string `toml:"work_dir"`
		Database   string `toml:"database"`
		PrimerList string `toml:"primer_list"`
		LogLevel   string `toml:"log_level"`
	} `toml:"workspace"`

	CountKmers struct {
		Counter   string `toml:"counter"`
		KmerMin   int    `toml:"kmer_min"`
		KmerMax   int    `toml:"kmer_max"`
		MinFgBind int    `toml:"min_fg_bind"`
	} `toml:"count_kmers"`

	FilterPrimers struct {
		MaxBgBind  *int64 `toml:"max_bg_bind"`
		NumPrimers int    `toml:"num_primers"`
	} `toml:"filter_primers"`

	Locations struct {
		Strands string `toml:"strands"`
	} `toml:"locations"`

	MakeGraph struct {
		MaxHetdimerBind int `toml:"max_hetdimer_bind"`
	} `toml:"make_graph"`

	FindSets struct {
		SetFinder string `toml:"set_finder"`
		MinSize   int    `toml:"min_size"`
		MaxSize   int    `toml:"max_size"`
	} `toml:"find_sets"`

	ScoreSets struct {
		MinBgBindDist *int64 `toml:"min_bg_bind_dist"`
		BgGenomeLen   *int64 `toml:"bg_genome_len"`
		Statistic     string `toml:"statistic"`
		MaxSets       int    `toml:"max_sets"`
	} `toml:"score_sets"`
}

// LoadFileConfig reads and parses a TOML parameters file from the given path.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("fg-genome", fc.Workspace.FgGenome, &cfg.FgGenome)
	s.setString("bg-genome", fc.Workspace.BgGenome, &cfg.BgGenome)
	s.setString("work-dir", fc.Workspace.WorkDir, &cfg.WorkDir)
	s.setString("database", fc.Workspace.Database, &cfg.Database)
	s.setString("primer-list", fc.Workspace.PrimerList, &cfg.PrimerList)
	s.setString("log-level", fc.Workspace.LogLevel, &cfg.LogLevel)

	s.setString("counter", fc.CountKmers.Counter, &cfg.Counter)
	s.setInt("kmer-min", fc.CountKmers.KmerMin, &cfg.KmerMin)
	s.setInt("kmer-max", fc.CountKmers.KmerMax, &cfg.KmerMax)
	s.setInt("min-fg-bind", fc.CountKmers.MinFgBind, &cfg.MinFgBind)

	s.setInt64("max-bg-bind", fc.FilterPrimers.MaxBgBind, &cfg.MaxBgBind)
	s.setInt("num-primers", fc.FilterPrimers.NumPrimers, &cfg.NumPrimers)

	s.setString("strands", fc.Locations.Strands, &cfg.Strands)

	s.setInt("max-hetdimer-bind", fc.MakeGraph.MaxHetdimerBind, &cfg.MaxHetdimerBind)

	s.setString("set-finder", fc.FindSets.SetFinder, &cfg.SetFinder)
	s.setInt("min-size", fc.FindSets.MinSize, &cfg.MinSize)
	s.setInt("max-size", fc.FindSets.MaxSize, &cfg.MaxSize)

	s.setInt64("min-bg-bind-dist", fc.ScoreSets.MinBgBindDist, &cfg.MinBgBindDist)
	s.setInt64("bg-genome-len", fc.ScoreSets.BgGenomeLen, &cfg.BgGenomeLen)
	s.setString("statistic", fc.ScoreSets.Statistic, &cfg.Statistic)
	s.setInt("max-sets", fc.ScoreSets.MaxSets, &cfg.MaxSets)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
