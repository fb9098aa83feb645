package cliconfig

import "os"

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SWGA_"

// ApplyEnvConfig applies configuration from environment variables (SWGA_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("fg-genome", getenv("FG_GENOME"), &cfg.FgGenome)
	s.setString("bg-genome", getenv("BG_GENOME"), &cfg.BgGenome)
	s.setString("work-dir", getenv("WORK_DIR"), &cfg.WorkDir)
	s.setString("database", getenv("DATABASE"), &cfg.Database)
	s.setString("primer-list", getenv("PRIMER_LIST"), &cfg.PrimerList)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("counter", getenv("COUNTER"), &cfg.Counter)
	s.setString("strands", getenv("STRANDS"), &cfg.Strands)
	s.setString("set-finder", getenv("SET_FINDER"), &cfg.SetFinder)
	s.setString("statistic", getenv("STATISTIC"), &cfg.Statistic)

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"kmer-min", "KMER_MIN", &cfg.KmerMin},
		{"kmer-max", "KMER_MAX", &cfg.KmerMax},
		{"min-fg-bind", "MIN_FG_BIND", &cfg.MinFgBind},
		{"num-primers", "NUM_PRIMERS", &cfg.NumPrimers},
		{"max-hetdimer-bind", "MAX_HETDIMER_BIND", &cfg.MaxHetdimerBind},
		{"min-size", "MIN_SIZE", &cfg.MinSize},
		{"max-size", "MAX_SIZE", &cfg.MaxSize},
		{"max-sets", "MAX_SETS", &cfg.MaxSets},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, getenv(v.env), v.dst); err != nil {
			return err
		}
	}

	if err := s.setInt64FromString("max-bg-bind", getenv("MAX_BG_BIND"), &cfg.MaxBgBind); err != nil {
		return err
	}
	if err := s.setInt64FromString("min-bg-bind-dist", getenv("MIN_BG_BIND_DIST"), &cfg.MinBgBindDist); err != nil {
		return err
	}
	if err := s.setInt64FromString("bg-genome-len", getenv("BG_GENOME_LEN"), &cfg.BgGenomeLen); err != nil {
		return err
	}
	return nil
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}
