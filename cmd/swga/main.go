package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/swga/internal/cliconfig"
	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/watch"
	"github.com/bft-labs/swga/pkg/log"
	"github.com/bft-labs/swga/pkg/swga"
)

const helpDescription = `
Find sets of short primers that amplify a foreground genome and avoid a
background genome.

Stages:
  count   count k-mers in both genomes and import candidate primers
  graph   select candidates, index their binding sites, build the
          heterodimer compatibility graph
  sets    search the graph for compatible sets and rank them by how evenly
          they bind the background
  run     all of the above
  clean   remove artifacts left by interrupted runs

Every stage caches its output in the work directory; re-running a later
stage reuses earlier work. Settings come from flags, SWGA_* environment
variables and the parameters file, in that order of precedence.
`

var exampleUsage = strings.TrimSpace(`
  swga run --fg-genome target.fasta --bg-genome host.fasta.gz
  swga count --config parameters.toml --kmer-min 6 --kmer-max 10
  swga sets --min-bg-bind-dist 10000 --output sets.tsv
  swga run --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries state shared by the subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	output  string
	watch   bool
	logger  log.Logger
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig(), logger: cliconfig.Logger("info")}

	root := &cobra.Command{
		Use:           "swga",
		Short:         "Select primer sets for selective whole-genome amplification",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.bindFlags(root.PersistentFlags())

	count := &cobra.Command{
		Use:   "count",
		Short: "Count k-mers and import candidate primers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(cmd.Context(), cmd, func(ctx context.Context, p *swga.Pipeline) error {
				res, err := p.Count(ctx)
				if err != nil {
					return err
				}
				c.logger.Info("count finished",
					log.Int("foreground", res.Foreground),
					log.Int("existing", res.Existing),
					log.Int("created", res.Created),
				)
				return nil
			})
		},
	}

	graph := &cobra.Command{
		Use:   "graph",
		Short: "Build the primer compatibility graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(cmd.Context(), cmd, func(ctx context.Context, p *swga.Pipeline) error {
				art, err := p.Graph(ctx)
				if err != nil {
					return err
				}
				c.logger.Info("graph ready",
					log.String("path", art.Path),
					log.String("nodes_path", art.NodesPath),
					log.Int("nodes", len(art.Nodes)),
					log.Int("edges", len(art.Graph.Edges)),
				)
				return nil
			})
		},
	}

	sets := &cobra.Command{
		Use:   "sets",
		Short: "Search and rank compatible primer sets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(cmd.Context(), cmd, func(ctx context.Context, p *swga.Pipeline) error {
				res, err := p.Sets(ctx)
				if err != nil {
					return err
				}
				return c.writeSets(res.Sets)
			})
		},
	}
	sets.Flags().StringVarP(&c.output, "output", "o", "", "write ranked sets to this file (default: stdout)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run every stage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job := func(ctx context.Context) error {
				return c.withPipeline(ctx, cmd, func(ctx context.Context, p *swga.Pipeline) error {
					res, err := p.Run(ctx)
					if err != nil {
						return err
					}
					return c.writeSets(res.Sets)
				})
			}
			if !c.watch {
				return job(cmd.Context())
			}
			path := c.configPath()
			if path == "" {
				return fmt.Errorf("%w: --watch needs a parameters file", domain.ErrInvalidConfig)
			}
			return watch.New(path, watch.DefaultConfig(), c.logger).Run(cmd.Context(), job)
		},
	}
	run.Flags().StringVarP(&c.output, "output", "o", "", "write ranked sets to this file (default: stdout)")
	run.Flags().BoolVar(&c.watch, "watch", false, "re-run whenever the parameters file changes")

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Remove untrusted artifacts from the work directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPipeline(cmd.Context(), cmd, func(ctx context.Context, p *swga.Pipeline) error {
				_, err := p.Prune(ctx)
				return err
			})
		},
	}

	root.AddCommand(count, graph, sets, run, clean)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fields := []log.Field{log.Err(err)}
		if stage, ok := swga.FailedStage(err); ok {
			fields = append(fields, log.String("stage", string(stage)))
		}
		c.logger.Error("swga", fields...)
		os.Exit(1)
	}
}

func (c *cli) bindFlags(fs *pflag.FlagSet) {
	cfg := &c.cfg
	fs.StringVar(&c.cfgPath, "config", "", "path to parameters file (default: ./"+cliconfig.DefaultConfigPath+" when present)")

	fs.StringVar(&cfg.FgGenome, "fg-genome", cfg.FgGenome, "foreground genome FASTA (optionally gzipped)")
	fs.StringVar(&cfg.BgGenome, "bg-genome", cfg.BgGenome, "background genome FASTA (optionally gzipped)")
	fs.StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "directory for counter output, graphs and the artifact manifest")
	fs.StringVar(&cfg.Database, "database", cfg.Database, "primer database (default: <work-dir>/primers.db)")
	fs.StringVar(&cfg.PrimerList, "primer-list", cfg.PrimerList, "use these primers instead of counting k-mers")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	fs.StringVar(&cfg.Counter, "counter", cfg.Counter, "k-mer counter executable")
	fs.IntVar(&cfg.KmerMin, "kmer-min", cfg.KmerMin, "shortest primer length")
	fs.IntVar(&cfg.KmerMax, "kmer-max", cfg.KmerMax, "longest primer length")
	fs.IntVar(&cfg.MinFgBind, "min-fg-bind", cfg.MinFgBind, "minimum foreground binding count")

	fs.Int64Var(&cfg.MaxBgBind, "max-bg-bind", cfg.MaxBgBind, "maximum background binding count (negative disables)")
	fs.IntVar(&cfg.NumPrimers, "num-primers", cfg.NumPrimers, "number of candidates passed to the graph (0 keeps all)")

	fs.StringVar(&cfg.Strands, "strands", cfg.Strands, "forward, reverse or both")

	fs.IntVar(&cfg.MaxHetdimerBind, "max-hetdimer-bind", cfg.MaxHetdimerBind, "longest complementary run allowed between two primers")

	fs.StringVar(&cfg.SetFinder, "set-finder", cfg.SetFinder, "set enumerator executable")
	fs.IntVar(&cfg.MinSize, "min-size", cfg.MinSize, "smallest primer set")
	fs.IntVar(&cfg.MaxSize, "max-size", cfg.MaxSize, "largest primer set")

	fs.Int64Var(&cfg.MinBgBindDist, "min-bg-bind-dist", cfg.MinBgBindDist, "minimum background binding distance")
	fs.Int64Var(&cfg.BgGenomeLen, "bg-genome-len", cfg.BgGenomeLen, "background genome length (0 measures it)")
	fs.StringVar(&cfg.Statistic, "statistic", cfg.Statistic, "spacing statistic: min or mean")
	fs.IntVar(&cfg.MaxSets, "max-sets", cfg.MaxSets, "number of ranked sets to keep; also bounds the sets held in memory while ranking")
}

// configPath returns the parameters file to read, or "" when there is none.
func (c *cli) configPath() string {
	if c.cfgPath != "" {
		return c.cfgPath
	}
	if cliconfig.FileExists(cliconfig.DefaultConfigPath) {
		return cliconfig.DefaultConfigPath
	}
	return ""
}

// loadConfig layers the parameters file and the environment under the
// flags. It starts from a copy so that watch mode re-reads the file cleanly.
func (c *cli) loadConfig(cmd *cobra.Command) (cliconfig.Config, error) {
	cfg := c.cfg

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if path := c.configPath(); path != "" {
		fc, err := cliconfig.LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load parameters: %w", err)
		}
		cliconfig.ApplyFileConfig(&cfg, fc, changed)
	}
	if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// libraryConfig checks paths and converts the CLI config. Executables are
// only required by the stages that start them.
func libraryConfig(cfg cliconfig.Config, cmd string) (swga.Config, error) {
	var err error
	out := swga.DefaultConfig()

	if out.FgGenome, err = cliconfig.ValidatePath(cfg.FgGenome, cliconfig.PathFile); err != nil {
		return out, fmt.Errorf("fg-genome: %w", err)
	}
	if out.BgGenome, err = cliconfig.ValidatePath(cfg.BgGenome, cliconfig.PathFile); err != nil {
		return out, fmt.Errorf("bg-genome: %w", err)
	}
	if out.WorkDir, err = cliconfig.ValidatePath(cfg.WorkDir, cliconfig.PathDir); err != nil {
		return out, fmt.Errorf("work-dir: %w", err)
	}
	if out.PrimerList, err = cliconfig.ValidatePath(cfg.PrimerList, cliconfig.PathOptional); err != nil {
		return out, fmt.Errorf("primer-list: %w", err)
	}

	out.Counter = cfg.Counter
	if out.PrimerList == "" && (cmd == "count" || cmd == "run") {
		if out.Counter, err = cliconfig.ValidatePath(cfg.Counter, cliconfig.PathExecutable); err != nil {
			return out, fmt.Errorf("counter: %w", err)
		}
	}
	out.SetFinder = cfg.SetFinder
	if cmd == "sets" || cmd == "run" {
		if out.SetFinder, err = cliconfig.ValidatePath(cfg.SetFinder, cliconfig.PathExecutable); err != nil {
			return out, fmt.Errorf("set-finder: %w", err)
		}
	}

	strands, err := domain.ParseStrands(cfg.Strands)
	if err != nil {
		return out, err
	}

	out.Database = cfg.Database
	out.KmerMin = cfg.KmerMin
	out.KmerMax = cfg.KmerMax
	out.MinFgBind = cfg.MinFgBind
	out.MaxBgBind = cfg.MaxBgBind
	out.NumPrimers = cfg.NumPrimers
	out.Strands = strands
	out.MaxHetdimerBind = cfg.MaxHetdimerBind
	out.MinSize = cfg.MinSize
	out.MaxSize = cfg.MaxSize
	out.MinBgBindDist = cfg.MinBgBindDist
	out.BgGenomeLen = cfg.BgGenomeLen
	out.Statistic = swga.Statistic(cfg.Statistic)
	out.MaxSets = cfg.MaxSets
	return out, nil
}

// withPipeline loads configuration, opens a pipeline and runs fn.
func (c *cli) withPipeline(ctx context.Context, cmd *cobra.Command, fn func(context.Context, *swga.Pipeline) error) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	c.logger = cliconfig.Logger(cfg.LogLevel)
	c.logger.Debug("configuration", log.Any("config", cfg))

	libCfg, err := libraryConfig(cfg, cmd.Name())
	if err != nil {
		return err
	}
	p, err := swga.New(libCfg, swga.WithLogger(c.logger))
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer p.Close()

	return fn(ctx, p)
}

func (c *cli) writeSets(sets []swga.ScoredSet) error {
	var w io.Writer = os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := swga.WriteSets(w, sets); err != nil {
		return fmt.Errorf("write sets: %w", err)
	}
	c.logger.Info("sets written", log.Int("count", len(sets)), log.String("output", c.output))
	return nil
}
