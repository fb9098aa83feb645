// Package swga provides an embeddable selective whole-genome amplification
// primer-set pipeline.
//
// Given a foreground genome to amplify and a background genome to avoid,
// swga counts k-mers in both with an external counter, stores candidate
// primers in a local database, builds a heterodimer compatibility graph,
// asks an external enumerator for compatible primer sets and ranks the sets
// by how evenly they bind the background.
//
// # Basic Usage
//
//	cfg := swga.DefaultConfig()
//	cfg.FgGenome = "/data/target.fasta"
//	cfg.BgGenome = "/data/host.fasta.gz"
//
//	p, err := swga.New(cfg, swga.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	res, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = swga.WriteSets(os.Stdout, res.Sets)
//
// # Stages
//
// [Pipeline.Run] executes every stage. [Pipeline.Count], [Pipeline.Graph]
// and [Pipeline.Sets] run a prefix of the pipeline; intermediate results are
// cached in WorkDir and Database, so re-running a later stage does not redo
// earlier work. Failures are [*StageError] values naming the stage.
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// stage transitions. Events are called synchronously.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package swga
