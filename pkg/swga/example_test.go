package swga_test

import (
	"context"
	"fmt"
	"os"

	"github.com/bft-labs/swga/pkg/swga"
)

// ExampleNew shows a full run writing the ranked sets to stdout.
func ExampleNew() {
	cfg := swga.DefaultConfig()
	cfg.FgGenome = "/data/target.fasta"
	cfg.BgGenome = "/data/host.fasta.gz"
	cfg.MinBgBindDist = 10000

	p, err := swga.New(cfg)
	if err != nil {
		fmt.Printf("failed to create pipeline: %v\n", err)
		return
	}
	defer p.Close()

	res, err := p.Run(context.Background())
	if err != nil {
		if stage, ok := swga.FailedStage(err); ok {
			fmt.Printf("stage %s failed: %v\n", stage, err)
		}
		return
	}
	_ = swga.WriteSets(os.Stdout, res.Sets)
}

type printHandler struct{}

func (printHandler) OnStateChange(e swga.StateChangeEvent) {
	fmt.Printf("%s -> %s\n", e.Previous, e.Current)
}

// Example_withEventHandler shows how to follow stage transitions.
func Example_withEventHandler() {
	cfg := swga.DefaultConfig()
	cfg.FgGenome = "/data/target.fasta"
	cfg.BgGenome = "/data/host.fasta"

	p, err := swga.New(cfg, swga.WithEventHandler(printHandler{}))
	if err != nil {
		return
	}
	defer p.Close()
	_, _ = p.Graph(context.Background())
}
