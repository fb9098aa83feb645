package fasta

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

var _ ports.Genome = (*Genome)(nil)

// Genome is a FASTA file loaded into memory on first use.
type Genome struct {
	path     string
	identity string

	once    sync.Once
	records []Record
	starts  []int64
	length  int64
	loadErr error
}

// Open stats path and computes its identity. Records are read lazily.
func Open(path string) (*Genome, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("fasta: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fasta: %s is a directory", abs)
	}
	return &Genome{path: abs, identity: identity(abs, info)}, nil
}

// identity is the file's base name plus a fingerprint of its absolute path,
// size and modification time.
func identity(abs string, info os.FileInfo) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d", abs, info.Size(), info.ModTime().UnixNano())
	base := filepath.Base(abs)
	for _, ext := range []string{".gz", ".fasta", ".fa", ".fna"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}

func (g *Genome) Identity() string { return g.identity }

func (g *Genome) Path() string { return g.path }

func (g *Genome) load() error {
	g.once.Do(func() {
		rc, err := open(g.path)
		if err != nil {
			g.loadErr = fmt.Errorf("fasta: %w", err)
			return
		}
		defer rc.Close()

		recs, err := Parse(rc)
		if err != nil {
			g.loadErr = err
			return
		}
		g.records = recs
		g.starts = make([]int64, len(recs))
		for i, r := range recs {
			g.starts[i] = g.length
			g.length += int64(len(r.Seq))
		}
	})
	return g.loadErr
}

// Records returns the parsed records.
func (g *Genome) Records() ([]Record, error) {
	if err := g.load(); err != nil {
		return nil, err
	}
	return g.records, nil
}

// Stats returns the record count and total length.
func (g *Genome) Stats(ctx context.Context) (domain.GenomeStats, error) {
	if err := g.load(); err != nil {
		return domain.GenomeStats{}, err
	}
	return domain.GenomeStats{Records: len(g.records), Length: g.length}, nil
}

// Count returns the number of overlapping occurrences of seq.
func (g *Genome) Count(ctx context.Context, seq string) (int64, error) {
	var n int64
	err := g.scan(ctx, seq, func(int, int) { n++ })
	return n, err
}

// FindAll returns every overlapping occurrence of seq.
func (g *Genome) FindAll(ctx context.Context, seq string) ([]ports.Match, error) {
	var out []ports.Match
	err := g.scan(ctx, seq, func(rec, off int) {
		out = append(out, ports.Match{
			RecordID: g.records[rec].ID,
			Offset:   int64(off),
			Position: g.starts[rec] + int64(off),
		})
	})
	return out, err
}

func (g *Genome) scan(ctx context.Context, seq string, hit func(rec, off int)) error {
	if err := g.load(); err != nil {
		return err
	}
	if seq == "" {
		return nil
	}
	needle := []byte(strings.ToUpper(seq))
	for ri, r := range g.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		hay := r.Seq
		base := 0
		for {
			i := bytes.Index(hay[base:], needle)
			if i < 0 {
				break
			}
			hit(ri, base+i)
			base += i + 1
		}
	}
	return nil
}
