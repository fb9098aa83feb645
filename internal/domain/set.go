package domain

import (
	"sort"
	"strings"
)

// PrimerSet is a clique of the compatibility graph.
type PrimerSet struct {
	Primers []Primer
}

// Size returns the number of primers in the set.
func (s PrimerSet) Size() int {
	return len(s.Primers)
}

// Seqs returns the member sequences in set order.
func (s PrimerSet) Seqs() []string {
	out := make([]string, len(s.Primers))
	for i, p := range s.Primers {
		out[i] = p.Seq
	}
	return out
}

// Key returns the sorted, comma-joined sequences. Two sets with the same
// members have the same key.
func (s PrimerSet) Key() string {
	seqs := s.Seqs()
	sort.Strings(seqs)
	return strings.Join(seqs, ",")
}

// SetQuality holds spacing metrics derived from background binding sites.
type SetQuality struct {
	Sites   int
	MinGap  int64
	MeanGap float64
	Score   float64
}

// ScoredSet is a set that passed the spacing filter.
type ScoredSet struct {
	Set     PrimerSet
	Quality SetQuality
}
