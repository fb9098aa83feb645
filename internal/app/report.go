package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bft-labs/swga/internal/domain"
)

// WriteSets writes one tab-separated line per set:
// score, size, background sites, comma-joined sequences.
func WriteSets(w io.Writer, sets []domain.ScoredSet) error {
	bw := bufio.NewWriter(w)
	for _, s := range sets {
		_, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\n",
			strconv.FormatFloat(s.Quality.Score, 'f', -1, 64),
			s.Set.Size(),
			s.Quality.Sites,
			strings.Join(s.Set.Seqs(), ","),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
