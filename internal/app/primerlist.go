package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bft-labs/swga/internal/domain"
)

// PrimerListRow is one row of a user-supplied primer list:
// a sequence optionally followed by fg_freq, bg_freq and ratio.
type PrimerListRow struct {
	Seq    string
	FgFreq *int64
	BgFreq *int64
	Ratio  *float64
	Line   int
}

// ParsePrimerList reads whitespace-delimited rows. Blank lines and lines
// starting with '#' are skipped. Only the sequence is used for lookup; the
// optional columns are checked to be numeric.
func ParsePrimerList(r io.Reader) ([]PrimerListRow, error) {
	var rows []PrimerListRow
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := PrimerListRow{Seq: domain.NormalizeSeq(fields[0]), Line: line}
		if err := domain.ValidateSeq(row.Seq); err != nil {
			return nil, fmt.Errorf("primer list line %d: %w", line, err)
		}
		if len(fields) > 4 {
			return nil, fmt.Errorf("primer list line %d: want at most 4 columns, got %d", line, len(fields))
		}
		if len(fields) > 1 {
			v, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("primer list line %d: fg_freq %q: %w", line, fields[1], err)
			}
			row.FgFreq = &v
		}
		if len(fields) > 2 {
			v, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("primer list line %d: bg_freq %q: %w", line, fields[2], err)
			}
			row.BgFreq = &v
		}
		if len(fields) > 3 {
			v, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("primer list line %d: ratio %q: %w", line, fields[3], err)
			}
			row.Ratio = &v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("primer list: %w", err)
	}
	return rows, nil
}
