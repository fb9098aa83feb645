package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Record is one FASTA entry with its sequence upper-cased.
type Record struct {
	ID  string
	Seq []byte
}

// Parse reads every record from r. Text before the first header is an error;
// an empty header yields a positional ID.
func Parse(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1<<30)

	var (
		out []Record
		cur *Record
		seq bytes.Buffer
	)
	flush := func() {
		if cur != nil {
			cur.Seq = bytes.ToUpper(append([]byte(nil), seq.Bytes()...))
			out = append(out, *cur)
			seq.Reset()
		}
	}

	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		if text[0] == '>' {
			flush()
			id := strings.TrimSpace(string(text[1:]))
			if f := strings.Fields(id); len(f) > 0 {
				id = f[0]
			} else {
				id = fmt.Sprintf("record%d", len(out)+1)
			}
			cur = &Record{ID: id}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("fasta: line %d: sequence data before first header", line)
		}
		seq.Write(text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta: %w", err)
	}
	flush()
	return out, nil
}
