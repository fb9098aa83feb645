package kmer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes records in the counter's binary format.
type Writer struct {
	w      *bufio.Writer
	header Header
	packed []byte
}

// NewWriter writes the header for k-mers of length k packed into nbits bits.
// nbits must be a positive multiple of 8 wide enough for k bases.
func NewWriter(dst io.Writer, k int, nbits int32) (*Writer, error) {
	h := Header{KmerBits: nbits, K: int32(k)}
	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("kmer: %w", err)
	}
	w := &Writer{
		w:      bufio.NewWriter(dst),
		header: h,
		packed: make([]byte, nbits/8),
	}
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(h.KmerBits))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(h.K))
	if _, err := w.w.Write(hdr[:]); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(seq string, freq uint32) error {
	if len(seq) != int(w.header.K) {
		return fmt.Errorf("kmer: %q has length %d, want %d", seq, len(seq), w.header.K)
	}
	if err := pack(seq, w.packed); err != nil {
		return err
	}
	if _, err := w.w.Write(w.packed); err != nil {
		return err
	}
	var f [4]byte
	binary.LittleEndian.PutUint32(f[:], freq)
	_, err := w.w.Write(f[:])
	return err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
