package kmer

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// Reader decodes k-mer records lazily from an underlying stream.
type Reader struct {
	r       *bufio.Reader
	header  Header
	minFreq uint32
	offset  int64
	packed  []byte
	freq    [4]byte
	done    bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithMinFrequency drops records whose frequency is below min.
func WithMinFrequency(min uint32) Option {
	return func(r *Reader) {
		r.minFreq = min
	}
}

// NewReader reads and validates the header. A missing, short or invalid
// header is a *DecodeError.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{r: bufio.NewReaderSize(src, 64*1024)}
	for _, opt := range opts {
		opt(r)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		return nil, &DecodeError{Offset: 0, Reason: "short header", Err: err}
	}
	r.header = Header{
		KmerBits: int32(binary.LittleEndian.Uint32(hdr[0:4])),
		K:        int32(binary.LittleEndian.Uint32(hdr[4:8])),
	}
	if err := r.header.validate(); err != nil {
		return nil, &DecodeError{Offset: 0, Reason: "invalid header", Err: err}
	}
	r.offset = headerSize
	r.packed = make([]byte, r.header.KmerBits/8)
	return r, nil
}

// Header returns the decoded stream header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next record at or above the minimum frequency.
// It returns io.EOF once the stream is exhausted, including when the final
// record is truncated.
func (r *Reader) Next() (Count, error) {
	for {
		if r.done {
			return Count{}, io.EOF
		}
		start := r.offset

		n, err := io.ReadFull(r.r, r.packed)
		r.offset += int64(n)
		if err != nil {
			return Count{}, r.finish(start, "sequence", err)
		}

		n, err = io.ReadFull(r.r, r.freq[:])
		r.offset += int64(n)
		if err != nil {
			return Count{}, r.finish(start, "frequency", err)
		}

		freq := binary.LittleEndian.Uint32(r.freq[:])
		if freq < r.minFreq {
			continue
		}
		return Count{Seq: unpack(r.packed, int(r.header.K)), Freq: freq}, nil
	}
}

// finish maps a read error to either a clean end or a decode failure.
func (r *Reader) finish(start int64, field string, err error) error {
	r.done = true
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return &DecodeError{Offset: start, Reason: "reading " + field, Err: err}
}

// All drains the reader into a map keyed by sequence.
func (r *Reader) All() (map[string]uint32, error) {
	out := make(map[string]uint32)
	for {
		c, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out[c.Seq] = c.Freq
	}
}
