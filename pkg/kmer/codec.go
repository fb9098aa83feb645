package kmer

import (
	"errors"
	"fmt"
)

// Alphabet is the base order used by the counter's 2-bit codes.
const Alphabet = "ACTG"

const headerSize = 8

// MaxK is the longest k-mer a stream may declare.
const MaxK = 1024

// ErrMalformed is matched by every *DecodeError.
var ErrMalformed = errors.New("kmer: malformed k-mer stream")

// DecodeError reports input that is neither a valid record nor a clean end of stream.
type DecodeError struct {
	// Offset is the byte offset at which the bad read started.
	Offset int64
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kmer: decode at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("kmer: decode at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformed.
func (e *DecodeError) Is(target error) bool { return target == ErrMalformed }

// Count is a decoded (sequence, frequency) pair.
type Count struct {
	Seq  string
	Freq uint32
}

// Header describes the fixed-width layout of the records that follow it.
type Header struct {
	KmerBits int32
	K        int32
}

// RecordSize returns the number of bytes in one record.
func (h Header) RecordSize() int {
	return int(h.KmerBits/8) + 4
}

func (h Header) validate() error {
	if h.KmerBits <= 0 || h.KmerBits%8 != 0 {
		return fmt.Errorf("kmer_nbits %d is not a positive multiple of 8", h.KmerBits)
	}
	if h.K <= 0 {
		return fmt.Errorf("k %d is not positive", h.K)
	}
	if h.K > MaxK {
		return fmt.Errorf("k %d exceeds %d", h.K, MaxK)
	}
	if int(h.K) > int(h.KmerBits/8)*4 {
		return fmt.Errorf("k %d does not fit in %d bits", h.K, h.KmerBits)
	}
	if limit := MaxBitsFor(int(h.K)); h.KmerBits > limit {
		return fmt.Errorf("kmer_nbits %d exceeds %d for k %d", h.KmerBits, limit, h.K)
	}
	return nil
}

// MaxBitsFor returns the widest record accepted for k bases: the minimal
// width rounded up to whole 64-bit words, plus one word of slack.
func MaxBitsFor(k int) int32 {
	words := (BitsFor(k) + 63) / 64
	return (words + 1) * 64
}

// BitsFor returns the smallest byte-aligned bit width able to hold k bases.
func BitsFor(k int) int32 {
	bytes := (k + 3) / 4
	return int32(bytes * 8)
}

var baseCode = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// unpack decodes k bases from packed, prepending each one.
func unpack(packed []byte, k int) string {
	out := make([]byte, k)
	for i := 0; i < k; i++ {
		code := (packed[i/4] >> (2 * (i % 4))) & 0b11
		out[k-1-i] = Alphabet[code]
	}
	return string(out)
}

// pack is the inverse of unpack. It zeroes packed first.
func pack(seq string, packed []byte) error {
	for i := range packed {
		packed[i] = 0
	}
	k := len(seq)
	for i := 0; i < k; i++ {
		code := baseCode[seq[k-1-i]]
		if code < 0 {
			return fmt.Errorf("kmer: invalid base %q in %q", seq[k-1-i], seq)
		}
		packed[i/4] |= byte(code) << (2 * (i % 4))
	}
	return nil
}
