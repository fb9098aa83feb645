// Package kmer reads and writes the packed binary k-mer count format
// produced by the external k-mer counter.
//
// # Format
//
// All integers are little-endian.
//
//	header:  int32 kmer_nbits   bits used per packed k-mer, multiple of 8
//	         int32 k            k-mer length
//	record:  kmer_nbits/8 bytes packed sequence, 2 bits per base
//	         uint32 frequency
//
// Records repeat until end of stream. Within a byte the lowest two bits hold
// the first base. Codes map through the alphabet A, C, T, G (in that order,
// not the conventional A, C, G, T) and each decoded base is prepended, so
// base 0 of the packed stream is the rightmost character of the sequence.
//
// # Usage
//
//	r, err := kmer.NewReader(f, kmer.WithMinFrequency(100))
//	if err != nil {
//	    return err
//	}
//	for {
//	    c, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use c.Seq, c.Freq
//	}
//
// A Reader is single pass. A truncated final record ends the stream
// cleanly; any other malformed input is reported as a *DecodeError.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package kmer
