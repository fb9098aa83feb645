package dimer

var complement = func() [256]byte {
	var t [256]byte
	t['A'], t['T'] = 'T', 'A'
	t['C'], t['G'] = 'G', 'C'
	t['a'], t['t'] = 't', 'a'
	t['c'], t['g'] = 'g', 'c'
	return t
}()

// Pairs reports whether x and y form a Watson-Crick pair.
func Pairs(x, y byte) bool {
	c := complement[x]
	return c != 0 && c == y
}

// MaxRun returns the longest run of consecutive complementary pairs between
// a and the reverse of b over all relative shifts. MaxRun(a, b) == MaxRun(b, a).
func MaxRun(a, b string) int {
	n, m := len(a), len(b)
	best := 0
	// Antiparallel alignment pairs a[i] with b[d-i]; each d is one shift.
	for d := 0; d <= n+m-2; d++ {
		lo := d - (m - 1)
		if lo < 0 {
			lo = 0
		}
		hi := d
		if hi > n-1 {
			hi = n - 1
		}
		run := 0
		for i := lo; i <= hi; i++ {
			if Pairs(a[i], b[d-i]) {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
	}
	return best
}

// SelfRun returns MaxRun(seq, seq).
func SelfRun(seq string) int {
	return MaxRun(seq, seq)
}

// ReverseComplement returns the reverse complement of seq. Bases outside
// A, C, G, T are replaced with N.
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c := complement[seq[len(seq)-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}
