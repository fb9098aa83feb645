// Package dimer scores unwanted base pairing between primers.
//
// Two primers bind antiparallel, so a primer a is compared against the
// reverse of primer b at every relative shift, and the longest stretch of
// consecutive Watson-Crick pairs (A-T, C-G) is the dimer run. A self-dimer
// run is the same measure of a primer against itself.
//
//	run := dimer.MaxRun("AAAA", "TTTT") // 4
//	self := dimer.SelfRun("ACGT")       // 4, ACGT is its own reverse complement
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package dimer
