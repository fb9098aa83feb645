// Package graph builds and serializes primer compatibility graphs.
//
// Nodes are primer sequences that pass the self-dimer check. An edge joins
// two nodes whose heterodimer run is within the threshold, meaning the two
// primers can be used together.
//
// # File format
//
// The graph file is the DIMACS edge format read by the set enumerator:
//
//	p edge <nodes> <edges>
//	<a> <b>
//	...
//
// Indices are 1-based with a < b and follow the surviving input order.
// Lines starting with "c" are comments. A sidecar file lists one node
// sequence per line so that node i is line i.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package graph
