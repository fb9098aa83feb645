package kmer

// Version information for the kmer module.
const (
	// Version is the current version of the kmer module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)
