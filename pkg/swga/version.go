package swga

import (
	"fmt"

	"github.com/bft-labs/swga/pkg/dimer"
	"github.com/bft-labs/swga/pkg/graph"
	"github.com/bft-labs/swga/pkg/kmer"
	"github.com/bft-labs/swga/pkg/log"
	"github.com/bft-labs/swga/pkg/state"
)

// Version information for the swga module.
const (
	// Version is the current version of the swga module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"kmer":  {kmer.Version, kmer.MinCompatibleVersion},
		"dimer": {dimer.Version, dimer.MinCompatibleVersion},
		"graph": {graph.Version, graph.MinCompatibleVersion},
		"state": {state.Version, state.MinCompatibleVersion},
		"log":   {log.Version, log.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	out := map[string]string{"swga": Version}
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	for name, m := range modules() {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
