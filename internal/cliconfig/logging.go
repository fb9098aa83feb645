package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/bft-labs/swga/pkg/log"
)

// Logger returns the CLI logger writing to stderr at level. An unparsable
// level falls back to info.
func Logger(level string) *log.ZerologAdapter {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return log.NewZerologAdapter(os.Stderr, lvl)
}
