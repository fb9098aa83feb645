package ports

import "github.com/bft-labs/swga/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a key/value pair attached to a log entry.
type Field = log.Field

// Field constructors re-exported for application code.
var (
	String   = log.String
	Strings  = log.Strings
	Int      = log.Int
	Int64    = log.Int64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
