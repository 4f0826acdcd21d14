package mem

import "sync/atomic"

// Verbosity levels for diagnostic output, mirroring mem_verbose: 1 logs
// only errors, 4 dumps intermediate chains and scores. A process-wide
// atomic replaces the source's bare global so concurrent workers can read
// it without a race.
const (
	VerboseError = 1
	VerboseWarn  = 2
	VerboseInfo  = 3
	VerboseDebug = 4
)

var verbosity int32 = VerboseError

// SetVerbosity sets the process-wide diagnostic level read by the batch
// driver's workers.
func SetVerbosity(level int) {
	atomic.StoreInt32(&verbosity, int32(level))
}

// Verbosity returns the current process-wide diagnostic level.
func Verbosity() int {
	return int(atomic.LoadInt32(&verbosity))
}
