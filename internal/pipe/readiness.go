package pipe

// Readiness is the state of one requested stream as reported by a poll.
type Readiness int

const (
	// NoPipe means the stream was not requested or has no pipe.
	NoPipe Readiness = iota
	// Closed means the channel was closed or its end of file was delivered.
	Closed
	// Ready means a read will return data or end of file without blocking.
	Ready
	// Silent means no data is available yet.
	Silent
	// TimedOut means the poll timed out while the stream was silent.
	TimedOut
)

// String implements fmt.Stringer.
func (r Readiness) String() string {
	switch r {
	case NoPipe:
		return "nopipe"
	case Closed:
		return "closed"
	case Ready:
		return "ready"
	case Silent:
		return "silent"
	case TimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}
