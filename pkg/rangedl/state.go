package rangedl

// SessionState is the lifecycle state of a single download session, as
// defined in the state machine of spec.md §4.5.
type SessionState int

const (
	// StateProcess is the normal in-flight state: a Range Request is
	// outstanding or about to be issued, and write jobs for this id are
	// accepted by the Writer Loop.
	StateProcess SessionState = iota
	// StateWaitPause is latched by Pause; the Writer Loop transitions the
	// session to StatePaused the next time it dequeues a job for this id.
	// on_http_done still enqueues a range that completes in this state
	// (that job is what the Writer Loop latches on) and still chains the
	// next request.
	StateWaitPause
	// StatePaused is a quiescent state: no Range Request outstanding, the
	// file stays open, offset points at the first unwritten byte.
	StatePaused
	// StateWaitCancel is latched by Cancel when the session isn't already
	// Paused; the Writer Loop finalizes (closes file, erases record) at
	// the next dequeue.
	StateWaitCancel
	// StateCanceled is a terminal, erasing state.
	StateCanceled
	// StateComplete is a terminal, erasing state: every byte of the
	// resource has been written.
	StateComplete
	// StateError is a terminal, erasing state: a write failed, or the
	// Range Request failed or ended before its headers were complete.
	StateError
)

// String implements fmt.Stringer for log lines and test failure messages.
func (s SessionState) String() string {
	switch s {
	case StateProcess:
		return "PROCESS"
	case StateWaitPause:
		return "WAIT_PAUSE"
	case StatePaused:
		return "PAUSED"
	case StateWaitCancel:
		return "WAIT_CANCEL"
	case StateCanceled:
		return "CANCELED"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// terminal reports whether s is one of the three erasing states.
func (s SessionState) terminal() bool {
	return s == StateCanceled || s == StateComplete || s == StateError
}

// resumable reports whether s is a state Resume is allowed to act on.
//
// The source this spec was distilled from guarded Resume with
// `state != WAIT_PAUSE || state != PAUSED`, a condition that is always
// true and therefore never rejects. spec.md §9 Open Question 1 says the
// evident intent was `state ∉ {WAIT_PAUSE, PAUSED}`; that is what this
// implements.
func (s SessionState) resumable() bool {
	return s == StateWaitPause || s == StatePaused
}
