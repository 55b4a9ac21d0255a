package rangedl

import "sync"

// ProgressFunc is invoked by the Writer Loop after each successful range
// write while a session is in StateProcess (spec.md §4.6 `prog_signal`).
type ProgressFunc func(id SessionID, downloaded, total int64)

// StateFunc is invoked on every durable state transition (spec.md §4.6
// `state_signal`). WAIT_CANCEL is latched silently and finalizes as
// CANCELED; WAIT_PAUSE and PAUSED are each emitted (spec.md §4.1's
// `pause` operation and the pause-mid-stream scenario in §8), as are the
// terminal CANCELED, COMPLETE and ERROR.
type StateFunc func(id SessionID, state SessionState)

// signals fans a progress/state event out to every registered
// subscriber, synchronously, in the emitting goroutine. This generalizes
// the teacher's Handlers struct (pkg/warplib/handlers.go), which holds
// exactly one callback per event, to the spec's "multiple observers may
// subscribe" requirement (spec.md §4.6).
type signals struct {
	mu       sync.Mutex
	progress []ProgressFunc
	state    []StateFunc
}

func newSignals() *signals {
	return &signals{}
}

// subscribeProgress registers a progress observer.
func (s *signals) subscribeProgress(fn ProgressFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, fn)
}

// subscribeState registers a state observer.
func (s *signals) subscribeState(fn StateFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = append(s.state, fn)
}

// emitProgress delivers a prog_signal to every subscriber.
func (s *signals) emitProgress(id SessionID, downloaded, total int64) {
	s.mu.Lock()
	subs := make([]ProgressFunc, len(s.progress))
	copy(subs, s.progress)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(id, downloaded, total)
	}
}

// emitState delivers a state_signal to every subscriber.
func (s *signals) emitState(id SessionID, state SessionState) {
	s.mu.Lock()
	subs := make([]StateFunc, len(s.state))
	copy(subs, s.state)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(id, state)
	}
}
