package rangedl

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ChrisTsai0715/http-downloader/pkg/logger"
	"go.uber.org/atomic"
)

// defaultChunkSize is down_size when EngineOpts.ChunkSize is zero: the
// number of bytes requested per Range Request.
const defaultChunkSize = 1 << 20 // 1 MiB

// EngineOpts configures an Engine. Every field is optional; zero values
// fall back to a sensible default, matching warpdl-warpdl's
// NewDownloader(opts *DownloaderOpts) convention of a mostly-optional
// options struct.
type EngineOpts struct {
	// ChunkSize is down_size: bytes requested per Range Request. Defaults
	// to 1 MiB.
	ChunkSize int64
	// Allocator supplies buffers for in-flight range payloads. Defaults
	// to NewRecyclableAllocator().
	Allocator BufferAllocator
	// Transport issues the actual HTTP range requests. Defaults to
	// NewHTTPTransport(nil, nil).
	Transport Transport
	// Headers are applied to every outgoing request (e.g. Authorization),
	// in addition to the engine's own Range header.
	Headers Headers
	// Log receives operational messages. Defaults to logger.NewNopLogger().
	Log logger.Logger
}

func (o EngineOpts) chunkSize() int64 {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return defaultChunkSize
}

// Engine is the spec's downloader: the session table, write queue,
// writer loop and Range Request dispatch bound together behind the four
// operations spec.md §4.1 names (download, pause, resume, cancel).
// Grounded on warpdl-warpdl/pkg/warplib/dloader.go's Downloader, which
// plays the same role (one struct owning the worker goroutine(s), the
// items map, and the public lifecycle methods) for the teacher's
// multi-connection model.
type Engine struct {
	opts      EngineOpts
	st        *sessionTable
	wq        *writeQueue
	sig       *signals
	transport Transport
	alloc     BufferAllocator
	log       logger.Logger

	startOnce sync.Once
	wl        *writerLoop

	closed atomic.Bool
}

// NewEngine constructs an Engine. The Writer Loop goroutine is not
// started until the first call to Download.
func NewEngine(opts EngineOpts) *Engine {
	alloc := opts.Allocator
	if alloc == nil {
		alloc = NewRecyclableAllocator()
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil, nil)
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNopLogger()
	}
	opts.Allocator = alloc
	opts.Transport = transport
	opts.Log = log

	return &Engine{
		opts:      opts,
		st:        newSessionTable(),
		wq:        newWriteQueue(),
		sig:       newSignals(),
		transport: transport,
		alloc:     alloc,
		log:       log,
	}
}

// SubscribeProgress registers a prog_signal observer.
func (e *Engine) SubscribeProgress(fn ProgressFunc) { e.sig.subscribeProgress(fn) }

// SubscribeState registers a state_signal observer.
func (e *Engine) SubscribeState(fn StateFunc) { e.sig.subscribeState(fn) }

// Download is the spec's `download` operation. isCont selects
// append-write-preserving-existing-bytes (resume) over
// truncating-write-fresh.
func (e *Engine) Download(ctx context.Context, url, fileName string, isCont bool, id SessionID) (bool, error) {
	if e.closed.Load() {
		return false, ErrEngineClosed
	}
	e.ensureWriterLoop()

	var (
		f     *os.File
		begin int64
		err   error
	)
	if isCont {
		f, err = os.OpenFile(fileName, os.O_RDWR, 0o644)
		if err != nil {
			return false, fmt.Errorf("rangedl: open for resume: %w", err)
		}
		info, serr := f.Stat()
		if serr != nil {
			f.Close()
			return false, fmt.Errorf("rangedl: stat for resume: %w", serr)
		}
		begin = info.Size()
	} else {
		f, err = os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return false, fmt.Errorf("rangedl: open: %w", err)
		}
		begin = 0
	}

	s := &session{
		url:      url,
		fileName: fileName,
		f:        f,
		state:    StateProcess,
		offset:   begin,
		totalLen: -1,
	}
	if !e.st.insert(id, s) {
		f.Close()
		return false, nil
	}

	e.dispatchRange(ctx, id, url, begin)
	return true, nil
}

// Pause is the spec's `pause` operation.
func (e *Engine) Pause(id SessionID) bool {
	var ok, already bool
	e.st.withLock(func(sessions map[SessionID]*session) {
		s, present := sessions[id]
		if !present {
			return
		}
		ok = true
		if s.state == StatePaused {
			already = true
			return
		}
		s.state = StateWaitPause
	})
	if !ok {
		return false
	}
	if !already {
		e.sig.emitState(id, StateWaitPause)
	}
	return true
}

// Resume is the spec's `resume` operation.
func (e *Engine) Resume(ctx context.Context, id SessionID) bool {
	var (
		ok     bool
		url    string
		offset int64
	)
	e.st.withLock(func(sessions map[SessionID]*session) {
		s, present := sessions[id]
		if !present || !s.state.resumable() {
			return
		}
		s.state = StateProcess
		ok = true
		url = s.url
		offset = s.offset
	})
	if !ok {
		return false
	}
	e.dispatchRange(ctx, id, url, offset)
	return true
}

// Cancel is the spec's `cancel` operation.
func (e *Engine) Cancel(id SessionID) bool {
	var (
		ok       bool
		fastPath bool
	)
	e.st.withLock(func(sessions map[SessionID]*session) {
		s, present := sessions[id]
		if !present {
			return
		}
		ok = true
		if s.state == StatePaused {
			fastPath = true
			if s.f != nil {
				s.f.Close()
				s.f = nil
			}
			delete(sessions, id)
			e.st.live.Add(-1)
			return
		}
		s.state = StateWaitCancel
	})
	if !ok {
		return false
	}
	if fastPath {
		e.sig.emitState(id, StateCanceled)
	}
	return true
}

// Close stops the Writer Loop and releases the write queue. In-flight
// Range Requests that complete afterward drop their buffers rather than
// blocking (writeQueue.Push returns ErrQueueClosed).
//
// Grounded on warpdl-warpdl/pkg/warplib/dloader.go's
// Downloader.Stop/Close, which flip a stopped flag, cancel the context
// and wait for the worker to exit -- generalized here to the single
// shared Writer Loop rather than one worker per connection.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.wq.Close()
	if e.wl != nil {
		e.wl.stop()
	}
	return nil
}

func (e *Engine) ensureWriterLoop() {
	e.startOnce.Do(func() {
		e.wl = newWriterLoop(e.wq, e.st, e.sig, e.log)
		go e.wl.run()
	})
}

// dispatchRange issues one Range Request of opts.chunkSize() bytes
// starting at begin, wiring the parser and on_http_done completion
// handling spec.md §4.3 describes.
func (e *Engine) dispatchRange(ctx context.Context, id SessionID, url string, begin int64) {
	size := e.opts.chunkSize()
	item := &rangeItem{
		id:     id,
		url:    url,
		offset: begin,
		parser: newHeaderParser(e.alloc),
	}
	e.transport.Dispatch(ctx, url, e.opts.Headers, begin, begin+size-1,
		func(statusCode int, data []byte) error {
			return item.parser.feed(data)
		},
		func(err error) {
			e.onHTTPDone(ctx, item, err)
		},
	)
}

// onHTTPDone is the spec's `on_http_done`: under the session table
// mutex, it snapshots state, records the reported total length, and
// decides whether to enqueue the payload and chain the next Range
// Request, all per spec.md §4.3. It leaves the session's offset alone;
// the Writer Loop updates that after each write.
func (e *Engine) onHTTPDone(ctx context.Context, item *rangeItem, httpErr error) {
	id := item.id

	if httpErr != nil {
		e.st.withLock(func(sessions map[SessionID]*session) {
			s, ok := sessions[id]
			if !ok {
				return
			}
			if s.f != nil {
				s.f.Close()
				s.f = nil
			}
			delete(sessions, id)
			e.st.live.Add(-1)
		})
		sessionLog(e.log, id).Error("transport error: %s", httpErr.Error())
		e.sig.emitState(id, StateError)
		return
	}

	buf := item.buffer()
	if buf == nil {
		// Headers never finished parsing; treat as a transport failure.
		e.st.withLock(func(sessions map[SessionID]*session) {
			s, ok := sessions[id]
			if !ok {
				return
			}
			if s.f != nil {
				s.f.Close()
				s.f = nil
			}
			delete(sessions, id)
			e.st.live.Add(-1)
		})
		sessionLog(e.log, id).Error("response ended before headers completed")
		e.sig.emitState(id, StateError)
		return
	}

	var (
		drop     bool
		chain    bool
		nextFrom int64
		url      string
	)
	e.st.withLock(func(sessions map[SessionID]*session) {
		s, ok := sessions[id]
		if !ok {
			drop = true
			return
		}
		s.totalLen = item.parser.totalLen
		url = s.url

		switch s.state {
		case StatePaused, StateError, StateCanceled:
			drop = true
			return
		}

		// WAIT_PAUSE/WAIT_CANCEL sessions still get this job enqueued so
		// the Writer Loop's dequeue finalizes the latch (spec.md §5: "at
		// most one more prog_signal ... before CANCELED"); only WAIT_CANCEL
		// suppresses chaining the next Range Request.
		chain = !item.parser.isComplete && s.state != StateWaitCancel
		nextFrom = item.parser.offset + int64(buf.Len())
	})

	if drop {
		buf.Close()
		return
	}

	job := writeJob{id: id, buf: buf, offset: item.parser.offset, totalLen: item.parser.totalLen}
	if err := e.wq.Push(job); err != nil {
		buf.Close()
		return
	}

	if chain {
		e.dispatchRange(ctx, id, url, nextFrom)
	}
}
