package rangedl

import (
	"testing"
	"time"

	"github.com/ChrisTsai0715/http-downloader/pkg/logger"
	"github.com/fortytw2/leaktest"
	. "github.com/smartystreets/goconvey/convey"
)

func Test_WriteQueue_PushPop(t *testing.T) {
	Convey("Given an empty write queue", t, func() {
		q := newWriteQueue()

		Convey("Popping with a short timeout returns false", func() {
			_, ok := q.PopTimeout(10 * time.Millisecond)
			So(ok, ShouldBeFalse)
		})

		Convey("A pushed job is poppable in FIFO order", func() {
			job1 := writeJob{id: 1, buf: newFakeBuffer(), offset: 0, totalLen: 10}
			job2 := writeJob{id: 2, buf: newFakeBuffer(), offset: 4, totalLen: 10}

			So(q.Push(job1), ShouldBeNil)
			So(q.Push(job2), ShouldBeNil)

			got1, ok1 := q.PopTimeout(100 * time.Millisecond)
			So(ok1, ShouldBeTrue)
			So(got1.id, ShouldEqual, SessionID(1))

			got2, ok2 := q.PopTimeout(100 * time.Millisecond)
			So(ok2, ShouldBeTrue)
			So(got2.id, ShouldEqual, SessionID(2))
		})
	})
}

func Test_WriteQueue_CloseRejectsFurtherPush(t *testing.T) {
	Convey("Given a closed write queue", t, func() {
		q := newWriteQueue()
		q.Close()

		Convey("Push fails with ErrQueueClosed", func() {
			err := q.Push(writeJob{id: 1, buf: newFakeBuffer()})
			So(err, ShouldEqual, ErrQueueClosed)
		})
	})
}

func Test_WriteQueue_CloseStillDrainsQueued(t *testing.T) {
	Convey("Given a write queue with one job already queued before Close", t, func() {
		q := newWriteQueue()
		job := writeJob{id: 9, buf: newFakeBuffer()}
		So(q.Push(job), ShouldBeNil)
		q.Close()

		Convey("The queued job is still poppable", func() {
			got, ok := q.PopTimeout(100 * time.Millisecond)
			So(ok, ShouldBeTrue)
			So(got.id, ShouldEqual, SessionID(9))
		})
	})
}

func Test_WriterLoop_StopsCleanly(t *testing.T) {
	defer leaktest.Check(t)()

	Convey("Given a running writer loop with nothing to do", t, func() {
		wl := newWriterLoop(newWriteQueue(), newSessionTable(), newSignals(), logger.NewNopLogger())
		go wl.run()

		Convey("stop() returns once the goroutine has exited", func() {
			wl.stop()
		})
	})
}
