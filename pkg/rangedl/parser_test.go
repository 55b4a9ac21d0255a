package rangedl

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeAllocator struct{}

func (fakeAllocator) GetFreeBuffer(capacity int) Buffer { return newFakeBuffer() }

type fakeBuffer struct {
	data []byte
}

func newFakeBuffer() *fakeBuffer { return &fakeBuffer{} }

func (b *fakeBuffer) Write(p []byte) (int, error) { b.data = append(b.data, p...); return len(p), nil }
func (b *fakeBuffer) Bytes() []byte               { return b.data }
func (b *fakeBuffer) Len() int                    { return len(b.data) }
func (b *fakeBuffer) Close() error                { return nil }

func Test_HeaderParser_SingleFeed(t *testing.T) {
	Convey("Given a full header blob delivered in one feed call", t, func() {
		p := newHeaderParser(fakeAllocator{})
		blob := "HTTP/1.1 206\r\nContent-Range: bytes 0-3/12\r\n\r\nABCD"

		err := p.feed([]byte(blob))

		Convey("It parses Content-Range and appends the remainder as payload", func() {
			So(err, ShouldBeNil)
			So(p.gotLength, ShouldBeTrue)
			So(p.offset, ShouldEqual, 0)
			So(p.end, ShouldEqual, 3)
			So(p.totalLen, ShouldEqual, 12)
			So(p.isComplete, ShouldBeFalse)
			So(string(p.buf.Bytes()), ShouldEqual, "ABCD")
		})
	})
}

func Test_HeaderParser_SplitAcrossFourCalls(t *testing.T) {
	Convey("Given a terminator fed one byte at a time across four calls", t, func() {
		p := newHeaderParser(fakeAllocator{})
		head := "HTTP/1.1 206\r\nContent-Range: bytes 4-7/12"
		terminator := "\r\n\r\n"
		payload := "EFGH"

		So(p.feed([]byte(head)), ShouldBeNil)
		for _, b := range []byte(terminator) {
			So(p.feed([]byte{b}), ShouldBeNil)
		}
		So(p.feed([]byte(payload)), ShouldBeNil)

		Convey("The recv_buffer content matches a single-call feed of the same bytes", func() {
			whole := newHeaderParser(fakeAllocator{})
			So(whole.feed([]byte(head+terminator+payload)), ShouldBeNil)

			So(string(p.buf.Bytes()), ShouldEqual, string(whole.buf.Bytes()))
			So(p.offset, ShouldEqual, whole.offset)
			So(p.totalLen, ShouldEqual, whole.totalLen)
		})
	})
}

func Test_HeaderParser_FinalRange(t *testing.T) {
	Convey("Given a Content-Range whose end is the last byte of the resource", t, func() {
		p := newHeaderParser(fakeAllocator{})
		err := p.feed([]byte("Content-Range: bytes 8-11/12\r\n\r\nIJKL"))

		Convey("isComplete is set", func() {
			So(err, ShouldBeNil)
			So(p.isComplete, ShouldBeTrue)
		})
	})
}

func Test_HeaderParser_MalformedContentRange(t *testing.T) {
	Convey("Given headers with no Content-Range at all", t, func() {
		p := newHeaderParser(fakeAllocator{})
		err := p.feed([]byte("X-Other: value\r\n\r\nbody"))

		Convey("feed reports ErrBadContentRange", func() {
			So(errors.Is(err, ErrBadContentRange), ShouldBeTrue)
		})
	})

	Convey("Given a Content-Range with an inconsistent total", t, func() {
		p := newHeaderParser(fakeAllocator{})
		err := p.feed([]byte("Content-Range: bytes 0-11/4\r\n\r\n"))

		Convey("feed reports ErrBadContentRange", func() {
			So(errors.Is(err, ErrBadContentRange), ShouldBeTrue)
		})
	})
}
