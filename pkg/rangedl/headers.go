package rangedl

import (
	"fmt"
	"net/http"
)

const (
	// userAgentKey is the header key set on every outgoing request unless
	// the caller already supplied one.
	userAgentKey = "User-Agent"
	// defaultUserAgent mirrors the teacher's own default.
	defaultUserAgent = "warpdl-rangedl/1.0"
	// rangeKey is the header key used to request a byte range.
	rangeKey = "Range"
)

// Header is a single key/value HTTP header pair.
type Header struct {
	Key   string
	Value string
}

// Set writes the header into h, overwriting any existing value.
func (hd Header) Set(h http.Header) {
	h.Set(hd.Key, hd.Value)
}

// Headers is an ordered list of headers applied to every request issued
// by the engine (spec.md §6: "extra headers (only Range is used)" plus
// whatever the caller supplies, e.g. Authorization).
type Headers []Header

// initOrUpdate appends key/value unless key is already present.
func (h *Headers) initOrUpdate(key, value string) {
	for _, x := range *h {
		if x.Key == key {
			return
		}
	}
	*h = append(*h, Header{key, value})
}

// Set applies every header in h onto the given http.Header.
func (h Headers) Set(header http.Header) {
	for _, x := range h {
		x.Set(header)
	}
}

// rangeHeader builds the `Range: bytes=B-E` header spec.md §6 names as
// the wire protocol this engine produces.
func rangeHeader(begin, end int64) Header {
	return Header{rangeKey, fmt.Sprintf("bytes=%d-%d", begin, end)}
}
