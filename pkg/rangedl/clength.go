package rangedl

import "github.com/dustin/go-humanize"

// ContentLength is the total size, in bytes, of a downloading resource.
// A value of -1 means the size is unknown at the time it is read.
type ContentLength int64

// v returns the value of the ContentLength as an int64.
func (c ContentLength) v() int64 {
	return int64(c)
}

// IsUnknown reports whether the resource's size hasn't been learned yet.
func (c ContentLength) IsUnknown() bool {
	return c.v() < 0
}

// String renders a human-readable size, e.g. "4.2 MB". Unlike the
// teacher's hand-rolled TB/GB/MB/KB formatter (pkg/warplib/clength.go +
// sizeopt.go), this defers to an ecosystem library already present in
// the wider pack's dependency graph.
func (c ContentLength) String() string {
	if c.IsUnknown() {
		return "unknown"
	}
	return humanize.Bytes(uint64(c.v()))
}
