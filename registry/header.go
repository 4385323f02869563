package registry

import (
	"unsafe"

	"github.com/memkit-go/membrk/memutils"
)

// headerAlignment pads HeaderSize so that a payload placed immediately after
// its header is adequately aligned for every primitive type.
const headerAlignment = 16

// BlockHeader is the in-band metadata written at the start of every block
// carved from the heap extent. It lives inside extent memory rather than on
// the Go heap, and its next link only ever points at other headers inside the
// same extent, so the whole catalogue is invisible to the garbage collector.
//
// A header's payload size is fixed at creation and never changes afterward: a
// resize either reuses a block that is already large enough or carves a new
// one. Only the free flag and the next link are ever rewritten.
type BlockHeader struct {
	size uintptr
	free uint32
	_    uint32
	next *BlockHeader
}

// HeaderSize is the byte distance between the start of a block and its
// payload.
var HeaderSize = memutils.AlignUp(int(unsafe.Sizeof(BlockHeader{})), headerAlignment)

// PlaceHeader writes a fresh in-use header at the start of a region newly
// claimed from the extent and returns it. The region must be at least
// HeaderSize+size bytes.
func PlaceHeader(block unsafe.Pointer, size int) *BlockHeader {
	header := (*BlockHeader)(block)
	header.size = uintptr(size)
	header.free = 0
	header.next = nil
	return header
}

// FromPayload recovers the header sitting at a constant offset before a
// payload pointer previously returned by PlaceHeader. Passing a pointer that
// did not come from this allocator is undefined behavior; there is no magic
// number or checksum guarding against it.
func FromPayload(payload unsafe.Pointer) *BlockHeader {
	return (*BlockHeader)(unsafe.Add(payload, -HeaderSize))
}

// Payload returns the address handed out to callers for this block.
func (h *BlockHeader) Payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), HeaderSize)
}

// PayloadEnd returns the address one byte past the block's payload.
func (h *BlockHeader) PayloadEnd() unsafe.Pointer {
	return unsafe.Add(h.Payload(), h.size)
}

// Size returns the usable payload size in bytes recorded at creation.
func (h *BlockHeader) Size() int {
	return int(h.size)
}

// TotalSize returns the number of extent bytes the block occupies: header,
// payload, and the debug margin when one is compiled in.
func (h *BlockHeader) TotalSize() int {
	return HeaderSize + int(h.size) + memutils.DebugMargin
}

// IsFree reports whether the block is awaiting reuse.
func (h *BlockHeader) IsFree() bool {
	return h.free != 0
}

// MarkFree flags the block as reusable by a future allocation.
func (h *BlockHeader) MarkFree() {
	h.free = 1
}

// MarkInUse flags the block as owned by a caller.
func (h *BlockHeader) MarkInUse() {
	h.free = 0
}

// Next returns the following header in allocation order, or nil for the tail.
// Two linked headers need not be adjacent in memory.
func (h *BlockHeader) Next() *BlockHeader {
	return h.next
}
