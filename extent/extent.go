package extent

import (
	"unsafe"

	"github.com/pkg/errors"
)

// OutOfMemoryError is the error returned from Extent.Grow when the underlying range
// cannot be extended any further
var OutOfMemoryError error = errors.New("the heap extent cannot be extended")

// Extent owns the single contiguous virtual range a heap draws its blocks from.
// The range is bounded by a break cursor: Grow claims bytes by moving the cursor
// forward and Shrink returns bytes by moving it backward, exactly the way the
// program break of a process works.
//
// Implementations are not goroutine-safe. The consuming heap holds its global
// allocator lock across every call, including the underlying system call.
type Extent interface {
	// Grow claims totalBytes additional bytes at the current break position and
	// returns the starting address of the newly claimed region. Growth is exact-
	// size: the implementation must not speculatively over-allocate. When the
	// range cannot be extended the returned error wraps OutOfMemoryError.
	Grow(totalBytes int) (unsafe.Pointer, error)
	// Shrink moves the break backward by exactly totalBytes, returning that many
	// bytes to the underlying range. Shrinking more bytes than are currently
	// claimed is an error.
	Shrink(totalBytes int) error
	// Break returns the current break position: one byte past the most recently
	// claimed byte. A block whose payload ends at the break is the tail block of
	// the heap.
	Break() unsafe.Pointer
	// Size returns the number of bytes currently claimed from the range.
	Size() int
	// Release returns the entire range to the operating system. The extent must
	// not be used afterward.
	Release() error
}
