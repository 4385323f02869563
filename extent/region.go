package extent

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"

	"github.com/memkit-go/membrk/memutils"
)

// baseAlignment is the alignment the first block carved from a region can rely
// on for its header.
const baseAlignment = 16

// region implements the break cursor over a fixed range of bytes. It is shared
// by the extent implementations whose entire range is claimed from the system
// up front (Buffer and Reserved). Only the provenance of the byte range and the
// Release behavior differ between them.
type region struct {
	data []byte
	brk  int
}

func (r *region) init(data []byte, limit int) {
	// Skip to the first 16-byte boundary so the header of the very first block
	// lands aligned.
	base := uintptr(unsafe.Pointer(&data[0]))
	skip := memutils.AlignUp(int(base), baseAlignment) - int(base)
	r.data = data[skip : skip+limit]
}

func (r *region) Grow(totalBytes int) (unsafe.Pointer, error) {
	if totalBytes <= 0 {
		return nil, cerrors.Errorf("cannot grow the extent by %d bytes", totalBytes)
	}

	if r.brk+totalBytes > len(r.data) {
		return nil, cerrors.Wrapf(OutOfMemoryError,
			"requested %d bytes with %d of %d remaining", totalBytes, len(r.data)-r.brk, len(r.data))
	}

	block := unsafe.Pointer(&r.data[r.brk])
	r.brk += totalBytes
	return block, nil
}

func (r *region) Shrink(totalBytes int) error {
	if totalBytes <= 0 {
		return cerrors.Errorf("cannot shrink the extent by %d bytes", totalBytes)
	}

	if totalBytes > r.brk {
		return cerrors.Errorf("cannot shrink the extent by %d bytes when only %d are claimed", totalBytes, r.brk)
	}

	r.brk -= totalBytes
	return nil
}

func (r *region) Break() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(&r.data[0]), r.brk)
}

func (r *region) Size() int {
	return r.brk
}
