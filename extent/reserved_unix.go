//go:build unix

package extent

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Reserved is an Extent over a single anonymous private memory mapping made at
// creation time. The mapping reserves the full limit of virtual address space
// up front; the break cursor then moves inside it without further system
// calls. Physical pages are only committed by the kernel as they are touched,
// so a large reservation is cheap.
type Reserved struct {
	region
	mapping []byte
}

var _ Extent = &Reserved{}

// NewReserved maps limit bytes of anonymous memory and returns a Reserved
// extent over them. Mapping failure surfaces as OutOfMemoryError.
func NewReserved(limit int) (*Reserved, error) {
	if limit <= 0 {
		return nil, cerrors.Errorf("invalid extent limit %d", limit)
	}

	mapping, err := unix.Mmap(-1, 0, limit, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, cerrors.Wrapf(OutOfMemoryError, "reserving %d bytes: %s", limit, err)
	}

	// Mappings are page-aligned, so no init skip is needed to align the first
	// block header.
	reserved := &Reserved{mapping: mapping}
	reserved.data = mapping
	return reserved, nil
}

// Release unmaps the reservation. The Reserved extent must not be used
// afterward.
func (r *Reserved) Release() error {
	mapping := r.mapping
	r.mapping = nil
	r.data = nil
	r.brk = 0

	if mapping == nil {
		return cerrors.New("the extent has already been released")
	}

	err := unix.Munmap(mapping)
	if err != nil {
		return cerrors.Wrapf(err, "unmapping %d reserved bytes", len(mapping))
	}
	return nil
}
