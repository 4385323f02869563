//go:build linux

package extent

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// ProgramBreak is an Extent over the real program break of the process, moved
// with the brk system call. It is the faithful rendition of the classic
// sbrk-backed heap: every Grow and Shrink is one system call and the claimed
// range sits at the top of the data segment.
//
// The Go runtime allocates its own memory through anonymous mappings and never
// touches the program break, so the break belongs to this extent alone as long
// as nothing else in the process (cgo code, for instance) calls brk or sbrk.
// That also means the system call can never re-enter the heap that owns this
// extent, so the heap's non-recursive global lock is safe to hold across it.
type ProgramBreak struct {
	base    uintptr
	claimed int
}

var _ Extent = &ProgramBreak{}

// NewProgramBreak captures the current program break and returns an extent
// that grows upward from it.
func NewProgramBreak() (*ProgramBreak, error) {
	base, err := brk(0)
	if err != nil {
		return nil, cerrors.Wrapf(err, "querying the program break")
	}
	return &ProgramBreak{base: base}, nil
}

// brk asks the kernel to move the program break to addr and returns the break
// after the call. Linux returns the unchanged break instead of an error when
// the request cannot be honored; passing 0 therefore queries the current
// position.
func brk(addr uintptr) (uintptr, error) {
	current, _, errno := unix.Syscall(unix.SYS_BRK, addr, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return current, nil
}

func (p *ProgramBreak) Grow(totalBytes int) (unsafe.Pointer, error) {
	if totalBytes <= 0 {
		return nil, cerrors.Errorf("cannot grow the extent by %d bytes", totalBytes)
	}

	current := p.base + uintptr(p.claimed)
	moved, err := brk(current + uintptr(totalBytes))
	if err != nil {
		return nil, cerrors.Wrapf(OutOfMemoryError, "requesting %d bytes at the program break: %s", totalBytes, err)
	}
	if moved < current+uintptr(totalBytes) {
		return nil, cerrors.Wrapf(OutOfMemoryError, "requesting %d bytes at the program break", totalBytes)
	}

	p.claimed += totalBytes
	return unsafe.Pointer(current), nil
}

func (p *ProgramBreak) Shrink(totalBytes int) error {
	if totalBytes <= 0 {
		return cerrors.Errorf("cannot shrink the extent by %d bytes", totalBytes)
	}
	if totalBytes > p.claimed {
		return cerrors.Errorf("cannot shrink the extent by %d bytes when only %d are claimed", totalBytes, p.claimed)
	}

	target := p.base + uintptr(p.claimed-totalBytes)
	moved, err := brk(target)
	if err != nil {
		return cerrors.Wrapf(err, "moving the program break back by %d bytes", totalBytes)
	}
	if moved != target {
		return cerrors.Errorf("the program break moved to %#x instead of %#x", moved, target)
	}

	p.claimed -= totalBytes
	return nil
}

func (p *ProgramBreak) Break() unsafe.Pointer {
	return unsafe.Pointer(p.base + uintptr(p.claimed))
}

func (p *ProgramBreak) Size() int {
	return p.claimed
}

// Release moves the program break back to where it was when the extent was
// created.
func (p *ProgramBreak) Release() error {
	if p.claimed == 0 {
		return nil
	}

	err := p.Shrink(p.claimed)
	if err != nil {
		return cerrors.Wrapf(err, "restoring the program break")
	}
	return nil
}
