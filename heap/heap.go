package heap

import (
	"context"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/memkit-go/membrk/extent"
	"github.com/memkit-go/membrk/internal/utils"
	"github.com/memkit-go/membrk/memutils"
	"github.com/memkit-go/membrk/registry"
)

// Heap services allocation, zero-initialized allocation, resizing, and
// deallocation requests against a single contiguous extent. Free blocks are
// recycled first-fit; on a miss the extent grows by exactly one
// header-plus-payload, and a block freed at the very end of the extent is
// given back rather than retained.
//
// Every operation acquires one coarse per-heap lock for its entire body,
// including the extent system call, and releases it on every exit path. The
// lock is not valid for recursive acquisition: an Extent implementation must
// never call back into the Heap that owns it.
//
// Passing a pointer that this heap never returned to Dealloc or Realloc is
// undefined behavior. Pointers are not validated on the hot paths.
type Heap struct {
	mutex  utils.OptionalMutex
	logger *slog.Logger

	extent   extent.Extent
	registry registry.Registry

	// Diagnostic names and user data cannot live in the in-band headers: the
	// extent is invisible to the garbage collector, so Go values referenced
	// from there would be collected out from under us. They live in this side
	// table instead, keyed by payload address.
	info *swiss.Map[uintptr, allocationInfo]

	destroyed bool
}

type allocationInfo struct {
	name     string
	userData any
}

// Alloc hands out a payload of at least size bytes. A free block of sufficient
// size is reused when one exists; otherwise the extent grows by exactly one
// header plus size bytes. Requests for zero or negative sizes fail with
// InvalidSizeError, and extent exhaustion surfaces as an error wrapping
// extent.OutOfMemoryError with the heap left untouched.
func (h *Heap) Alloc(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, cerrors.Wrapf(InvalidSizeError, "requested %d bytes", size)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.allocLocked(size)
}

func (h *Heap) allocLocked(size int) (unsafe.Pointer, error) {
	memutils.DebugValidate(&h.registry)

	if header := h.registry.FindReusable(size); header != nil {
		header.MarkInUse()
		return header.Payload(), nil
	}

	totalSize := registry.HeaderSize + size + memutils.DebugMargin
	block, err := h.extent.Grow(totalSize)
	if err != nil {
		return nil, err
	}

	header := registry.PlaceHeader(block, size)
	h.registry.Append(header)
	memutils.WriteMagicValue(header.Payload(), size)
	return header.Payload(), nil
}

// Dealloc releases a payload previously returned by this heap. When the block
// sits at the very end of the extent its memory is returned to the operating
// system and its header retired from the catalogue; otherwise the block is
// merely marked free for reuse. Passing nil is a no-op.
//
// Only the single block being freed is considered for the end-of-heap check;
// free blocks that precede it in memory order are never retired with it, and
// adjacent free blocks are never coalesced.
func (h *Heap) Dealloc(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.deallocLocked(ptr)
}

func (h *Heap) deallocLocked(ptr unsafe.Pointer) {
	memutils.DebugValidate(&h.registry)

	header := registry.FromPayload(ptr)
	h.info.Delete(uintptr(ptr))

	// A block whose payload (plus any debug margin) ends exactly at the break
	// is the tail of the heap. Its memory goes back to the extent instead of
	// the free list.
	blockEnd := unsafe.Add(header.PayloadEnd(), memutils.DebugMargin)
	if blockEnd == h.extent.Break() {
		h.registry.DetachTail()

		err := h.extent.Shrink(header.TotalSize())
		if err != nil {
			// The block is already retired from the catalogue; a failed shrink
			// just strands its bytes at the top of the extent.
			h.logger.LogAttrs(context.Background(), slog.LevelWarn,
				"failed to return the tail block to the extent",
				slog.Int("size", header.Size()),
				slog.Any("error", err))
		}
		return
	}

	header.MarkFree()
}

// Zalloc allocates a payload for count elements of elemSize bytes each and
// zero-fills it before returning. A zero or negative count or element size
// fails with InvalidSizeError, as does a count*elemSize multiplication that
// would overflow; the request is rejected rather than under-allocated.
func (h *Heap) Zalloc(count, elemSize int) (unsafe.Pointer, error) {
	if count <= 0 || elemSize <= 0 {
		return nil, cerrors.Wrapf(InvalidSizeError, "requested %d elements of %d bytes", count, elemSize)
	}

	size, ok := memutils.CheckedMulSize(count, elemSize)
	if !ok {
		return nil, cerrors.Wrapf(InvalidSizeError, "%d elements of %d bytes overflow the maximum allocation size", count, elemSize)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	ptr, err := h.allocLocked(size)
	if err != nil {
		return nil, err
	}

	payload := unsafe.Slice((*byte)(ptr), size)
	for i := range payload {
		payload[i] = 0
	}

	return ptr, nil
}

// Realloc resizes the allocation behind ptr to at least newSize bytes. A nil
// ptr behaves exactly like Alloc(newSize). When the existing block is already
// large enough the same pointer is returned and nothing moves; there is no
// shrink-in-place. Otherwise a fresh block is allocated, the old payload is
// copied into it, and the old block is released. On failure the original block
// is left completely untouched and remains valid.
func (h *Heap) Realloc(ptr unsafe.Pointer, newSize int) (unsafe.Pointer, error) {
	if ptr == nil {
		return h.Alloc(newSize)
	}
	if newSize <= 0 {
		return nil, cerrors.Wrapf(InvalidSizeError, "requested %d bytes", newSize)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	header := registry.FromPayload(ptr)
	oldSize := header.Size()
	if oldSize >= newSize {
		return ptr, nil
	}

	newPtr, err := h.allocLocked(newSize)
	if err != nil {
		return nil, err
	}

	copy(unsafe.Slice((*byte)(newPtr), oldSize), unsafe.Slice((*byte)(ptr), oldSize))

	if info, ok := h.info.Get(uintptr(ptr)); ok {
		h.info.Put(uintptr(newPtr), info)
	}
	h.deallocLocked(ptr)

	return newPtr, nil
}

// Destroy reports every allocation still live in the catalogue through the
// heap's logger, drops the catalogue, and releases the backing extent. It
// returns an error if any allocations had not been freed. The heap must not be
// used after Destroy.
func (h *Heap) Destroy() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.destroyed {
		return cerrors.New("the heap has already been destroyed")
	}

	var unreleased int
	_ = h.registry.VisitAllBlocks(func(header *registry.BlockHeader) error {
		if header.IsFree() {
			return nil
		}

		unreleased++
		h.logUnreleasedMemory(header)
		return nil
	})

	h.registry.Clear()
	h.info = swiss.NewMap[uintptr, allocationInfo](1)
	h.destroyed = true

	err := h.extent.Release()
	if err != nil {
		return cerrors.Wrapf(err, "releasing the heap extent")
	}

	if unreleased > 0 {
		return cerrors.Errorf("%d allocations were not freed before the destruction of this heap", unreleased)
	}

	return nil
}

func (h *Heap) logUnreleasedMemory(header *registry.BlockHeader) {
	name := "empty"
	var userData any

	if info, ok := h.info.Get(uintptr(header.Payload())); ok {
		if info.name != "" {
			name = info.name
		}
		userData = info.userData
	}

	h.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
		slog.Int("size", header.Size()),
		slog.String("name", name),
		slog.Any("userData", userData),
	)
}
