package heap

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/memkit-go/membrk/memutils"
	"github.com/memkit-go/membrk/registry"
)

// AllocationSize returns the usable payload size recorded for a live pointer
// previously returned by this heap, which may exceed what was requested when
// the block was recycled. A nil pointer reports 0.
func (h *Heap) AllocationSize(ptr unsafe.Pointer) int {
	if ptr == nil {
		return 0
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	return registry.FromPayload(ptr).Size()
}

// SetAllocationName attaches a diagnostic name to a live allocation. The name
// appears in unreleased-memory reports and detailed stats strings.
func (h *Heap) SetAllocationName(ptr unsafe.Pointer, name string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	info, _ := h.info.Get(uintptr(ptr))
	info.name = name
	h.info.Put(uintptr(ptr), info)
}

// AllocationName retrieves the diagnostic name attached to a live allocation,
// or the empty string.
func (h *Heap) AllocationName(ptr unsafe.Pointer) string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	info, _ := h.info.Get(uintptr(ptr))
	return info.name
}

// SetAllocationUserData attaches an arbitrary value to a live allocation.
func (h *Heap) SetAllocationUserData(ptr unsafe.Pointer, userData any) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	info, _ := h.info.Get(uintptr(ptr))
	info.userData = userData
	h.info.Put(uintptr(ptr), info)
}

// AllocationUserData retrieves the value attached to a live allocation, or
// nil.
func (h *Heap) AllocationUserData(ptr unsafe.Pointer) any {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	info, _ := h.info.Get(uintptr(ptr))
	return info.userData
}

// Validate performs internal consistency checks on the heap: the block
// catalogue's invariants plus the agreement between the catalogue's tail and
// the extent's break. When the allocator is functioning correctly it should
// not be possible for this method to return an error.
func (h *Heap) Validate() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	err := h.registry.Validate()
	if err != nil {
		return err
	}

	if tail := h.registry.Tail(); tail != nil {
		blockEnd := unsafe.Add(tail.PayloadEnd(), memutils.DebugMargin)
		if uintptr(blockEnd) > uintptr(h.extent.Break()) {
			return cerrors.Errorf("the tail block extends %d bytes past the extent break",
				int(uintptr(blockEnd)-uintptr(h.extent.Break())))
		}
	}

	return nil
}

// CheckCorruption walks every live allocation and verifies the anti-corruption
// marker written after its payload. Markers are only written when the module
// is built with the debug_mem_utils build tag; without it this method walks
// the catalogue but can never fail.
func (h *Heap) CheckCorruption() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.registry.VisitAllBlocks(func(header *registry.BlockHeader) error {
		if header.IsFree() {
			return nil
		}

		if !memutils.ValidateMagicValue(header.Payload(), header.Size()) {
			return cerrors.Errorf("MEMORY CORRUPTION DETECTED AFTER VALIDATED ALLOCATION! (%d-byte allocation)", header.Size())
		}

		return nil
	})
}

// CalculateStatistics populates stats with a full accounting of the heap:
// catalogue counts, size extremes, and the bytes claimed from the extent. This
// walks the entire catalogue.
func (h *Heap) CalculateStatistics(stats *memutils.DetailedStatistics) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	stats.Clear()
	h.registry.AddDetailedStatistics(stats)
	stats.ExtentBytes = h.extent.Size()
}

// BuildStatsString returns a JSON string summarizing the current state of the
// heap. When detailed is true, every block in the catalogue is listed
// individually, with diagnostic names where they have been assigned.
func (h *Heap) BuildStatsString(detailed bool) string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	h.mutex.Lock()

	general := obj.Name("General").Object()
	general.Name("ExtentBytes").Int(h.extent.Size())
	h.registry.BlockJsonData(general)
	general.End()

	if detailed {
		blocks := obj.Name("Blocks").Array()
		_ = h.registry.VisitAllBlocks(func(header *registry.BlockHeader) error {
			block := blocks.Object()
			block.Name("Size").Int(header.Size())
			block.Name("Free").Bool(header.IsFree())

			if info, ok := h.info.Get(uintptr(header.Payload())); ok {
				if info.name != "" {
					block.Name("Name").String(info.name)
				}
			}

			block.End()
			return nil
		})
		blocks.End()
	}

	h.mutex.Unlock()

	obj.End()
	return string(writer.Bytes())
}
