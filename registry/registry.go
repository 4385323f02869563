package registry

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/memkit-go/membrk/memutils"
)

// Registry is the catalogue of every block ever carved from the heap extent,
// live or free, as a singly linked list in allocation order. head is the
// oldest block and tail the most recently appended one; either both are set or
// both are nil.
//
// The list deliberately has no backward links: headers stay as small as
// possible at the cost of an O(n) walk when the tail is detached, which only
// happens on the rare end-of-heap free.
//
// A Registry is not goroutine-safe on its own. The owning heap guards it, and
// every header's mutable fields, with its single global allocator lock.
type Registry struct {
	head *BlockHeader
	tail *BlockHeader

	blockCount int
}

var _ memutils.Validatable = &Registry{}

// IsEmpty reports whether the catalogue has no blocks at all, live or free.
func (r *Registry) IsEmpty() bool {
	return r.head == nil
}

// BlockCount returns the number of headers in the catalogue, live or free.
func (r *Registry) BlockCount() int {
	return r.blockCount
}

// Tail returns the most recently appended header, or nil.
func (r *Registry) Tail() *BlockHeader {
	return r.tail
}

// FindReusable linearly scans the catalogue in insertion order and returns the
// first free block whose recorded size is at least size (first-fit). It
// returns nil when no block qualifies. The scan has no side effects, so the
// result is deterministic for a given catalogue.
func (r *Registry) FindReusable(size int) *BlockHeader {
	for current := r.head; current != nil; current = current.next {
		if current.IsFree() && current.Size() >= size {
			return current
		}
	}

	return nil
}

// Append inserts a newly placed header as the new tail. If the catalogue was
// empty the header becomes the head as well.
func (r *Registry) Append(header *BlockHeader) {
	if r.head == nil {
		r.head = header
	}
	if r.tail != nil {
		r.tail.next = header
	}

	r.tail = header
	r.blockCount++
}

// DetachTail removes the current tail from the catalogue and returns it, used
// when the tail's backing memory is about to be returned to the extent. The
// predecessor is found by re-walking from head. Detaching from an empty
// catalogue is a programming error and panics.
func (r *Registry) DetachTail() *BlockHeader {
	if r.tail == nil {
		panic("attempting to detach the tail of an empty block registry")
	}

	detached := r.tail
	if r.head == r.tail {
		r.head = nil
		r.tail = nil
		r.blockCount--
		return detached
	}

	for current := r.head; current != nil; current = current.next {
		if current.next == detached {
			current.next = nil
			r.tail = current
		}
	}

	r.blockCount--
	return detached
}

// VisitAllBlocks calls the provided callback once for every header in the
// catalogue, in insertion order, stopping at the first error.
func (r *Registry) VisitAllBlocks(handleBlock func(header *BlockHeader) error) error {
	for current := r.head; current != nil; current = current.next {
		err := handleBlock(current)
		if err != nil {
			return err
		}
	}

	return nil
}

// AllocationCount returns the number of live blocks in the catalogue.
func (r *Registry) AllocationCount() int {
	var count int
	for current := r.head; current != nil; current = current.next {
		if !current.IsFree() {
			count++
		}
	}

	return count
}

// FreeBlockCount returns the number of blocks awaiting reuse.
func (r *Registry) FreeBlockCount() int {
	var count int
	for current := r.head; current != nil; current = current.next {
		if current.IsFree() {
			count++
		}
	}

	return count
}

// SumFreeSize returns the total payload bytes held by free blocks.
func (r *Registry) SumFreeSize() int {
	var sum int
	for current := r.head; current != nil; current = current.next {
		if current.IsFree() {
			sum += current.Size()
		}
	}

	return sum
}

// Clear drops the entire catalogue without touching the extent. Used when the
// owning heap is destroyed wholesale.
func (r *Registry) Clear() {
	r.head = nil
	r.tail = nil
	r.blockCount = 0
}

// Validate performs internal consistency checks on the catalogue. When the
// allocator is functioning correctly it should not be possible for this method
// to return an error, but it may assist in diagnosing issues.
func (r *Registry) Validate() error {
	if (r.head == nil) != (r.tail == nil) {
		return errors.Errorf("the registry's head (%p) and tail (%p) must either both be set or both be empty", r.head, r.tail)
	}

	if r.head == nil {
		if r.blockCount != 0 {
			return errors.Errorf("the registry is empty but declares %d blocks", r.blockCount)
		}
		return nil
	}

	if r.tail.next != nil {
		return errors.New("the registry tail has a successor")
	}

	var walked int
	var reachedTail bool
	for current := r.head; current != nil; current = current.next {
		walked++
		if walked > r.blockCount {
			break
		}
		if current == r.tail {
			reachedTail = true
		}
	}

	if walked != r.blockCount {
		return errors.Errorf("the registry declares %d blocks but walking the catalogue found %d", r.blockCount, walked)
	}

	if !reachedTail {
		return errors.New("the registry tail is not reachable from the head")
	}

	return nil
}

// AddStatistics sums the catalogue's block counts and allocation bytes into
// the statistics currently present in the provided memutils.Statistics object.
func (r *Registry) AddStatistics(stats *memutils.Statistics) {
	for current := r.head; current != nil; current = current.next {
		stats.BlockCount++
		if !current.IsFree() {
			stats.AllocationCount++
			stats.AllocationBytes += current.Size()
		}
	}
}

// AddDetailedStatistics sums the catalogue's allocation statistics, including
// free-block counts and size extremes, into the statistics currently present
// in the provided memutils.DetailedStatistics object.
func (r *Registry) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for current := r.head; current != nil; current = current.next {
		stats.Statistics.BlockCount++
		if current.IsFree() {
			stats.AddFreeBlock(current.Size())
		} else {
			stats.AddAllocation(current.Size())
		}
	}
}

// BlockJsonData populates a json object with summary information about the
// catalogue.
func (r *Registry) BlockJsonData(json jwriter.ObjectState) {
	json.Name("TotalBlocks").Int(r.blockCount)
	json.Name("Allocations").Int(r.AllocationCount())
	json.Name("FreeBlocks").Int(r.FreeBlockCount())
	json.Name("FreeBytes").Int(r.SumFreeSize())
}
