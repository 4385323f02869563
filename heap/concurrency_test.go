package heap_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/memkit-go/membrk/memutils"
)

func TestConcurrentAllocDealloc(t *testing.T) {
	const (
		workers    = 8
		iterations = 300
	)

	type liveBlock struct {
		ptr  unsafe.Pointer
		size int
	}

	h, _ := createTestHeap(t, 32<<20)

	var waitGroup sync.WaitGroup
	waitGroup.Add(workers)

	for worker := 0; worker < workers; worker++ {
		go func(worker int) {
			defer waitGroup.Done()

			var live []liveBlock
			for i := 0; i < iterations; i++ {
				size := 16 + (worker*31+i*17)%481

				ptr, err := h.Alloc(size)
				if err != nil {
					continue
				}

				// Scribble over the payload so overlapping blocks would be
				// caught by the pattern checks below.
				payload := unsafe.Slice((*byte)(ptr), size)
				for j := range payload {
					payload[j] = byte(worker)
				}

				live = append(live, liveBlock{ptr: ptr, size: size})

				// Free roughly half of the blocks as we go, from both ends.
				if i%2 == 0 && len(live) > 4 {
					victim := live[0]
					if i%4 == 0 {
						victim = live[len(live)-1]
						live = live[:len(live)-1]
					} else {
						live = live[1:]
					}
					h.Dealloc(victim.ptr)
				}
			}

			// Verify our scribbles survived the other workers, then release
			// everything this worker still holds.
			for _, block := range live {
				payload := unsafe.Slice((*byte)(block.ptr), block.size)
				for j := 0; j < block.size; j++ {
					if payload[j] != byte(worker) {
						t.Errorf("worker %d found a foreign byte in its allocation", worker)
						break
					}
				}

				h.Dealloc(block.ptr)
			}
		}(worker)
	}

	waitGroup.Wait()

	// No invariant may be violated and nothing may be left live: all remaining
	// catalogue entries are retained free blocks.
	require.NoError(t, h.Validate())

	var stats memutils.DetailedStatistics
	h.CalculateStatistics(&stats)
	require.Zero(t, stats.AllocationCount)
	require.Zero(t, stats.AllocationBytes)
	require.Equal(t, stats.BlockCount, stats.FreeBlockCount)
}
