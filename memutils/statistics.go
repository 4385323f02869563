package memutils

import "math"

// Statistics is a snapshot of the basic usage numbers for a heap: how many
// block headers its catalogue carries, how many of them are live, how many
// bytes have been claimed from the backing extent, and how many payload bytes
// are currently handed out to callers.
type Statistics struct {
	BlockCount      int
	AllocationCount int
	ExtentBytes     int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.AllocationCount = 0
	s.ExtentBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.ExtentBytes += other.ExtentBytes
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with free-block counts and size
// extremes. Collecting it requires a full walk of the block catalogue, so it
// is noticeably more expensive than Statistics on large heaps.
type DetailedStatistics struct {
	Statistics

	FreeBlockCount    int
	AllocationSizeMin int
	AllocationSizeMax int
	FreeBlockSizeMin  int
	FreeBlockSizeMax  int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeBlockCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeBlockSizeMin = math.MaxInt
	s.FreeBlockSizeMax = 0
}

// AddAllocation folds a single live allocation of the provided payload size
// into the statistics.
func (s *DetailedStatistics) AddAllocation(size int) {
	s.Statistics.AllocationCount++
	s.Statistics.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

// AddFreeBlock folds a single reusable free block of the provided payload size
// into the statistics.
func (s *DetailedStatistics) AddFreeBlock(size int) {
	s.FreeBlockCount++

	if size < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = size
	}

	if size > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeBlockCount += other.FreeBlockCount

	if other.FreeBlockSizeMin < s.FreeBlockSizeMin {
		s.FreeBlockSizeMin = other.FreeBlockSizeMin
	}

	if other.FreeBlockSizeMax > s.FreeBlockSizeMax {
		s.FreeBlockSizeMax = other.FreeBlockSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
