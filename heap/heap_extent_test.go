package heap_test

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slog"

	"github.com/memkit-go/membrk/extent"
	mock_extent "github.com/memkit-go/membrk/extent/mocks"
	"github.com/memkit-go/membrk/heap"
	"github.com/memkit-go/membrk/memutils"
	"github.com/memkit-go/membrk/registry"
)

func TestGrowFailurePropagatesAsOutOfMemory(t *testing.T) {
	ctrl := gomock.NewController(t)

	backing := mock_extent.NewMockExtent(ctrl)
	backing.EXPECT().
		Grow(registry.HeaderSize + 100 + memutils.DebugMargin).
		Return(unsafe.Pointer(nil), errors.WithMessage(extent.OutOfMemoryError, "refused"))

	h, err := heap.CreateHeap(&heap.CreateInfo{
		Extent: backing,
		Logger: slog.New(slog.NewTextHandler(bytes.NewBuffer(nil))),
	})
	require.NoError(t, err)

	ptr, err := h.Alloc(100)
	require.ErrorIs(t, err, extent.OutOfMemoryError)
	require.Nil(t, ptr)

	// The failed growth must not have registered anything.
	require.NoError(t, h.Validate())

	var stats memutils.DetailedStatistics
	backing.EXPECT().Size().Return(0)
	h.CalculateStatistics(&stats)
	require.Zero(t, stats.BlockCount)
}

func TestShrinkFailureIsWarnedAndNonFatal(t *testing.T) {
	ctrl := gomock.NewController(t)

	buffer := make([]byte, 4096)
	base := unsafe.Pointer(&buffer[0])
	totalSize := registry.HeaderSize + 64 + memutils.DebugMargin

	backing := mock_extent.NewMockExtent(ctrl)
	backing.EXPECT().Grow(totalSize).Return(base, nil)
	backing.EXPECT().Break().Return(unsafe.Add(base, totalSize))
	backing.EXPECT().Shrink(totalSize).Return(errors.New("the break did not move"))

	var logged bytes.Buffer
	h, err := heap.CreateHeap(&heap.CreateInfo{
		Extent: backing,
		Logger: slog.New(slog.NewTextHandler(&logged)),
	})
	require.NoError(t, err)

	ptr, err := h.Alloc(64)
	require.NoError(t, err)

	// The free must complete: the block is retired from the catalogue even
	// though the extent refused to give its bytes back.
	h.Dealloc(ptr)
	require.Contains(t, logged.String(), "failed to return the tail block")
	require.NoError(t, h.Validate())

	var stats memutils.DetailedStatistics
	backing.EXPECT().Size().Return(totalSize)
	h.CalculateStatistics(&stats)
	require.Zero(t, stats.BlockCount)
	require.Zero(t, stats.AllocationCount)
}

func TestDestroyReportsUnreleasedAllocations(t *testing.T) {
	backing, err := extent.NewBuffer(1 << 16)
	require.NoError(t, err)

	var logged bytes.Buffer
	h, err := heap.CreateHeap(&heap.CreateInfo{
		Extent: backing,
		Logger: slog.New(slog.NewTextHandler(&logged)),
	})
	require.NoError(t, err)

	leaked, err := h.Alloc(64)
	require.NoError(t, err)
	h.SetAllocationName(leaked, "leaky staging block")

	freed, err := h.Alloc(32)
	require.NoError(t, err)
	h.Dealloc(freed)

	err = h.Destroy()
	require.ErrorContains(t, err, "1 allocations were not freed")
	require.Contains(t, logged.String(), "UNRELEASED MEMORY")
	require.Contains(t, logged.String(), "leaky staging block")

	require.Error(t, h.Destroy(), "a second destroy must fail")
}

func TestDestroyCleanHeap(t *testing.T) {
	backing, err := extent.NewBuffer(1 << 16)
	require.NoError(t, err)

	h, err := heap.CreateHeap(&heap.CreateInfo{
		Extent: backing,
		Logger: slog.New(slog.NewTextHandler(bytes.NewBuffer(nil))),
	})
	require.NoError(t, err)

	ptr, err := h.Alloc(64)
	require.NoError(t, err)
	h.Dealloc(ptr)

	require.NoError(t, h.Destroy())
}

func TestCreateHeapRejectsNegativeReservation(t *testing.T) {
	_, err := heap.CreateHeap(&heap.CreateInfo{Reservation: -1})
	require.Error(t, err)
}
