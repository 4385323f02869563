//go:build unix

package extent_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/memkit-go/membrk/extent"
)

func TestReservedGrowShrink(t *testing.T) {
	reserved, err := extent.NewReserved(1 << 20)
	require.NoError(t, err)
	defer func() {
		_ = reserved.Release()
	}()

	base := reserved.Break()
	require.Zero(t, uintptr(base)%16, "mappings must be aligned")

	block, err := reserved.Grow(8192)
	require.NoError(t, err)
	require.Equal(t, base, block)

	payload := unsafe.Slice((*byte)(block), 8192)
	for i := range payload {
		payload[i] = byte(i)
	}

	require.NoError(t, reserved.Shrink(8192))
	require.Zero(t, reserved.Size())
}

func TestReservedGrowPastReservation(t *testing.T) {
	reserved, err := extent.NewReserved(1 << 16)
	require.NoError(t, err)
	defer func() {
		_ = reserved.Release()
	}()

	_, err = reserved.Grow(1<<16 + 1)
	require.ErrorIs(t, err, extent.OutOfMemoryError)
}

func TestReservedRelease(t *testing.T) {
	reserved, err := extent.NewReserved(1 << 16)
	require.NoError(t, err)

	require.NoError(t, reserved.Release())
	require.Error(t, reserved.Release(), "a second release must fail rather than unmap twice")
}

func TestNewReservedRejectsInvalidLimits(t *testing.T) {
	_, err := extent.NewReserved(0)
	require.Error(t, err)
}
