package extent_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/memkit-go/membrk/extent"
)

func TestNewBufferRejectsInvalidLimits(t *testing.T) {
	_, err := extent.NewBuffer(0)
	require.Error(t, err)

	_, err = extent.NewBuffer(-1)
	require.Error(t, err)
}

func TestBufferGrowMovesBreak(t *testing.T) {
	buffer, err := extent.NewBuffer(4096)
	require.NoError(t, err)

	require.Zero(t, buffer.Size())
	base := buffer.Break()
	require.Zero(t, uintptr(base)%16, "the first block must start on an aligned boundary")

	block, err := buffer.Grow(100)
	require.NoError(t, err)
	require.Equal(t, base, block)
	require.Equal(t, 100, buffer.Size())
	require.Equal(t, uintptr(base)+100, uintptr(buffer.Break()))

	// The claimed region must be writable end to end.
	payload := unsafe.Slice((*byte)(block), 100)
	for i := range payload {
		payload[i] = 0xA5
	}

	next, err := buffer.Grow(50)
	require.NoError(t, err)
	require.Equal(t, uintptr(base)+100, uintptr(next))
	require.Equal(t, 150, buffer.Size())
}

func TestBufferGrowExactlyToLimit(t *testing.T) {
	buffer, err := extent.NewBuffer(256)
	require.NoError(t, err)

	_, err = buffer.Grow(256)
	require.NoError(t, err)
	require.Equal(t, 256, buffer.Size())

	_, err = buffer.Grow(1)
	require.ErrorIs(t, err, extent.OutOfMemoryError)
}

func TestBufferGrowPastLimit(t *testing.T) {
	buffer, err := extent.NewBuffer(128)
	require.NoError(t, err)

	_, err = buffer.Grow(129)
	require.ErrorIs(t, err, extent.OutOfMemoryError)
	require.Zero(t, buffer.Size(), "a refused growth must not move the break")
}

func TestBufferGrowRejectsInvalidSizes(t *testing.T) {
	buffer, err := extent.NewBuffer(128)
	require.NoError(t, err)

	_, err = buffer.Grow(0)
	require.Error(t, err)
	require.NotErrorIs(t, err, extent.OutOfMemoryError)

	_, err = buffer.Grow(-5)
	require.Error(t, err)
}

func TestBufferShrink(t *testing.T) {
	buffer, err := extent.NewBuffer(4096)
	require.NoError(t, err)

	base := buffer.Break()

	_, err = buffer.Grow(200)
	require.NoError(t, err)

	require.NoError(t, buffer.Shrink(50))
	require.Equal(t, 150, buffer.Size())
	require.Equal(t, uintptr(base)+150, uintptr(buffer.Break()))

	require.NoError(t, buffer.Shrink(150))
	require.Zero(t, buffer.Size())
	require.Equal(t, base, buffer.Break())
}

func TestBufferShrinkPastBase(t *testing.T) {
	buffer, err := extent.NewBuffer(4096)
	require.NoError(t, err)

	_, err = buffer.Grow(100)
	require.NoError(t, err)

	require.Error(t, buffer.Shrink(101))
	require.Equal(t, 100, buffer.Size(), "a refused shrink must not move the break")

	require.Error(t, buffer.Shrink(0))
	require.Error(t, buffer.Shrink(-1))
}

func TestBufferGrowAfterShrinkReusesRange(t *testing.T) {
	buffer, err := extent.NewBuffer(4096)
	require.NoError(t, err)

	first, err := buffer.Grow(64)
	require.NoError(t, err)

	require.NoError(t, buffer.Shrink(64))

	second, err := buffer.Grow(64)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestBufferRelease(t *testing.T) {
	buffer, err := extent.NewBuffer(4096)
	require.NoError(t, err)

	_, err = buffer.Grow(100)
	require.NoError(t, err)

	require.NoError(t, buffer.Release())
	require.Zero(t, buffer.Size())
}

func TestNewDefault(t *testing.T) {
	backing, err := extent.NewDefault(1 << 16)
	require.NoError(t, err)

	block, err := backing.Grow(4096)
	require.NoError(t, err)
	require.NotNil(t, block)

	payload := unsafe.Slice((*byte)(block), 4096)
	payload[0] = 1
	payload[4095] = 1

	require.NoError(t, backing.Shrink(4096))
	require.NoError(t, backing.Release())
}
