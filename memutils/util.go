package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// CheckedMulSize multiplies an element count by an element size and reports
// whether the product is a usable allocation size. ok is false when the
// multiplication wrapped around; callers must treat that as an invalid request
// rather than under-allocating.
func CheckedMulSize(count, elemSize int) (size int, ok bool) {
	size = count * elemSize
	if count != 0 && size/count != elemSize {
		return 0, false
	}
	return size, true
}
