package heap

import (
	"sync"
	"unsafe"
)

var (
	defaultOnce sync.Once
	defaultHeap *Heap
)

// Default returns the lazily-created process-wide heap. It is the single
// shared instance behind the package-level operations and is created with
// default options on first use.
func Default() *Heap {
	defaultOnce.Do(func() {
		h, err := CreateHeap(nil)
		if err != nil {
			panic(err)
		}
		defaultHeap = h
	})

	return defaultHeap
}

// Alloc allocates size bytes from the process-wide heap, returning nil on
// failure or when size is not positive. This is the pointer-or-nil shape of
// the standard allocation routine the heap is designed to stand in for.
func Alloc(size int) unsafe.Pointer {
	ptr, err := Default().Alloc(size)
	if err != nil {
		return nil
	}
	return ptr
}

// Dealloc releases a payload previously returned by the process-wide heap.
// Passing nil is a no-op.
func Dealloc(ptr unsafe.Pointer) {
	Default().Dealloc(ptr)
}

// Zalloc allocates a zero-filled payload for count elements of elemSize bytes
// each from the process-wide heap, returning nil on failure, on zero inputs,
// or when the element multiplication would overflow.
func Zalloc(count, elemSize int) unsafe.Pointer {
	ptr, err := Default().Zalloc(count, elemSize)
	if err != nil {
		return nil
	}
	return ptr
}

// Realloc resizes an allocation from the process-wide heap, returning nil on
// failure. A nil ptr acts as Alloc(newSize); a non-positive newSize yields nil
// with the original block untouched.
func Realloc(ptr unsafe.Pointer, newSize int) unsafe.Pointer {
	newPtr, err := Default().Realloc(ptr, newSize)
	if err != nil {
		return nil
	}
	return newPtr
}
