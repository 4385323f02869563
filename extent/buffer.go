package extent

import (
	cerrors "github.com/cockroachdb/errors"
)

// Buffer is an Extent over an ordinary Go byte slice. It makes no system calls
// and works on every platform, which makes it the backend of choice for tests
// and for platforms without anonymous memory mappings. The slice stays alive
// for as long as the Buffer does, so interior pointers handed out by Grow
// remain valid until Release.
type Buffer struct {
	region
}

var _ Extent = &Buffer{}

// NewBuffer creates a Buffer extent whose break can move across at most limit
// bytes.
func NewBuffer(limit int) (*Buffer, error) {
	if limit <= 0 {
		return nil, cerrors.Errorf("invalid extent limit %d", limit)
	}

	buffer := &Buffer{}
	buffer.init(make([]byte, limit+baseAlignment), limit)
	return buffer, nil
}

// Release drops the backing slice. The Buffer must not be used afterward.
func (b *Buffer) Release() error {
	b.data = nil
	b.brk = 0
	return nil
}
