//go:build !unix

package extent

// NewDefault returns the preferred extent backend for this platform: a
// slice-backed Buffer of limit bytes.
func NewDefault(limit int) (Extent, error) {
	return NewBuffer(limit)
}
