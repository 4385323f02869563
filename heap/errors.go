package heap

import "github.com/pkg/errors"

// InvalidSizeError is the error returned when an operation is asked for a zero
// or negative number of bytes, or when a Zalloc element-count multiplication
// would overflow. It is rejected before any memory operation is attempted.
var InvalidSizeError error = errors.New("invalid allocation size")
