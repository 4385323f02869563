package heap

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/memkit-go/membrk/extent"
	"github.com/memkit-go/membrk/internal/utils"
)

// CreateFlags are a set of bitflags affecting the behavior of a created Heap
type CreateFlags int32

const (
	// HeapCreateSingleThreaded indicates that the caller promises to externally
	// synchronize all access to the Heap, allowing the global allocator lock to
	// be compiled out
	HeapCreateSingleThreaded CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	HeapCreateSingleThreaded: "HeapCreateSingleThreaded",
}

func (f CreateFlags) String() string {
	return createFlagsMapping[f]
}

// DefaultReservation is the extent limit used when a CreateInfo provides
// neither an extent nor a reservation. Virtual address space is only committed
// as it is touched, so the reservation being large costs very little.
const DefaultReservation = 1 << 30

// CreateInfo contains the options for heap creation, passed to CreateHeap
type CreateInfo struct {
	// Extent is the backing range the heap draws its blocks from. When nil, the
	// platform's default extent backend is created with a limit of Reservation
	// bytes.
	Extent extent.Extent
	// Reservation is the limit in bytes for the default extent. Ignored when
	// Extent is provided; defaults to DefaultReservation when 0.
	Reservation int
	// Logger is the *slog.Logger the heap uses for diagnostics (failed extent
	// shrinks, unreleased allocations on Destroy). Defaults to slog.Default().
	Logger *slog.Logger
	// Flags indicates specific allocator behaviors to activate
	Flags CreateFlags
}

// CreateHeap creates a new Heap from the provided options. A nil options
// pointer is treated the same as a zero-valued one.
func CreateHeap(options *CreateInfo) (*Heap, error) {
	if options == nil {
		options = &CreateInfo{}
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backing := options.Extent
	if backing == nil {
		reservation := options.Reservation
		if reservation == 0 {
			reservation = DefaultReservation
		}
		if reservation < 0 {
			return nil, cerrors.Errorf("invalid extent reservation %d", options.Reservation)
		}

		var err error
		backing, err = extent.NewDefault(reservation)
		if err != nil {
			return nil, err
		}
	}

	return &Heap{
		mutex:  utils.OptionalMutex{UseMutex: options.Flags&HeapCreateSingleThreaded == 0},
		logger: logger,
		extent: backing,
		info:   swiss.NewMap[uintptr, allocationInfo](64),
	}, nil
}
