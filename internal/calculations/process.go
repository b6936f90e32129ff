package calculations

import (
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// Options selects the corrections applied by Process
type Options struct {
	Truncate           bool
	InitialPressureFix bool
	// MaxSurfaceInterval of zero selects DefaultMaxSurfaceInterval
	MaxSurfaceInterval time.Duration
}

// DefaultOptions enables every correction
func DefaultOptions() Options {
	return Options{
		Truncate:           true,
		InitialPressureFix: true,
		MaxSurfaceInterval: DefaultMaxSurfaceInterval,
	}
}

// Process runs the corrections over a downloaded collection: truncation,
// the initial pressure fix, surface intervals and finally sample ordering.
// A nil logger disables logging.
func Process(dc *types.DiveCollection, opts Options, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if opts.Truncate {
		removed := TruncateCollection(dc)
		logger.Debugw("truncated surface samples", "removed", removed)
	}

	if opts.InitialPressureFix {
		fixed := InitialPressureFixCollection(dc)
		logger.Debugw("backfilled initial tank pressure", "samples", fixed)
	}

	CalculateSurfaceInterval(dc, opts.MaxSurfaceInterval)

	for _, d := range dc.Dives {
		SortSamples(d)
	}

	logger.Debugw("processed dive collection", "dives", dc.Len())
}
