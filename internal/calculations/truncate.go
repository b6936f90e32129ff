package calculations

import (
	"github.com/chrissnell/dc2uddf/internal/types"
)

const (
	// surfaceDepth is the depth, in meters, above which a diver is
	// considered to be at the surface
	surfaceDepth = 1.0
	depthEpsilon = 0.001
)

// TruncateDive removes the samples recorded while the diver was bobbing at
// the surface after the final ascent.
//
// The first sample of the last run of samples shallower than 1m is kept as
// the final sample of the dive; everything after it is dropped.  Any sample
// at 1m or deeper ends a run, so surface intervals in the middle of the dive
// are never cut.  Samples without a depth reading are ignored when looking
// for the run.  It returns the number of samples removed.
func TruncateDive(d *types.Dive) int {
	candidate := -1
	for i, s := range d.Samples {
		ss := s.Subsample(types.KindDepth)
		if ss == nil {
			continue
		}
		switch {
		case ss.Depth >= surfaceDepth:
			candidate = -1
		case ss.Depth < surfaceDepth-depthEpsilon && candidate < 0:
			candidate = i
		}
	}

	if candidate < 0 || candidate == len(d.Samples)-1 {
		return 0
	}

	removed := len(d.Samples) - candidate - 1
	clear(d.Samples[candidate+1:])
	d.Samples = d.Samples[:candidate+1]
	return removed
}

// TruncateCollection applies TruncateDive to every dive, in collection order
func TruncateCollection(dc *types.DiveCollection) int {
	removed := 0
	for _, d := range dc.Dives {
		removed += TruncateDive(d)
	}
	return removed
}
