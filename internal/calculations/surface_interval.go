package calculations

import (
	"time"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// DefaultMaxSurfaceInterval is the longest gap between two dives that is
// still reported as a surface interval.  Longer gaps are reported as
// unknown.
const DefaultMaxSurfaceInterval = 48 * time.Hour

// CalculateSurfaceInterval sorts the collection and computes the surface
// interval before each dive.
//
// Dives that did not report a duration get one derived from their profile
// (last minus first sample timestamp).  The first dive, dives following an
// undated dive, and gaps that are negative or longer than maxInterval get
// types.SurfaceIntervalUnknown.  A maxInterval of zero selects
// DefaultMaxSurfaceInterval.
func CalculateSurfaceInterval(dc *types.DiveCollection, maxInterval time.Duration) {
	if maxInterval <= 0 {
		maxInterval = DefaultMaxSurfaceInterval
	}

	SortDives(dc)

	for _, d := range dc.Dives {
		if d.Duration == 0 && len(d.Samples) > 0 {
			SortSamples(d)
			d.Duration = d.Samples[len(d.Samples)-1].Timestamp - d.Samples[0].Timestamp
		}
	}

	var prev *types.Dive
	for _, d := range dc.Dives {
		d.SurfaceInterval = surfaceInterval(prev, d, maxInterval)
		prev = d
	}
}

func surfaceInterval(prev, cur *types.Dive, maxInterval time.Duration) int64 {
	if prev == nil || !prev.HasDatetime() || !cur.HasDatetime() {
		return types.SurfaceIntervalUnknown
	}

	prevEnd := prev.Datetime.Add(time.Duration(prev.Duration) * time.Second)
	gap := cur.Datetime.Sub(prevEnd)
	if gap < 0 || gap > maxInterval {
		return types.SurfaceIntervalUnknown
	}
	return int64(gap / time.Second)
}
