package calculations

import (
	"cmp"
	"slices"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// CompareSamples orders samples by timestamp
func CompareSamples(a, b *types.Sample) int {
	return cmp.Compare(a.Timestamp, b.Timestamp)
}

// CompareDives orders dives chronologically.  Dated dives sort before
// undated ones; two undated dives compare equal.
func CompareDives(a, b *types.Dive) int {
	switch {
	case a.HasDatetime() && b.HasDatetime():
		return a.Datetime.Compare(b.Datetime)
	case a.HasDatetime():
		return -1
	case b.HasDatetime():
		return 1
	}
	return 0
}

// SortSamples sorts the profile of a dive by timestamp.  The sort is stable.
func SortSamples(d *types.Dive) {
	slices.SortStableFunc(d.Samples, CompareSamples)
}

// SortDives sorts the collection chronologically.  The sort is stable, so
// undated dives keep their download order at the end of the collection.
func SortDives(dc *types.DiveCollection) {
	slices.SortStableFunc(dc.Dives, CompareDives)
}
