package calculations

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// Summary holds the values derived from a dive profile that are reported
// alongside it
type Summary struct {
	// GreatestDepth is the deepest sample, or the reported MaxDepth when the
	// profile has no depth readings
	GreatestDepth float64
	// Duration is the largest sample timestamp in seconds
	Duration uint

	AverageDepth    float64
	HasAverageDepth bool

	// LowestTemperature is in degrees Celsius
	LowestTemperature float64
	HasTemperature    bool
}

// Summarize computes the profile summary of a dive.  The dive is not
// modified.
func Summarize(d *types.Dive) Summary {
	sum := Summary{GreatestDepth: d.MaxDepth}

	var sawDepth bool
	for _, s := range d.Samples {
		if s.Timestamp > sum.Duration {
			sum.Duration = s.Timestamp
		}
		for _, ss := range s.Subsamples {
			switch ss.Kind {
			case types.KindDepth:
				if !sawDepth || ss.Depth > sum.GreatestDepth {
					sum.GreatestDepth = ss.Depth
				}
				sawDepth = true
			case types.KindTemperature:
				if !sum.HasTemperature || ss.Temperature < sum.LowestTemperature {
					sum.LowestTemperature = ss.Temperature
				}
				sum.HasTemperature = true
			}
		}
	}

	sum.AverageDepth, sum.HasAverageDepth = AverageDepth(d)
	return sum
}

// AverageDepth returns the time-weighted mean depth of the profile.  Each
// depth reading is weighted by half the time to its neighbouring readings.
// The second return value is false when the profile has no depth readings.
func AverageDepth(d *types.Dive) (float64, bool) {
	samples := slices.Clone(d.Samples)
	slices.SortStableFunc(samples, CompareSamples)

	var (
		times  []float64
		depths []float64
	)
	for _, s := range samples {
		if ss := s.Subsample(types.KindDepth); ss != nil {
			times = append(times, float64(s.Timestamp))
			depths = append(depths, ss.Depth)
		}
	}

	switch len(depths) {
	case 0:
		return 0, false
	case 1:
		return depths[0], true
	}

	weights := make([]float64, len(depths))
	var total float64
	for i := range weights {
		lo, hi := times[i], times[i]
		if i > 0 {
			lo = times[i-1]
		}
		if i < len(times)-1 {
			hi = times[i+1]
		}
		weights[i] = (hi - lo) / 2
		total += weights[i]
	}

	// every reading at the same instant
	if total == 0 {
		weights = nil
	}
	return stat.Mean(depths, weights), true
}
