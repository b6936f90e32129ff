// Package testutil holds dive fixtures shared by package tests.
package testutil

import (
	"time"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// Profile describes a dive profile as parallel slices.  Pressures may be
// nil for a profile without tank readings.
type Profile struct {
	Timestamps []uint
	Depths     []float64
	Pressures  []float64
	Tank       uint
}

// BuildDive creates a dive from a profile.  Each sample gets its pressure
// reading first, then its depth.
func BuildDive(start time.Time, p Profile) *types.Dive {
	d := types.NewDive()
	if !start.IsZero() {
		d.SetDatetime(start)
	}
	for i, ts := range p.Timestamps {
		s := types.NewSample(ts)
		if p.Pressures != nil {
			s.AddSubsample(types.PressureSubsample(p.Tank, p.Pressures[i]))
		}
		s.AddSubsample(types.DepthSubsample(p.Depths[i]))
		d.AddSample(s)
	}
	return d
}

// ShortDiveProfile is six samples; the first two have no tank pressure yet
// and the last one is back at the surface
var ShortDiveProfile = Profile{
	Timestamps: []uint{0, 30, 60, 90, 120, 150},
	Depths:     []float64{0.0, 1.0, 2.0, 2.0, 1.0, 0.0},
	Pressures:  []float64{0.0, 0.0, 180.0, 179.0, 178.5, 177.5},
	Tank:       1,
}

// BobbingDiveProfile is twelve samples that end with four samples bobbing at
// the surface after the final ascent
var BobbingDiveProfile = Profile{
	Timestamps: []uint{0, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330},
	Depths:     []float64{0.0, 1.0, 2.0, 2.0, 1.0, 0.0, 2.0, 0.0, 0.2, 0.1, 0.0, 0.1},
	Pressures:  []float64{0.0, 0.0, 180.0, 179.0, 178.5, 177.5, 176.5, 177.5, 177.5, 177.5, 177.5, 177.5},
	Tank:       1,
}

// SimpleDiveCollection returns three dives: a short nitrox dive and two
// bobbing air dives on consecutive days
func SimpleDiveCollection() *types.DiveCollection {
	dc := types.NewDiveCollection()

	dive1 := BuildDive(time.Date(2012, 2, 1, 12, 0, 0, 0, time.UTC), ShortDiveProfile)
	dive1.AddGasMix(types.GasMix{Oxygen: 32, Nitrogen: 68})
	dc.AddDive(dive1)

	dive2 := BuildDive(time.Date(2012, 2, 1, 12, 0, 0, 0, time.UTC), BobbingDiveProfile)
	dive2.AddGasMix(types.NewGasMix(0))
	dc.AddDive(dive2)

	dive3 := BuildDive(time.Date(2012, 2, 2, 12, 0, 0, 0, time.UTC), BobbingDiveProfile)
	dive3.AddGasMix(types.NewGasMix(0))
	dc.AddDive(dive3)

	return dc
}
