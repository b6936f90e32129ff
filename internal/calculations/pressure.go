// Package calculations holds the corrections and derived values computed
// over downloaded dives before they are exported.
package calculations

import (
	"github.com/chrissnell/dc2uddf/internal/types"
)

// initialPressureThreshold is the lowest reading, in bar, that is trusted as
// the real starting pressure of a tank
const initialPressureThreshold = 1.0

// InitialPressureFix backfills the tank pressure of the samples recorded
// before the pressure transmitter settled.  Uwatec transmitters commonly
// report zero until they have synced with the computer.
//
// The first pressure reading above 1 bar, in current sample order, is used
// for every sample before it: existing pressure readings are overwritten and
// samples without one get a reading for the same tank.  Dives that never
// report a usable pressure are left alone.  It returns the number of samples
// that were changed.
func InitialPressureFix(d *types.Dive) int {
	var (
		initialPressure float64
		initialTank     uint
		found           bool
		pending         []*types.Sample
	)

	for _, s := range d.Samples {
		if ss := s.Subsample(types.KindPressure); ss != nil && ss.Pressure.Bar > initialPressureThreshold {
			initialPressure = ss.Pressure.Bar
			initialTank = ss.Pressure.Tank
			found = true
			break
		}
		pending = append(pending, s)
	}

	if !found {
		return 0
	}

	for _, s := range pending {
		if ss := s.Subsample(types.KindPressure); ss != nil {
			ss.Pressure.Bar = initialPressure
			continue
		}
		s.AddSubsample(types.PressureSubsample(initialTank, initialPressure))
	}
	return len(pending)
}

// InitialPressureFixCollection applies InitialPressureFix to every dive, in
// collection order
func InitialPressureFixCollection(dc *types.DiveCollection) int {
	fixed := 0
	for _, d := range dc.Dives {
		fixed += InitialPressureFix(d)
	}
	return fixed
}
