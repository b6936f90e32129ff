package types

import (
	"time"
)

// SurfaceIntervalUnknown marks a surface interval that is unknown or
// unbounded (first dive of a log, implausibly long gaps, undated dives)
const SurfaceIntervalUnknown int64 = -1

// AnyTank selects pressure readings from every tank
const AnyTank = -1

// minValidPressure is the lowest pressure, in bar, that counts as a real
// tank reading
const minValidPressure = 0.1

// DiveCollection is the set of dives downloaded from a dive computer in a
// single run
type DiveCollection struct {
	Dives []*Dive
}

// Dive is a single dive: a header reported by the computer plus its profile
type Dive struct {
	// Datetime is the zero time when the computer did not report one
	Datetime time.Time
	// Duration in seconds, 0 when not reported
	Duration uint
	// MaxDepth in meters as reported by the computer
	MaxDepth float64
	// SurfaceInterval in seconds before this dive, or SurfaceIntervalUnknown
	SurfaceInterval int64
	GasMixes        []GasMix
	Samples         []*Sample
}

// NewDiveCollection returns an empty collection
func NewDiveCollection() *DiveCollection {
	return &DiveCollection{}
}

// AddDive appends a dive to the collection
func (dc *DiveCollection) AddDive(d *Dive) *DiveCollection {
	dc.Dives = append(dc.Dives, d)
	return dc
}

// Len returns the number of dives in the collection
func (dc *DiveCollection) Len() int {
	return len(dc.Dives)
}

// NewDive returns an empty, undated dive
func NewDive() *Dive {
	return &Dive{
		SurfaceInterval: SurfaceIntervalUnknown,
	}
}

// AddSample appends a sample to the dive profile
func (d *Dive) AddSample(s *Sample) *Dive {
	d.Samples = append(d.Samples, s)
	return d
}

// AddGasMix attaches a gas mix to the dive.  The ~100% nitrogen mixes that
// some computers report for unused tanks are discarded; AddGasMix returns
// false when that happens.
func (d *Dive) AddGasMix(m GasMix) bool {
	if !m.Valid() {
		return false
	}
	m.classify()
	d.GasMixes = append(d.GasMixes, m)
	return true
}

// SetDatetime sets the start time of the dive in the computer's local time
func (d *Dive) SetDatetime(t time.Time) *Dive {
	d.Datetime = t
	return d
}

// SetDatetimeUTC sets the start time of the dive from broken-down UTC fields
func (d *Dive) SetDatetimeUTC(year int, month time.Month, day, hour, minute, second int) *Dive {
	d.Datetime = time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	return d
}

// SetDuration sets the dive time in seconds
func (d *Dive) SetDuration(seconds uint) *Dive {
	d.Duration = seconds
	return d
}

// SetMaxDepth sets the maximum depth in meters
func (d *Dive) SetMaxDepth(depth float64) *Dive {
	d.MaxDepth = depth
	return d
}

// HasDatetime reports whether the computer reported a start time
func (d *Dive) HasDatetime() bool {
	return !d.Datetime.IsZero()
}

// SurfaceIntervalKnown reports whether SurfaceInterval holds a real value
func (d *Dive) SurfaceIntervalKnown() bool {
	return d.SurfaceInterval != SurfaceIntervalUnknown
}

// InitialPressure returns the first pressure reading above 0.1 bar for the
// given tank, or for any tank when tank is AnyTank.  Samples are scanned in
// their current order.  It returns 0 when there is no such reading.
func (d *Dive) InitialPressure(tank int) float64 {
	for _, s := range d.Samples {
		for i := range s.Subsamples {
			ss := &s.Subsamples[i]
			if ss.Kind != KindPressure {
				continue
			}
			if tank != AnyTank && ss.Pressure.Tank != uint(tank) {
				continue
			}
			if ss.Pressure.Bar > minValidPressure {
				return ss.Pressure.Bar
			}
		}
	}
	return 0
}
