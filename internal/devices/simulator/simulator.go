// Package simulator generates deterministic synthetic dives.  The dives carry
// the quirks real computers have: a pressure transmitter that reports zero
// until it syncs, samples recorded while bobbing at the surface after the
// dive, and a 100% nitrogen phantom tank.
package simulator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/chrissnell/dc2uddf/internal/devices"
	"github.com/chrissnell/dc2uddf/internal/devices/replay"
	"github.com/chrissnell/dc2uddf/internal/types"
)

// DeviceName is reported as the name of the simulated computer
const DeviceName = "simulator"

const (
	sampleInterval = 20 // seconds

	descentRate = 18.0 / 60 // m/s
	ascentRate  = 9.0 / 60  // m/s

	safetyStopDepth    = 5.0
	safetyStopDuration = 180 // seconds

	startPressure = 200.0 // bar
	// bar per second at the surface, scaled by ambient pressure
	consumptionRate = 0.02
	warmupSamples   = 3

	surfaceTemperature = 26.0
)

// Config controls the generated dives
type Config struct {
	Dives int
	Seed  int64
	// Start is the start time of the first dive; the second dive of each
	// day follows about four hours later
	Start time.Time
}

// DefaultConfig returns a small two-day dive trip
func DefaultConfig() Config {
	return Config{
		Dives: 4,
		Seed:  1,
		Start: time.Date(2012, time.February, 1, 9, 0, 0, 0, time.UTC),
	}
}

// New returns a source that plays the generated dives
func New(cfg Config) *replay.Player {
	return replay.NewPlayer(Generate(cfg))
}

// Generate produces the recording of cfg.Dives dives.  The same config
// always produces the same dives.
func Generate(cfg Config) *replay.Recording {
	if cfg.Start.IsZero() {
		cfg.Start = DefaultConfig().Start
	}

	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))
	rec := replay.NewRecording(DeviceName)
	rec.Created = cfg.Start

	for i := 0; i < cfg.Dives; i++ {
		day := cfg.Start.AddDate(0, 0, i/2)
		start := day.Add(time.Duration(i%2) * 4 * time.Hour).
			Add(time.Duration(rng.IntN(30)) * time.Minute)
		rec.Dives = append(rec.Dives, generateDive(rng, start))
	}
	return rec
}

func generateDive(rng *rand.Rand, start time.Time) replay.DiveRecord {
	maxDepth := 12 + rng.Float64()*18
	bottomTime := float64(15*60 + rng.IntN(15*60))
	nitrox := rng.IntN(2) == 0

	var dr replay.DiveRecord
	dr.Datetime = start.Format(replay.DatetimeLayout)

	if nitrox {
		dr.GasMixes = append(dr.GasMixes, devices.GasMix{Oxygen: 0.32, Nitrogen: 0.68})
	} else {
		dr.GasMixes = append(dr.GasMixes, devices.GasMix{Oxygen: 0.21, Nitrogen: 0.79})
	}
	// unused second tank slot
	dr.GasMixes = append(dr.GasMixes, devices.GasMix{Nitrogen: 1.0})

	descent := maxDepth / descentRate
	ascentToStop := (maxDepth - safetyStopDepth) / ascentRate
	ascentToSurface := safetyStopDepth / ascentRate

	phases := []float64{
		descent,
		descent + bottomTime,
		descent + bottomTime + ascentToStop,
		descent + bottomTime + ascentToStop + safetyStopDuration,
		descent + bottomTime + ascentToStop + safetyStopDuration + ascentToSurface,
	}
	end := phases[len(phases)-1]

	var (
		pressure    = startPressure
		deepest     float64
		lastTime    uint
		stopMarked  bool
		sampleIndex int
	)

	emit := func(kind devices.SampleKind, v devices.SampleValue) {
		dr.Events = append(dr.Events, replay.Event{Kind: kind, Value: v})
	}

	for t := 0.0; t <= end; t += sampleInterval {
		var depth float64
		switch {
		case t < phases[0]:
			depth = t * descentRate
		case t < phases[1]:
			depth = maxDepth + math.Sin(t/60)*0.8
		case t < phases[2]:
			depth = maxDepth - (t-phases[1])*ascentRate
		case t < phases[3]:
			depth = safetyStopDepth + (rng.Float64()-0.5)*0.3
		default:
			depth = safetyStopDepth - (t-phases[3])*ascentRate
		}
		depth = math.Max(0, depth)
		deepest = math.Max(deepest, depth)

		pressure -= consumptionRate * sampleInterval * (1 + depth/10)

		lastTime = uint(t)
		emit(devices.SampleTime, devices.SampleValue{Time: lastTime})
		emit(devices.SampleDepth, devices.SampleValue{Depth: round(depth, 2)})

		reported := round(pressure, 1)
		if sampleIndex < warmupSamples {
			reported = 0
		}
		emit(devices.SamplePressure, devices.SampleValue{Pressure: types.Pressure{Tank: 0, Bar: reported}})
		emit(devices.SampleTemperature, devices.SampleValue{Temperature: round(surfaceTemperature-depth*0.15, 1)})

		if !stopMarked && t >= phases[2] {
			stopMarked = true
			emit(devices.SampleEvent, devices.SampleValue{Event: types.Event{
				Type: types.EventSafetyStop,
				Time: lastTime,
			}})
		}
		sampleIndex++
	}

	// bobbing at the surface before the computer ends the dive
	tail := 3 + rng.IntN(3)
	for i := 0; i < tail; i++ {
		lastTime += sampleInterval
		emit(devices.SampleTime, devices.SampleValue{Time: lastTime})
		emit(devices.SampleDepth, devices.SampleValue{Depth: round(rng.Float64()*0.5, 2)})
		emit(devices.SamplePressure, devices.SampleValue{Pressure: types.Pressure{Tank: 0, Bar: round(pressure, 1)}})
	}

	diveTime := lastTime
	maxReported := round(deepest, 2)
	dr.DiveTime = &diveTime
	dr.MaxDepth = &maxReported

	return dr
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
