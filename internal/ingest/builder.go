// Package ingest turns the event stream of a devices.Source into the dive
// model.
package ingest

import (
	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/devices"
	"github.com/chrissnell/dc2uddf/internal/types"
)

// Builder assembles one dive from its sample events.  A SampleTime event
// opens a new sample; every other event adds a reading to the open sample.
type Builder struct {
	dive    *types.Dive
	current *types.Sample
	dropped int
	logger  *zap.SugaredLogger
}

// NewBuilder starts a new, empty dive
func NewBuilder(logger *zap.SugaredLogger) *Builder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Builder{
		dive:   types.NewDive(),
		logger: logger,
	}
}

// Dive returns the dive being built
func (b *Builder) Dive() *types.Dive {
	return b.dive
}

// Dropped returns the number of readings received before the first
// SampleTime event
func (b *Builder) Dropped() int {
	return b.dropped
}

// HandleSample consumes one sample event.  It has the signature expected by
// devices.Dive.Samples.
func (b *Builder) HandleSample(kind devices.SampleKind, v devices.SampleValue) {
	if kind == devices.SampleTime {
		b.current = types.NewSample(v.Time)
		b.dive.AddSample(b.current)
		return
	}

	if b.current == nil {
		b.dropped++
		b.logger.Debugw("dropping reading received before the first sample time", "kind", kind.String())
		return
	}

	switch kind {
	case devices.SampleDepth:
		b.current.AddSubsample(types.DepthSubsample(v.Depth))
	case devices.SamplePressure:
		b.current.AddSubsample(types.PressureSubsample(v.Pressure.Tank, v.Pressure.Bar))
	case devices.SampleTemperature:
		b.current.AddSubsample(types.TemperatureSubsample(v.Temperature))
	case devices.SampleEvent:
		b.current.AddSubsample(types.EventSubsample(v.Event))
	case devices.SampleRBT:
		b.current.AddSubsample(types.RBTSubsample(v.RBT))
	case devices.SampleHeartbeat:
		b.current.AddSubsample(types.HeartbeatSubsample(v.Heartbeat))
	case devices.SampleBearing:
		b.current.AddSubsample(types.BearingSubsample(v.Bearing))
	case devices.SampleVendor:
		b.current.AddSubsample(types.VendorSubsample(v.Vendor.Type, v.Vendor.Data))
	default:
		b.logger.Warnw("ignoring sample event of unknown kind", "kind", uint8(kind), "time", b.current.Timestamp)
	}
}
