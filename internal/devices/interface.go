// Package devices defines the contract between dc2uddf and the library that
// talks to dive computers.  Device transports and vendor formats live behind
// it; dc2uddf only consumes the decoded event stream.
package devices

import (
	"context"
	"errors"
	"time"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// ErrUnsupported is returned by a Dive getter when the computer does not
// record that field
var ErrUnsupported = errors.New("field not supported by device")

// Source is a dive computer, or anything that replays one
type Source interface {
	// Name identifies the device in logs and recordings
	Name() string
	// ForEach calls fn for every dive stored on the device, newest first
	// for most computers.  It stops at the first error returned by fn and
	// returns it, or returns ctx.Err() when the context is cancelled.
	ForEach(ctx context.Context, fn func(Dive) error) error
	Close() error
}

// Dive is one decoded dive record.  Getters return ErrUnsupported for
// fields the device does not provide.
type Dive interface {
	Datetime() (time.Time, error)
	// DiveTime in seconds
	DiveTime() (uint, error)
	// MaxDepth in meters
	MaxDepth() (float64, error)
	GasMixes() ([]GasMix, error)
	// Samples streams the profile as events.  Every sample starts with a
	// SampleTime event followed by the readings taken at that time.
	Samples(fn func(SampleKind, SampleValue)) error
}

// GasMix is a gas composition as reported by the device, in fractions 0-1
type GasMix struct {
	Oxygen   float64 `msgpack:"o2"`
	Helium   float64 `msgpack:"he"`
	Nitrogen float64 `msgpack:"n2"`
}

// SampleKind identifies the field of SampleValue carried by a sample event
type SampleKind uint8

const (
	SampleTime SampleKind = iota
	SampleDepth
	SamplePressure
	SampleTemperature
	SampleEvent
	SampleRBT
	SampleHeartbeat
	SampleBearing
	SampleVendor
)

var sampleKindNames = [...]string{
	SampleTime:        "time",
	SampleDepth:       "depth",
	SamplePressure:    "pressure",
	SampleTemperature: "temperature",
	SampleEvent:       "event",
	SampleRBT:         "rbt",
	SampleHeartbeat:   "heartbeat",
	SampleBearing:     "bearing",
	SampleVendor:      "vendor",
}

func (k SampleKind) String() string {
	if int(k) < len(sampleKindNames) {
		return sampleKindNames[k]
	}
	return "unknown"
}

// SampleValue is the payload of a sample event.  Only the field matching the
// event's SampleKind is set.
type SampleValue struct {
	// Time in seconds from the start of the dive
	Time        uint           `msgpack:"time,omitempty"`
	Depth       float64        `msgpack:"depth,omitempty"`
	Pressure    types.Pressure `msgpack:"pressure,omitempty"`
	Temperature float64        `msgpack:"temp,omitempty"`
	Event       types.Event    `msgpack:"event,omitempty"`
	RBT         uint           `msgpack:"rbt,omitempty"`
	Heartbeat   uint           `msgpack:"hr,omitempty"`
	Bearing     uint           `msgpack:"bearing,omitempty"`
	Vendor      types.Vendor   `msgpack:"vendor,omitempty"`
}
