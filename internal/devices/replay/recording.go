// Package replay records the event stream of a dive computer and plays it
// back as a devices.Source, so a download can be converted again without the
// device.
package replay

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/dc2uddf/internal/devices"
)

// FormatVersion is written to every recording
const FormatVersion = 1

// ErrUnsupportedFormat is returned when a recording was written by a newer
// version of the format
var ErrUnsupportedFormat = errors.New("unsupported recording format")

// DatetimeLayout is how dive start times are recorded.  It keeps the
// device's wall clock and offset; msgpack's native time encoding would
// convert to the local zone on decode.
const DatetimeLayout = time.RFC3339Nano

// Recording is everything a device reported during one download
type Recording struct {
	Format  int          `msgpack:"format"`
	Device  string       `msgpack:"device"`
	Created time.Time    `msgpack:"created"`
	Dives   []DiveRecord `msgpack:"dives"`
}

// DiveRecord holds one dive.  Pointer fields are nil when the device did
// not report the field.
type DiveRecord struct {
	Datetime string           `msgpack:"datetime,omitempty"`
	DiveTime *uint            `msgpack:"divetime,omitempty"`
	MaxDepth *float64         `msgpack:"maxdepth,omitempty"`
	GasMixes []devices.GasMix `msgpack:"gasmixes,omitempty"`
	Events   []Event          `msgpack:"events,omitempty"`
	// SamplesErr is the error the device returned while streaming samples
	SamplesErr string `msgpack:"samples_err,omitempty"`
}

// Event is one sample event
type Event struct {
	Kind  devices.SampleKind  `msgpack:"k"`
	Value devices.SampleValue `msgpack:"v"`
}

// NewRecording creates an empty recording for the named device
func NewRecording(device string) *Recording {
	return &Recording{
		Format:  FormatVersion,
		Device:  device,
		Created: time.Now().UTC(),
	}
}

// Marshal encodes the recording
func (r *Recording) Marshal() ([]byte, error) {
	return msgpack.Marshal(r)
}

// Unmarshal decodes a recording produced by Marshal
func Unmarshal(data []byte) (*Recording, error) {
	var r Recording
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("error decoding recording: %w", err)
	}
	if r.Format > FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedFormat, r.Format)
	}
	return &r, nil
}

// Save writes the recording to path, replacing any existing file
func (r *Recording) Save(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("error encoding recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing recording %v: %w", path, err)
	}
	return nil
}

// Load reads a recording from path
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading recording %v: %w", path, err)
	}
	return Unmarshal(data)
}

// Capture reads every field and sample event of d into a record.  Field
// errors other than devices.ErrUnsupported are returned after the rest of
// the dive has been captured.
func Capture(d devices.Dive) (DiveRecord, error) {
	var (
		rec  DiveRecord
		errs []error
	)

	if t, err := d.Datetime(); err == nil {
		rec.Datetime = t.Format(DatetimeLayout)
	} else if !errors.Is(err, devices.ErrUnsupported) {
		errs = append(errs, fmt.Errorf("datetime: %w", err))
	}

	if secs, err := d.DiveTime(); err == nil {
		rec.DiveTime = &secs
	} else if !errors.Is(err, devices.ErrUnsupported) {
		errs = append(errs, fmt.Errorf("divetime: %w", err))
	}

	if depth, err := d.MaxDepth(); err == nil {
		rec.MaxDepth = &depth
	} else if !errors.Is(err, devices.ErrUnsupported) {
		errs = append(errs, fmt.Errorf("maxdepth: %w", err))
	}

	if mixes, err := d.GasMixes(); err == nil {
		rec.GasMixes = mixes
	} else if !errors.Is(err, devices.ErrUnsupported) {
		errs = append(errs, fmt.Errorf("gasmixes: %w", err))
	}

	err := d.Samples(func(kind devices.SampleKind, v devices.SampleValue) {
		rec.Events = append(rec.Events, Event{Kind: kind, Value: v})
	})
	if err != nil {
		rec.SamplesErr = err.Error()
	}

	return rec, errors.Join(errs...)
}
