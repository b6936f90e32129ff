package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/dc2uddf/internal/devices"
)

// Player is a devices.Source that plays back a recording
type Player struct {
	rec *Recording
}

// NewPlayer plays back rec
func NewPlayer(rec *Recording) *Player {
	return &Player{rec: rec}
}

// Open loads the recording at path and plays it back
func Open(path string) (*Player, error) {
	rec, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewPlayer(rec), nil
}

// Name returns the name of the recorded device
func (p *Player) Name() string {
	return p.rec.Device
}

// ForEach replays every recorded dive in recording order
func (p *Player) ForEach(ctx context.Context, fn func(devices.Dive) error) error {
	for i := range p.rec.Dives {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(recordedDive{&p.rec.Dives[i]}); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op
func (p *Player) Close() error {
	return nil
}

type recordedDive struct {
	rec *DiveRecord
}

func (d recordedDive) Datetime() (time.Time, error) {
	if d.rec.Datetime == "" {
		return time.Time{}, devices.ErrUnsupported
	}
	t, err := time.Parse(DatetimeLayout, d.rec.Datetime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid recorded datetime: %w", err)
	}
	return t, nil
}

func (d recordedDive) DiveTime() (uint, error) {
	if d.rec.DiveTime == nil {
		return 0, devices.ErrUnsupported
	}
	return *d.rec.DiveTime, nil
}

func (d recordedDive) MaxDepth() (float64, error) {
	if d.rec.MaxDepth == nil {
		return 0, devices.ErrUnsupported
	}
	return *d.rec.MaxDepth, nil
}

func (d recordedDive) GasMixes() ([]devices.GasMix, error) {
	return d.rec.GasMixes, nil
}

func (d recordedDive) Samples(fn func(devices.SampleKind, devices.SampleValue)) error {
	for _, ev := range d.rec.Events {
		fn(ev.Kind, ev.Value)
	}
	if d.rec.SamplesErr != "" {
		return errors.New(d.rec.SamplesErr)
	}
	return nil
}
