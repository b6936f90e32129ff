package replay

import (
	"context"

	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/devices"
)

// Recorder is a devices.Source that records everything read from the
// source it wraps.  Each dive is captured in full before it is handed on,
// so consumers see exactly what ends up in the recording.
type Recorder struct {
	src    devices.Source
	rec    *Recording
	logger *zap.SugaredLogger
}

// NewRecorder wraps src
func NewRecorder(src devices.Source, logger *zap.SugaredLogger) *Recorder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Recorder{
		src:    src,
		rec:    NewRecording(src.Name()),
		logger: logger,
	}
}

// Name returns the name of the wrapped source
func (r *Recorder) Name() string {
	return r.src.Name()
}

// ForEach captures and forwards every dive of the wrapped source
func (r *Recorder) ForEach(ctx context.Context, fn func(devices.Dive) error) error {
	return r.src.ForEach(ctx, func(d devices.Dive) error {
		dr, err := Capture(d)
		if err != nil {
			r.logger.Warnw("recorded dive with undecodable fields", "dive", len(r.rec.Dives), "error", err)
		}
		r.rec.Dives = append(r.rec.Dives, dr)
		return fn(recordedDive{&r.rec.Dives[len(r.rec.Dives)-1]})
	})
}

// Close closes the wrapped source
func (r *Recorder) Close() error {
	return r.src.Close()
}

// Recording returns what has been recorded so far
func (r *Recorder) Recording() *Recording {
	return r.rec
}
