package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/devices"
	"github.com/chrissnell/dc2uddf/internal/types"
)

// Collector downloads every dive of a source into a collection
type Collector struct {
	logger *zap.SugaredLogger
}

// NewCollector creates a collector that logs to logger
func NewCollector(logger *zap.SugaredLogger) *Collector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Collector{logger: logger}
}

// Collect reads every dive from src.  When the download stops early, the
// dives collected so far are returned together with the error.
func (c *Collector) Collect(ctx context.Context, src devices.Source) (*types.DiveCollection, error) {
	dc := types.NewDiveCollection()

	err := src.ForEach(ctx, func(d devices.Dive) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		dc.AddDive(c.convert(src.Name(), dc.Len(), d))
		return nil
	})
	if err != nil {
		return dc, fmt.Errorf("error downloading dives from %v: %w", src.Name(), err)
	}

	c.logger.Infow("downloaded dives", "source", src.Name(), "dives", dc.Len())
	return dc, nil
}

// convert builds the model of one dive.  Fields the device fails to decode
// are logged and left unset.
func (c *Collector) convert(source string, index int, d devices.Dive) *types.Dive {
	logger := c.logger.With("source", source, "dive", index)
	b := NewBuilder(logger)
	dive := b.Dive()

	if t, err := d.Datetime(); err == nil {
		dive.SetDatetime(t)
	} else {
		c.fieldError(logger, "datetime", err)
	}

	if secs, err := d.DiveTime(); err == nil {
		dive.SetDuration(secs)
	} else {
		c.fieldError(logger, "divetime", err)
	}

	if depth, err := d.MaxDepth(); err == nil {
		dive.SetMaxDepth(depth)
	} else {
		c.fieldError(logger, "maxdepth", err)
	}

	if mixes, err := d.GasMixes(); err == nil {
		for i, m := range mixes {
			gm := types.GasMix{
				ID:       uint(i),
				Oxygen:   m.Oxygen * 100,
				Helium:   m.Helium * 100,
				Nitrogen: m.Nitrogen * 100,
			}
			if !dive.AddGasMix(gm) {
				logger.Debugw("discarding nitrogen-only gas mix", "mix", i, "n2", gm.Nitrogen)
			}
		}
	} else {
		c.fieldError(logger, "gasmixes", err)
	}

	if err := d.Samples(b.HandleSample); err != nil {
		logger.Warnw("profile is incomplete", "samples", len(dive.Samples), "error", err)
	}
	if n := b.Dropped(); n > 0 {
		logger.Warnw("dropped readings without a sample time", "readings", n)
	}

	return dive
}

func (c *Collector) fieldError(logger *zap.SugaredLogger, field string, err error) {
	if errors.Is(err, devices.ErrUnsupported) {
		logger.Debugw("field not reported by device", "field", field)
		return
	}
	logger.Warnw("could not decode field", "field", field, "error", err)
}
