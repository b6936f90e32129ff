// Package logbook archives downloaded dives so they can be exported again
// later.  Dives are keyed by their start time: a dive whose start time is
// already archived is skipped, so downloading the same computer twice does
// not duplicate dives.  Undated dives are always archived.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/types"
)

// ErrUnknownDriver is returned by Open for drivers it does not support
var ErrUnknownDriver = errors.New("unknown logbook driver")

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// startTimeLayout keeps the wall clock and offset the computer reported
const startTimeLayout = time.RFC3339Nano

// Store is a dive archive
type Store interface {
	// SaveCollection archives every dive not already in the logbook
	SaveCollection(ctx context.Context, dc *types.DiveCollection) (SaveResult, error)
	// LoadCollection returns every archived dive in the order they were
	// archived
	LoadCollection(ctx context.Context) (*types.DiveCollection, error)
	Close() error
}

// SaveResult summarizes one import
type SaveResult struct {
	ImportID uuid.UUID
	Saved    int
	Skipped  int
}

// Open connects to the logbook with the given driver
func Open(ctx context.Context, driver, dsn string, logger *zap.SugaredLogger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	switch driver {
	case DriverSQLite:
		return NewSQLiteStore(ctx, dsn, logger)
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// profile is the part of a dive stored as a msgpack blob
type profile struct {
	Duration uint            `msgpack:"duration"`
	MaxDepth float64         `msgpack:"maxdepth"`
	GasMixes []types.GasMix  `msgpack:"gasmixes"`
	Samples  []*types.Sample `msgpack:"samples"`
}

func encodeProfile(d *types.Dive) ([]byte, error) {
	return msgpack.Marshal(&profile{
		Duration: d.Duration,
		MaxDepth: d.MaxDepth,
		GasMixes: d.GasMixes,
		Samples:  d.Samples,
	})
}

// decodeDive rebuilds a dive from its start time and profile blob
func decodeDive(startedAt *string, blob []byte) (*types.Dive, error) {
	var p profile
	if err := msgpack.Unmarshal(blob, &p); err != nil {
		return nil, fmt.Errorf("error decoding dive profile: %w", err)
	}

	d := types.NewDive().SetDuration(p.Duration).SetMaxDepth(p.MaxDepth)
	if startedAt != nil {
		t, err := time.Parse(startTimeLayout, *startedAt)
		if err != nil {
			return nil, fmt.Errorf("error parsing dive start time %q: %w", *startedAt, err)
		}
		d.SetDatetime(t)
	}
	for _, m := range p.GasMixes {
		d.AddGasMix(m)
	}
	for _, s := range p.Samples {
		d.AddSample(s)
	}
	return d, nil
}

// startTime returns the dedupe key of a dive, nil for undated dives
func startTime(d *types.Dive) *string {
	if !d.HasDatetime() {
		return nil
	}
	s := d.Datetime.Format(startTimeLayout)
	return &s
}
