package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/calculations"
	"github.com/chrissnell/dc2uddf/internal/devices"
	"github.com/chrissnell/dc2uddf/internal/devices/replay"
	"github.com/chrissnell/dc2uddf/internal/devices/simulator"
	"github.com/chrissnell/dc2uddf/internal/ingest"
	"github.com/chrissnell/dc2uddf/internal/logbook"
	"github.com/chrissnell/dc2uddf/internal/types"
	"github.com/chrissnell/dc2uddf/internal/uddf"
	"github.com/chrissnell/dc2uddf/pkg/config"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Convert downloads every dive from the configured source, corrects it,
// archives it when a logbook is configured and writes the UDDF document.
func (a *App) Convert(ctx context.Context) error {
	logger := a.logger.With("run", uuid.New())

	src, err := a.openSource(logger)
	if err != nil {
		return err
	}
	defer src.Close()

	var recorder *replay.Recorder
	if a.config.Source.Record != "" {
		recorder = replay.NewRecorder(src, logger)
		src = recorder
	}

	dc, err := ingest.NewCollector(logger).Collect(ctx, src)
	if err != nil {
		if ctx.Err() != nil || dc.Len() == 0 {
			return err
		}
		logger.Warnw("download incomplete, converting the dives read so far", "dives", dc.Len(), "error", err)
	}

	if recorder != nil {
		if err := recorder.Recording().Save(a.config.Source.Record); err != nil {
			return err
		}
		logger.Infow("saved recording", "path", a.config.Source.Record, "dives", dc.Len())
	}

	calculations.Process(dc, a.options(), logger)

	if a.config.Logbook.Enabled() {
		if err := a.archive(ctx, dc, logger); err != nil {
			return err
		}
	}

	return a.encoder(logger).Save(dc, a.config.Output.Path)
}

// Export writes every dive archived in the logbook as a UDDF document
func (a *App) Export(ctx context.Context) error {
	if !a.config.Logbook.Enabled() {
		return errors.New("export requires a logbook")
	}
	logger := a.logger.With("run", uuid.New())

	store, err := logbook.Open(ctx, a.config.Logbook.Driver, a.config.Logbook.DSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	dc, err := store.LoadCollection(ctx)
	if err != nil {
		return err
	}
	logger.Infow("loaded dives from logbook", "driver", a.config.Logbook.Driver, "dives", dc.Len())

	// archived dives are already corrected; only the derived values are
	// recomputed over the whole logbook
	opts := a.options()
	opts.Truncate = false
	opts.InitialPressureFix = false
	calculations.Process(dc, opts, logger)

	return a.encoder(logger).Save(dc, a.config.Output.Path)
}

func (a *App) openSource(logger *zap.SugaredLogger) (devices.Source, error) {
	switch a.config.Source.Type {
	case config.SourceReplay:
		logger.Infof("opening recording [%v]", a.config.Source.Path)
		return replay.Open(a.config.Source.Path)
	case config.SourceSimulator:
		cfg := simulator.DefaultConfig()
		cfg.Dives = a.config.Source.Dives
		cfg.Seed = a.config.Source.Seed
		logger.Infof("simulating %d dives (seed %d)", cfg.Dives, cfg.Seed)
		return simulator.New(cfg), nil
	}
	return nil, fmt.Errorf("unknown source type %q", a.config.Source.Type)
}

func (a *App) archive(ctx context.Context, dc *types.DiveCollection, logger *zap.SugaredLogger) error {
	store, err := logbook.Open(ctx, a.config.Logbook.Driver, a.config.Logbook.DSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.SaveCollection(ctx, dc)
	return err
}

func (a *App) options() calculations.Options {
	return calculations.Options{
		Truncate:           a.config.Corrections.Truncate,
		InitialPressureFix: a.config.Corrections.InitialPressureFix,
		MaxSurfaceInterval: a.config.Corrections.MaxSurfaceInterval,
	}
}

func (a *App) encoder(logger *zap.SugaredLogger) *uddf.Encoder {
	enc := uddf.NewEncoder(logger)
	enc.IncludeNonSchema = a.config.Output.IncludeNonSchema
	enc.Now = a.now

	g := a.config.Generator
	if g.Name != "" {
		enc.Generator.Name = g.Name
	}
	if g.Version != "" {
		enc.Generator.Version = g.Version
	}
	if g.Manufacturer != "" {
		enc.Generator.Manufacturer = g.Manufacturer
	}
	if g.Email != "" {
		enc.Generator.Email = g.Email
	}
	return enc
}
