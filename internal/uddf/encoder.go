// Package uddf writes dive collections as UDDF 3.2 documents.
package uddf

import (
	"bufio"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/chrissnell/dc2uddf/internal/calculations"
	"github.com/chrissnell/dc2uddf/internal/constants"
	"github.com/chrissnell/dc2uddf/internal/types"
)

// Stdout is the destination that selects standard output
const Stdout = "-"

const (
	datetimeLayout          = "2006-01-02T15:04:05"
	generatorDatetimeLayout = "2006-01-02T15:04:05-07:00"

	pascalPerBar = 100000.0
	kelvinOffset = 273.15
)

// Generator identifies the program that produced a document
type Generator struct {
	Name         string
	Version      string
	Manufacturer string
	Email        string
}

// DefaultGenerator returns the identity of this program
func DefaultGenerator() Generator {
	return Generator{
		Name:         constants.GeneratorName,
		Version:      constants.Version,
		Manufacturer: constants.GeneratorManufacturer,
		Email:        constants.GeneratorEmail,
	}
}

// Encoder renders dive collections as UDDF.  The zero value is ready to use.
type Encoder struct {
	// IncludeNonSchema adds event and vendor elements to waypoints.  They are
	// not part of UDDF and are dropped by default.
	IncludeNonSchema bool
	// Now returns the generation time; defaults to time.Now
	Now func() time.Time
	// Generator defaults to DefaultGenerator when its name is empty
	Generator Generator
	Logger    *zap.SugaredLogger
}

// NewEncoder creates an encoder with the default generator identity
func NewEncoder(logger *zap.SugaredLogger) *Encoder {
	return &Encoder{
		Generator: DefaultGenerator(),
		Logger:    logger,
	}
}

func (e *Encoder) logger() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}

func (e *Encoder) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Encode writes the UDDF document for dc to w.  The collection is not
// modified.
func (e *Encoder) Encode(w io.Writer, dc *types.DiveCollection) error {
	doc := e.document(dc)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return fmt.Errorf("error writing XML header: %w", err)
	}

	enc := xml.NewEncoder(bw)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error encoding UDDF document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error encoding UDDF document: %w", err)
	}

	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("error writing UDDF document: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("error writing UDDF document: %w", err)
	}
	return nil
}

// Save writes the UDDF document for dc to the file at dest, replacing it,
// or to standard output when dest is Stdout
func (e *Encoder) Save(dc *types.DiveCollection, dest string) error {
	if dest == Stdout {
		return e.Encode(os.Stdout, dc)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %v: %w", dest, err)
	}

	cw := &countingWriter{w: f}
	if err := e.Encode(cw, dc); err != nil {
		f.Close()
		return fmt.Errorf("could not save %v: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %v: %w", dest, err)
	}

	e.logger().Infow("saved UDDF document",
		"dest", dest,
		"dives", dc.Len(),
		"size", humanize.Bytes(uint64(cw.n)))
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (e *Encoder) document(dc *types.DiveCollection) document {
	gen := e.Generator
	if gen.Name == "" {
		gen = DefaultGenerator()
	}

	dives := slices.Clone(dc.Dives)
	slices.SortStableFunc(dives, calculations.CompareDives)

	return document{
		Version: constants.UDDFVersion,
		Generator: generator{
			Name: gen.Name,
			Type: constants.GeneratorType,
			Manufacturer: manufacturer{
				Name:    gen.Manufacturer,
				Contact: contact{Email: gen.Email},
			},
			Version:  gen.Version,
			Datetime: e.now().UTC().Format(generatorDatetimeLayout),
		},
		GasDefinitions: gasDefinitionsFor(dives),
		ProfileData:    e.profileData(dives),
	}
}

// gasDefinitionsFor lists every distinct mix used by the dives.  Mixes are
// identified by name, so the first dive to use a name defines it.
func gasDefinitionsFor(dives []*types.Dive) gasDefinitions {
	var defs gasDefinitions
	seen := make(map[string]bool)

	for _, d := range dives {
		for _, m := range d.GasMixes {
			name := m.Name()
			if seen[name] {
				continue
			}
			seen[name] = true
			defs.Mixes = append(defs.Mixes, mix{
				ID:   name,
				Name: name,
				O2:   fraction(m.Oxygen),
				N2:   fraction(m.Nitrogen),
				He:   fraction(m.Helium),
				Ar:   fraction(m.Argon),
				H2:   fraction(m.Hydrogen),
			})
		}
	}
	return defs
}

func fraction(percent float64) string {
	return fmt.Sprintf("%.4f", percent/100)
}

// profileData groups the dives into repetition groups, one per calendar
// day.  An undated dive always gets a group of its own.
func (e *Encoder) profileData(dives []*types.Dive) profileData {
	var pd profileData
	var prev *types.Dive

	for i, d := range dives {
		if len(pd.Groups) == 0 || !sameDay(prev, d) {
			pd.Groups = append(pd.Groups, repetitionGroup{
				ID: fmt.Sprintf("group%d", len(pd.Groups)+1),
			})
		}
		g := &pd.Groups[len(pd.Groups)-1]
		g.Dives = append(g.Dives, e.dive(fmt.Sprintf("dive%d", i), d))
		prev = d
	}
	return pd
}

func sameDay(a, b *types.Dive) bool {
	if a == nil || !a.HasDatetime() || !b.HasDatetime() {
		return false
	}
	ay, am, ad := a.Datetime.Date()
	by, bm, bd := b.Datetime.Date()
	return ay == by && am == bm && ad == bd
}

func (e *Encoder) dive(id string, d *types.Dive) dive {
	out := dive{ID: id}

	if d.HasDatetime() {
		out.Before.Datetime = d.Datetime.Format(datetimeLayout)
	}
	if d.SurfaceIntervalKnown() {
		passed := d.SurfaceInterval
		out.Before.SurfaceInterval.PassedTime = &passed
	} else {
		out.Before.SurfaceInterval.Infinity = &struct{}{}
	}

	profile := slices.Clone(d.Samples)
	slices.SortStableFunc(profile, calculations.CompareSamples)
	for _, s := range profile {
		out.Samples.Waypoints = append(out.Samples.Waypoints, e.waypoint(s))
	}

	var pressureBegin string
	if p := d.InitialPressure(types.AnyTank); p > 0 {
		pressureBegin = fmt.Sprintf("%.2f", p*pascalPerBar)
	}
	for _, m := range d.GasMixes {
		out.Tanks = append(out.Tanks, tankData{
			Link:              link{Ref: m.Name()},
			TankPressureBegin: pressureBegin,
		})
	}

	sum := calculations.Summarize(d)
	if sum.HasAverageDepth {
		out.After.AverageDepth = fmt.Sprintf("%.1f", sum.AverageDepth)
	}
	out.After.DiveDuration = fmt.Sprintf("%.1f", float64(sum.Duration))
	out.After.GreatestDepth = fmt.Sprintf("%.1f", sum.GreatestDepth)
	if sum.HasTemperature {
		out.After.LowestTemperature = fmt.Sprintf("%.1f", sum.LowestTemperature+kelvinOffset)
	}

	return out
}

func (e *Encoder) waypoint(s *types.Sample) waypoint {
	wp := waypoint{DiveTime: s.Timestamp}

	for _, ss := range s.Subsamples {
		el, ok := e.element(s.Timestamp, ss)
		if ok {
			wp.Elements = append(wp.Elements, el)
		}
	}

	slices.SortStableFunc(wp.Elements, func(a, b element) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return wp
}

func (e *Encoder) element(ts uint, ss types.Subsample) (element, bool) {
	switch ss.Kind {
	case types.KindDepth:
		return element{Name: "depth", Value: fmt.Sprintf("%.2f", ss.Depth)}, true
	case types.KindPressure:
		return element{Name: "tankpressure", Value: fmt.Sprintf("%.2f", ss.Pressure.Bar*pascalPerBar)}, true
	case types.KindTemperature:
		return element{Name: "temperature", Value: fmt.Sprintf("%.2f", ss.Temperature+kelvinOffset)}, true
	case types.KindRBT:
		return element{Name: "remainingbottomtime", Value: strconv.FormatUint(uint64(ss.RBT), 10)}, true
	case types.KindHeartbeat:
		return element{Name: "heartbeat", Value: strconv.FormatUint(uint64(ss.Heartbeat), 10)}, true
	case types.KindBearing:
		return element{Name: "heading", Value: strconv.FormatUint(uint64(ss.Bearing), 10)}, true
	case types.KindEvent:
		if !e.IncludeNonSchema {
			e.logger().Debugw("dropping non-schema event", "divetime", ts, "event", ss.Event.Type.String())
			return element{}, false
		}
		return element{
			Name: "event",
			Attrs: []xml.Attr{
				{Name: xml.Name{Local: "type"}, Value: ss.Event.Type.String()},
				{Name: xml.Name{Local: "flags"}, Value: strconv.FormatUint(uint64(ss.Event.Flags), 10)},
				{Name: xml.Name{Local: "value"}, Value: strconv.FormatUint(uint64(ss.Event.Value), 10)},
			},
			Value: strconv.FormatUint(uint64(ss.Event.Time), 10),
		}, true
	case types.KindVendor:
		if !e.IncludeNonSchema {
			e.logger().Debugw("dropping non-schema vendor data", "divetime", ts, "size", ss.Vendor.Size)
			return element{}, false
		}
		return element{
			Name: "vendor",
			Attrs: []xml.Attr{
				{Name: xml.Name{Local: "type"}, Value: strconv.FormatUint(uint64(ss.Vendor.Type), 10)},
			},
			Value: hex.EncodeToString(ss.Vendor.Data),
		}, true
	}

	e.logger().Warnw("skipping subsample of unsupported kind", "divetime", ts, "kind", ss.Kind.String())
	return element{}, false
}
