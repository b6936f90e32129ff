package uddf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/dc2uddf/internal/calculations"
	"github.com/chrissnell/dc2uddf/internal/testutil"
	"github.com/chrissnell/dc2uddf/internal/types"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

func testEncoder(t *testing.T) *Encoder {
	enc := NewEncoder(zaptest.NewLogger(t).Sugar())
	enc.Now = func() time.Time { return fixedNow }
	return enc
}

func encode(t *testing.T, enc *Encoder, dc *types.DiveCollection) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, dc))
	assertWellFormed(t, buf.Bytes())
	return buf.String()
}

func assertWellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, "document is not well-formed")
	}
}

// waypointChildren returns the element names of the direct children of
// every waypoint, in document order
func waypointChildren(t *testing.T, data string) [][]string {
	t.Helper()

	var (
		out   [][]string
		depth int
		in    bool
	)
	dec := xml.NewDecoder(strings.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)

		switch tok := tok.(type) {
		case xml.StartElement:
			switch {
			case tok.Name.Local == "waypoint":
				in = true
				depth = 0
				out = append(out, nil)
			case in:
				if depth == 0 {
					out[len(out)-1] = append(out[len(out)-1], tok.Name.Local)
				}
				depth++
			}
		case xml.EndElement:
			switch {
			case tok.Name.Local == "waypoint" && depth == 0:
				in = false
			case in:
				depth--
			}
		}
	}
}

func TestEncodeHeaderAndGenerator(t *testing.T) {
	out := encode(t, testEncoder(t), types.NewDiveCollection())

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="http://www.streit.cc/uddf/3.2/"`)
	assert.Contains(t, out, `version="3.2.0"`)
	assert.Contains(t, out, "<name>dc2uddf</name>")
	assert.Contains(t, out, "<type>converter</type>")
	assert.Contains(t, out, "<datetime>2024-01-02T02:04:05+00:00</datetime>")
	assert.Contains(t, out, "<gasdefinitions></gasdefinitions>")
	assert.Contains(t, out, "<profiledata></profiledata>")

	gen := strings.Index(out, "<generator>")
	gas := strings.Index(out, "<gasdefinitions>")
	profile := strings.Index(out, "<profiledata>")
	assert.True(t, gen < gas && gas < profile, "root children out of order")
}

func TestEncodeCustomGenerator(t *testing.T) {
	enc := testEncoder(t)
	enc.Generator = Generator{Name: "divelog", Version: "2.1", Manufacturer: "Example Divers", Email: "logs@example.org"}

	out := encode(t, enc, types.NewDiveCollection())
	assert.Contains(t, out, "<name>divelog</name>")
	assert.Contains(t, out, "<version>2.1</version>")
	assert.Contains(t, out, "<name>Example Divers</name>")
	assert.Contains(t, out, "<email>logs@example.org</email>")
}

func TestEncodeWaypointOrder(t *testing.T) {
	d := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 12, 0, 0)
	d.AddSample(types.NewSample(10).
		AddSubsample(types.TemperatureSubsample(20)).
		AddSubsample(types.DepthSubsample(10.5)).
		AddSubsample(types.PressureSubsample(1, 200)))

	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(d))

	want := [][]string{{"divetime", "depth", "tankpressure", "temperature"}}
	if diff := cmp.Diff(want, waypointChildren(t, out)); diff != "" {
		t.Errorf("waypoint children mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out, "<divetime>10</divetime>")
	assert.Contains(t, out, "<depth>10.50</depth>")
	assert.Contains(t, out, "<tankpressure>20000000.00</tankpressure>")
	assert.Contains(t, out, "<temperature>293.15</temperature>")
}

func TestEncodeIntegerReadings(t *testing.T) {
	d := types.NewDive()
	d.AddSample(types.NewSample(0).
		AddSubsample(types.RBTSubsample(1200)).
		AddSubsample(types.HeartbeatSubsample(72)).
		AddSubsample(types.BearingSubsample(270)).
		AddSubsample(types.DepthSubsample(3)))

	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(d))

	want := [][]string{{"divetime", "depth", "heading", "heartbeat", "remainingbottomtime"}}
	if diff := cmp.Diff(want, waypointChildren(t, out)); diff != "" {
		t.Errorf("waypoint children mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, out, "<heading>270</heading>")
	assert.Contains(t, out, "<heartbeat>72</heartbeat>")
	assert.Contains(t, out, "<remainingbottomtime>1200</remainingbottomtime>")
}

func TestEncodeEmptyDive(t *testing.T) {
	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(types.NewDive()))

	assert.Contains(t, out, `<repetitiongroup id="group1">`)
	assert.Contains(t, out, `<dive id="dive0">`)
	assert.Contains(t, out, "<samples></samples>")
	assert.Contains(t, out, "<infinity></infinity>")
	assert.NotContains(t, out, "<tankdata>")
	assert.NotContains(t, out, "<passedtime>")
	assert.NotContains(t, out, "<averagedepth>")
	assert.NotContains(t, out, "<lowesttemperature>")
	assert.Contains(t, out, "<diveduration>0.0</diveduration>")
	assert.Contains(t, out, "<greatestdepth>0.0</greatestdepth>")
}

func TestEncodeExcludesNitrogenArtifact(t *testing.T) {
	d := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 12, 0, 0)
	assert.False(t, d.AddGasMix(types.GasMix{Nitrogen: 99.95}))
	assert.True(t, d.AddGasMix(types.NewGasMix(0)))

	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(d))

	assert.Equal(t, 1, strings.Count(out, "<mix "))
	assert.Equal(t, 1, strings.Count(out, "<tankdata>"))
	assert.NotContains(t, out, "0.9995")
}

func TestEncodeGasDefinitions(t *testing.T) {
	first := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 12, 0, 0)
	first.AddGasMix(types.GasMix{Oxygen: 32, Nitrogen: 68})
	first.AddGasMix(types.GasMix{Oxygen: 15, Nitrogen: 40, Helium: 45})
	second := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 15, 0, 0)
	second.AddGasMix(types.GasMix{Oxygen: 32.04, Nitrogen: 67.96})

	// the later dive is added first; definitions follow dive order
	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(second).AddDive(first))

	assert.Equal(t, 2, strings.Count(out, "<mix "))
	assert.Contains(t, out, `<mix id="eanx32">`)
	assert.Contains(t, out, "<o2>0.3200</o2>")
	assert.Contains(t, out, `<mix id="mix_15o2_40n245he00ar00h2">`)
	assert.Contains(t, out, "<he>0.4500</he>")
	assert.Contains(t, out, `<link ref="eanx32"></link>`)
	assert.Contains(t, out, `<link ref="mix_15o2_40n245he00ar00h2"></link>`)
}

func TestEncodeSimpleCollection(t *testing.T) {
	dc := testutil.SimpleDiveCollection()
	calculations.Process(dc, calculations.DefaultOptions(), zaptest.NewLogger(t).Sugar())

	out := encode(t, testEncoder(t), dc)

	assert.Equal(t, 2, strings.Count(out, "<mix "))
	assert.Contains(t, out, `<mix id="eanx32">`)
	assert.Contains(t, out, `<mix id="air">`)

	// the first two dives share a day
	assert.Equal(t, 2, strings.Count(out, "<repetitiongroup "))
	g1 := strings.Index(out, `<repetitiongroup id="group1">`)
	g2 := strings.Index(out, `<repetitiongroup id="group2">`)
	d1 := strings.Index(out, `<dive id="dive1">`)
	d2 := strings.Index(out, `<dive id="dive2">`)
	assert.True(t, g1 < d1 && d1 < g2 && g2 < d2)

	assert.Contains(t, out, "<datetime>2012-02-01T12:00:00</datetime>")
	assert.Contains(t, out, "<datetime>2012-02-02T12:00:00</datetime>")
	assert.Equal(t, 2, strings.Count(out, "<infinity></infinity>"))
	assert.Contains(t, out, "<passedtime>86190</passedtime>")
	assert.Equal(t, 3, strings.Count(out, "<tankpressurebegin>18000000.00</tankpressurebegin>"))
	assert.Equal(t, 6+8+8, strings.Count(out, "<waypoint>"))
	assert.Contains(t, out, "<greatestdepth>2.0</greatestdepth>")
	assert.Contains(t, out, "<diveduration>150.0</diveduration>")
	assert.Contains(t, out, "<diveduration>210.0</diveduration>")
}

func TestEncodeUndatedDiveGetsOwnGroup(t *testing.T) {
	morning := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 9, 0, 0)
	afternoon := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 14, 0, 0)
	undated := types.NewDive().SetMaxDepth(12)

	dc := types.NewDiveCollection().AddDive(undated).AddDive(afternoon).AddDive(morning)
	out := encode(t, testEncoder(t), dc)

	assert.Equal(t, 2, strings.Count(out, "<repetitiongroup "))
	g2 := strings.Index(out, `<repetitiongroup id="group2">`)
	d2 := strings.Index(out, `<dive id="dive2">`)
	assert.True(t, g2 >= 0 && g2 < d2)
	assert.Contains(t, out, "<greatestdepth>12.0</greatestdepth>")
}

func TestEncodeAfterDiveSummary(t *testing.T) {
	d := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 12, 0, 0)
	d.AddSample(types.NewSample(0).AddSubsample(types.DepthSubsample(0)))
	d.AddSample(types.NewSample(10).
		AddSubsample(types.DepthSubsample(10)).
		AddSubsample(types.TemperatureSubsample(20.35)))
	d.AddSample(types.NewSample(20).AddSubsample(types.DepthSubsample(0)))

	out := encode(t, testEncoder(t), types.NewDiveCollection().AddDive(d))

	assert.Contains(t, out, "<averagedepth>5.0</averagedepth>")
	assert.Contains(t, out, "<diveduration>20.0</diveduration>")
	assert.Contains(t, out, "<greatestdepth>10.0</greatestdepth>")
	assert.Contains(t, out, "<lowesttemperature>293.5</lowesttemperature>")

	avg := strings.Index(out, "<averagedepth>")
	dur := strings.Index(out, "<diveduration>")
	deepest := strings.Index(out, "<greatestdepth>")
	coldest := strings.Index(out, "<lowesttemperature>")
	assert.True(t, avg < dur && dur < deepest && deepest < coldest)
}

func TestEncodeNonSchemaElements(t *testing.T) {
	newDive := func() *types.Dive {
		d := types.NewDive()
		d.AddSample(types.NewSample(30).
			AddSubsample(types.DepthSubsample(4)).
			AddSubsample(types.EventSubsample(types.Event{Type: types.EventBookmark, Time: 30})).
			AddSubsample(types.VendorSubsample(7, []byte{0xca, 0xfe})).
			AddSubsample(types.Subsample{Kind: types.KindUndefined}))
		return d
	}

	t.Run("dropped by default", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		enc := NewEncoder(zap.New(core).Sugar())

		out := encode(t, enc, types.NewDiveCollection().AddDive(newDive()))

		assert.Equal(t, [][]string{{"divetime", "depth"}}, waypointChildren(t, out))
		assert.Equal(t, 1, logs.FilterMessage("dropping non-schema event").Len())
		assert.Equal(t, 1, logs.FilterMessage("dropping non-schema vendor data").Len())
		assert.Equal(t, 1, logs.FilterMessage("skipping subsample of unsupported kind").Len())
	})

	t.Run("included on request", func(t *testing.T) {
		enc := testEncoder(t)
		enc.IncludeNonSchema = true

		out := encode(t, enc, types.NewDiveCollection().AddDive(newDive()))

		assert.Equal(t, [][]string{{"divetime", "depth", "event", "vendor"}}, waypointChildren(t, out))
		assert.Contains(t, out, `<event type="bookmark" flags="0" value="0">30</event>`)
		assert.Contains(t, out, `<vendor type="7">cafe</vendor>`)
	})
}

func TestEncodeDoesNotMutateCollection(t *testing.T) {
	late := testutil.BuildDive(time.Date(2012, 2, 2, 12, 0, 0, 0, time.UTC), testutil.Profile{
		Timestamps: []uint{20, 0, 10},
		Depths:     []float64{0, 0, 5},
	})
	early := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 12, 0, 0)
	dc := types.NewDiveCollection().AddDive(late).AddDive(early)

	out := encode(t, testEncoder(t), dc)

	assert.Same(t, late, dc.Dives[0])
	assert.Equal(t, uint(20), late.Samples[0].Timestamp)
	assert.Equal(t, types.SurfaceIntervalUnknown, late.SurfaceInterval)

	// but the document is chronological
	assert.Less(t, strings.Index(out, "2012-02-01T12:00:00"), strings.Index(out, "2012-02-02T12:00:00"))
	assert.Less(t, strings.Index(out, "<divetime>0</divetime>"), strings.Index(out, "<divetime>20</divetime>"))
}

func TestSave(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dives.uddf")
	enc := testEncoder(t)

	require.NoError(t, enc.Save(testutil.SimpleDiveCollection(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assertWellFormed(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte(xml.Header)))
	assert.Equal(t, 3, bytes.Count(data, []byte("<dive ")))
}

func TestSaveInvalidDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "dives.uddf")
	dc := testutil.SimpleDiveCollection()

	err := testEncoder(t).Save(dc, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 3, dc.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncodeWriteError(t *testing.T) {
	err := testEncoder(t).Encode(failingWriter{}, testutil.SimpleDiveCollection())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
