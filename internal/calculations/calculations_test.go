package calculations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chrissnell/dc2uddf/internal/testutil"
	"github.com/chrissnell/dc2uddf/internal/types"
)

func pressureAt(t *testing.T, s *types.Sample) types.Pressure {
	t.Helper()
	ss := s.Subsample(types.KindPressure)
	require.NotNil(t, ss, "sample at %ds has no pressure reading", s.Timestamp)
	return ss.Pressure
}

func TestInitialPressureFix(t *testing.T) {
	dc := testutil.SimpleDiveCollection()

	fixed := InitialPressureFixCollection(dc)
	assert.Equal(t, 6, fixed)

	for _, d := range dc.Dives {
		third := pressureAt(t, d.Samples[2])
		for _, s := range d.Samples[:2] {
			p := pressureAt(t, s)
			assert.Equal(t, 180.0, p.Bar)
			assert.Equal(t, third.Tank, p.Tank)
		}
		// samples after the first good reading are untouched
		assert.Equal(t, 179.0, pressureAt(t, d.Samples[3]).Bar)
	}
}

func TestInitialPressureFixAddsMissingReadings(t *testing.T) {
	d := types.NewDive()
	d.AddSample(types.NewSample(0).AddSubsample(types.DepthSubsample(0)))
	d.AddSample(types.NewSample(10).AddSubsample(types.DepthSubsample(3)))
	d.AddSample(types.NewSample(20).
		AddSubsample(types.DepthSubsample(5)).
		AddSubsample(types.PressureSubsample(2, 200)))

	assert.Equal(t, 2, InitialPressureFix(d))

	for _, s := range d.Samples[:2] {
		p := pressureAt(t, s)
		assert.Equal(t, 200.0, p.Bar)
		assert.Equal(t, uint(2), p.Tank)
	}
}

func TestInitialPressureFixNoUsableReading(t *testing.T) {
	d := testutil.BuildDive(time.Time{}, testutil.Profile{
		Timestamps: []uint{0, 10, 20},
		Depths:     []float64{0, 5, 0},
		Pressures:  []float64{0, 0.5, 1.0},
		Tank:       0,
	})

	assert.Equal(t, 0, InitialPressureFix(d))
	assert.Equal(t, 0.0, pressureAt(t, d.Samples[0]).Bar)
	assert.Equal(t, 0.5, pressureAt(t, d.Samples[1]).Bar)
}

func TestTruncateDive(t *testing.T) {
	tests := []struct {
		name    string
		profile testutil.Profile
		want    int
		removed int
	}{
		{
			name:    "ends at surface with single sample",
			profile: testutil.ShortDiveProfile,
			want:    6,
			removed: 0,
		},
		{
			name:    "bobbing at surface",
			profile: testutil.BobbingDiveProfile,
			want:    8,
			removed: 4,
		},
		{
			name: "ends at depth",
			profile: testutil.Profile{
				Timestamps: []uint{0, 10, 20},
				Depths:     []float64{0.5, 3, 2},
			},
			want:    3,
			removed: 0,
		},
		{
			name: "just under threshold is not surface",
			profile: testutil.Profile{
				Timestamps: []uint{0, 10, 20, 30},
				Depths:     []float64{5, 0.9995, 0.5, 0.2},
			},
			want:    3,
			removed: 1,
		},
		{
			name:    "empty dive",
			profile: testutil.Profile{},
			want:    0,
			removed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.BuildDive(time.Time{}, tt.profile)
			assert.Equal(t, tt.removed, TruncateDive(d))
			assert.Len(t, d.Samples, tt.want)
		})
	}
}

func TestTruncateIgnoresSamplesWithoutDepth(t *testing.T) {
	d := testutil.BuildDive(time.Time{}, testutil.Profile{
		Timestamps: []uint{0, 10, 20},
		Depths:     []float64{10, 0.5, 0.3},
	})
	d.AddSample(types.NewSample(30).AddSubsample(types.TemperatureSubsample(22)))
	d.AddSample(types.NewSample(40).AddSubsample(types.DepthSubsample(0.1)))

	assert.Equal(t, 3, TruncateDive(d))
	require.Len(t, d.Samples, 2)
	assert.Equal(t, uint(10), d.Samples[1].Timestamp)
}

func TestTruncateCollection(t *testing.T) {
	dc := testutil.SimpleDiveCollection()

	assert.Equal(t, 8, TruncateCollection(dc))

	assert.Len(t, dc.Dives[0].Samples, 6)
	assert.Len(t, dc.Dives[1].Samples, 8)
	assert.Len(t, dc.Dives[2].Samples, 8)
}

func TestSortSamples(t *testing.T) {
	d := testutil.BuildDive(time.Time{}, testutil.Profile{
		Timestamps: []uint{30, 0, 20, 10, 20},
		Depths:     []float64{3, 0, 2, 1, 2.5},
	})

	SortSamples(d)

	var got []uint
	for _, s := range d.Samples {
		got = append(got, s.Timestamp)
	}
	assert.Equal(t, []uint{0, 10, 20, 20, 30}, got)
	// equal timestamps keep their relative order
	assert.Equal(t, 2.0, d.Samples[2].Subsample(types.KindDepth).Depth)
	assert.Equal(t, 2.5, d.Samples[3].Subsample(types.KindDepth).Depth)
}

func TestSortDives(t *testing.T) {
	early := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 0, 0)
	late := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 14, 0, 0)
	undated := types.NewDive().SetMaxDepth(7)

	dc := types.NewDiveCollection().AddDive(undated).AddDive(late).AddDive(early)
	SortDives(dc)

	require.Equal(t, 3, dc.Len())
	assert.Same(t, early, dc.Dives[0])
	assert.Same(t, late, dc.Dives[1])
	assert.Same(t, undated, dc.Dives[2])
}

func TestCalculateSurfaceInterval(t *testing.T) {
	first := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 0, 0).SetDuration(3600)
	second := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 13, 0, 0).SetDuration(1800)
	dc := types.NewDiveCollection().AddDive(second).AddDive(first)

	CalculateSurfaceInterval(dc, 0)

	assert.Same(t, first, dc.Dives[0])
	assert.Equal(t, types.SurfaceIntervalUnknown, first.SurfaceInterval)
	assert.Equal(t, int64(7200), second.SurfaceInterval)
}

func TestCalculateSurfaceIntervalUnknown(t *testing.T) {
	tests := []struct {
		name        string
		prev        *types.Dive
		cur         *types.Dive
		maxInterval time.Duration
	}{
		{
			name:        "overlapping dives",
			prev:        types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 0, 0).SetDuration(3600),
			cur:         types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 30, 0),
			maxInterval: DefaultMaxSurfaceInterval,
		},
		{
			name:        "gap longer than maximum",
			prev:        types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 0, 0).SetDuration(3600),
			cur:         types.NewDive().SetDatetimeUTC(2012, time.February, 4, 10, 0, 0),
			maxInterval: DefaultMaxSurfaceInterval,
		},
		{
			name:        "gap longer than configured maximum",
			prev:        types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 0, 0).SetDuration(3600),
			cur:         types.NewDive().SetDatetimeUTC(2012, time.February, 1, 14, 0, 0),
			maxInterval: time.Hour,
		},
		{
			name:        "undated previous dive",
			prev:        types.NewDive().SetDuration(3600),
			cur:         types.NewDive().SetDatetimeUTC(2012, time.February, 1, 14, 0, 0),
			maxInterval: DefaultMaxSurfaceInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := types.NewDiveCollection().AddDive(tt.prev).AddDive(tt.cur)
			CalculateSurfaceInterval(dc, tt.maxInterval)
			for _, d := range dc.Dives {
				assert.Equal(t, types.SurfaceIntervalUnknown, d.SurfaceInterval)
			}
		})
	}
}

func TestCalculateSurfaceIntervalDerivesDuration(t *testing.T) {
	first := testutil.BuildDive(time.Date(2012, 2, 1, 10, 0, 0, 0, time.UTC), testutil.Profile{
		Timestamps: []uint{600, 0, 300},
		Depths:     []float64{0, 0, 10},
	})
	second := types.NewDive().SetDatetimeUTC(2012, time.February, 1, 10, 20, 0)
	dc := types.NewDiveCollection().AddDive(first).AddDive(second)

	CalculateSurfaceInterval(dc, 0)

	assert.Equal(t, uint(600), first.Duration)
	assert.Equal(t, int64(600), second.SurfaceInterval)
}

func TestAverageDepth(t *testing.T) {
	tests := []struct {
		name    string
		profile testutil.Profile
		want    float64
		ok      bool
	}{
		{
			name:    "no samples",
			profile: testutil.Profile{},
			ok:      false,
		},
		{
			name: "single reading",
			profile: testutil.Profile{
				Timestamps: []uint{0},
				Depths:     []float64{4},
			},
			want: 4,
			ok:   true,
		},
		{
			name: "even spacing",
			profile: testutil.Profile{
				Timestamps: []uint{0, 10, 20},
				Depths:     []float64{0, 10, 0},
			},
			// weights 5, 10, 5
			want: 5,
			ok:   true,
		},
		{
			name: "uneven spacing",
			profile: testutil.Profile{
				Timestamps: []uint{0, 10, 30},
				Depths:     []float64{0, 12, 6},
			},
			// weights 5, 15, 10
			want: (12*15 + 6*10) / 30.0,
			ok:   true,
		},
		{
			name: "readings at the same instant",
			profile: testutil.Profile{
				Timestamps: []uint{5, 5},
				Depths:     []float64{2, 4},
			},
			want: 3,
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.BuildDive(time.Time{}, tt.profile)
			got, ok := AverageDepth(d)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSummarize(t *testing.T) {
	d := testutil.BuildDive(time.Time{}, testutil.Profile{
		Timestamps: []uint{20, 0, 10},
		Depths:     []float64{0, 0, 8.5},
	})
	d.SetMaxDepth(9)
	d.Samples[1].AddSubsample(types.TemperatureSubsample(24))
	d.Samples[2].AddSubsample(types.TemperatureSubsample(19.5))

	sum := Summarize(d)
	assert.Equal(t, 8.5, sum.GreatestDepth)
	assert.Equal(t, uint(20), sum.Duration)
	assert.True(t, sum.HasTemperature)
	assert.Equal(t, 19.5, sum.LowestTemperature)
	assert.True(t, sum.HasAverageDepth)

	// profile order is untouched
	assert.Equal(t, uint(20), d.Samples[0].Timestamp)
}

func TestSummarizeFallsBackToReportedDepth(t *testing.T) {
	d := types.NewDive().SetMaxDepth(18.2)
	d.AddSample(types.NewSample(60).AddSubsample(types.TemperatureSubsample(15)))

	sum := Summarize(d)
	assert.Equal(t, 18.2, sum.GreatestDepth)
	assert.Equal(t, uint(60), sum.Duration)
	assert.False(t, sum.HasAverageDepth)
}

func TestProcess(t *testing.T) {
	dc := testutil.SimpleDiveCollection()
	Process(dc, DefaultOptions(), zaptest.NewLogger(t).Sugar())

	require.Equal(t, 3, dc.Len())
	assert.Len(t, dc.Dives[0].Samples, 6)
	assert.Len(t, dc.Dives[1].Samples, 8)
	assert.Len(t, dc.Dives[2].Samples, 8)

	for _, d := range dc.Dives {
		assert.Equal(t, 180.0, pressureAt(t, d.Samples[0]).Bar)
		for i := 1; i < len(d.Samples); i++ {
			assert.LessOrEqual(t, d.Samples[i-1].Timestamp, d.Samples[i].Timestamp)
		}
	}

	// the first two dives share a start time, so only the third has a gap
	assert.Equal(t, types.SurfaceIntervalUnknown, dc.Dives[0].SurfaceInterval)
	assert.Equal(t, types.SurfaceIntervalUnknown, dc.Dives[1].SurfaceInterval)
	assert.Equal(t, int64(24*3600-210), dc.Dives[2].SurfaceInterval)
}

func TestProcessWithoutCorrections(t *testing.T) {
	dc := testutil.SimpleDiveCollection()
	Process(dc, Options{}, nil)

	assert.Len(t, dc.Dives[1].Samples, 12)
	assert.Equal(t, 0.0, pressureAt(t, dc.Dives[1].Samples[0]).Bar)
}
