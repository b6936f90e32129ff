package types

// SubsampleKind identifies the payload carried by a Subsample
type SubsampleKind uint8

const (
	KindUndefined SubsampleKind = iota
	KindDepth
	KindPressure
	KindTemperature
	KindEvent
	KindRBT
	KindHeartbeat
	KindBearing
	KindVendor
)

var kindNames = [...]string{
	KindUndefined:   "undefined",
	KindDepth:       "depth",
	KindPressure:    "pressure",
	KindTemperature: "temperature",
	KindEvent:       "event",
	KindRBT:         "rbt",
	KindHeartbeat:   "heartbeat",
	KindBearing:     "bearing",
	KindVendor:      "vendor",
}

func (k SubsampleKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "undefined"
}

// Sample is every reading the computer recorded at one point of the dive.
// Timestamp is in seconds from the start of the dive.
type Sample struct {
	Timestamp  uint        `msgpack:"t"`
	Subsamples []Subsample `msgpack:"s"`
}

// Pressure is a tank pressure reading in bar
type Pressure struct {
	Tank uint    `msgpack:"tank"`
	Bar  float64 `msgpack:"bar"`
}

// Event is a dive computer event (alarm, bookmark, gas switch...)
type Event struct {
	Type  EventType `msgpack:"type"`
	Time  uint      `msgpack:"time"`
	Flags uint      `msgpack:"flags"`
	Value uint      `msgpack:"value"`
}

// Vendor carries opaque vendor-specific bytes
type Vendor struct {
	Type uint   `msgpack:"type"`
	Size uint   `msgpack:"size"`
	Data []byte `msgpack:"data"`
}

// Subsample is a single reading within a Sample.  Only the field matching
// Kind is meaningful.
type Subsample struct {
	Kind SubsampleKind `msgpack:"k"`
	// Depth in meters
	Depth    float64  `msgpack:"depth,omitempty"`
	Pressure Pressure `msgpack:"pressure,omitempty"`
	// Temperature in degrees Celsius
	Temperature float64 `msgpack:"temp,omitempty"`
	Event       Event   `msgpack:"event,omitempty"`
	// RBT is the remaining bottom time in seconds
	RBT       uint   `msgpack:"rbt,omitempty"`
	Heartbeat uint   `msgpack:"hr,omitempty"`
	Bearing   uint   `msgpack:"bearing,omitempty"`
	Vendor    Vendor `msgpack:"vendor,omitempty"`
}

// NewSample returns an empty sample at the given offset in seconds
func NewSample(timestamp uint) *Sample {
	return &Sample{Timestamp: timestamp}
}

// AddSubsample appends a reading to the sample
func (s *Sample) AddSubsample(ss Subsample) *Sample {
	s.Subsamples = append(s.Subsamples, ss)
	return s
}

// Subsample returns the first reading of the given kind, or nil.  The
// pointer is only valid until the next AddSubsample on this sample.
func (s *Sample) Subsample(kind SubsampleKind) *Subsample {
	for i := range s.Subsamples {
		if s.Subsamples[i].Kind == kind {
			return &s.Subsamples[i]
		}
	}
	return nil
}

func DepthSubsample(meters float64) Subsample {
	return Subsample{Kind: KindDepth, Depth: meters}
}

func PressureSubsample(tank uint, bar float64) Subsample {
	return Subsample{Kind: KindPressure, Pressure: Pressure{Tank: tank, Bar: bar}}
}

func TemperatureSubsample(celsius float64) Subsample {
	return Subsample{Kind: KindTemperature, Temperature: celsius}
}

func EventSubsample(e Event) Subsample {
	return Subsample{Kind: KindEvent, Event: e}
}

func RBTSubsample(seconds uint) Subsample {
	return Subsample{Kind: KindRBT, RBT: seconds}
}

func HeartbeatSubsample(bpm uint) Subsample {
	return Subsample{Kind: KindHeartbeat, Heartbeat: bpm}
}

func BearingSubsample(degrees uint) Subsample {
	return Subsample{Kind: KindBearing, Bearing: degrees}
}

// VendorSubsample copies data so the sample does not alias the decoder's
// buffer
func VendorSubsample(typ uint, data []byte) Subsample {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Subsample{Kind: KindVendor, Vendor: Vendor{Type: typ, Size: uint(len(data)), Data: buf}}
}
