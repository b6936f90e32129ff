package types

// EventType is the kind of event a dive computer logged in a sample
type EventType uint8

const (
	EventNone EventType = iota
	EventDecoStop
	EventRBT
	EventAscent
	EventCeiling
	EventWorkload
	EventTransmitter
	EventViolation
	EventBookmark
	EventSurface
	EventSafetyStop
	EventGasChange
	EventSafetyStopVoluntary
	EventSafetyStopMandatory
	EventDeepStop
	EventCeilingSafetyStop
	EventUnknown
	EventDiveTime
	EventMaxDepth
	EventOLF
	EventPO2
	EventAirTime
	EventRGBM
	EventHeading
	EventTissueLevel
	EventGasChange2
	EventNDL
)

var eventNames = [...]string{
	EventNone:                "none",
	EventDecoStop:            "decostop",
	EventRBT:                 "rbt",
	EventAscent:              "ascent",
	EventCeiling:             "ceiling",
	EventWorkload:            "workload",
	EventTransmitter:         "transmitter",
	EventViolation:           "violation",
	EventBookmark:            "bookmark",
	EventSurface:             "surface",
	EventSafetyStop:          "safetystop",
	EventGasChange:           "gaschange",
	EventSafetyStopVoluntary: "safetystop_voluntary",
	EventSafetyStopMandatory: "safetystop_mandatory",
	EventDeepStop:            "deepstop",
	EventCeilingSafetyStop:   "ceiling_safetystop",
	EventUnknown:             "unknown",
	EventDiveTime:            "divetime",
	EventMaxDepth:            "maxdepth",
	EventOLF:                 "olf",
	EventPO2:                 "po2",
	EventAirTime:             "airtime",
	EventRGBM:                "rgbm",
	EventHeading:             "heading",
	EventTissueLevel:         "tissuelevel",
	EventGasChange2:          "gaschange2",
	EventNDL:                 "ndl",
}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}
