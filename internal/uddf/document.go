package uddf

import (
	"encoding/xml"
	"strconv"
)

// The structs in this file mirror the subset of UDDF 3.2 that dc2uddf
// produces.  Child order in the document follows field order.

type document struct {
	XMLName        xml.Name       `xml:"http://www.streit.cc/uddf/3.2/ uddf"`
	Version        string         `xml:"version,attr"`
	Generator      generator      `xml:"generator"`
	GasDefinitions gasDefinitions `xml:"gasdefinitions"`
	ProfileData    profileData    `xml:"profiledata"`
}

type generator struct {
	Name         string       `xml:"name"`
	Type         string       `xml:"type"`
	Manufacturer manufacturer `xml:"manufacturer"`
	Version      string       `xml:"version"`
	Datetime     string       `xml:"datetime"`
}

type manufacturer struct {
	Name    string  `xml:"name"`
	Contact contact `xml:"contact"`
}

type contact struct {
	Email string `xml:"email"`
}

type gasDefinitions struct {
	Mixes []mix `xml:"mix"`
}

type mix struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name"`
	O2   string `xml:"o2"`
	N2   string `xml:"n2"`
	He   string `xml:"he"`
	Ar   string `xml:"ar"`
	H2   string `xml:"h2"`
}

type profileData struct {
	Groups []repetitionGroup `xml:"repetitiongroup"`
}

type repetitionGroup struct {
	ID    string `xml:"id,attr"`
	Dives []dive `xml:"dive"`
}

type dive struct {
	ID     string                `xml:"id,attr"`
	Before informationBeforeDive `xml:"informationbeforedive"`
	// Samples is always written, even for a dive without a profile
	Samples samples              `xml:"samples"`
	Tanks   []tankData           `xml:"tankdata"`
	After   informationAfterDive `xml:"informationafterdive"`
}

type informationBeforeDive struct {
	Datetime        string          `xml:"datetime,omitempty"`
	SurfaceInterval surfaceInterval `xml:"surfaceintervalbeforedive"`
}

// surfaceInterval holds exactly one of PassedTime or Infinity
type surfaceInterval struct {
	PassedTime *int64    `xml:"passedtime,omitempty"`
	Infinity   *struct{} `xml:"infinity,omitempty"`
}

type samples struct {
	Waypoints []waypoint `xml:"waypoint"`
}

type tankData struct {
	Link              link   `xml:"link"`
	TankPressureBegin string `xml:"tankpressurebegin,omitempty"`
}

type link struct {
	Ref string `xml:"ref,attr"`
}

type informationAfterDive struct {
	AverageDepth      string `xml:"averagedepth,omitempty"`
	DiveDuration      string `xml:"diveduration"`
	GreatestDepth     string `xml:"greatestdepth"`
	LowestTemperature string `xml:"lowesttemperature,omitempty"`
}

// waypoint is one sample of the profile.  divetime is always its first
// child; the remaining children are kept sorted by element name.
type waypoint struct {
	DiveTime uint
	Elements []element
}

type element struct {
	Name  string
	Attrs []xml.Attr
	Value string
}

// MarshalXML writes divetime followed by the waypoint's elements in order
func (w waypoint) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	divetime := xml.StartElement{Name: xml.Name{Local: "divetime"}}
	if err := e.EncodeElement(strconv.FormatUint(uint64(w.DiveTime), 10), divetime); err != nil {
		return err
	}

	for _, el := range w.Elements {
		se := xml.StartElement{Name: xml.Name{Local: el.Name}, Attr: el.Attrs}
		if err := e.EncodeElement(el.Value, se); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}
