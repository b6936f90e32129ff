// Package gasmix classifies breathing gas compositions into the canonical
// names used in dive logs (air, nitrox blends, pure oxygen)
package gasmix

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance, in percentage points, applied to every component
// when matching a composition against the table
const Epsilon = 0.1

// Type identifies a known gas composition
type Type int

const (
	Air Type = iota
	EANx30
	EANx31
	EANx32
	EANx33
	EANx34
	EANx35
	EANx36
	EANx37
	EANx38
	EANx39
	EANx40
	Oxygen100
	Unknown
)

type composition struct {
	typ   Type
	label string
	o2    float64
	n2    float64
}

// Table order matters: the first match wins.  Every entry is helium, argon
// and hydrogen free.
var table = []composition{
	{Air, "air", 21, 79},
	{EANx30, "eanx30", 30, 70},
	{EANx31, "eanx31", 31, 69},
	{EANx32, "eanx32", 32, 68},
	{EANx33, "eanx33", 33, 67},
	{EANx34, "eanx34", 34, 66},
	{EANx35, "eanx35", 35, 65},
	{EANx36, "eanx36", 36, 64},
	{EANx37, "eanx37", 37, 63},
	{EANx38, "eanx38", 38, 62},
	{EANx39, "eanx39", 39, 61},
	{EANx40, "eanx40", 40, 60},
	{Oxygen100, "pureoxygen", 100, 0},
}

// String returns the table label, or "unknown"
func (t Type) String() string {
	for _, c := range table {
		if c.typ == t {
			return c.label
		}
	}
	return "unknown"
}

func near(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Classify matches a composition, given in percent, against the known table
func Classify(o2, n2, he, ar, h2 float64) Type {
	if !near(he, 0) || !near(ar, 0) || !near(h2, 0) {
		return Unknown
	}
	for _, c := range table {
		if near(o2, c.o2) && near(n2, c.n2) {
			return c.typ
		}
	}
	return Unknown
}

// Name returns the canonical name of a composition.  Compositions that are
// not in the table get a label built from their rounded percentages, e.g.
// mix_15o2_40n245he00ar00h2 for a 15/45 trimix.
func Name(o2, n2, he, ar, h2 float64) string {
	if t := Classify(o2, n2, he, ar, h2); t != Unknown {
		return t.String()
	}
	return fmt.Sprintf("mix_%02do2_%02dn2%02dhe%02dar%02dh2",
		int(math.Round(o2)), int(math.Round(n2)), int(math.Round(he)),
		int(math.Round(ar)), int(math.Round(h2)))
}

// IsArtifact reports whether a nitrogen fraction is the ~100% N2 reading
// that some Uwatec computers report for tanks that are not fitted
func IsArtifact(n2 float64) bool {
	return math.Abs(n2-100) < Epsilon
}
