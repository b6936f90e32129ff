package types

import (
	"github.com/chrissnell/dc2uddf/pkg/gasmix"
)

// GasMix is a breathing gas composition.  Components are percentages and
// are not required to add up to 100.
type GasMix struct {
	ID       uint    `msgpack:"id"`
	Oxygen   float64 `msgpack:"o2"`
	Nitrogen float64 `msgpack:"n2"`
	Helium   float64 `msgpack:"he"`
	Argon    float64 `msgpack:"ar"`
	Hydrogen float64 `msgpack:"h2"`

	typ        gasmix.Type
	classified bool
}

// NewGasMix returns air, which is what a computer reports when it has no
// gas configuration
func NewGasMix(id uint) GasMix {
	return GasMix{ID: id, Oxygen: 21, Nitrogen: 79}
}

func (m *GasMix) classify() {
	m.typ = gasmix.Classify(m.Oxygen, m.Nitrogen, m.Helium, m.Argon, m.Hydrogen)
	m.classified = true
}

// Type returns the classification of the mix, cached when the mix was
// attached to a dive
func (m GasMix) Type() gasmix.Type {
	if m.classified {
		return m.typ
	}
	return gasmix.Classify(m.Oxygen, m.Nitrogen, m.Helium, m.Argon, m.Hydrogen)
}

// Name returns the canonical name of the mix.  It is also the key used to
// deduplicate mixes in a UDDF gas definitions block.
func (m GasMix) Name() string {
	if t := m.Type(); t != gasmix.Unknown {
		return t.String()
	}
	return gasmix.Name(m.Oxygen, m.Nitrogen, m.Helium, m.Argon, m.Hydrogen)
}

// Valid is false for the ~100% nitrogen phantom tanks reported by some
// computers
func (m GasMix) Valid() bool {
	return !gasmix.IsArtifact(m.Nitrogen)
}
