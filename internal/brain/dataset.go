// Package brain holds the canonical source-activity dataset shared by every
// renderer, plus the adapters that build it from raw tensors, JSON files and
// the synthetic demo generator.
package brain

// Coord is a source position in head space, in metres.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Dataset is the normalised (source, component, time) activity tensor with
// its coordinates and time axis. It is immutable once built by Normalize.
type Dataset struct {
	Coords []Coord
	Times  []float64

	// Activity is indexed [source][component][time]. Components is 1 for
	// scalar data and 3 for vector (dipole) data.
	Activity   [][][]float64
	Components int

	// Magnitude is indexed [source][time]. For vector data it is the
	// Euclidean norm over components, for scalar data the raw value.
	Magnitude [][]float64
}

// NumSources returns N.
func (d *Dataset) NumSources() int {
	if d == nil {
		return 0
	}
	return len(d.Coords)
}

// NumTimes returns T.
func (d *Dataset) NumTimes() int {
	if d == nil {
		return 0
	}
	return len(d.Times)
}

// IsVector reports whether the dataset carries 3-component vectors.
func (d *Dataset) IsVector() bool {
	return d != nil && d.Components == 3
}

// Empty reports whether there is nothing to draw.
func (d *Dataset) Empty() bool {
	return d.NumSources() == 0 || d.NumTimes() == 0
}

// Vector returns the (vx, vy, vz) components of source n at time t.
// Scalar datasets return zeros.
func (d *Dataset) Vector(n, t int) (vx, vy, vz float64) {
	if !d.IsVector() {
		return 0, 0, 0
	}
	a := d.Activity[n]
	return a[0][t], a[1][t], a[2][t]
}

// MagnitudeAt returns a fresh slice holding magnitude[:, t].
func (d *Dataset) MagnitudeAt(t int) []float64 {
	out := make([]float64, len(d.Magnitude))
	for n, row := range d.Magnitude {
		out[n] = row[t]
	}
	return out
}

// ValidTime reports whether t indexes the time axis.
func (d *Dataset) ValidTime(t int) bool {
	return t >= 0 && t < d.NumTimes()
}

// ValidSource reports whether n indexes a source.
func (d *Dataset) ValidSource(n int) bool {
	return n >= 0 && n < d.NumSources()
}
