package brain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// RawTensor is the loosely shaped input accepted by Normalize.
//
// Values is indexed [case][source][space][time]. Without a case dimension the
// outer slice must have length one; without a space dimension every space
// slice must have length one. With a space dimension it must have length 3.
type RawTensor struct {
	Coords   []Coord
	Times    []float64
	Values   [][][][]float64
	HasCases bool
	HasSpace bool
}

// Normalize turns a raw tensor into the canonical Dataset. All shape
// checking happens here; downstream code assumes a well-formed Dataset.
func Normalize(raw RawTensor) (*Dataset, error) {
	if len(raw.Values) == 0 {
		return nil, shapeInvalid("values", "no data")
	}
	if !raw.HasCases && len(raw.Values) != 1 {
		return nil, shapeMismatch("case", 1, len(raw.Values))
	}

	nSources := len(raw.Values[0])
	if nSources == 0 {
		return nil, shapeInvalid("sources", "no sources")
	}
	nSpace := 1
	if raw.HasSpace {
		nSpace = 3
	}

	nTimes := -1
	for ci, c := range raw.Values {
		if len(c) != nSources {
			return nil, shapeMismatch(fmt.Sprintf("case %d sources", ci), nSources, len(c))
		}
		for si, s := range c {
			if len(s) != nSpace {
				return nil, shapeMismatch(fmt.Sprintf("source %d space", si), nSpace, len(s))
			}
			for _, comp := range s {
				if nTimes < 0 {
					nTimes = len(comp)
				}
				if len(comp) != nTimes {
					return nil, shapeMismatch(fmt.Sprintf("source %d time", si), nTimes, len(comp))
				}
			}
		}
	}
	if nTimes == 0 {
		return nil, shapeInvalid("time", "no time samples")
	}
	if len(raw.Coords) != nSources {
		return nil, shapeMismatch("coords", nSources, len(raw.Coords))
	}
	if len(raw.Times) != nTimes {
		return nil, shapeMismatch("times", nTimes, len(raw.Times))
	}
	for i := 1; i < len(raw.Times); i++ {
		if !(raw.Times[i] > raw.Times[i-1]) {
			return nil, shapeInvalid("times", fmt.Sprintf("not strictly increasing at index %d", i))
		}
	}

	activity := averageCases(raw.Values, nSources, nSpace, nTimes)
	coords := append([]Coord(nil), raw.Coords...)
	times := append([]float64(nil), raw.Times...)
	return newDataset(coords, times, activity), nil
}

// FromScalar builds a scalar dataset from values indexed [source][time].
func FromScalar(coords []Coord, times []float64, values [][]float64) (*Dataset, error) {
	return Normalize(RawTensor{Coords: coords, Times: times, Values: [][][][]float64{wrapScalar(values)}})
}

// FromVector builds a vector dataset from values indexed [source][component][time].
func FromVector(coords []Coord, times []float64, values [][][]float64) (*Dataset, error) {
	return Normalize(RawTensor{Coords: coords, Times: times, Values: [][][][]float64{values}, HasSpace: true})
}

// averageCases collapses the case dimension with the arithmetic mean.
func averageCases(values [][][][]float64, nSources, nSpace, nTimes int) [][][]float64 {
	out := make([][][]float64, nSources)
	for n := range out {
		out[n] = make([][]float64, nSpace)
		for c := range out[n] {
			out[n][c] = make([]float64, nTimes)
		}
	}
	for _, kase := range values {
		for n, src := range kase {
			for c, comp := range src {
				floats.Add(out[n][c], comp)
			}
		}
	}
	if k := len(values); k > 1 {
		for n := range out {
			for c := range out[n] {
				floats.Scale(1/float64(k), out[n][c])
			}
		}
	}
	return out
}

func newDataset(coords []Coord, times []float64, activity [][][]float64) *Dataset {
	d := &Dataset{
		Coords:     coords,
		Times:      times,
		Activity:   activity,
		Components: len(activity[0]),
		Magnitude:  make([][]float64, len(activity)),
	}
	nTimes := len(times)
	vec := make([]float64, 3)
	for n, src := range activity {
		row := make([]float64, nTimes)
		if d.Components == 3 {
			for t := range row {
				vec[0], vec[1], vec[2] = src[0][t], src[1][t], src[2][t]
				row[t] = floats.Norm(vec, 2)
			}
		} else {
			copy(row, src[0])
		}
		d.Magnitude[n] = row
	}
	return d
}
