package brain

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleOptions controls the synthetic demo dataset.
type SampleOptions struct {
	Sources int
	Times   int
	Vector  bool
	Seed    uint64
}

// DefaultSampleOptions matches the demo dataset shown when no file is given.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{Sources: 200, Times: 50, Vector: true, Seed: 42}
}

const (
	sampleLayers   = 8
	samplePatterns = 3
	sampleDuration = 0.5
)

// Sample builds a deterministic synthetic dataset: sources stacked in axial
// layers, a few gaussian activity pulses spreading from random centres, and
// (for vector data) dipoles pointing roughly away from the head centre.
func Sample(opts SampleOptions) *Dataset {
	def := DefaultSampleOptions()
	if opts.Sources <= 0 {
		opts.Sources = def.Sources
	}
	if opts.Times <= 0 {
		opts.Times = def.Times
	}
	src := rand.NewPCG(opts.Seed, opts.Seed)
	rng := rand.New(src)

	coords := sampleCoords(opts.Sources, rng)
	times := make([]float64, opts.Times)
	if len(times) > 1 {
		floats.Span(times, 0, sampleDuration)
	}

	scalar := sampleScalar(coords, times, rng, src)
	if !opts.Vector {
		activity := make([][][]float64, len(scalar))
		for n, row := range scalar {
			activity[n] = [][]float64{row}
		}
		return newDataset(coords, times, activity)
	}
	return newDataset(coords, times, sampleVector(coords, scalar, src))
}

func sampleCoords(n int, rng *rand.Rand) []Coord {
	coords := make([]Coord, n)
	perLayer := n / sampleLayers
	if perLayer == 0 {
		perLayer = 1
	}
	for i := range coords {
		layer := min(i/perLayer, sampleLayers-1)
		z := -0.04 + float64(layer)/float64(sampleLayers-1)*0.10

		theta := rng.Float64() * 2 * math.Pi
		phi := rng.Float64() * math.Pi
		// narrower towards the poles
		shape := 0.5 + 0.5*math.Cos(phi)
		radius := (0.02 + rng.Float64()*0.06) * shape

		coords[i] = Coord{
			X: radius * math.Sin(phi) * math.Cos(theta) * 0.8,
			Y: radius * math.Sin(phi) * math.Sin(theta) * 1.2,
			Z: z,
		}
	}
	return coords
}

func sampleScalar(coords []Coord, times []float64, rng *rand.Rand, src rand.Source) [][]float64 {
	noise := distuv.Normal{Mu: 0, Sigma: 0.1, Src: src}
	baseline := distuv.Normal{Mu: 0, Sigma: 0.05, Src: src}
	gain := distuv.Uniform{Min: 0.5, Max: 2.0, Src: src}

	data := make([][]float64, len(coords))
	for n := range data {
		data[n] = make([]float64, len(times))
	}

	course := make([]float64, len(times))
	for p := range samplePatterns {
		centre := coords[rng.IntN(len(coords))]
		peak := 0.1 + float64(p)*0.15
		const width = 0.05
		for t, tv := range times {
			course[t] = math.Exp(-0.5 * math.Pow((tv-peak)/width, 2))
		}
		for n, c := range coords {
			d := distance(c, centre)
			amp := math.Exp(-d/0.03) * gain.Rand()
			for t := range data[n] {
				data[n][t] += amp*course[t] + noise.Rand()
			}
		}
	}
	for n := range data {
		for t := range data[n] {
			data[n][t] += baseline.Rand()
		}
	}
	return data
}

func sampleVector(coords []Coord, scalar [][]float64, src rand.Source) [][][]float64 {
	jitter := distuv.Normal{Mu: 0, Sigma: 0.3, Src: src}
	small := distuv.Normal{Mu: 0, Sigma: 0.02, Src: src}

	out := make([][][]float64, len(coords))
	dir := make([]float64, 3)
	for n, c := range coords {
		nTimes := len(scalar[n])
		out[n] = [][]float64{make([]float64, nTimes), make([]float64, nTimes), make([]float64, nTimes)}
		radial := []float64{c.X, c.Y, c.Z}
		floats.Scale(1/(floats.Norm(radial, 2)+1e-6), radial)
		for t := range nTimes {
			mag := math.Abs(scalar[n][t])
			if mag > 0.1 {
				for k := range dir {
					dir[k] = radial[k] + jitter.Rand()
				}
				floats.Scale(mag/(floats.Norm(dir, 2)+1e-6), dir)
			} else {
				for k := range dir {
					dir[k] = small.Rand()
				}
			}
			for k := range dir {
				out[n][k][t] = dir[k]
			}
		}
	}
	return out
}

func distance(a, b Coord) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
}
