package projection

import (
	"fmt"
	"strconv"
	"strings"
)

// ThresholdKind selects the arrow filtering policy.
type ThresholdKind int

const (
	// ThresholdNone draws every arrow.
	ThresholdNone ThresholdKind = iota
	// ThresholdAuto keeps arrows above a fraction of the slice maximum.
	ThresholdAuto
	// ThresholdValue keeps arrows above a literal magnitude.
	ThresholdValue
)

// autoFraction is the share of the slice maximum used by ThresholdAuto.
const autoFraction = 0.1

// ArrowThreshold decides which arrows are drawn.
type ArrowThreshold struct {
	Kind  ThresholdKind
	Value float64
}

// ParseArrowThreshold accepts "", "none", "auto" or a number.
func ParseArrowThreshold(s string) (ArrowThreshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ArrowThreshold{Kind: ThresholdNone}, nil
	case "auto":
		return ArrowThreshold{Kind: ThresholdAuto}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return ArrowThreshold{}, fmt.Errorf("invalid arrow threshold %q: want none, auto or a number", s)
	}
	return ArrowThreshold{Kind: ThresholdValue, Value: v}, nil
}

func (a ArrowThreshold) String() string {
	switch a.Kind {
	case ThresholdAuto:
		return "auto"
	case ThresholdValue:
		return strconv.FormatFloat(a.Value, 'g', -1, 64)
	}
	return "none"
}

// cutoff returns the magnitude an arrow must exceed, given the magnitudes of
// every candidate in the slice, and whether any cutoff applies at all.
func (a ArrowThreshold) cutoff(mags []float64) (float64, bool) {
	switch a.Kind {
	case ThresholdAuto:
		m := 0.0
		for _, v := range mags {
			m = max(m, v)
		}
		return autoFraction * m, true
	case ThresholdValue:
		return a.Value, true
	}
	return 0, false
}
