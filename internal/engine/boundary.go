package engine

import (
	"math"
	"sort"

	"cropsight/internal/agronomy"
)

// Boundary is the nearest decision boundary along one feature: moving that
// feature by Delta (all others held fixed) changes the recommendation to
// Target.
type Boundary struct {
	Feature agronomy.Feature
	Target  agronomy.Crop
	Delta   float64
}

// Direction reports whether the feature has to go up or down.
func (b Boundary) Direction() Direction {
	if b.Delta < 0 {
		return Decrease
	}
	return Increase
}

// Magnitude is |Delta|.
func (b Boundary) Magnitude() float64 { return math.Abs(b.Delta) }

// searchRange is the physical or practical range scanned for each feature.
// A current value outside the range widens it.
var searchRange = map[agronomy.Feature][2]float64{
	agronomy.Nitrogen:    {0, 300},
	agronomy.Phosphorus:  {0, 300},
	agronomy.Potassium:   {0, 300},
	agronomy.Temperature: {-20, 60},
	agronomy.Humidity:    {0, 100},
	agronomy.PH:          {0, 14},
	agronomy.Rainfall:    {0, 500},
}

const (
	scanSteps      = 1000
	bisectEpsilon  = 1e-9
	bisectMaxSteps = 200
)

// Boundaries runs a one-dimensional boundary search per feature and returns
// one crossing per feature that has any, sorted by ascending magnitude.
// Features whose whole range keeps the current regime are omitted. Ties keep
// feature vocabulary order.
func Boundaries(m agronomy.MeasurementSet) []Boundary {
	m = m.Sanitized()
	base := RegimeOf(m)

	var out []Boundary
	for _, f := range agronomy.Features {
		best, ok := Boundary{}, false
		for _, dir := range []float64{-1, 1} {
			b, found := searchFeature(m, base, f, dir)
			if !found {
				continue
			}
			if !ok || b.Magnitude() < best.Magnitude() {
				best, ok = b, true
			}
		}
		if ok {
			out = append(out, best)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Magnitude() != out[j].Magnitude() {
			return out[i].Magnitude() < out[j].Magnitude()
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// Nearest returns the minimal single-feature change that flips the decision.
func Nearest(m agronomy.MeasurementSet) (Boundary, bool) {
	bs := Boundaries(m)
	if len(bs) == 0 {
		return Boundary{}, false
	}
	return bs[0], true
}

// searchFeature scans outward from the current value of f in direction dir
// (±1) and bisects the first regime change it meets.
func searchFeature(m agronomy.MeasurementSet, base Regime, f agronomy.Feature, dir float64) (Boundary, bool) {
	v := m.Get(f)
	r := searchRange[f]
	lo, hi := math.Min(r[0], v), math.Max(r[1], v)

	limit := hi - v
	if dir < 0 {
		limit = v - lo
	}
	if limit <= 0 {
		return Boundary{}, false
	}
	step := (hi - lo) / scanSteps

	probe := func(d float64) Regime { return RegimeOf(m.With(f, v+dir*d)) }

	prev := 0.0
	for d := step; ; d += step {
		if d > limit {
			d = limit
		}
		if probe(d) != base {
			return bisect(probe, base, prev, d, f, dir), true
		}
		if d >= limit {
			return Boundary{}, false
		}
		prev = d
	}
}

// bisect narrows (same, flipped] down to the smallest distance that still
// flips the regime.
func bisect(probe func(float64) Regime, base Regime, same, flipped float64, f agronomy.Feature, dir float64) Boundary {
	for i := 0; i < bisectMaxSteps && flipped-same > bisectEpsilon; i++ {
		mid := same + (flipped-same)/2
		if probe(mid) == base {
			same = mid
		} else {
			flipped = mid
		}
	}
	return Boundary{
		Feature: f,
		Target:  probe(flipped).Crop(),
		Delta:   dir * flipped,
	}
}
