package weather

// Blend combines samples into a single tuple using a component-wise weighted
// arithmetic mean. Samples with a weight <= 0 do not contribute. A component of
// the result is missing when any contributing sample is missing it, or when
// nothing contributes at all.
//
// Wind direction is averaged linearly like the other components, so blending
// across the 0/360 wrap yields an arithmetic rather than circular mean.
func Blend(samples []Tuple, weights []float64) Tuple {
	n := len(samples)
	if len(weights) < n {
		n = len(weights)
	}

	var (
		sums    [NumComponents]float64
		missing [NumComponents]bool
		total   float64
	)

	for i := 0; i < n; i++ {
		w := weights[i]
		if w <= 0 {
			continue
		}
		total += w
		for c, v := range samples[i].Components() {
			f, ok := v.Float()
			if !ok {
				missing[c] = true
				continue
			}
			sums[c] += w * f
		}
	}

	if total == 0 {
		return MissingTuple
	}

	var out [NumComponents]Value
	for c := range out {
		if missing[c] {
			continue
		}
		out[c] = Of(sums[c] / total)
	}
	return fromComponents(out)
}

// Lerp blends two tuples: frac 0 yields a, frac 1 yields b.
func Lerp(frac float64, a, b Tuple) Tuple {
	switch {
	case frac <= 0:
		return a
	case frac >= 1:
		return b
	}
	return Blend([]Tuple{a, b}, []float64{1 - frac, frac})
}
