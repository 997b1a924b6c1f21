package readiness

import (
	"math"
	"sort"
	"time"
)

// mergeTolerance collapses scroll stops closer than this many pixels.
const mergeTolerance = 40.0

// scrollStop is one offset of the content-focused scroll sweep with its
// dwell time.
type scrollStop struct {
	offset float64
	dwell  time.Duration
}

// buildScrollPlan combines uniform half-viewport steps down the page
// with targeted offsets that center each detected region in the
// viewport. Dwell is weighted toward the middle of the page, where
// intersection-observer lazy loaders are most likely to have content
// still pending.
func buildScrollPlan(m Metrics, regions []Region, base time.Duration) []scrollStop {
	maxOffset := m.PageHeight - m.ViewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}

	offsets := uniformOffsets(0, maxOffset, m.ViewportHeight/2)

	for _, r := range regions {
		centered := r.Box.Y - (m.ViewportHeight-r.Box.Height)/2
		offsets = append(offsets, clamp(centered, 0, maxOffset))
	}

	sort.Float64s(offsets)

	var plan []scrollStop
	for _, off := range offsets {
		if len(plan) > 0 && off-plan[len(plan)-1].offset < mergeTolerance {
			continue
		}
		plan = append(plan, scrollStop{offset: off, dwell: dwellFor(off, m, base)})
	}
	return plan
}

// extendScrollPlan appends uniform stops covering page growth past the
// previous maximum offset (the infinite-scroll case).
func extendScrollPlan(plan []scrollStop, m Metrics, base time.Duration) []scrollStop {
	maxOffset := m.PageHeight - m.ViewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}

	last := 0.0
	if len(plan) > 0 {
		last = plan[len(plan)-1].offset
	}
	if maxOffset-last < mergeTolerance {
		return plan
	}

	for _, off := range uniformOffsets(last+m.ViewportHeight/2, maxOffset, m.ViewportHeight/2) {
		plan = append(plan, scrollStop{offset: off, dwell: dwellFor(off, m, base)})
	}
	return plan
}

// dwellFor scales the base dwell by where the viewport midpoint sits on
// the page: 1x at the extremes rising to 2x at the middle.
func dwellFor(offset float64, m Metrics, base time.Duration) time.Duration {
	if m.PageHeight <= 0 {
		return base
	}
	mid := clamp((offset+m.ViewportHeight/2)/m.PageHeight, 0, 1)
	weight := 1 + math.Sin(math.Pi*mid)
	return time.Duration(float64(base) * weight)
}

func uniformOffsets(from, to, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	var out []float64
	for off := from; off < to; off += step {
		out = append(out, off)
	}
	out = append(out, to)
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
