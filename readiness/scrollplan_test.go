package readiness

import (
	"testing"
	"time"
)

func TestBuildScrollPlan_UniformCoverage(t *testing.T) {
	m := Metrics{ViewportWidth: 1440, ViewportHeight: 900, PageHeight: 4500}
	plan := buildScrollPlan(m, nil, 100*time.Millisecond)

	if len(plan) == 0 {
		t.Fatal("empty plan")
	}
	if plan[0].offset != 0 {
		t.Errorf("plan should start at 0, got %.0f", plan[0].offset)
	}
	last := plan[len(plan)-1].offset
	if last != m.PageHeight-m.ViewportHeight {
		t.Errorf("plan should end at max offset %.0f, got %.0f", m.PageHeight-m.ViewportHeight, last)
	}
	for i := 1; i < len(plan); i++ {
		if plan[i].offset <= plan[i-1].offset {
			t.Fatalf("offsets not strictly ascending at %d: %.0f then %.0f", i, plan[i-1].offset, plan[i].offset)
		}
	}
}

func TestBuildScrollPlan_RegionTargets(t *testing.T) {
	m := Metrics{ViewportHeight: 900, PageHeight: 10000}
	region := Region{Selector: ".deep", Box: Box{Y: 5120, Height: 300}}
	plan := buildScrollPlan(m, []Region{region}, 100*time.Millisecond)

	// The region-centering offset: 5120 - (900-300)/2 = 4820.
	want := 4820.0
	found := false
	for _, stop := range plan {
		if stop.offset > want-mergeTolerance && stop.offset < want+mergeTolerance {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("plan has no stop near region-centered offset %.0f", want)
	}
}

func TestDwellFor_MidPageLongest(t *testing.T) {
	m := Metrics{ViewportHeight: 900, PageHeight: 9000}
	base := 100 * time.Millisecond

	top := dwellFor(0, m, base)
	mid := dwellFor(m.PageHeight/2-m.ViewportHeight/2, m, base)
	bottom := dwellFor(m.PageHeight-m.ViewportHeight, m, base)

	if mid <= top || mid <= bottom {
		t.Errorf("mid-page dwell %v should exceed top %v and bottom %v", mid, top, bottom)
	}
	if top < base || bottom < base {
		t.Errorf("dwell should never drop below base %v: top %v, bottom %v", base, top, bottom)
	}
}

func TestExtendScrollPlan(t *testing.T) {
	m := Metrics{ViewportHeight: 900, PageHeight: 3000}
	plan := buildScrollPlan(m, nil, 100*time.Millisecond)
	before := len(plan)

	// Page grew under the sweep.
	grown := Metrics{ViewportHeight: 900, PageHeight: 6000}
	plan = extendScrollPlan(plan, grown, 100*time.Millisecond)

	if len(plan) <= before {
		t.Fatalf("plan did not extend: %d -> %d stops", before, len(plan))
	}
	if last := plan[len(plan)-1].offset; last != grown.PageHeight-grown.ViewportHeight {
		t.Errorf("extended plan should reach new max %.0f, got %.0f", grown.PageHeight-grown.ViewportHeight, last)
	}

	// No growth: plan unchanged.
	same := len(plan)
	plan = extendScrollPlan(plan, grown, 100*time.Millisecond)
	if len(plan) != same {
		t.Errorf("plan extended without page growth: %d -> %d", same, len(plan))
	}
}

func TestBuildScrollPlan_ShortPage(t *testing.T) {
	// Page shorter than the viewport: a single stop at 0.
	m := Metrics{ViewportHeight: 900, PageHeight: 500}
	plan := buildScrollPlan(m, nil, 100*time.Millisecond)
	if len(plan) != 1 || plan[0].offset != 0 {
		t.Errorf("short page should produce one stop at 0, got %v", plan)
	}
}
