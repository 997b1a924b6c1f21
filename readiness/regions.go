package readiness

import "github.com/use-agent/sitelens/config"

// looksEmpty is the initial emptiness classification applied at
// detection time: very little text, or little text and no images to
// make up for it.
func looksEmpty(textLen int, hasImages bool, cfg config.ReadinessConfig) bool {
	if textLen < cfg.GrowthThreshold {
		return true
	}
	return textLen < cfg.ModerateText && !hasImages
}

// filled classifies a re-measured region. A region is FILLED when its
// text grew by at least the growth threshold over baseline, when its
// images have finished loading and it carries moderate text, or when
// its absolute text length clears the high threshold. The initial
// emptiness flag plays no part here.
func filled(baseline Region, m Measure, cfg config.ReadinessConfig) bool {
	if m.TextLen-baseline.TextLen >= cfg.GrowthThreshold {
		return true
	}
	if m.ImagesLoaded && m.TextLen >= cfg.ModerateText {
		return true
	}
	return m.TextLen >= cfg.HighText
}

// selectors returns the selector descriptors for a region set.
func selectors(regions []Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Selector
	}
	return out
}

// emptySet re-classifies the full baseline set against fresh measures
// and returns the regions still considered empty. Measures are matched
// by selector; a baseline region with no measure stays empty.
func emptySet(baseline []Region, measures []Measure, cfg config.ReadinessConfig) []Region {
	bysel := make(map[string]Measure, len(measures))
	for _, m := range measures {
		bysel[m.Selector] = m
	}

	var empty []Region
	for _, r := range baseline {
		m, ok := bysel[r.Selector]
		if !ok || !filled(r, m, cfg) {
			empty = append(empty, r)
		}
	}
	return empty
}
